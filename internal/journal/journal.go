// Package journal persists the intent of a navstrip run before anything is
// mutated, so an interrupted run can be recognized and explained later.
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/navstrip/internal/rename"
)

// FileName is the journal file inside the state directory.
const FileName = "journal.toml"

// ErrNoJournal indicates no run has been journaled in the state directory.
var ErrNoJournal = errors.New("no journal found")

// Phase is the last step a run completed.
type Phase string

const (
	PhasePlanned   Phase = "planned"   // mapping and move plan computed, nothing mutated
	PhaseRelocated Phase = "relocated" // files moved, manifest not yet written
	PhaseRewritten Phase = "rewritten" // manifest written, report pending
	PhaseCompleted Phase = "completed" // report written, run recorded
	PhaseFailed    Phase = "failed"    // stopped early; see Error
)

// Journal records one run.
type Journal struct {
	Version   int           `toml:"version"`
	RunID     string        `toml:"run_id"`
	Manifest  string        `toml:"manifest"`
	Root      string        `toml:"root"`
	StartedAt time.Time     `toml:"started_at"`
	UpdatedAt time.Time     `toml:"updated_at"`
	Phase     Phase         `toml:"phase"`
	Error     string        `toml:"error,omitempty"`
	Changes   []rename.Pair `toml:"changes"`
}

// New starts a journal for a run in PhasePlanned.
func New(runID, manifestPath, root string, pairs []rename.Pair) *Journal {
	now := time.Now().UTC().Truncate(time.Second)
	return &Journal{
		Version:   1,
		RunID:     runID,
		Manifest:  manifestPath,
		Root:      root,
		StartedAt: now,
		UpdatedAt: now,
		Phase:     PhasePlanned,
		Changes:   pairs,
	}
}

// Incomplete reports whether the run stopped before completing.
func (j *Journal) Incomplete() bool {
	return j.Phase != PhaseCompleted
}

// Load reads the journal from dir. It returns ErrNoJournal when the file
// does not exist.
func Load(dir string) (*Journal, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoJournal
		}
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	var j Journal
	if err := toml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parsing journal: %w", err)
	}
	return &j, nil
}

// Save writes the journal atomically (write temp + rename), creating dir
// if needed.
func Save(dir string, j *Journal) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := toml.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshaling journal: %w", err)
	}

	path := filepath.Join(dir, FileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming journal: %w", err)
	}
	return nil
}

// Advance moves j to phase and saves it.
func Advance(dir string, j *Journal, phase Phase) error {
	j.Phase = phase
	j.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return Save(dir, j)
}

// Fail marks j as failed with err and saves it. The phase reached before
// the failure is kept in the error text.
func Fail(dir string, j *Journal, err error) error {
	j.Error = fmt.Sprintf("after %s: %v", j.Phase, err)
	return Advance(dir, j, PhaseFailed)
}
