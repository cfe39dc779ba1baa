package rename

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Change is one reported rename, both sides as site-absolute paths.
type Change struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Report is the machine-readable record of a run's renames. Its shape
// matches the manifest's redirects entries so changes can be pasted there.
type Report struct {
	TotalChanges int      `json:"total_changes"`
	Changes      []Change `json:"changes"`
}

// BuildReport lists every entry of m ordered by old path, the same order
// the relocator uses.
func BuildReport(m Mapping) Report {
	pairs := m.Sorted()
	r := Report{
		TotalChanges: len(pairs),
		Changes:      make([]Change, 0, len(pairs)),
	}
	for _, p := range pairs {
		r.Changes = append(r.Changes, Change{
			Source:      "/" + p.Old,
			Destination: "/" + p.New,
		})
	}
	return r
}

// Marshal encodes the report as two-space indented JSON with a trailing
// newline. HTML characters are left unescaped, as in the manifest.
func (r Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReport writes r to path atomically (write temp + rename).
func WriteReport(path string, r Report) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming report file: %w", err)
	}
	return nil
}
