package relocate

import (
	"errors"
	"strings"
)

// Sentinel errors for planning and applying moves.
var (
	// ErrOutsideRoot indicates a mapped path resolves outside the content root.
	ErrOutsideRoot = errors.New("path escapes content root")
	// ErrConflict indicates a move would overwrite or merge existing content.
	ErrConflict = errors.New("rename conflict")
)

// PlanError collects every conflicting action found while planning. It
// unwraps to ErrConflict.
type PlanError struct {
	Conflicts []Action
}

// Error lists the conflicting renames one per line.
func (e *PlanError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConflict.Error())
	b.WriteString(":")
	for _, a := range e.Conflicts {
		b.WriteString("\n  ")
		b.WriteString(a.Pair.Old)
		b.WriteString(" -> ")
		b.WriteString(a.Pair.New)
		b.WriteString(": ")
		b.WriteString(a.Reason)
	}
	return b.String()
}

// Unwrap returns ErrConflict for use with errors.Is.
func (e *PlanError) Unwrap() error {
	return ErrConflict
}
