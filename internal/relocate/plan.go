// Package relocate moves content files to their canonical locations and
// prunes the directories the moves leave empty.
//
// Work is split in two phases. BuildPlan inspects the filesystem and
// classifies every rename without touching anything; Apply then performs
// the moves. A plan with conflicts is rejected before any file is moved.
package relocate

import (
	"fmt"
	"os"

	"github.com/papapumpkin/navstrip/internal/rename"
)

// ActionType classifies what relocation will do for one rename.
type ActionType string

const (
	// ActionMove moves an existing source file to its destination.
	ActionMove ActionType = "move"
	// ActionAlreadyMoved means the source is gone and the destination
	// exists, typically because a previous run was interrupted.
	ActionAlreadyMoved ActionType = "already_moved"
	// ActionMissing means neither the source nor the destination exists.
	ActionMissing ActionType = "missing"
	// ActionConflict means the move cannot proceed without losing content.
	ActionConflict ActionType = "conflict"
)

// Action is the planned outcome for one rename.
type Action struct {
	Pair   rename.Pair
	Type   ActionType
	Src    string // absolute source file path
	Dst    string // absolute destination file path
	Reason string
}

// Plan is the validated set of file moves for a mapping.
type Plan struct {
	Root    string
	Ext     string
	Actions []Action
}

// BuildPlan resolves every pair against root, appending ext to both sides,
// and classifies it. Pairs must already be sorted; their order is kept.
// When conflicts are found the full plan is returned together with a
// *PlanError.
func BuildPlan(root, ext string, pairs []rename.Pair) (*Plan, error) {
	p := &Plan{Root: root, Ext: ext}

	// Destinations already claimed by an earlier pair with a live source.
	claimed := make(map[string]string)
	var conflicts []Action

	for _, pair := range pairs {
		src, err := SafeJoin(root, pair.Old+ext)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", pair.Old, err)
		}
		dst, err := SafeJoin(root, pair.New+ext)
		if err != nil {
			return nil, fmt.Errorf("destination %q: %w", pair.New, err)
		}

		a := Action{Pair: pair, Src: src, Dst: dst}
		srcInfo, srcErr := os.Stat(src)
		dstInfo, dstErr := os.Stat(dst)
		srcExists := srcErr == nil
		dstExists := dstErr == nil

		switch {
		case srcExists && srcInfo.IsDir():
			a.Type = ActionConflict
			a.Reason = "source is a directory"
		case srcExists && dstExists && !os.SameFile(srcInfo, dstInfo):
			a.Type = ActionConflict
			a.Reason = "destination already exists"
		case srcExists && claimed[dst] != "":
			a.Type = ActionConflict
			a.Reason = fmt.Sprintf("destination also targeted by %q", claimed[dst])
		case srcExists:
			a.Type = ActionMove
			a.Reason = "move file"
			claimed[dst] = pair.Old
		case dstExists:
			a.Type = ActionAlreadyMoved
			a.Reason = "source gone, destination present"
		default:
			a.Type = ActionMissing
			a.Reason = "no backing file"
		}

		if a.Type == ActionConflict {
			conflicts = append(conflicts, a)
		}
		p.Actions = append(p.Actions, a)
	}

	if len(conflicts) > 0 {
		return p, &PlanError{Conflicts: conflicts}
	}
	return p, nil
}

// Count returns how many actions have type t.
func (p *Plan) Count(t ActionType) int {
	n := 0
	for _, a := range p.Actions {
		if a.Type == t {
			n++
		}
	}
	return n
}

// HasChanges reports whether the plan moves any file.
func (p *Plan) HasChanges() bool {
	return p.Count(ActionMove) > 0
}
