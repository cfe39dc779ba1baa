package relocate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Result records what Apply did.
type Result struct {
	Moved   []Action // files moved in this run
	Skipped []Action // already moved or missing
	Pruned  []string // directories removed, relative to root
}

// Applied returns every action whose destination now exists on disk.
func (r *Result) Applied() []Action {
	out := make([]Action, 0, len(r.Moved)+len(r.Skipped))
	out = append(out, r.Moved...)
	for _, a := range r.Skipped {
		if a.Type == ActionAlreadyMoved {
			out = append(out, a)
		}
	}
	return out
}

// Relocator applies a Plan to the filesystem.
type Relocator struct {
	DryRun  bool
	DirPerm os.FileMode

	// OnAction, when set, is called after each action is handled.
	OnAction func(Action)
}

// Apply performs the plan's moves in order and then prunes empty
// directories under the plan root. It refuses plans that contain
// conflicts. In dry-run mode nothing is touched and Moved lists the moves
// that would happen. An I/O failure stops the run and the partial Result
// is returned with the error.
func (r *Relocator) Apply(ctx context.Context, p *Plan) (*Result, error) {
	if n := p.Count(ActionConflict); n > 0 {
		return nil, fmt.Errorf("%w: plan has %d conflicting action(s)", ErrConflict, n)
	}

	perm := r.DirPerm
	if perm == 0 {
		perm = 0o755
	}

	res := &Result{}
	for _, a := range p.Actions {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if a.Type != ActionMove {
			res.Skipped = append(res.Skipped, a)
			r.notify(a)
			continue
		}

		if !r.DryRun {
			if err := os.MkdirAll(filepath.Dir(a.Dst), perm); err != nil {
				return res, fmt.Errorf("creating directory for %s: %w", a.Pair.New, err)
			}
			if err := moveFile(a.Src, a.Dst); err != nil {
				return res, fmt.Errorf("moving %s -> %s: %w", a.Pair.Old, a.Pair.New, err)
			}
		}
		res.Moved = append(res.Moved, a)
		r.notify(a)
	}

	if !r.DryRun {
		res.Pruned = PruneEmptyDirs(p.Root)
	}
	return res, nil
}

func (r *Relocator) notify(a Action) {
	if r.OnAction != nil {
		r.OnAction(a)
	}
}

// moveFile renames src to dst, copying across filesystems when a plain
// rename is not possible.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
