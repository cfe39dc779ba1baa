// Package ui renders navstrip's human-readable progress and results.
// Everything goes to a single writer, stderr in the CLI, so stdout stays
// free for --json output.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papapumpkin/navstrip/internal/journal"
	"github.com/papapumpkin/navstrip/internal/ledger"
	"github.com/papapumpkin/navstrip/internal/relocate"
	"github.com/papapumpkin/navstrip/internal/rename"
)

// Printer writes styled status lines.
type Printer struct {
	out     io.Writer
	st      styles
	Verbose bool // per-file notices
	Quiet   bool // suppress everything except warnings and errors
}

// NewWriter returns a Printer writing to w. noColor forces plain output.
func NewWriter(w io.Writer, noColor bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{out: w, st: newStyles(r)}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Error prints msg as an error line.
func (p *Printer) Error(msg string) {
	p.printf("%s %s\n", p.st.danger.Render("error:"), msg)
}

// Warn prints msg as a warning line.
func (p *Printer) Warn(msg string) {
	p.printf("%s %s\n", p.st.warn.Render(iconWarn), msg)
}

// Info prints msg as a muted informational line unless quiet.
func (p *Printer) Info(msg string) {
	if p.Quiet {
		return
	}
	p.printf("%s\n", p.st.muted.Render(msg))
}

// Step announces a pipeline phase.
func (p *Printer) Step(n int, msg string) {
	if p.Quiet {
		return
	}
	p.printf("%s %s\n", p.st.heading.Render(fmt.Sprintf("step %d:", n)), msg)
}

// MappingBuilt summarizes the scan of the navigation tree.
func (p *Printer) MappingBuilt(leaves, mapped int) {
	if p.Quiet {
		return
	}
	p.printf("  %d page reference(s), %s\n", leaves, p.st.bold.Render(fmt.Sprintf("%d to rename", mapped)))
}

// Action reports the outcome of one relocation action. Moves are shown in
// verbose mode, skips always, since they explain a gap between manifest
// and disk.
func (p *Printer) Action(a relocate.Action) {
	switch a.Type {
	case relocate.ActionMove:
		if p.Verbose && !p.Quiet {
			p.printf("  %s %s\n", p.st.success.Render(iconMove), pairText(a.Pair))
		}
	case relocate.ActionAlreadyMoved:
		if p.Verbose && !p.Quiet {
			p.printf("  %s %s %s\n", p.st.muted.Render(iconDone), pairText(a.Pair), p.st.muted.Render("(already moved)"))
		}
	case relocate.ActionMissing:
		p.printf("  %s %s %s\n", p.st.warn.Render(iconMissing), a.Pair.Old, p.st.muted.Render("(no backing file, skipped)"))
	case relocate.ActionConflict:
		p.printf("  %s %s %s\n", p.st.danger.Render(iconConflict), pairText(a.Pair), p.st.muted.Render("("+a.Reason+")"))
	}
}

// DirPruned reports a removed empty directory.
func (p *Printer) DirPruned(dir string) {
	if p.Verbose && !p.Quiet {
		p.printf("  %s %s/\n", p.st.muted.Render(iconPruned), dir)
	}
}

// ManifestWritten reports the rewritten manifest and how many paths changed.
func (p *Printer) ManifestWritten(path string, rewritten int) {
	if p.Quiet {
		return
	}
	p.printf("  updated %s with %d path change(s)\n", path, rewritten)
}

// ReportWritten reports where the change report was written and how many changes it holds.
func (p *Printer) ReportWritten(path string, total int) {
	if p.Quiet {
		return
	}
	p.printf("  report written to %s (%d change(s))\n", path, total)
}

// PlanRender lists every planned action with its symbol.
func (p *Printer) PlanRender(pl *relocate.Plan) {
	p.printf("\n%s\n", p.st.heading.Render("rename plan: "+pl.Root))
	if len(pl.Actions) == 0 {
		p.printf("%s\n\n", p.st.muted.Render("  (no identifiers found)"))
		return
	}
	for _, a := range pl.Actions {
		var symbol string
		switch a.Type {
		case relocate.ActionMove:
			symbol = p.st.success.Render(iconMove)
		case relocate.ActionAlreadyMoved:
			symbol = p.st.muted.Render(iconDone)
		case relocate.ActionMissing:
			symbol = p.st.warn.Render(iconMissing)
		case relocate.ActionConflict:
			symbol = p.st.danger.Render(iconConflict)
		}
		p.printf("  %s %s %s\n", symbol, pairText(a.Pair), p.st.muted.Render(a.Reason))
	}
	p.printf("  move: %d, already moved: %d, missing: %d, conflicts: %d\n\n",
		pl.Count(relocate.ActionMove), pl.Count(relocate.ActionAlreadyMoved),
		pl.Count(relocate.ActionMissing), pl.Count(relocate.ActionConflict))
}

// RunDone prints the final summary line.
func (p *Printer) RunDone(dryRun bool, moved, skipped, rewritten int, elapsed time.Duration) {
	if p.Quiet {
		return
	}
	head := p.st.success.Render(iconDone + " id removal complete")
	if dryRun {
		head = p.st.warn.Render(iconDone + " dry run complete")
	}
	p.printf("%s (moved %d, skipped %d, manifest entries %d) %s\n",
		head, moved, skipped, rewritten, p.st.muted.Render(fmt.Sprintf("(%.1fs)", elapsed.Seconds())))
}

// IncompleteRun warns that the previous run did not finish.
func (p *Printer) IncompleteRun(j *journal.Journal) {
	p.Warn(fmt.Sprintf("previous run %s stopped at phase %q (%d change(s)); rerunning completes it", j.RunID, j.Phase, len(j.Changes)))
}

// JournalStatus prints the last journaled run.
func (p *Printer) JournalStatus(j *journal.Journal) {
	status := p.st.success.Render(string(j.Phase))
	if j.Phase == journal.PhaseFailed {
		status = p.st.danger.Render(string(j.Phase))
	} else if j.Incomplete() {
		status = p.st.warn.Render(string(j.Phase))
	}
	p.printf("%s\n", p.st.heading.Render("last run: "+j.RunID))
	p.printf("  manifest:  %s\n", j.Manifest)
	p.printf("  root:      %s\n", j.Root)
	p.printf("  started:   %s\n", j.StartedAt.Local().Format(time.DateTime))
	p.printf("  updated:   %s\n", j.UpdatedAt.Local().Format(time.DateTime))
	p.printf("  phase:     %s\n", status)
	p.printf("  changes:   %d\n", len(j.Changes))
	if j.Error != "" {
		p.printf("  error:     %s\n", j.Error)
	}
}

// History prints a table of ledger runs.
func (p *Printer) History(runs []ledger.Run) {
	if len(runs) == 0 {
		p.printf("%s\n", p.st.muted.Render("(no runs recorded)"))
		return
	}
	p.printf("%s\n", p.st.bold.Render(fmt.Sprintf("%-36s  %-19s  %7s  %5s  %7s  %s", "RUN", "STARTED", "CHANGES", "MOVED", "SKIPPED", "STATUS")))
	for _, r := range runs {
		p.printf("%-36s  %-19s  %7d  %5d  %7d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.TotalChanges, r.Moved, r.Skipped, r.Status)
	}
}

// RunChanges prints the changes recorded for one run.
func (p *Printer) RunChanges(r ledger.Run, changes []ledger.Change) {
	p.printf("%s %s\n", p.st.heading.Render("run "+r.ID), p.st.muted.Render("("+r.Status+")"))
	if len(changes) == 0 {
		p.printf("%s\n", p.st.muted.Render("  (no changes)"))
		return
	}
	for _, c := range changes {
		p.printf("  %-13s %s -> %s\n", c.Outcome, c.Source, c.Destination)
	}
}

func pairText(pr rename.Pair) string {
	return pr.Old + " -> " + pr.New
}
