package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan: headings
	colorAccent  = lipgloss.Color("#FFD700") // Gold: warnings, skipped work
	colorSuccess = lipgloss.Color("#00E676") // Green: moves, completion
	colorDanger  = lipgloss.Color("#FF5252") // Red: errors, conflicts
	colorMuted   = lipgloss.Color("#636363") // Gray: de-emphasized detail
)

// Status icons for relocation actions.
const (
	iconMove     = "→"
	iconDone     = "✓"
	iconMissing  = "?"
	iconConflict = "✗"
	iconPruned   = "−"
	iconWarn     = "⚠"
)

// styles binds the palette to a renderer so color detection follows the
// writer the printer targets, not os.Stdout.
type styles struct {
	heading lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	muted   lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Foreground(colorPrimary).Bold(true),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warn:    r.NewStyle().Foreground(colorAccent).Bold(true),
		danger:  r.NewStyle().Foreground(colorDanger).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		bold:    r.NewStyle().Bold(true),
	}
}
