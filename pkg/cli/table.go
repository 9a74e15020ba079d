package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/secondary text color
	Warn    lipgloss.Color // Failure rows
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#f0883e"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
	Warn   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Cell:   lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
		Warn:   lipgloss.NewStyle().Foreground(t.Warn),
	}
}

// CaptionRow is one line of the caption result table.
type CaptionRow struct {
	File    string
	Caption string
	// Err marks a failed file; Caption then holds the error text.
	Err bool
}

// CaptionTable renders caption results as a styled two-column table.
// Failed files are rendered in the warning color.
func CaptionTable(rows []CaptionRow) string {
	return CaptionTableStyled(rows, NewStyles(DefaultTheme))
}

// CaptionTableStyled renders the table with explicit styles.
func CaptionTableStyled(rows []CaptionRow, st Styles) string {
	fileWidth := len("FILE")
	for _, r := range rows {
		if w := lipgloss.Width(r.File); w > fileWidth {
			fileWidth = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n",
		st.Header.Render(pad("FILE", fileWidth)),
		st.Header.Render("CAPTION"))

	for _, r := range rows {
		cell := st.Cell
		if r.Err {
			cell = st.Warn
		}
		fmt.Fprintf(&b, "%s  %s\n",
			st.Dim.Render(pad(r.File, fileWidth)),
			cell.Render(r.Caption))
	}
	return b.String()
}

// pad right-pads s with spaces to the given display width.
func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
