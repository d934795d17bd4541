package main

import (
	"github.com/charmbracelet/lipgloss"
	"io"
)

type styles struct {
	command  lipgloss.Style
	ok       lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
	progress lipgloss.Style
	dim      lipgloss.Style
}

// ANSI Color reference
// 1	Red
// 2	Green
// 3	Yellow
// 6	Cyan
// 7	White
// 8	Bright Black (Gray)

// newStyles renders for w, so colour is only used when w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		command:  r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		ok:       r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		status:   r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		err:      r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		progress: r.NewStyle().Foreground(lipgloss.ANSIColor(6)),
		dim:      r.NewStyle().Foreground(lipgloss.ANSIColor(8)),
	}
}
