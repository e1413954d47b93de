package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-surface/theme"
)

// Off pads are drawn in this grey so the grid stays visible
var unlit = theme.RGB{60, 60, 60}

// RenderPad renders a single coloured pad
func RenderPad(color theme.RGB, symbol rune) string {
	if color == (theme.RGB{}) {
		color = unlit
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex()))
	return style.Render(string(symbol))
}

// Cell is one pad in a grid
type Cell struct {
	Color  theme.RGB
	Cursor bool
}

// RenderPadGrid renders rows of pads, first row on top
func RenderPadGrid(rows [][]Cell, sym theme.Symbols) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var line strings.Builder
		for i, c := range row {
			if i > 0 {
				line.WriteString(" ")
			}
			symbol := sym.Pad
			if c.Cursor {
				symbol = sym.PadCursor
			}
			line.WriteString(RenderPad(c.Color, symbol))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderKnob renders a knob value as a short bar with its label
func RenderKnob(label string, value, limit, width int) string {
	if limit <= 0 {
		limit = 127
	}
	filled := max(0, min(value*width/limit, width))
	return fmt.Sprintf("%-8s %s%s", label, strings.Repeat("█", filled), strings.Repeat("░", width-filled))
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
