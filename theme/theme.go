package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme styles the terminal monitor
type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Pad       rune // ■ lit or unlit pad
	PadCursor rune // ◉ pad under the cursor
	Button    rune // ● transport button
	Knob      rune // ◯ knob without a ring
}

// New creates a theme over palette; nil uses DefaultPalette
func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Pad:       '■',
			PadCursor: '◉',
			Button:    '●',
			Knob:      '◯',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
