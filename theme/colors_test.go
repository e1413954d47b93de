package theme_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-surface/theme"
)

func TestColorManager(t *testing.T) {
	t.Run("should map named colours into the palette", func(t *testing.T) {
		cm := theme.NewColorManager(theme.LaunchpadPalette)

		assert.Equal(t, 0, cm.Value(theme.ColorOff))
		assert.Equal(t, 5, cm.Value(theme.ColorRed))
		assert.Equal(t, 21, cm.Value(theme.ColorGreen))
	})

	t.Run("should treat unknown names as off", func(t *testing.T) {
		cm := theme.NewColorManager(theme.LaunchpadPalette)
		assert.Equal(t, 0, cm.Value("nope"))
		_, err := cm.Lookup("nope")
		assert.Error(t, err)
	})

	t.Run("should fall back to on/off for monochrome devices", func(t *testing.T) {
		cm := theme.NewColorManager(nil)
		assert.Equal(t, 0, cm.Value(theme.ColorOff))
		assert.Equal(t, 127, cm.Value(theme.ColorOn))
	})

	t.Run("should keep instances independent", func(t *testing.T) {
		a := theme.NewColorManager(theme.LaunchpadPalette)
		b := theme.NewColorManager(theme.LaunchpadPalette)
		a.Register("accent", theme.RGB{255, 0, 0})

		assert.Contains(t, a.Names(), "accent")
		assert.NotContains(t, b.Names(), "accent")
	})
}

func TestPaletteLookup(t *testing.T) {
	p := &theme.Palette{Colors: []theme.RGB{{0, 0, 0}, {200, 100, 0}}}

	assert.Equal(t, theme.RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, theme.RGB{100, 50, 0}, p.Lookup(0.5))
	assert.Equal(t, theme.RGB{200, 100, 0}, p.Lookup(2))
}
