package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-surface/config"
)

const sample = `
update_hz: 60
surfaces:
  - name: desk
    transport: virtual
    buttons:
      - id: play
        address: note:1:20
      - id: pad-0
        address: note:9:36
        group: grid
    continuous:
      - id: knob-0
        address: cc:0:16
        fine: cc:0:48
        ring: cc:0:16
    roles:
      play: play
`

func TestParse(t *testing.T) {
	t.Run("should decode a layout and apply defaults", func(t *testing.T) {
		cfg, err := config.Parse([]byte(sample))
		require.NoError(t, err)

		assert.Equal(t, 60, cfg.UpdateHz)
		require.Len(t, cfg.Surfaces, 1)
		desk := cfg.Surfaces[0]
		assert.Equal(t, config.TransportVirtual, desk.Transport)
		assert.Equal(t, 300, desk.Timing.LongPressMS)
		assert.Equal(t, "play", desk.Roles["play"])
		assert.Equal(t, "cc:0:48", desk.Continuous[0].Fine)
	})

	t.Run("should reject duplicate control ids", func(t *testing.T) {
		_, err := config.Parse([]byte(`
surfaces:
  - name: desk
    buttons:
      - {id: a, address: "note:0:1"}
      - {id: a, address: "note:0:2"}
`))
		assert.ErrorContains(t, err, `"a" declared twice`)
	})

	t.Run("should reject bad addresses", func(t *testing.T) {
		_, err := config.Parse([]byte(`
surfaces:
  - name: desk
    buttons:
      - {id: a, address: "sysex:1"}
`))
		assert.Error(t, err)
	})

	t.Run("should require a serial path for serial surfaces", func(t *testing.T) {
		_, err := config.Parse([]byte(`
surfaces:
  - name: desk
    transport: serial
`))
		assert.ErrorContains(t, err, "serial_path")
	})

	t.Run("should only allow absolute faders to be motorized", func(t *testing.T) {
		_, err := config.Parse([]byte(`
surfaces:
  - name: desk
    continuous:
      - {id: fader, address: "pb:0", motorized: true}
`))
		require.NoError(t, err)

		_, err = config.Parse([]byte(`
surfaces:
  - name: desk
    continuous:
      - {id: knob, address: "cc:0:16", encoding: relative, motorized: true}
`))
		assert.ErrorContains(t, err, "motorized")
	})
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "surfaces.yaml")
	cfg := config.DefaultConfig()
	cfg.AddSurface(config.DefaultLayout(config.ControllerVirtual))

	require.NoError(t, cfg.Save(path))
	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestDefaultLayouts(t *testing.T) {
	for _, typ := range []config.ControllerType{config.ControllerLaunchpadX, config.ControllerGeneric, config.ControllerVirtual} {
		l := config.DefaultLayout(typ)
		assert.NoError(t, l.Validate(), typ)
	}

	lp := config.DefaultLayout(config.ControllerLaunchpadX)
	grid := 0
	for _, b := range lp.Buttons {
		if b.Group == config.GroupGrid {
			grid++
		}
	}
	assert.Equal(t, 64, grid)
	assert.Equal(t, "note:0:81", lp.Buttons[0].Address)
}

func TestAddAndFind(t *testing.T) {
	cfg := &config.Config{UpdateHz: 30}
	cfg.AddSurface(config.Layout{Name: "a", PortName: "Port A", AutoConnect: true})
	cfg.AddSurface(config.Layout{Name: "b", PortName: "Port B"})
	cfg.AddSurface(config.Layout{Name: "a", PortName: "Port A2", AutoConnect: true})

	assert.Len(t, cfg.Surfaces, 2)
	assert.Nil(t, cfg.FindSurface("Port A"))
	require.NotNil(t, cfg.FindSurface("Port A2"))
	assert.Len(t, cfg.AutoConnectSurfaces(), 1)
}
