package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-surface/config"
	"go-surface/daw"
	"go-surface/device"
	"go-surface/host"
	"go-surface/theme"
)

func newMonitor(t *testing.T) (*Model, *device.Virtual) {
	t.Helper()
	dev := device.NewVirtual("monitor")
	m, err := NewModel(host.New(daw.New(), 30), dev, config.DefaultLayout(config.ControllerVirtual), theme.New(nil))
	require.NoError(t, err)
	return m, dev
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drain(dev *device.Virtual) []device.Event {
	var out []device.Event
	for {
		select {
		case ev := <-dev.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestMonitorLayout(t *testing.T) {
	m, _ := newMonitor(t)
	assert.Len(t, m.pads, 64)
	assert.Len(t, m.knobs, 9)
	assert.Len(t, m.displays, 2)
	assert.Equal(t, device.Note(1, 20), m.roles["play"])
}

func TestMonitorRoleKeys(t *testing.T) {
	m, dev := newMonitor(t)

	m.Update(runes("p"))
	assert.Equal(t, []device.Event{
		{Address: device.Note(1, 20), Value: pressVel},
		{Address: device.Note(1, 20), Value: 0},
	}, drain(dev))

	m.Update(runes("?"))
	assert.Empty(t, drain(dev))
	assert.Contains(t, m.View(), "bank left/right")
}

func TestMonitorGridCursor(t *testing.T) {
	m, dev := newMonitor(t)

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 9, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	events := drain(dev)
	require.Len(t, events, 2)
	assert.Equal(t, device.Note(9, 36+9), events[0].Address)
}

func TestMonitorKnobs(t *testing.T) {
	m, dev := newMonitor(t)

	m.Update(runes("+"))
	m.Update(runes("-"))
	assert.Equal(t, []device.Event{
		{Address: device.CC(0, 16), Value: 1},
		{Address: device.CC(0, 16), Value: 127},
	}, drain(dev))

	for range 20 {
		m.Update(runes(">"))
	}
	assert.Equal(t, 8, m.knobSel)
	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, []device.Event{{Address: device.Pitchbend(8), Value: 8 * 128}}, drain(dev))
}

func TestMonitorView(t *testing.T) {
	m, dev := newMonitor(t)
	require.NoError(t, dev.SendText(device.Text(8), "Vol 1:100"))
	require.NoError(t, dev.SendText(device.Text(0), "Trk 1"))

	view := m.View()
	assert.Contains(t, view, "STOP")
	assert.Contains(t, view, "Vol 1:100")
	assert.Contains(t, view, "Trk 1")
	assert.Contains(t, view, "play")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
