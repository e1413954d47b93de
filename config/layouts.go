package config

import (
	"fmt"
)

// Launchpad X programmer-mode mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  notes 19, 29, ... 89
// Top row:   CC 91-98, lit through notes 91-98

var launchpadTopRoles = [8]string{"up", "down", "bank-left", "bank-right", "mode-cycle", "shift", "select", "record"}

// side column, top to bottom
var launchpadSideRoles = [8]string{"play", "stop", "metronome", "tap-tempo", "undo", "mute", "solo", "arm"}

// DefaultLayout returns the built-in table for a controller type
func DefaultLayout(t ControllerType) Layout {
	switch t {
	case ControllerLaunchpadX:
		return launchpadLayout()
	case ControllerGeneric:
		l := genericLayout("Generic")
		l.Type = ControllerGeneric
		l.Transport = TransportMIDI
		return l
	default:
		return genericLayout("Virtual")
	}
}

func launchpadLayout() Layout {
	l := Layout{
		Name:        "Launchpad X",
		Type:        ControllerLaunchpadX,
		Transport:   TransportMIDI,
		PortName:    "Launchpad X LPX MIDI",
		AutoConnect: true,
		Palette:     "launchpad",
		Roles:       make(map[string]string),
		Settings:    map[string]string{"behavior_on_stop": "move-play-cursor"},
		Timing:      TimingConfig{LongPressMS: 300, Adaptive: true, DoubleClickMS: 300},
	}

	// grid index 0 is the top-left pad
	for row := 7; row >= 0; row-- {
		for col := 0; col < 8; col++ {
			l.Buttons = append(l.Buttons, ButtonConfig{
				ID:      fmt.Sprintf("pad-%d-%d", row, col),
				Address: fmt.Sprintf("note:0:%d", (row+1)*10+col+1),
				Group:   GroupGrid,
			})
		}
	}
	for col, role := range launchpadTopRoles {
		id := fmt.Sprintf("top-%d", col)
		l.Buttons = append(l.Buttons, ButtonConfig{
			ID:      id,
			Address: fmt.Sprintf("cc:0:%d", 91+col),
			Light:   fmt.Sprintf("note:0:%d", 91+col),
		})
		l.Roles[role] = id
	}
	for i, role := range launchpadSideRoles {
		id := fmt.Sprintf("side-%d", i)
		l.Buttons = append(l.Buttons, ButtonConfig{
			ID:      id,
			Address: fmt.Sprintf("note:0:%d", (8-i)*10+9),
		})
		l.Roles[role] = id
	}
	return l
}

var genericTransport = []string{"play", "stop", "record", "overdub", "shift", "metronome", "tap-tempo", "bank-left", "bank-right", "mode-cycle", "mute", "solo", "arm", "undo", "redo", "select"}

// genericLayout has eight touch-sensitive knobs with rings and labels, an
// 8x8 pad grid on channel 10 and a transport section on channel 2
func genericLayout(name string) Layout {
	l := Layout{
		Name:        name,
		Type:        ControllerVirtual,
		Transport:   TransportVirtual,
		AutoConnect: true,
		Roles:       make(map[string]string),
		Settings:    map[string]string{"behavior_on_stop": "move-play-cursor"},
		Timing:      TimingConfig{LongPressMS: 300, Adaptive: true, DoubleClickMS: 300},
	}

	for i := 0; i < 64; i++ {
		l.Buttons = append(l.Buttons, ButtonConfig{
			ID:      fmt.Sprintf("pad-%d", i),
			Address: fmt.Sprintf("note:9:%d", 36+i),
			Group:   GroupGrid,
		})
	}
	for i, role := range genericTransport {
		id := "btn-" + role
		l.Buttons = append(l.Buttons, ButtonConfig{
			ID:      id,
			Address: fmt.Sprintf("note:1:%d", 20+i),
		})
		l.Roles[role] = id
	}
	for i := 0; i < 8; i++ {
		l.Continuous = append(l.Continuous, ContinuousConfig{
			ID:       fmt.Sprintf("knob-%d", i),
			Address:  fmt.Sprintf("cc:0:%d", 16+i),
			Encoding: "relative",
			Relative: "twos-complement",
			Touch:    fmt.Sprintf("note:0:%d", i),
			Ring:     fmt.Sprintf("cc:0:%d", 16+i),
			Display:  fmt.Sprintf("text:%d", i),
		})
	}
	l.Continuous = append(l.Continuous, ContinuousConfig{
		ID:       "master",
		Address:  "pb:8",
		Encoding: "pitchbend",
	})
	l.Displays = []DisplayConfig{
		{ID: "mode-name", Address: "text:8", Source: "mode"},
		{ID: "view-name", Address: "text:9", Source: "view"},
	}
	return l
}
