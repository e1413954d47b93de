package commands

import (
	"go-surface/control"
	"go-surface/daw"
	"go-surface/debug"
	"go-surface/scheduler"
	"go-surface/surface"
	"go-surface/theme"
)

// Play toggles the transport. Stopping follows the surface's
// behavior_on_stop setting.
type Play struct {
	Model    *daw.Model
	Settings surface.Settings
}

func (c *Play) Execute(event control.ButtonEvent, _ int) {
	if event != control.EventDown {
		return
	}
	behavior := daw.StopBehavior(c.Settings.Get(surface.SettingBehaviorOnStop, string(daw.StopMovePlayCursor)))
	playing := c.Model.TogglePlay(behavior)
	debug.Log("transport", "play=%v (stop behaviour %s)", playing, behavior)
}

func (c *Play) LightColor() string {
	if c.Model.IsPlaying() {
		return theme.ColorGreen
	}
	return theme.ColorDim
}

// Stop halts the transport
type Stop struct {
	Model    *daw.Model
	Settings surface.Settings
}

func (c *Stop) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.Model.Stop(daw.StopBehavior(c.Settings.Get(surface.SettingBehaviorOnStop, string(daw.StopMovePlayCursor))))
	}
}

func (c *Stop) LightColor() string {
	if c.Model.IsPlaying() {
		return theme.ColorDim
	}
	return theme.ColorOn
}

// Record toggles arrangement recording, or launcher overdub while Shift is
// held. The flip_record setting swaps the two.
type Record struct {
	Model    *daw.Model
	Settings surface.Settings
	Shift    *control.Button
}

func (c *Record) Execute(event control.ButtonEvent, _ int) {
	if event != control.EventDown {
		return
	}
	shifted := c.Shift != nil && c.Shift.IsPressed()
	if shifted {
		c.Shift.SetConsumed()
	}
	if shifted != c.Settings.Bool(surface.SettingFlipRecord, false) {
		c.Model.ToggleOverdub()
		return
	}
	c.Model.ToggleRecord()
}

func (c *Record) LightColor() string {
	snap := c.Model.Snapshot()
	switch {
	case snap.Recording:
		return theme.ColorRed
	case snap.Overdub:
		return theme.ColorOrange
	}
	return theme.ColorDim
}

// Overdub toggles launcher overdub
type Overdub struct {
	Model *daw.Model
}

func (c *Overdub) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.Model.ToggleOverdub()
	}
}

func (c *Overdub) LightColor() string {
	if c.Model.Snapshot().Overdub {
		return theme.ColorOrange
	}
	return theme.ColorDim
}

// Metronome toggles the click on every press
type Metronome struct {
	Model *daw.Model
}

func (c *Metronome) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.Model.ToggleMetronome()
	}
}

func (c *Metronome) LightColor() string {
	if c.Model.Snapshot().Metronome {
		return theme.ColorYellow
	}
	return theme.ColorDim
}

// TapTempo feeds presses to the tempo estimator using the surface clock
type TapTempo struct {
	Model *daw.Model
	Sched *scheduler.Scheduler
}

func (c *TapTempo) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		bpm := c.Model.Tap(c.Sched.Now())
		debug.Log("transport", "tap tempo %.1f", bpm)
	}
}

// Undo and Redo walk the model history
type Undo struct {
	Model *daw.Model
	Redo  bool
}

func (c *Undo) Execute(event control.ButtonEvent, _ int) {
	if event != control.EventDown {
		return
	}
	var action string
	var ok bool
	if c.Redo {
		action, ok = c.Model.Redo()
	} else {
		action, ok = c.Model.Undo()
	}
	if ok {
		debug.Log("history", "redo=%v %s", c.Redo, action)
	}
}
