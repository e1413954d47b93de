package commands

import (
	"time"

	"go-surface/control"
	"go-surface/daw"
	"go-surface/debug"
	"go-surface/scheduler"
	"go-surface/theme"
)

// ReselectDelay is how long after a bank scroll the selection follows
const ReselectDelay = 75 * time.Millisecond

// Bank is the window of daw.BankSize tracks a surface shows
type Bank struct {
	Model  *daw.Model
	Sched  *scheduler.Scheduler
	offset int
}

// Offset returns the first track of the window
func (b *Bank) Offset() int { return b.offset }

// Track maps a strip index to a model track
func (b *Bank) Track(index int) int { return b.offset + index }

// Scroll moves the window by whole banks and moves the selection along,
// keeping its strip. The selection change is deferred so a quick series of
// scrolls only selects once.
func (b *Bank) Scroll(delta int) bool {
	next := min(max(b.offset+delta*daw.BankSize, 0), daw.NumTracks-daw.BankSize)
	if next == b.offset {
		return false
	}
	selected := b.Model.Selected()
	strip := selected - b.offset
	if strip < 0 || strip >= daw.BankSize {
		strip = 0
	}
	b.offset = next

	task := reselectTask{model: b.Model, seen: selected, target: next + strip}
	b.Sched.Schedule(scheduler.Task{
		Name:  "reselect track",
		Delay: ReselectDelay,
		Guard: task.guard,
		Run:   task.run,
	})
	return true
}

// reselectTask carries the selection seen at scroll time. If the user picks
// another track before it fires it does nothing.
type reselectTask struct {
	model  *daw.Model
	seen   int
	target int
}

func (t reselectTask) guard() bool { return t.model.Selected() == t.seen }

func (t reselectTask) run() {
	t.model.Select(t.target)
	debug.Log("tracks", "reselect track %d", t.target)
}

// BankScroll is the bank left/right command
type BankScroll struct {
	Bank  *Bank
	Delta int
}

func (c *BankScroll) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.Bank.Scroll(c.Delta)
	}
}

func (c *BankScroll) LightColor() string {
	next := c.Bank.offset + c.Delta*daw.BankSize
	if next < 0 || next > daw.NumTracks-daw.BankSize {
		return theme.ColorOff
	}
	return theme.ColorDim
}

// SelectStep moves the track selection by Delta
type SelectStep struct {
	Model *daw.Model
	Delta int
}

func (c *SelectStep) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.Model.Select(c.Model.Selected() + c.Delta)
	}
}

// TempoStep nudges the tempo by Delta BPM, by ten while held long
type TempoStep struct {
	Model *daw.Model
	Delta float64
}

func (c *TempoStep) Execute(event control.ButtonEvent, _ int) {
	switch event {
	case control.EventDown:
		c.Model.SetTempo(c.Model.Tempo() + c.Delta)
	case control.EventLong:
		c.Model.SetTempo(c.Model.Tempo() + 10*c.Delta)
	}
}

// TrackFlag names a per-track toggle
type TrackFlag int

const (
	FlagMute TrackFlag = iota
	FlagSolo
	FlagArm
)

// TrackToggle flips a flag on the selected track
type TrackToggle struct {
	Model *daw.Model
	Flag  TrackFlag
}

func (c *TrackToggle) Execute(event control.ButtonEvent, _ int) {
	if event != control.EventDown {
		return
	}
	toggleFlag(c.Model, c.Flag, c.Model.Selected())
}

func (c *TrackToggle) LightColor() string {
	t, _ := c.Model.Track(c.Model.Selected())
	if flagSet(t, c.Flag) {
		return flagColor(c.Flag)
	}
	return theme.ColorDim
}

func toggleFlag(m *daw.Model, flag TrackFlag, track int) {
	switch flag {
	case FlagMute:
		m.ToggleMute(track)
	case FlagSolo:
		m.ToggleSolo(track)
	case FlagArm:
		m.ToggleArm(track)
	}
}

func flagSet(t daw.Track, flag TrackFlag) bool {
	switch flag {
	case FlagMute:
		return t.Muted
	case FlagSolo:
		return t.Solo
	case FlagArm:
		return t.Armed
	}
	return false
}

func flagColor(flag TrackFlag) string {
	switch flag {
	case FlagMute:
		return theme.ColorOrange
	case FlagSolo:
		return theme.ColorBlue
	}
	return theme.ColorRed
}
