package commands

import (
	"time"

	"go-surface/control"
	"go-surface/daw"
	"go-surface/mode"
	"go-surface/scheduler"
	"go-surface/theme"
)

// View ids
const (
	ViewSession mode.ID = "session"
	ViewShift   mode.ID = "shift"
)

const blinkPeriod = 250 * time.Millisecond

// Modifiers reports which clip-editing buttons are held. Either may be nil.
type Modifiers struct {
	Delete    *control.Button
	Duplicate *control.Button
}

func held(b *control.Button) bool {
	if b == nil || !b.IsPressed() {
		return false
	}
	b.SetConsumed()
	return true
}

// SessionView is the clip launcher: columns are the tracks of the bank,
// rows are scenes, top row first
type SessionView struct {
	mode.Base
	bank   *Bank
	colors *theme.ColorManager
	sched  *scheduler.Scheduler
	mods   Modifiers
	blink  bool
}

func NewSessionView(bank *Bank, colors *theme.ColorManager, sched *scheduler.Scheduler, mods Modifiers) *SessionView {
	return &SessionView{
		Base:   mode.Base{Label: "Session"},
		bank:   bank,
		colors: colors,
		sched:  sched,
		mods:   mods,
	}
}

func cell(index int) (strip, scene int) {
	return index % daw.BankSize, index / daw.BankSize
}

func (v *SessionView) OnGridButton(index int, event control.ButtonEvent, _ int) {
	if event != control.EventDown {
		return
	}
	strip, scene := cell(index)
	track := v.bank.Track(strip)
	switch {
	case held(v.mods.Delete):
		v.bank.Model.DeleteClip(track, scene)
	case held(v.mods.Duplicate):
		v.bank.Model.DuplicateClip(track, scene)
	default:
		v.bank.Model.Select(track)
		v.bank.Model.LaunchClip(track, scene)
	}
}

// Update advances the blink phase for recording clips
func (v *SessionView) Update() {
	v.blink = v.sched.Now().UnixNano()/int64(blinkPeriod)%2 == 0
}

func (v *SessionView) GridColor(index int) int {
	strip, scene := cell(index)
	t, ok := v.bank.Model.Track(v.bank.Track(strip))
	if !ok || scene >= daw.NumScenes {
		return v.colors.Value(theme.ColorOff)
	}
	switch t.Clips[scene] {
	case daw.ClipStopped:
		return v.colors.Value(theme.ColorYellow)
	case daw.ClipPlaying:
		return v.colors.Value(theme.ColorGreen)
	case daw.ClipRecording:
		if v.blink {
			return v.colors.Value(theme.ColorRed)
		}
		return v.colors.Value(theme.ColorOff)
	}
	if t.Armed {
		return v.colors.Value(theme.ColorDim)
	}
	return v.colors.Value(theme.ColorOff)
}

// ShiftView is shown while Shift is held. The top row picks the knob mode,
// the second row selects a track of the bank and the third toggles mute.
type ShiftView struct {
	mode.Base
	bank   *Bank
	modes  *mode.Modes
	colors *theme.ColorManager
	order  []mode.ID
}

func NewShiftView(bank *Bank, modes *mode.Modes, colors *theme.ColorManager) *ShiftView {
	return &ShiftView{
		Base:   mode.Base{Label: "Shift"},
		bank:   bank,
		modes:  modes,
		colors: colors,
		order:  []mode.ID{ModeVolume, ModePan},
	}
}

func (v *ShiftView) OnGridButton(index int, event control.ButtonEvent, _ int) {
	if event != control.EventDown {
		return
	}
	strip, row := cell(index)
	switch row {
	case 0:
		if strip < len(v.order) {
			v.modes.SetActive(v.order[strip])
		}
	case 1:
		v.bank.Model.Select(v.bank.Track(strip))
	case 2:
		v.bank.Model.ToggleMute(v.bank.Track(strip))
	}
}

func (v *ShiftView) GridColor(index int) int {
	strip, row := cell(index)
	switch row {
	case 0:
		if strip >= len(v.order) {
			break
		}
		if v.modes.IsActive(v.order[strip]) {
			return v.colors.Value(theme.ColorGreen)
		}
		return v.colors.Value(theme.ColorDim)
	case 1:
		if v.bank.Model.Selected() == v.bank.Track(strip) {
			return v.colors.Value(theme.ColorBlue)
		}
		return v.colors.Value(theme.ColorDim)
	case 2:
		if t, ok := v.bank.Model.Track(v.bank.Track(strip)); ok && t.Muted {
			return v.colors.Value(theme.ColorOrange)
		}
		return v.colors.Value(theme.ColorDim)
	}
	return v.colors.Value(theme.ColorOff)
}
