package commands

import (
	"fmt"
	"strconv"

	"go-surface/control"
	"go-surface/daw"
	"go-surface/mode"
)

// Mode ids
const (
	ModeVolume mode.ID = "volume"
	ModePan    mode.ID = "pan"
)

// MixerMode maps the first daw.BankSize knobs onto one mixer parameter of
// the tracks in the bank. A ninth control (usually a 14-bit fader) drives
// the selected track.
type MixerMode struct {
	mode.Base
	bank  *Bank
	short string
	get   func(daw.Track) int
	set   func(m *daw.Model, track, value int)
}

// NewVolumeMode creates the track volume page
func NewVolumeMode(bank *Bank) *MixerMode {
	return &MixerMode{
		Base:  mode.Base{Label: "Volume"},
		bank:  bank,
		short: "Vol",
		get:   func(t daw.Track) int { return t.Volume },
		set:   (*daw.Model).SetVolume,
	}
}

// NewPanMode creates the track pan page
func NewPanMode(bank *Bank) *MixerMode {
	return &MixerMode{
		Base:  mode.Base{Label: "Pan"},
		bank:  bank,
		short: "Pan",
		get:   func(t daw.Track) int { return t.Pan },
		set:   (*daw.Model).SetPan,
	}
}

func (m *MixerMode) track(index int) int {
	if index == daw.BankSize {
		return m.bank.Model.Selected()
	}
	if index < 0 || index > daw.BankSize {
		return -1
	}
	return m.bank.Track(index)
}

func (m *MixerMode) OnKnobValue(index, value, limit int) {
	track := m.track(index)
	if track < 0 {
		return
	}
	m.set(m.bank.Model, track, scale(value, limit, daw.MaxValue))
}

// KnobParameter exposes the strip under a knob as a parameter in 0..limit
func (m *MixerMode) KnobParameter(index, limit int) (control.Parameter, bool) {
	if m.track(index) < 0 || limit <= 0 {
		return nil, false
	}
	return mixerParam{mode: m, index: index, limit: limit}, true
}

// mixerParam is one strip's value scaled to a knob's range. The strip is
// looked up on every call so the selected-track fader follows selection.
type mixerParam struct {
	mode  *MixerMode
	index int
	limit int
}

func (p mixerParam) Name() string {
	return fmt.Sprintf("%s %d", p.mode.short, p.mode.track(p.index)+1)
}

func (p mixerParam) Value() int {
	return scale(p.mode.KnobValue(p.index), daw.MaxValue, p.limit)
}

func (p mixerParam) SetValue(value int) {
	p.mode.OnKnobValue(p.index, value, p.limit)
}

func (p mixerParam) DisplayedValue() string {
	return strconv.Itoa(p.mode.KnobValue(p.index))
}

// scale maps value from 0..from onto 0..to, rounding to nearest
func scale(value, from, to int) int {
	if from <= 0 {
		return 0
	}
	value = min(max(value, 0), from)
	return (value*to + from/2) / from
}

// OnKnobTouch selects the touched strip's track
func (m *MixerMode) OnKnobTouch(index int, event control.ButtonEvent) {
	if event == control.EventDown && index < daw.BankSize {
		m.bank.Model.Select(m.bank.Track(index))
	}
}

func (m *MixerMode) KnobValue(index int) int {
	t, ok := m.bank.Model.Track(m.track(index))
	if !ok {
		return 0
	}
	return m.get(t)
}

func (m *MixerMode) KnobLabel(index int) string {
	track := m.track(index)
	t, ok := m.bank.Model.Track(track)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %d:%d", m.short, track+1, m.get(t))
}
