package mode

import (
	"go-surface/control"
)

// ID names a mode or a view
type ID string

// Mode owns the knobs, faders and their rings and display cells for one page.
// OnKnobValue gets absolute values in 0..limit, the knob's own range.
type Mode interface {
	Handler
	OnKnobValue(index, value, limit int)
	OnKnobTouch(index int, event control.ButtonEvent)
	KnobValue(index int) int
	KnobLabel(index int) string
}

// ParameterMode is a Mode whose knobs drive host parameters directly. A knob
// with a parameter is bound to it while the mode is current, so pickup
// (take-over) applies. The parameter works in 0..limit.
type ParameterMode interface {
	Mode
	KnobParameter(index, limit int) (control.Parameter, bool)
}

// View owns the pad grid for one page
type View interface {
	Handler
	OnGridButton(index int, event control.ButtonEvent, velocity int)
	GridColor(index int) int
}

// Base gives a handler a name and no-op lifecycle hooks
type Base struct {
	Label string
}

func (b Base) Name() string  { return b.Label }
func (b Base) OnActivate()   {}
func (b Base) OnDeactivate() {}

// Modes and Views are the two managers a surface carries
type (
	Modes = Manager[ID, Mode]
	Views = Manager[ID, View]
)

// NewModes creates the knob/fader page registry
func NewModes() *Modes { return NewManager[ID, Mode]("modes") }

// NewViews creates the pad page registry
func NewViews() *Views { return NewManager[ID, View]("views") }
