// Package control turns raw device events into semantic control events
// (press, long press, release, touch, value change) and hands them to bound
// commands.
package control

// ButtonEvent is the semantic event a button command receives
type ButtonEvent int

const (
	EventDown ButtonEvent = iota
	EventLong
	EventUp
)

func (e ButtonEvent) String() string {
	switch e {
	case EventDown:
		return "DOWN"
	case EventLong:
		return "LONG"
	case EventUp:
		return "UP"
	default:
		return "?"
	}
}

// ButtonCommand receives button (and touch) events with the press velocity
type ButtonCommand interface {
	Execute(event ButtonEvent, velocity int)
}

// ButtonFunc adapts a function to ButtonCommand
type ButtonFunc func(event ButtonEvent, velocity int)

func (f ButtonFunc) Execute(event ButtonEvent, velocity int) { f(event, velocity) }

// OnDown wraps fn so it only runs on EventDown
func OnDown(fn func(velocity int)) ButtonCommand {
	return ButtonFunc(func(event ButtonEvent, velocity int) {
		if event == EventDown {
			fn(velocity)
		}
	})
}

// OnUp wraps fn so it only runs on EventUp
func OnUp(fn func()) ButtonCommand {
	return ButtonFunc(func(event ButtonEvent, _ int) {
		if event == EventUp {
			fn()
		}
	})
}

// ContinuousCommand receives absolute values or relative deltas
type ContinuousCommand interface {
	Execute(value int)
}

// ContinuousFunc adapts a function to ContinuousCommand
type ContinuousFunc func(value int)

func (f ContinuousFunc) Execute(value int) { f(value) }

// PitchbendCommand receives combined 14-bit pitchbend values (0..16383)
type PitchbendCommand interface {
	Pitchbend(value int)
}

// PitchbendFunc adapts a function to PitchbendCommand
type PitchbendFunc func(value int)

func (f PitchbendFunc) Pitchbend(value int) { f(value) }

// Parameter is a host value a continuous control can drive directly. It
// supplies display text and receives changed values, both in the control's
// value range.
type Parameter interface {
	Name() string
	Value() int
	SetValue(value int)
	DisplayedValue() string
}
