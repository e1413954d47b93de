package control

import (
	"go-surface/scheduler"
)

// Encoding is how a continuous control reports its position
type Encoding int

const (
	Absolute Encoding = iota
	Relative
	Pitchbend
)

func (e Encoding) String() string {
	switch e {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	case Pitchbend:
		return "pitchbend"
	default:
		return "?"
	}
}

// Value ranges
const (
	MaxValue7  = 127
	MaxValue14 = 16383
)

// Continuous is a knob, fader, encoder or pitchbend strip. Its value binding
// is one of a command, a pitchbend command or a parameter; binding one
// clears the others. Touch sensors run through their own Button machine.
type Continuous struct {
	id       string
	encoding Encoding
	relative RelativeEncoding

	command   ContinuousCommand
	pitchbend PitchbendCommand
	param     Parameter

	touch *Button

	hiRes  bool
	coarse int

	takeoverDisabled bool
	engaged          bool
	lastHardware     int
	hasHardware      bool
	lastSet          int

	value int
}

// NewContinuous creates an unbound continuous control
func NewContinuous(id string, encoding Encoding, sched *scheduler.Scheduler, timing *TimeoutOptimizer) *Continuous {
	return &Continuous{
		id:       id,
		encoding: encoding,
		relative: RelativeTwosComplement,
		touch:    NewButton(id+"/touch", sched, timing),
	}
}

func (c *Continuous) ID() string { return c.id }

func (c *Continuous) Encoding() Encoding { return c.encoding }

// SetRelativeEncoding selects how relative deltas are decoded
func (c *Continuous) SetRelativeEncoding(r RelativeEncoding) {
	c.relative = r
}

// Bind attaches a value command
func (c *Continuous) Bind(cmd ContinuousCommand) {
	c.command = cmd
	c.pitchbend = nil
	c.param = nil
}

// BindPitchbend attaches a pitchbend command
func (c *Continuous) BindPitchbend(cmd PitchbendCommand) {
	c.pitchbend = cmd
	c.command = nil
	c.param = nil
}

// BindParameter drives p directly
func (c *Continuous) BindParameter(p Parameter) {
	c.param = p
	c.command = nil
	c.pitchbend = nil
	c.engaged = false
}

// BindTouch attaches the touch command
func (c *Continuous) BindTouch(cmd ButtonCommand) {
	c.touch.Bind(cmd)
}

// Touch exposes the touch machine (listeners, state)
func (c *Continuous) Touch() *Button { return c.touch }

// Parameter returns the bound parameter or nil
func (c *Continuous) Parameter() Parameter { return c.param }

// IsBound reports whether any value binding is present
func (c *Continuous) IsBound() bool {
	return c.command != nil || c.pitchbend != nil || c.param != nil
}

// EnableHighResolution switches an absolute control to 14-bit values made of
// a coarse and a fine 7-bit half
func (c *Continuous) EnableHighResolution(on bool) {
	c.hiRes = on
}

func (c *Continuous) IsHighResolution() bool { return c.hiRes }

// DisableTakeOver trusts the hardware position immediately instead of
// waiting for it to pick up the parameter's current value
func (c *Continuous) DisableTakeOver(disabled bool) {
	c.takeoverDisabled = disabled
}

// Value returns the last logical value received
func (c *Continuous) Value() int { return c.value }

// MaxValue returns the top of the logical range
func (c *Continuous) MaxValue() int {
	if c.hiRes || c.encoding == Pitchbend {
		return MaxValue14
	}
	return MaxValue7
}

// HandleValue processes a 7-bit value message
func (c *Continuous) HandleValue(raw int) {
	switch c.encoding {
	case Relative:
		delta := c.relative.Decode(raw)
		if delta == 0 {
			return
		}
		c.dispatchRelative(delta)
	case Pitchbend:
		c.HandlePitchbend(clamp(raw, 0, MaxValue7) << 7)
	default:
		if c.hiRes {
			c.HandleCoarse(raw)
			return
		}
		c.dispatchAbsolute(clamp(raw, 0, MaxValue7))
	}
}

// HandleCoarse stores the high 7 bits of a 14-bit value. The value is
// emitted when the fine half arrives.
func (c *Continuous) HandleCoarse(raw int) {
	c.coarse = clamp(raw, 0, MaxValue7)
}

// HandleFine completes a 14-bit value with its low 7 bits
func (c *Continuous) HandleFine(raw int) {
	value := c.coarse<<7 | clamp(raw, 0, MaxValue7)
	c.dispatchAbsolute(value)
}

// HandlePitchbend processes an already combined 14-bit value
func (c *Continuous) HandlePitchbend(value int) {
	value = clamp(value, 0, MaxValue14)
	c.value = value
	if c.pitchbend != nil {
		c.pitchbend.Pitchbend(value)
		return
	}
	c.dispatchAbsolute(value)
}

// HandleTouch feeds the touch sensor
func (c *Continuous) HandleTouch(touched bool, velocity int) {
	if touched {
		if velocity <= 0 {
			velocity = MaxValue7
		}
		c.touch.Press(velocity)
		return
	}
	c.touch.Release()
}

func (c *Continuous) dispatchAbsolute(value int) {
	c.value = value
	if c.command != nil {
		c.command.Execute(value)
		return
	}
	if c.param != nil {
		c.applyParameter(value)
	}
}

func (c *Continuous) dispatchRelative(delta int) {
	if c.command != nil {
		c.command.Execute(delta)
		return
	}
	if c.param != nil {
		next := clamp(c.param.Value()+delta, 0, c.MaxValue())
		c.value = next
		c.param.SetValue(next)
	}
}

// applyParameter implements take-over: until the hardware crosses the
// parameter's current value, moves are ignored. An external change of the
// parameter drops the pickup again.
func (c *Continuous) applyParameter(value int) {
	prev, hadPrev := c.lastHardware, c.hasHardware
	c.lastHardware, c.hasHardware = value, true

	if c.takeoverDisabled {
		c.set(value)
		return
	}

	current := c.param.Value()
	if c.engaged && current != c.lastSet {
		c.engaged = false
	}
	if !c.engaged {
		switch {
		case value == current:
			c.engaged = true
		case hadPrev && ((prev <= current && current <= value) || (value <= current && current <= prev)):
			c.engaged = true
		default:
			return
		}
	}
	c.set(value)
}

// lastSet is read back so a parameter that quantises values is not taken
// for an external change
func (c *Continuous) set(value int) {
	c.param.SetValue(value)
	c.lastSet = c.param.Value()
}

// IsEngaged reports whether take-over has picked up the parameter
func (c *Continuous) IsEngaged() bool { return c.engaged || c.takeoverDisabled }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
