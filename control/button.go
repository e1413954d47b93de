package control

import (
	"time"

	"go-surface/debug"
	"go-surface/scheduler"
)

// ButtonState is where a button sits in its press cycle
type ButtonState int

const (
	StateIdle ButtonState = iota
	StateDown
	StateLong
	StateUp
)

func (s ButtonState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDown:
		return "DOWN"
	case StateLong:
		return "LONG"
	case StateUp:
		return "UP"
	default:
		return "?"
	}
}

// Listener observes button events without owning them
type Listener func(event ButtonEvent, velocity int)

// Button is the press/long-press/release machine for one physical button.
// It is also used as the touch machine of continuous controls.
type Button struct {
	id     string
	sched  *scheduler.Scheduler
	timing *TimeoutOptimizer

	state     ButtonState
	consumed  bool
	velocity  int
	pressedAt time.Time
	cycle     uint64

	command   ButtonCommand
	listeners map[ButtonEvent][]Listener
}

// NewButton creates an unbound button. timing may be shared between all
// buttons of a surface; nil uses the fixed nominal delay.
func NewButton(id string, sched *scheduler.Scheduler, timing *TimeoutOptimizer) *Button {
	return &Button{
		id:        id,
		sched:     sched,
		timing:    timing,
		listeners: make(map[ButtonEvent][]Listener),
	}
}

func (b *Button) ID() string { return b.id }

// Bind sets the command (nil unbinds)
func (b *Button) Bind(cmd ButtonCommand) {
	b.command = cmd
}

// Command returns the bound command or nil
func (b *Button) Command() ButtonCommand { return b.command }

// IsBound reports whether a command is attached
func (b *Button) IsBound() bool { return b.command != nil }

// AddListener registers a passive observer for event
func (b *Button) AddListener(event ButtonEvent, l Listener) {
	b.listeners[event] = append(b.listeners[event], l)
}

func (b *Button) State() ButtonState { return b.state }

// IsPressed is true while DOWN or LONG
func (b *Button) IsPressed() bool {
	return b.state == StateDown || b.state == StateLong
}

func (b *Button) IsLongPressed() bool { return b.state == StateLong }

// Velocity returns the velocity of the current or last press
func (b *Button) Velocity() int { return b.velocity }

// SetConsumed claims the coming release so the bound command does not get
// its UP event. Listeners still see it.
func (b *Button) SetConsumed() {
	if b.IsPressed() {
		b.consumed = true
	}
}

func (b *Button) IsConsumed() bool { return b.consumed }

// Press starts a press cycle. Velocity 0 is a ghost press and is ignored.
func (b *Button) Press(velocity int) {
	if velocity <= 0 {
		return
	}
	if velocity > 127 {
		velocity = 127
	}

	b.cycle++
	b.state = StateDown
	b.consumed = false
	b.velocity = velocity
	if b.sched != nil {
		b.pressedAt = b.sched.Now()
	}

	b.fire(EventDown, velocity)
	b.scheduleLongPress()
}

// longPressCheck carries only what the check needs: the press cycle it
// belongs to.
type longPressCheck struct {
	button *Button
	cycle  uint64
}

func (c longPressCheck) guard() bool {
	return c.button.cycle == c.cycle && c.button.state == StateDown
}

func (c longPressCheck) run() {
	b := c.button
	b.state = StateLong
	b.fire(EventLong, b.velocity)
}

func (b *Button) scheduleLongPress() {
	if b.sched == nil {
		return
	}
	check := longPressCheck{button: b, cycle: b.cycle}
	b.sched.Schedule(scheduler.Task{
		Name:  "long-press " + b.id,
		Delay: b.timing.Timeout(),
		Guard: check.guard,
		Run:   check.run,
	})
}

// Release ends the press cycle. Without an open cycle (never pressed, or
// cleared) it does nothing.
func (b *Button) Release() {
	if !b.IsPressed() {
		return
	}

	wasLong := b.state == StateLong
	b.state = StateUp

	if !wasLong && b.sched != nil && b.timing != nil {
		b.timing.RecordClick(b.sched.Now().Sub(b.pressedAt))
	}

	if b.command != nil && !b.consumed {
		b.command.Execute(EventUp, b.velocity)
	} else if b.consumed {
		debug.Log("control", "%s: UP consumed", b.id)
	}
	b.notify(EventUp, b.velocity)
}

// ClearState drops the current press cycle so a pending long-press check
// and the following release become no-ops.
func (b *Button) ClearState() {
	b.state = StateIdle
	b.consumed = false
	b.cycle++
}

// Trigger runs a full press/release cycle, for software-driven presses
func (b *Button) Trigger(velocity int) {
	b.Press(velocity)
	b.Release()
}

func (b *Button) fire(event ButtonEvent, velocity int) {
	if b.command != nil {
		b.command.Execute(event, velocity)
	}
	b.notify(event, velocity)
}

func (b *Button) notify(event ButtonEvent, velocity int) {
	for _, l := range b.listeners[event] {
		l(event, velocity)
	}
}
