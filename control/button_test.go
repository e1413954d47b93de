package control_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-surface/control"
	"go-surface/scheduler"
)

type recorded struct {
	event    control.ButtonEvent
	velocity int
}

type recorder struct {
	events []recorded
}

func (r *recorder) Execute(event control.ButtonEvent, velocity int) {
	r.events = append(r.events, recorded{event, velocity})
}

func (r *recorder) kinds() []control.ButtonEvent {
	out := []control.ButtonEvent{}
	for _, e := range r.events {
		out = append(out, e.event)
	}
	return out
}

func newButton(t *testing.T) (*control.Button, *recorder, *scheduler.ManualClock, *scheduler.Scheduler) {
	t.Helper()
	clock := scheduler.NewManualClock()
	sched := scheduler.New(clock)
	b := control.NewButton("play", sched, nil)
	rec := &recorder{}
	b.Bind(rec)
	return b, rec, clock, sched
}

func TestButtonPress(t *testing.T) {
	t.Run("should ignore ghost presses", func(t *testing.T) {
		b, rec, _, sched := newButton(t)
		downs := 0
		b.AddListener(control.EventDown, func(control.ButtonEvent, int) { downs++ })

		b.Press(0)

		assert.Equal(t, control.StateIdle, b.State())
		assert.Empty(t, rec.events)
		assert.Equal(t, 0, downs)
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("should fire DOWN then UP for a quick click", func(t *testing.T) {
		b, rec, clock, sched := newButton(t)

		b.Press(100)
		clock.Advance(50 * time.Millisecond)
		b.Release()

		assert.Equal(t, []recorded{{control.EventDown, 100}, {control.EventUp, 100}}, rec.events)

		clock.Advance(time.Second)
		assert.Equal(t, 0, sched.RunDue())
		assert.Equal(t, 1, sched.Stale)
		assert.Len(t, rec.events, 2)
		assert.Equal(t, control.StateUp, b.State())
	})

	t.Run("should fire exactly one LONG and still release", func(t *testing.T) {
		b, rec, clock, sched := newButton(t)

		b.Press(90)
		clock.Advance(control.DefaultLongPress)
		sched.RunDue()

		require.Equal(t, control.StateLong, b.State())
		assert.True(t, b.IsPressed())
		assert.True(t, b.IsLongPressed())

		clock.Advance(time.Second)
		sched.RunDue()
		b.Release()

		assert.Equal(t, []control.ButtonEvent{control.EventDown, control.EventLong, control.EventUp}, rec.kinds())
		assert.Equal(t, 90, rec.events[1].velocity)
	})

	t.Run("should not let an old check fire into a new press", func(t *testing.T) {
		b, rec, clock, sched := newButton(t)

		b.Press(100)
		clock.Advance(200 * time.Millisecond)
		b.Release()
		b.Press(100)
		clock.Advance(150 * time.Millisecond)
		sched.RunDue()

		assert.Equal(t, control.StateDown, b.State())
		assert.NotContains(t, rec.kinds(), control.EventLong)
	})

	t.Run("should clamp velocity", func(t *testing.T) {
		b, _, _, _ := newButton(t)
		b.Press(300)
		assert.Equal(t, 127, b.Velocity())
	})
}

func TestButtonConsumed(t *testing.T) {
	t.Run("should suppress the command UP but not listeners", func(t *testing.T) {
		b, rec, _, _ := newButton(t)
		ups := 0
		b.AddListener(control.EventUp, func(control.ButtonEvent, int) { ups++ })

		b.Press(100)
		b.SetConsumed()
		b.Release()

		assert.Equal(t, []control.ButtonEvent{control.EventDown}, rec.kinds())
		assert.Equal(t, 1, ups)
	})

	t.Run("should reset on the next press", func(t *testing.T) {
		b, rec, _, _ := newButton(t)

		b.Press(100)
		b.SetConsumed()
		b.Release()
		b.Press(100)
		b.Release()

		assert.Equal(t, []control.ButtonEvent{control.EventDown, control.EventDown, control.EventUp}, rec.kinds())
	})

	t.Run("should ignore consume outside a press", func(t *testing.T) {
		b, _, _, _ := newButton(t)
		b.SetConsumed()
		assert.False(t, b.IsConsumed())
	})
}

func TestButtonClearState(t *testing.T) {
	b, rec, clock, sched := newButton(t)
	ups := 0
	b.AddListener(control.EventUp, func(control.ButtonEvent, int) { ups++ })

	b.Press(100)
	b.ClearState()
	clock.Advance(time.Second)
	sched.RunDue()
	b.Release()

	assert.Equal(t, []control.ButtonEvent{control.EventDown}, rec.kinds())
	assert.Equal(t, 0, ups)
	assert.Equal(t, control.StateIdle, b.State())
}

func TestButtonUnbound(t *testing.T) {
	clock := scheduler.NewManualClock()
	sched := scheduler.New(clock)
	b := control.NewButton("spare", sched, nil)

	assert.NotPanics(t, func() {
		b.Press(64)
		clock.Advance(time.Second)
		sched.RunDue()
		b.Release()
	})
	assert.False(t, b.IsBound())
	assert.False(t, b.IsPressed())
}

func TestButtonMetronomeScenario(t *testing.T) {
	clock := scheduler.NewManualClock()
	sched := scheduler.New(clock)
	b := control.NewButton("metronome", sched, nil)
	metronome := false
	b.Bind(control.OnDown(func(int) { metronome = !metronome }))

	b.Press(127)
	b.Release()
	assert.True(t, metronome)

	b.Press(127)
	clock.Advance(60 * time.Millisecond)
	b.Release()
	clock.Advance(60 * time.Millisecond)
	b.Press(127)
	clock.Advance(60 * time.Millisecond)
	b.Release()
	sched.RunDue()

	// two more toggles within 300ms: back to on
	assert.True(t, metronome)
}

func TestButtonOptimizer(t *testing.T) {
	clock := scheduler.NewManualClock()
	sched := scheduler.New(clock)
	timing := control.NewTimeoutOptimizer()
	b := control.NewButton("pad", sched, timing)

	for i := 0; i < 10; i++ {
		b.Press(100)
		clock.Advance(80 * time.Millisecond)
		b.Release()
	}

	assert.Equal(t, 10, timing.Samples())
	assert.Equal(t, 200*time.Millisecond, timing.Timeout())

	// a deliberate long hold does not drag the average up
	b.Press(100)
	clock.Advance(timing.Timeout())
	sched.RunDue()
	clock.Advance(2 * time.Second)
	b.Release()
	assert.Equal(t, 10, timing.Samples())
}
