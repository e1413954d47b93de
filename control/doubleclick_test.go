package control_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-surface/control"
	"go-surface/scheduler"
)

func clickN(b *control.Button, clock *scheduler.ManualClock, sched *scheduler.Scheduler, n int, gap time.Duration) {
	for i := 0; i < n; i++ {
		b.Press(100)
		clock.Advance(20 * time.Millisecond)
		b.Release()
		clock.Advance(gap)
		sched.RunDue()
	}
}

func TestDoubleClick(t *testing.T) {
	setup := func() (*control.Button, *scheduler.ManualClock, *scheduler.Scheduler, *int, *int) {
		clock := scheduler.NewManualClock()
		sched := scheduler.New(clock)
		singles, doubles := 0, 0
		b := control.NewButton("select", sched, nil)
		b.Bind(control.NewDoubleClick(sched, func() { singles++ }, func() { doubles++ }))
		return b, clock, sched, &singles, &doubles
	}

	t.Run("should run single after the window expires", func(t *testing.T) {
		b, clock, sched, singles, doubles := setup()

		clickN(b, clock, sched, 1, 0)
		assert.Equal(t, 0, *singles)

		clock.Advance(control.DefaultDoubleClickWindow)
		sched.RunDue()

		assert.Equal(t, 1, *singles)
		assert.Equal(t, 0, *doubles)
	})

	t.Run("should give one double and no singles for two quick clicks", func(t *testing.T) {
		b, clock, sched, singles, doubles := setup()

		clickN(b, clock, sched, 2, 50*time.Millisecond)
		clock.Advance(time.Second)
		sched.RunDue()

		assert.Equal(t, 0, *singles)
		assert.Equal(t, 1, *doubles)
	})

	t.Run("should degrade three quick clicks to double plus single", func(t *testing.T) {
		b, clock, sched, singles, doubles := setup()

		clickN(b, clock, sched, 3, 50*time.Millisecond)
		clock.Advance(time.Second)
		sched.RunDue()

		assert.Equal(t, 1, *singles)
		assert.Equal(t, 1, *doubles)
	})

	t.Run("should treat slow clicks as singles", func(t *testing.T) {
		b, clock, sched, singles, doubles := setup()

		clickN(b, clock, sched, 2, 400*time.Millisecond)

		assert.Equal(t, 2, *singles)
		assert.Equal(t, 0, *doubles)
	})
}
