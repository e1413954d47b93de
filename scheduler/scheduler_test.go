package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-surface/scheduler"
)

func TestRunDue(t *testing.T) {
	t.Run("should not fire before the delay", func(t *testing.T) {
		clock := scheduler.NewManualClock()
		s := scheduler.New(clock)
		fired := false
		s.After(300*time.Millisecond, "x", func() { fired = true })

		clock.Advance(299 * time.Millisecond)
		assert.Equal(t, 0, s.RunDue())
		assert.False(t, fired)

		clock.Advance(time.Millisecond)
		assert.Equal(t, 1, s.RunDue())
		assert.True(t, fired)
		assert.Equal(t, 0, s.Pending())
	})

	t.Run("should run in fire-time order, then submission order", func(t *testing.T) {
		clock := scheduler.NewManualClock()
		s := scheduler.New(clock)
		var order []string
		s.After(20*time.Millisecond, "c", func() { order = append(order, "c") })
		s.After(10*time.Millisecond, "a", func() { order = append(order, "a") })
		s.After(10*time.Millisecond, "b", func() { order = append(order, "b") })

		clock.Advance(50 * time.Millisecond)
		s.RunDue()

		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("should defer tasks queued during a drain to the next call", func(t *testing.T) {
		clock := scheduler.NewManualClock()
		s := scheduler.New(clock)
		count := 0
		var again func()
		again = func() {
			count++
			s.After(0, "again", again)
		}
		s.After(0, "again", again)

		assert.Equal(t, 1, s.RunDue())
		assert.Equal(t, 1, s.RunDue())
		assert.Equal(t, 2, count)
		assert.Equal(t, 1, s.Pending())
	})

	t.Run("should skip tasks whose guard went false", func(t *testing.T) {
		clock := scheduler.NewManualClock()
		s := scheduler.New(clock)
		stillPressed := true
		fired := false
		s.Schedule(scheduler.Task{
			Name:  "long",
			Delay: 10 * time.Millisecond,
			Guard: func() bool { return stillPressed },
			Run:   func() { fired = true },
		})

		stillPressed = false
		clock.Advance(10 * time.Millisecond)

		assert.Equal(t, 0, s.RunDue())
		assert.False(t, fired)
		assert.Equal(t, 1, s.Stale)
	})

	t.Run("should survive a panicking task", func(t *testing.T) {
		clock := scheduler.NewManualClock()
		s := scheduler.New(clock)
		after := false
		s.After(0, "boom", func() { panic("boom") })
		s.After(0, "after", func() { after = true })

		assert.NotPanics(t, func() { s.RunDue() })
		assert.True(t, after)
	})
}

func TestNextAt(t *testing.T) {
	clock := scheduler.NewManualClock()
	s := scheduler.New(clock)

	_, ok := s.NextAt()
	assert.False(t, ok)

	s.After(5*time.Millisecond, "x", func() {})
	at, ok := s.NextAt()
	assert.True(t, ok)
	assert.Equal(t, clock.Now().Add(5*time.Millisecond), at)
}
