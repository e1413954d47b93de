package daw_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-surface/daw"
)

func TestTransport(t *testing.T) {
	t.Run("should honour the stop behaviour", func(t *testing.T) {
		cases := map[daw.StopBehavior]float64{
			daw.StopPause:          6,
			daw.StopReturnToZero:   0,
			daw.StopMovePlayCursor: 2,
		}
		for behavior, want := range cases {
			m := daw.New()
			m.Play()
			m.Advance(2)
			m.Stop(daw.StopPause)
			m.Play()
			m.Advance(4)

			m.Stop(behavior)

			assert.Equal(t, want, m.Snapshot().Position, behavior)
		}
	})

	t.Run("should rewind on a second stop", func(t *testing.T) {
		m := daw.New()
		m.Play()
		m.Advance(3)
		m.Stop(daw.StopPause)
		m.Stop(daw.StopPause)
		assert.Zero(t, m.Snapshot().Position)
	})

	t.Run("should start the transport when recording", func(t *testing.T) {
		m := daw.New()
		assert.True(t, m.ToggleRecord())
		assert.True(t, m.IsPlaying())
	})
}

func TestTap(t *testing.T) {
	m := daw.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		m.Tap(start.Add(time.Duration(i) * 500 * time.Millisecond))
	}
	assert.InDelta(t, 120, m.Tempo(), 0.001)

	// a long gap starts a new measurement
	m.Tap(start.Add(10 * time.Second))
	m.Tap(start.Add(10*time.Second + 250*time.Millisecond))
	assert.InDelta(t, 240, m.Tempo(), 0.001)
}

func TestTracks(t *testing.T) {
	m := daw.New()
	m.ToggleMute(1)
	m.SetVolume(1, 300)
	m.SetPan(2, -5)
	m.ToggleMute(99)

	tr, ok := m.Track(1)
	assert.True(t, ok)
	assert.True(t, tr.Muted)
	assert.Equal(t, daw.MaxValue, tr.Volume)
	tr, _ = m.Track(2)
	assert.Zero(t, tr.Pan)
}

func TestClips(t *testing.T) {
	m := daw.New()

	assert.Equal(t, daw.ClipEmpty, m.LaunchClip(0, 0))
	m.ToggleArm(0)
	assert.Equal(t, daw.ClipRecording, m.LaunchClip(0, 0))
	assert.Equal(t, daw.ClipRecording, m.LaunchClip(0, 1))

	tr, _ := m.Track(0)
	assert.Equal(t, daw.ClipStopped, tr.Clips[0])

	assert.True(t, m.DuplicateClip(0, 0))
	tr, _ = m.Track(0)
	assert.Equal(t, daw.ClipStopped, tr.Clips[2])

	m.DeleteClip(0, 2)
	tr, _ = m.Track(0)
	assert.Equal(t, daw.ClipEmpty, tr.Clips[2])
}

func TestUndoRedo(t *testing.T) {
	m := daw.New()
	_, ok := m.Undo()
	assert.False(t, ok)

	m.ToggleMute(0)
	m.ToggleSolo(0)
	action, ok := m.Undo()
	assert.True(t, ok)
	assert.Equal(t, "solo", action)

	action, ok = m.Redo()
	assert.True(t, ok)
	assert.Equal(t, "solo", action)
	_, ok = m.Redo()
	assert.False(t, ok)
}
