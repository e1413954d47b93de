package mode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-surface/control"
	"go-surface/mode"
)

type fakeView struct {
	mode.Base
	activations   int
	deactivations int
}

func (v *fakeView) OnActivate()   { v.activations++ }
func (v *fakeView) OnDeactivate() { v.deactivations++ }

func (v *fakeView) OnGridButton(int, control.ButtonEvent, int) {}
func (v *fakeView) GridColor(int) int                           { return 0 }

func newViews(ids ...mode.ID) (*mode.Views, map[mode.ID]*fakeView) {
	views := mode.NewViews()
	byID := make(map[mode.ID]*fakeView)
	for _, id := range ids {
		v := &fakeView{Base: mode.Base{Label: string(id)}}
		byID[id] = v
		views.Register(id, v)
	}
	return views, byID
}

func TestSetActive(t *testing.T) {
	t.Run("should start with nothing active", func(t *testing.T) {
		views, _ := newViews("session")
		_, ok := views.ActiveOrTemp()
		assert.False(t, ok)
		assert.False(t, views.IsActive("session"))
	})

	t.Run("should notify listeners with previous and new id", func(t *testing.T) {
		views, byID := newViews("session", "drum")
		var changes [][2]mode.ID
		views.AddChangeListener(func(prev, cur mode.ID) { changes = append(changes, [2]mode.ID{prev, cur}) })

		views.SetActive("session")
		views.SetActive("drum")

		assert.Equal(t, [][2]mode.ID{{"", "session"}, {"session", "drum"}}, changes)
		assert.Equal(t, 1, byID["session"].deactivations)
		prev, ok := views.Previous()
		assert.True(t, ok)
		assert.Equal(t, mode.ID("session"), prev)
	})

	t.Run("should report the override as previous when it is dropped", func(t *testing.T) {
		views, _ := newViews("session", "shift", "drum")
		views.SetActive("session")
		views.SetTemporary("shift")
		var changes [][2]mode.ID
		views.AddChangeListener(func(prev, cur mode.ID) { changes = append(changes, [2]mode.ID{prev, cur}) })

		views.SetActive("drum")

		assert.Equal(t, [][2]mode.ID{{"shift", "drum"}}, changes)
		prev, _ := views.Previous()
		assert.Equal(t, mode.ID("session"), prev)
	})

	t.Run("should ignore unknown ids", func(t *testing.T) {
		views, _ := newViews("session")
		views.SetActive("session")
		views.SetActive("nope")
		id, _ := views.Active()
		assert.Equal(t, mode.ID("session"), id)
	})

	t.Run("should clear a temporary override", func(t *testing.T) {
		views, _ := newViews("session", "drum", "mixer")
		views.SetActive("session")
		views.SetTemporary("drum")

		views.SetActive("mixer")

		assert.False(t, views.IsTemporary())
		id, _ := views.ActiveOrTemp()
		assert.Equal(t, mode.ID("mixer"), id)
	})
}

func TestTemporary(t *testing.T) {
	t.Run("should restore the prior selection for any active id", func(t *testing.T) {
		for _, prior := range []mode.ID{"session", "drum", "mixer"} {
			views, _ := newViews("session", "drum", "mixer", "shift")
			views.SetActive(prior)

			views.SetTemporary("shift")
			id, _ := views.ActiveOrTemp()
			require.Equal(t, mode.ID("shift"), id)
			assert.True(t, views.IsActive("shift"))
			assert.False(t, views.IsActive(prior))
			active, _ := views.Active()
			assert.Equal(t, prior, active)

			views.Restore()
			id, _ = views.ActiveOrTemp()
			assert.Equal(t, prior, id)
			assert.False(t, views.IsTemporary())
		}
	})

	t.Run("should treat restore without override as a no-op", func(t *testing.T) {
		views, byID := newViews("session")
		views.SetActive("session")
		calls := 0
		views.AddChangeListener(func(mode.ID, mode.ID) { calls++ })

		views.Restore()

		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, byID["session"].deactivations)
	})

	t.Run("should run lifecycle hooks around the override", func(t *testing.T) {
		views, byID := newViews("session", "shift")
		views.SetActive("session")

		views.SetTemporary("shift")
		views.Restore()

		assert.Equal(t, 1, byID["shift"].activations)
		assert.Equal(t, 1, byID["shift"].deactivations)
		assert.Equal(t, 2, byID["session"].activations)
	})
}

func TestActivatePrevious(t *testing.T) {
	views, _ := newViews("session", "drum")
	views.SetActive("session")
	views.SetActive("drum")

	views.ActivatePrevious()

	id, _ := views.Active()
	assert.Equal(t, mode.ID("session"), id)
}

func TestCycle(t *testing.T) {
	views, _ := newViews("session", "drum", "mixer", "other")
	cycle := mode.NewCycle[mode.ID](views, "session", "drum", "mixer")

	views.SetActive("other")
	var seen []mode.ID
	for i := 0; i < 4; i++ {
		id, ok := cycle.Next()
		require.True(t, ok)
		seen = append(seen, id)
	}

	assert.Equal(t, []mode.ID{"session", "drum", "mixer", "session"}, seen)
}

func TestCommands(t *testing.T) {
	t.Run("select should activate on press", func(t *testing.T) {
		views, _ := newViews("session", "drum")
		b := control.NewButton("b", nil, nil)
		b.Bind(mode.Select[mode.ID](views, "drum"))

		b.Press(100)

		assert.True(t, views.IsActive("drum"))
	})

	t.Run("temporary should hold while pressed and restore on consumed release", func(t *testing.T) {
		views, _ := newViews("session", "shift")
		views.SetActive("session")
		b := control.NewButton("shift", nil, nil)
		mode.Temporary[mode.ID](views, "shift").Attach(b)

		b.Press(100)
		assert.True(t, views.IsActive("shift"))
		b.SetConsumed()
		b.Release()

		assert.True(t, views.IsActive("session"))
	})
}
