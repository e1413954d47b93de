package output_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-surface/device"
	"go-surface/output"
)

func newLightCache(v *device.Virtual) *output.Cache[int] {
	return output.NewCache(v.SendRaw)
}

func TestUpdate(t *testing.T) {
	t.Run("should write an unchanged value once", func(t *testing.T) {
		v := device.NewVirtual("t")
		light := output.NewControl("play", device.Note(0, 10), newLightCache(v), 0)
		light.SetSupplier(func() int { return 21 })

		wrote, err := light.Update()
		require.NoError(t, err)
		assert.True(t, wrote)
		wrote, err = light.Update()
		require.NoError(t, err)
		assert.False(t, wrote)

		assert.Len(t, v.Writes(), 1)
	})

	t.Run("should write again after ForceFlush", func(t *testing.T) {
		v := device.NewVirtual("t")
		light := output.NewControl("play", device.Note(0, 10), newLightCache(v), 0)
		light.SetSupplier(func() int { return 21 })

		light.Update()
		light.ForceFlush()
		light.Update()

		want := []device.Write{
			{Address: device.Note(0, 10), Value: 21},
			{Address: device.Note(0, 10), Value: 21},
		}
		if diff := cmp.Diff(want, v.Writes()); diff != "" {
			t.Errorf("writes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should follow supplier changes", func(t *testing.T) {
		v := device.NewVirtual("t")
		light := output.NewControl("rec", device.Note(0, 11), newLightCache(v), 0)
		color := 5
		light.SetSupplier(func() int { return color })

		light.Update()
		color = 6
		light.Update()
		light.Update()

		assert.Len(t, v.Writes(), 2)
	})

	t.Run("should do nothing without a supplier", func(t *testing.T) {
		v := device.NewVirtual("t")
		light := output.NewControl("rec", device.Note(0, 11), newLightCache(v), 0)

		wrote, err := light.Update()

		require.NoError(t, err)
		assert.False(t, wrote)
		assert.Empty(t, v.Writes())
	})
}

func TestAliasing(t *testing.T) {
	t.Run("should write agreeing aliases once", func(t *testing.T) {
		v := device.NewVirtual("t")
		cache := newLightCache(v)
		a := output.NewControl("shift", device.Note(0, 98), cache, 0)
		b := output.NewControl("select", device.Note(0, 98), cache, 0)
		a.SetSupplier(func() int { return 3 })
		b.SetSupplier(func() int { return 3 })

		a.Update()
		b.Update()

		assert.Len(t, v.Writes(), 1)
		assert.Equal(t, 1, cache.Skipped)
	})

	t.Run("should settle disagreeing aliases on the lit one", func(t *testing.T) {
		v := device.NewVirtual("t")
		cache := newLightCache(v)
		lit := output.NewControl("play", device.Note(0, 98), cache, 0)
		dark := output.NewControl("alt", device.Note(0, 98), cache, 0)
		other := output.NewControl("rec", device.Note(0, 99), cache, 0)
		lit.SetSupplier(func() int { return 21 })
		dark.SetSupplier(func() int { return 0 })
		other.SetSupplier(func() int { return 5 })
		controls := []*output.Light{lit, dark, other}

		for range 3 {
			_, errs := output.Flush(controls)
			require.Empty(t, errs)
		}

		want := []device.Write{
			{Address: device.Note(0, 98), Value: 21},
			{Address: device.Note(0, 99), Value: 5},
		}
		if diff := cmp.Diff(want, v.Writes()); diff != "" {
			t.Errorf("writes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should let the last of two lit aliases win", func(t *testing.T) {
		v := device.NewVirtual("t")
		cache := newLightCache(v)
		a := output.NewControl("a", device.Note(0, 98), cache, 0)
		b := output.NewControl("b", device.Note(0, 98), cache, 0)
		a.SetSupplier(func() int { return 3 })
		b.SetSupplier(func() int { return 7 })

		writes, _ := output.Flush([]*output.Light{a, b})
		again, _ := output.Flush([]*output.Light{a, b})

		assert.Equal(t, 1, writes)
		assert.Zero(t, again)
		got, _ := v.Value(device.Note(0, 98))
		assert.Equal(t, 7, got)
	})

	t.Run("should report failed addresses", func(t *testing.T) {
		v := device.NewVirtual("t")
		v.FailWrites = errors.New("link down")
		light := output.NewControl("pad", device.Note(0, 36), newLightCache(v), 0)
		light.SetSupplier(func() int { return 9 })

		writes, errs := output.Flush([]*output.Light{light})

		assert.Zero(t, writes)
		require.Len(t, errs, 1)
		assert.ErrorContains(t, errs[0], "link down")
	})
}

func TestTurnOff(t *testing.T) {
	v := device.NewVirtual("t")
	light := output.NewControl("pad", device.Note(0, 36), newLightCache(v), 0)
	light.SetSupplier(func() int { return 0 })
	light.Update()

	require.NoError(t, light.TurnOff())

	assert.False(t, light.HasSupplier())
	assert.Len(t, v.Writes(), 2)
	wrote, _ := light.Update()
	assert.False(t, wrote)
}

func TestWriteFailure(t *testing.T) {
	v := device.NewVirtual("t")
	v.FailWrites = errors.New("link down")
	cache := newLightCache(v)
	light := output.NewControl("pad", device.Note(0, 36), cache, 0)
	light.SetSupplier(func() int { return 9 })

	_, err := light.Update()
	assert.ErrorContains(t, err, "link down")

	v.FailWrites = nil
	wrote, err := light.Update()
	require.NoError(t, err)
	assert.True(t, wrote, "a failed write must be retried")
}

func TestDisplay(t *testing.T) {
	v := device.NewVirtual("t")
	cache := output.NewCache(v.SendText)
	cell := output.NewControl("cell0", device.Text(0), cache, "")
	cell.SetSupplier(func() string { return "Volume" })

	cell.Update()
	cell.Update()

	assert.Equal(t, "Volume", v.TextAt(device.Text(0)))
	assert.Equal(t, 1, cache.Writes)
}
