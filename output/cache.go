// Package output keeps the device's lights, rings and displays in sync with
// what the current mode or view wants to show, writing only what changed.
package output

import (
	"go-surface/device"
)

// Cache remembers the last value written to each device address. Writes of
// an unchanged value are dropped. A missing entry means "unknown", so the
// next write always goes out.
type Cache[V comparable] struct {
	sent  map[device.Address]V
	write func(device.Address, V) error

	// Writes and Skipped count forwarded and suppressed writes
	Writes  int
	Skipped int
}

// NewCache wraps a device write function
func NewCache[V comparable](write func(device.Address, V) error) *Cache[V] {
	return &Cache[V]{
		sent:  make(map[device.Address]V),
		write: write,
	}
}

// Write forwards v unless it equals the cached value for addr. A failed
// write leaves addr invalid so the next update retries.
func (c *Cache[V]) Write(addr device.Address, v V) (bool, error) {
	if cur, ok := c.sent[addr]; ok && cur == v {
		c.Skipped++
		return false, nil
	}
	if err := c.write(addr, v); err != nil {
		delete(c.sent, addr)
		return false, err
	}
	c.sent[addr] = v
	c.Writes++
	return true, nil
}

// Last returns the cached value for addr
func (c *Cache[V]) Last(addr device.Address) (V, bool) {
	v, ok := c.sent[addr]
	return v, ok
}

// Invalidate forgets addr
func (c *Cache[V]) Invalidate(addr device.Address) {
	delete(c.sent, addr)
}

// InvalidateAll forgets everything, e.g. after a reconnect
func (c *Cache[V]) InvalidateAll() {
	clear(c.sent)
}

// Retarget points the cache at a new writer and forgets all history
func (c *Cache[V]) Retarget(write func(device.Address, V) error) {
	c.write = write
	c.InvalidateAll()
}
