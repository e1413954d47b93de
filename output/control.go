package output

import (
	"fmt"

	"go-surface/device"
)

// Control is one logical output: a light, an LED ring or a display cell.
// Its supplier asks the current mode or view for the value to show.
type Control[V comparable] struct {
	id       string
	addr     device.Address
	cache    *Cache[V]
	supplier func() V
	off      V
}

// NewControl creates an output bound to addr. Controls that share a cache
// and an address alias the same physical element.
func NewControl[V comparable](id string, addr device.Address, cache *Cache[V], off V) *Control[V] {
	return &Control[V]{id: id, addr: addr, cache: cache, off: off}
}

func (c *Control[V]) ID() string { return c.id }

func (c *Control[V]) Address() device.Address { return c.addr }

// SetSupplier attaches the value source (nil detaches)
func (c *Control[V]) SetSupplier(fn func() V) {
	c.supplier = fn
}

// HasSupplier reports whether the control is driven
func (c *Control[V]) HasSupplier() bool { return c.supplier != nil }

// Update pulls the current value and writes it if it changed. It returns
// whether a device write happened.
func (c *Control[V]) Update() (bool, error) {
	if c.supplier == nil {
		return false, nil
	}
	wrote, err := c.cache.Write(c.addr, c.supplier())
	if err != nil {
		return false, fmt.Errorf("update %s (%s): %w", c.id, c.addr, err)
	}
	return wrote, nil
}

// ForceFlush makes the next Update write regardless of the cache
func (c *Control[V]) ForceFlush() {
	c.cache.Invalidate(c.addr)
}

// TurnOff detaches the supplier and writes the off value right away
func (c *Control[V]) TurnOff() error {
	c.supplier = nil
	c.cache.Invalidate(c.addr)
	if _, err := c.cache.Write(c.addr, c.off); err != nil {
		return fmt.Errorf("turn off %s (%s): %w", c.id, c.addr, err)
	}
	return nil
}

// Flush updates a set of controls, settling aliases first. Among controls
// that share a cache and an address, the last one showing something other
// than its off value wins, else the last one; the address then gets at most
// one write. The losers count as skipped.
func Flush[V comparable](controls []*Control[V]) (writes int, errs []error) {
	type target struct {
		cache *Cache[V]
		addr  device.Address
	}
	type pick struct {
		c     *Control[V]
		value V
	}
	picks := make(map[target]pick, len(controls))
	var order []target
	for _, c := range controls {
		if c.supplier == nil {
			continue
		}
		t := target{c.cache, c.addr}
		v := c.supplier()
		prev, seen := picks[t]
		if !seen {
			order = append(order, t)
		} else {
			c.cache.Skipped++
			if v == c.off && prev.value != prev.c.off {
				continue
			}
		}
		picks[t] = pick{c, v}
	}

	for _, t := range order {
		p := picks[t]
		wrote, err := t.cache.Write(t.addr, p.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("update %s (%s): %w", p.c.id, t.addr, err))
			continue
		}
		if wrote {
			writes++
		}
	}
	return writes, errs
}

// Light is an LED or pad colour output; values are device colour indices
type Light = Control[int]

// Display is a text display cell
type Display = Control[string]
