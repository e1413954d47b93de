// Package host runs surfaces. Each surface gets its own goroutine that owns
// it outright: device events, hot-plug attaches and the periodic flush are
// all serialized through one select loop, so the core needs no locks.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"go-surface/commands"
	"go-surface/config"
	"go-surface/daw"
	"go-surface/debug"
	"go-surface/device"
	"go-surface/midi"
	"go-surface/surface"
)

// DefaultUpdateHz is the flush rate when none is configured
const DefaultUpdateHz = 30

// Host drives a set of surfaces against one shared model
type Host struct {
	model    *daw.Model
	updateHz int

	mu    sync.Mutex
	units []*unit
	ports map[string]*unit

	hotplug *midi.DeviceManager

	// Updates gets a non-blocking signal after ticks that wrote something
	Updates chan struct{}
}

type unit struct {
	surface *surface.Surface
	dev     device.Device
	attach  chan device.Device
	panics  int
	stats   atomic.Pointer[Stats]
}

// Stats is a snapshot of one surface's counters
type Stats struct {
	Name        string
	Attached    bool
	Writes      int
	Skipped     int
	WriteErrors int
	Panics      int
}

// New creates a host flushing at updateHz
func New(model *daw.Model, updateHz int) *Host {
	if updateHz <= 0 {
		updateHz = DefaultUpdateHz
	}
	return &Host{
		model:    model,
		updateHz: updateHz,
		ports:    make(map[string]*unit),
		Updates:  make(chan struct{}, 1),
	}
}

// Model returns the shared model
func (h *Host) Model() *daw.Model { return h.model }

// Add builds a surface for layout, installs the model's commands on it and
// attaches dev when it is not nil. Surfaces must be added before Run.
func (h *Host) Add(layout config.Layout, dev device.Device, opts surface.Options) (*surface.Surface, error) {
	s, err := surface.New(layout, opts)
	if err != nil {
		return nil, fmt.Errorf("surface %s: %w", layout.Name, err)
	}
	commands.Install(s, h.model)
	u := &unit{
		surface: s,
		dev:     dev,
		attach:  make(chan device.Device, 4),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, other := range h.units {
		if other.surface.Name() == layout.Name {
			return nil, fmt.Errorf("surface %s: %w", layout.Name, surface.ErrDuplicateAssignment)
		}
	}
	h.units = append(h.units, u)
	return s, nil
}

// Watch attaches devices the manager finds to the surface of the layout
// they matched
func (h *Host) Watch(dm *midi.DeviceManager) {
	h.hotplug = dm
}

func (h *Host) find(name string) *unit {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, u := range h.units {
		if u.surface.Name() == name {
			return u
		}
	}
	return nil
}

// Attach hands dev to the named surface's loop. A nil dev detaches.
func (h *Host) Attach(name string, dev device.Device) error {
	u := h.find(name)
	if u == nil {
		return fmt.Errorf("attach %s: no such surface", name)
	}
	u.attach <- dev
	return nil
}

// Stats returns per-surface counters as of each loop's last tick
func (h *Host) Stats() []Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Stats, 0, len(h.units))
	for _, u := range h.units {
		if st := u.stats.Load(); st != nil {
			out = append(out, *st)
		} else {
			out = append(out, Stats{Name: u.surface.Name()})
		}
	}
	return out
}

// publish snapshots the counters; only the unit's loop calls it
func (u *unit) publish() {
	writes, skipped := u.surface.Stats()
	u.stats.Store(&Stats{
		Name:        u.surface.Name(),
		Attached:    u.surface.Device() != nil,
		Writes:      writes,
		Skipped:     skipped,
		WriteErrors: u.surface.WriteErrors,
		Panics:      u.surface.Panics + u.panics,
	})
}

// Run blocks until ctx is cancelled. Every surface is turned off before it
// returns.
func (h *Host) Run(ctx context.Context) error {
	h.mu.Lock()
	units := append([]*unit(nil), h.units...)
	h.mu.Unlock()
	if len(units) == 0 {
		return errors.New("host: no surfaces")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, u := range units {
		g.Go(func() error { return h.loop(ctx, u) })
	}
	g.Go(func() error { return h.transport(ctx) })
	if h.hotplug != nil {
		g.Go(func() error {
			h.hotplug.Run(ctx)
			return nil
		})
		g.Go(func() error { return h.forward(ctx) })
	}
	return g.Wait()
}

func (h *Host) loop(ctx context.Context, u *unit) error {
	s := u.surface
	ticker := time.NewTicker(time.Second / time.Duration(h.updateHz))
	defer ticker.Stop()

	var events <-chan device.Event
	if u.dev != nil {
		s.Attach(u.dev)
		events = u.dev.Events()
	}
	debug.Info("host", "%s: loop started at %d Hz", s.Name(), h.updateHz)

	for {
		select {
		case <-ctx.Done():
			if err := s.Shutdown(); err != nil {
				debug.Error("host", err, "%s: shutdown", s.Name())
			}
			u.publish()
			return nil

		case dev := <-u.attach:
			if dev == nil {
				s.Detach()
				events = nil
				continue
			}
			s.Attach(dev)
			events = dev.Events()

		case ev, ok := <-events:
			if !ok {
				s.Detach()
				events = nil
				continue
			}
			s.HandleEvent(ev)

		case <-ticker.C:
			written := h.tick(u)
			u.publish()
			if written > 0 {
				select {
				case h.Updates <- struct{}{}:
				default:
				}
			}
		}
	}
}

// tick flushes one surface, recovering anything that escaped the
// surface's own guards
func (h *Host) tick(u *unit) (written int) {
	defer func() {
		if r := recover(); r != nil {
			u.panics++
			debug.Error("host", fmt.Errorf("panic: %v", r), "%s: tick", u.surface.Name())
		}
	}()
	return u.surface.Flush()
}

// transport advances the model's play position in real time
func (h *Host) transport(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(h.updateHz))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			h.model.Advance(now.Sub(last).Minutes() * h.model.Tempo())
			last = now
		}
	}
}

// offer hands dev (nil detaches) to the surface loop unless ctx ends first,
// as the loop stops reading once it has shut down
func (u *unit) offer(ctx context.Context, dev device.Device) bool {
	select {
	case u.attach <- dev:
		return true
	case <-ctx.Done():
		return false
	}
}

// forward routes hot-plug events to surface loops
func (h *Host) forward(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-h.hotplug.Events():
			if !ok {
				return nil
			}
			switch ev.Type {
			case midi.DeviceConnected:
				u := h.find(ev.Layout.Name)
				if u == nil {
					debug.Warn("host", "no surface for layout %s on %s", ev.Layout.Name, ev.ID)
					continue
				}
				h.mu.Lock()
				h.ports[ev.ID] = u
				h.mu.Unlock()
				if !u.offer(ctx, ev.Device) {
					return nil
				}
			case midi.DeviceDisconnected:
				h.mu.Lock()
				u := h.ports[ev.ID]
				delete(h.ports, ev.ID)
				h.mu.Unlock()
				if u != nil && !u.offer(ctx, nil) {
					return nil
				}
			}
		}
	}
}
