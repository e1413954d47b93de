package surface

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go-surface/config"
	"go-surface/control"
	"go-surface/debug"
	"go-surface/device"
	"go-surface/mode"
	"go-surface/output"
	"go-surface/scheduler"
	"go-surface/theme"
)

// HandleEvent routes one decoded input event to its control. Events for
// addresses the layout does not know are logged and dropped. A panicking
// command is recovered so the surface keeps running.
func (s *Surface) HandleEvent(ev device.Event) {
	defer s.recoverPanic("event " + ev.Address.String())

	r, ok := s.routes[ev.Address]
	if !ok {
		debug.LogEvery(50, "surface", "%s: unmapped input %s=%d", s.layout.Name, ev.Address, ev.Value)
		return
	}

	switch r.kind {
	case routeButton:
		if ev.Value > 0 {
			r.button.Press(ev.Value)
		} else {
			r.button.Release()
		}
	case routeValue:
		r.knob.HandleValue(ev.Value)
	case routeFine:
		r.knob.HandleFine(ev.Value)
	case routePitchbend:
		r.knob.HandlePitchbend(ev.Value)
	case routeTouch:
		r.knob.HandleTouch(ev.Value > 0, ev.Value)
	}
}

// Flush is one tick of the update loop: run due tasks, let the current mode
// and view refresh, then write every output whose value changed. It returns
// the number of device writes.
func (s *Surface) Flush() int {
	s.sched.RunDue()
	s.refresh()
	if s.dev == nil {
		return 0
	}
	return flushControls(s, s.lights) + flushControls(s, s.texts)
}

func (s *Surface) refresh() {
	defer s.recoverPanic("update")
	if m, ok := s.modes.Current(); ok {
		if u, ok := m.(mode.Updater); ok {
			u.Update()
		}
	}
	if v, ok := s.views.Current(); ok {
		if u, ok := v.(mode.Updater); ok {
			u.Update()
		}
	}
}

func flushControls[V comparable](s *Surface, controls []*output.Control[V]) int {
	writes, errs := output.Flush(controls)
	for _, err := range errs {
		s.WriteErrors++
		debug.Error("surface", err, "%s: flush", s.layout.Name)
	}
	return writes
}

// ForceFlush makes the next Flush rewrite every output
func (s *Surface) ForceFlush() {
	s.lightCache.InvalidateAll()
	s.textCache.InvalidateAll()
}

// Attach connects the surface to dev, replacing any previous device, and
// schedules a full refresh
func (s *Surface) Attach(dev device.Device) {
	s.dev = dev
	s.ForceFlush()
	debug.Info("surface", "%s: attached to %s", s.layout.Name, dev.Name())
}

// Detach forgets the device. Input state is reset so no button stays held.
func (s *Surface) Detach() {
	if s.dev == nil {
		return
	}
	debug.Info("surface", "%s: detached from %s", s.layout.Name, s.dev.Name())
	s.dev = nil
	for _, b := range s.buttons {
		b.ClearState()
	}
	for _, k := range s.knobs {
		k.Touch().ClearState()
	}
}

// Shutdown turns every output off. Write errors are joined.
func (s *Surface) Shutdown() error {
	if s.dev == nil {
		return nil
	}
	var errs []error
	for _, l := range s.lights {
		if err := l.TurnOff(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range s.texts {
		if err := t.TurnOff(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Surface) recoverPanic(where string) {
	if r := recover(); r != nil {
		s.Panics++
		debug.Error("surface", fmt.Errorf("panic: %v", r), "%s: %s", s.layout.Name, where)
	}
}

// BindRole binds cmd to the button carrying role. It reports false when the
// layout does not assign the role.
func (s *Surface) BindRole(role Role, cmd control.ButtonCommand) bool {
	b, ok := s.roles[role]
	if !ok {
		return false
	}
	b.Bind(cmd)
	return true
}

// RoleButton returns the button carrying role
func (s *Surface) RoleButton(role Role) (*control.Button, bool) {
	b, ok := s.roles[role]
	return b, ok
}

// IsPressed reports whether the button carrying role is held
func (s *Surface) IsPressed(role Role) bool {
	b, ok := s.roles[role]
	return ok && b.IsPressed()
}

// Button returns a button by layout id
func (s *Surface) Button(id string) (*control.Button, error) {
	b, ok := s.buttons[id]
	if !ok {
		return nil, fmt.Errorf("%w: button %q", ErrUnknownControl, id)
	}
	return b, nil
}

// Continuous returns a knob or fader by layout id
func (s *Surface) Continuous(id string) (*control.Continuous, error) {
	k, ok := s.knobByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: continuous %q", ErrUnknownControl, id)
	}
	return k, nil
}

// Grid returns the pads in grid order
func (s *Surface) Grid() []*control.Button { return s.grid }

// Knobs returns the continuous controls in layout order
func (s *Surface) Knobs() []*control.Continuous { return s.knobs }

func (s *Surface) ID() uuid.UUID { return s.id }
func (s *Surface) Name() string { return s.layout.Name }
func (s *Surface) Layout() config.Layout { return s.layout }
func (s *Surface) Scheduler() *scheduler.Scheduler { return s.sched }
func (s *Surface) Timing() *control.TimeoutOptimizer { return s.timing }
func (s *Surface) Colors() *theme.ColorManager { return s.colors }
func (s *Surface) Settings() Settings { return s.settings }
func (s *Surface) Modes() *mode.Modes { return s.modes }
func (s *Surface) Views() *mode.Views { return s.views }
func (s *Surface) Device() device.Device { return s.dev }

// Stats reports output cache counters
func (s *Surface) Stats() (writes, skipped int) {
	return s.lightCache.Writes + s.textCache.Writes, s.lightCache.Skipped + s.textCache.Skipped
}
