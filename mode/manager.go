// Package mode holds the registries of modes (knob/fader pages) and views
// (pad grid pages) and the active/temporary/previous stack that decides
// which one currently owns the shared controls.
package mode

import (
	"go-surface/debug"
)

// Handler is what every registered mode or view implements
type Handler interface {
	Name() string
	OnActivate()
	OnDeactivate()
}

// Updater is implemented by handlers that recompute state before outputs
// are refreshed on each tick
type Updater interface {
	Update()
}

// ChangeListener is told about every change of the handler that owns the
// controls. previous is the id that owned them before, which is the
// temporary override when one was set, not the active id; listeners that
// reset held controls care about the handler the user was actually on.
type ChangeListener[ID comparable] func(previous, current ID)

// Manager is a registry plus the activation stack. Callers should always
// ask for Current/ActiveOrTemp; Active ignores temporary overrides.
type Manager[ID comparable, H Handler] struct {
	name     string
	handlers map[ID]H
	order    []ID

	active    ID
	hasActive bool

	temporary ID
	hasTemp   bool

	previous    ID
	hasPrevious bool

	listeners []ChangeListener[ID]
}

// NewManager creates an empty manager; name is only used for logging
func NewManager[ID comparable, H Handler](name string) *Manager[ID, H] {
	return &Manager[ID, H]{
		name:     name,
		handlers: make(map[ID]H),
	}
}

// Register adds or replaces a handler
func (m *Manager[ID, H]) Register(id ID, h H) {
	if _, ok := m.handlers[id]; !ok {
		m.order = append(m.order, id)
	}
	m.handlers[id] = h
}

// Get returns the handler for id
func (m *Manager[ID, H]) Get(id ID) (H, bool) {
	h, ok := m.handlers[id]
	return h, ok
}

// IDs returns the registered ids in registration order
func (m *Manager[ID, H]) IDs() []ID {
	out := make([]ID, len(m.order))
	copy(out, m.order)
	return out
}

// AddChangeListener registers fn for every change of the current handler
func (m *Manager[ID, H]) AddChangeListener(fn ChangeListener[ID]) {
	m.listeners = append(m.listeners, fn)
}

// ActiveOrTemp returns the temporary id if one is set, else the active id
func (m *Manager[ID, H]) ActiveOrTemp() (ID, bool) {
	if m.hasTemp {
		return m.temporary, true
	}
	return m.active, m.hasActive
}

// Active returns the persistent selection, ignoring overrides
func (m *Manager[ID, H]) Active() (ID, bool) {
	return m.active, m.hasActive
}

// Previous returns the active id before the last SetActive
func (m *Manager[ID, H]) Previous() (ID, bool) {
	return m.previous, m.hasPrevious
}

// Current returns the handler that currently owns the controls
func (m *Manager[ID, H]) Current() (H, bool) {
	id, ok := m.ActiveOrTemp()
	if !ok {
		var zero H
		return zero, false
	}
	return m.Get(id)
}

// IsActive checks id against the temporary override while one is set,
// else against the active id
func (m *Manager[ID, H]) IsActive(id ID) bool {
	cur, ok := m.ActiveOrTemp()
	return ok && cur == id
}

// IsTemporary reports whether a temporary override is set
func (m *Manager[ID, H]) IsTemporary() bool {
	return m.hasTemp
}

// SetActive makes id the persistent selection and drops any override.
// Unknown ids are ignored.
func (m *Manager[ID, H]) SetActive(id ID) {
	if _, ok := m.handlers[id]; !ok {
		debug.Warn("mode", "%s: unknown id %v", m.name, id)
		return
	}
	if m.hasActive && m.active == id && !m.hasTemp {
		return
	}

	before, hadBefore := m.ActiveOrTemp()
	if m.hasActive && m.active != id {
		m.previous, m.hasPrevious = m.active, true
	}
	m.active, m.hasActive = id, true
	var zero ID
	m.temporary, m.hasTemp = zero, false

	m.transition(before, hadBefore, id)
}

// SetTemporary overrides the current handler without touching the active id
func (m *Manager[ID, H]) SetTemporary(id ID) {
	if _, ok := m.handlers[id]; !ok {
		debug.Warn("mode", "%s: unknown temporary id %v", m.name, id)
		return
	}
	before, hadBefore := m.ActiveOrTemp()
	if hadBefore && before == id {
		m.temporary, m.hasTemp = id, true
		return
	}
	m.temporary, m.hasTemp = id, true
	m.transition(before, hadBefore, id)
}

// Restore drops the temporary override; a no-op without one
func (m *Manager[ID, H]) Restore() {
	if !m.hasTemp {
		return
	}
	before := m.temporary
	var zero ID
	m.temporary, m.hasTemp = zero, false
	if !m.hasActive {
		m.deactivate(before, true)
		return
	}
	if before == m.active {
		return
	}
	m.transition(before, true, m.active)
}

// ActivatePrevious switches back to the active id before the last change
func (m *Manager[ID, H]) ActivatePrevious() {
	if !m.hasPrevious {
		return
	}
	m.SetActive(m.previous)
}

func (m *Manager[ID, H]) transition(before ID, hadBefore bool, after ID) {
	m.deactivate(before, hadBefore)
	if h, ok := m.handlers[after]; ok {
		h.OnActivate()
	}
	debug.Log("mode", "%s: %v -> %v (temporary=%t)", m.name, before, after, m.hasTemp)
	for _, l := range m.listeners {
		l(before, after)
	}
}

func (m *Manager[ID, H]) deactivate(id ID, ok bool) {
	if !ok {
		return
	}
	if h, found := m.handlers[id]; found {
		h.OnDeactivate()
	}
}
