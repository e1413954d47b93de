package device

import (
	"sync"
)

// Write is one recorded output write
type Write struct {
	Address Address
	Value   int
	Text    string
}

// Virtual is an in-memory device. It records every write and lets callers
// inject input events; the terminal monitor and tests drive surfaces
// through it.
type Virtual struct {
	name   string
	mu     sync.Mutex
	writes []Write
	state  map[Address]Write
	events chan Event
	closed bool

	// FailWrites makes every write return this error
	FailWrites error
}

// NewVirtual creates a virtual device with a buffered event queue
func NewVirtual(name string) *Virtual {
	return &Virtual{
		name:   name,
		state:  make(map[Address]Write),
		events: make(chan Event, 64),
	}
}

func (v *Virtual) Name() string { return v.name }

func (v *Virtual) SendRaw(addr Address, value int) error {
	return v.record(Write{Address: addr, Value: value})
}

func (v *Virtual) SendText(addr Address, text string) error {
	return v.record(Write{Address: addr, Text: text})
}

func (v *Virtual) record(w Write) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.FailWrites != nil {
		return v.FailWrites
	}
	v.writes = append(v.writes, w)
	v.state[w.Address] = w
	return nil
}

func (v *Virtual) Events() <-chan Event { return v.events }

// Emit queues an input event, dropping it when the queue is full
func (v *Virtual) Emit(ev Event) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	select {
	case v.events <- ev:
		return true
	default:
		return false
	}
}

// Writes returns a copy of the write log
func (v *Virtual) Writes() []Write {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Write, len(v.writes))
	copy(out, v.writes)
	return out
}

// Reset clears the write log but keeps the element state
func (v *Virtual) Reset() {
	v.mu.Lock()
	v.writes = nil
	v.mu.Unlock()
}

// Value returns the last value written to addr
func (v *Virtual) Value(addr Address) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	w, ok := v.state[addr]
	return w.Value, ok
}

// TextAt returns the last text written to addr
func (v *Virtual) TextAt(addr Address) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state[addr].Text
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		v.closed = true
		close(v.events)
	}
	return nil
}
