package mode

import (
	"go-surface/control"
)

// selector is the part of a Manager the commands need
type selector[ID comparable] interface {
	SetActive(id ID)
	SetTemporary(id ID)
	Restore()
	ActiveOrTemp() (ID, bool)
}

// SelectCommand activates a fixed id on press
type SelectCommand[ID comparable] struct {
	target selector[ID]
	id     ID
}

// Select builds a SelectCommand for m
func Select[ID comparable](m selector[ID], id ID) *SelectCommand[ID] {
	return &SelectCommand[ID]{target: m, id: id}
}

func (c *SelectCommand[ID]) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.target.SetActive(c.id)
	}
}

// TemporaryCommand shows id while the button is held and restores on
// release. A release the button combination consumed still restores,
// through the UP listener installed by Attach.
type TemporaryCommand[ID comparable] struct {
	target selector[ID]
	id     ID
}

// Temporary builds a TemporaryCommand for m
func Temporary[ID comparable](m selector[ID], id ID) *TemporaryCommand[ID] {
	return &TemporaryCommand[ID]{target: m, id: id}
}

func (c *TemporaryCommand[ID]) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.target.SetTemporary(c.id)
	}
}

// Attach binds the command to b and restores on every release, consumed or
// not
func (c *TemporaryCommand[ID]) Attach(b *control.Button) {
	b.Bind(c)
	b.AddListener(control.EventUp, func(control.ButtonEvent, int) {
		c.target.Restore()
	})
}

// Cycle is the multi-select variant: each trigger moves to the next
// candidate after the current one, wrapping at the end. If the current id
// is not a candidate the first candidate is chosen.
type Cycle[ID comparable] struct {
	target     selector[ID]
	candidates []ID
}

// NewCycle builds a cycle over candidates
func NewCycle[ID comparable](m selector[ID], candidates ...ID) *Cycle[ID] {
	return &Cycle[ID]{target: m, candidates: candidates}
}

// Next activates and returns the following candidate
func (c *Cycle[ID]) Next() (ID, bool) {
	var zero ID
	if len(c.candidates) == 0 {
		return zero, false
	}
	next := c.candidates[0]
	if cur, ok := c.target.ActiveOrTemp(); ok {
		for i, id := range c.candidates {
			if id == cur {
				next = c.candidates[(i+1)%len(c.candidates)]
				break
			}
		}
	}
	c.target.SetActive(next)
	return next, true
}

func (c *Cycle[ID]) Execute(event control.ButtonEvent, _ int) {
	if event == control.EventDown {
		c.Next()
	}
}
