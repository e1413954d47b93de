// Package device is the contract between the dispatch core and the
// per-hardware adapters (MIDI ports, serial links, websocket surfaces).
// Adapters own their wire format; the core only sees addresses and values.
package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrClosed is returned by writes to a closed adapter
var ErrClosed = errors.New("device closed")

// Kind is the message family an address belongs to
type Kind uint8

const (
	KindNote Kind = iota
	KindCC
	KindPitchbend
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindCC:
		return "cc"
	case KindPitchbend:
		return "pb"
	case KindText:
		return "text"
	default:
		return "?"
	}
}

// Address identifies one physical input or output on a device. Two logical
// controls that share an Address share the physical element.
type Address struct {
	Kind    Kind
	Channel uint8
	Number  uint16
}

// Note addresses a note-driven pad, button or LED
func Note(channel uint8, number uint16) Address {
	return Address{Kind: KindNote, Channel: channel, Number: number}
}

// CC addresses a control-change knob, fader or LED ring
func CC(channel uint8, number uint16) Address {
	return Address{Kind: KindCC, Channel: channel, Number: number}
}

// Pitchbend addresses the pitchbend strip or fader on a channel
func Pitchbend(channel uint8) Address {
	return Address{Kind: KindPitchbend, Channel: channel}
}

// Text addresses a display cell
func Text(cell uint16) Address {
	return Address{Kind: KindText, Number: cell}
}

func (a Address) String() string {
	switch a.Kind {
	case KindPitchbend:
		return fmt.Sprintf("pb:%d", a.Channel)
	case KindText:
		return fmt.Sprintf("text:%d", a.Number)
	default:
		return fmt.Sprintf("%s:%d:%d", a.Kind, a.Channel, a.Number)
	}
}

// ParseAddress reads the String form: note:CH:N, cc:CH:N, pb:CH, text:N
func ParseAddress(s string) (Address, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	nums := make([]int, 0, 2)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Address{}, fmt.Errorf("parse address %q: bad number %q", s, p)
		}
		nums = append(nums, n)
	}

	want := func(n int) error {
		if len(nums) != n {
			return fmt.Errorf("parse address %q: want %d numbers, got %d", s, n, len(nums))
		}
		return nil
	}

	switch strings.ToLower(parts[0]) {
	case "note", "cc":
		if err := want(2); err != nil {
			return Address{}, err
		}
		if nums[0] > 15 || nums[1] > 0x3FFF {
			return Address{}, fmt.Errorf("parse address %q: out of range", s)
		}
		if strings.ToLower(parts[0]) == "note" {
			return Note(uint8(nums[0]), uint16(nums[1])), nil
		}
		return CC(uint8(nums[0]), uint16(nums[1])), nil
	case "pb":
		if err := want(1); err != nil {
			return Address{}, err
		}
		if nums[0] > 15 {
			return Address{}, fmt.Errorf("parse address %q: out of range", s)
		}
		return Pitchbend(uint8(nums[0])), nil
	case "text":
		if err := want(1); err != nil {
			return Address{}, err
		}
		return Text(uint16(nums[0])), nil
	default:
		return Address{}, fmt.Errorf("parse address %q: unknown kind %q", s, parts[0])
	}
}

// Event is a raw input: a press (value>0) or release (0) for buttons, a
// position or delta for continuous controls
type Event struct {
	Address Address
	Value   int
}

// Device is what a surface drives. Events may be produced on any goroutine;
// the host moves them onto the surface's loop before dispatch.
type Device interface {
	Name() string
	SendRaw(addr Address, value int) error
	SendText(addr Address, text string) error
	Events() <-chan Event
	Close() error
}
