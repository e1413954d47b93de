// Package serialport drives DIY controllers that speak raw MIDI over a
// serial link (Arduino, Teensy and similar boards without USB-MIDI).
package serialport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"

	"go-surface/debug"
	"go-surface/device"
	"go-surface/midi"
)

// DefaultBaud is the MIDI DIN rate
const DefaultBaud = 31250

// Device is a device.Device on a serial port
type Device struct {
	name   string
	port   io.ReadWriteCloser
	events chan device.Event

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Open opens the serial port at path. A zero baud uses DefaultBaud.
func Open(path string, baud int) (*Device, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	debug.Info("serial", "opened %s at %d baud", path, baud)
	return New(path, port), nil
}

// New wraps an already open stream and starts reading it
func New(name string, port io.ReadWriteCloser) *Device {
	d := &Device{
		name:   name,
		port:   port,
		events: make(chan device.Event, 256),
		done:   make(chan struct{}),
	}
	go d.readLoop()
	return d
}

func (d *Device) readLoop() {
	defer close(d.done)
	defer close(d.events)

	var p Parser
	r := bufio.NewReader(d.port)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) && !d.isClosed() {
				debug.Error("serial", err, "read %s", d.name)
			}
			return
		}
		msg, ok := p.Feed(b)
		if !ok {
			continue
		}
		ev, ok := midi.Decode(msg)
		if !ok {
			continue
		}
		select {
		case d.events <- ev:
		default:
			debug.LogEvery(100, "serial", "%s: event queue full", d.name)
		}
	}
}

func (d *Device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Device) Name() string { return d.name }

func (d *Device) Events() <-chan device.Event { return d.events }

func (d *Device) SendRaw(addr device.Address, value int) error {
	msg, err := midi.Encode(addr, value)
	if err != nil {
		return err
	}
	return d.write([]byte(msg))
}

func (d *Device) SendText(addr device.Address, text string) error {
	msg, err := midi.EncodeText(addr, text)
	if err != nil {
		return err
	}
	return d.write([]byte(msg))
}

func (d *Device) write(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrClosed
	}
	if _, err := d.port.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	return nil
}

// Close closes the port and waits for the reader to stop
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.port.Close()
	<-d.done
	return err
}

// List returns the serial ports that look like USB serial adapters
func List() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	var out []string
	for _, n := range names {
		if strings.Contains(n, "usb") || strings.Contains(n, "ACM") || strings.HasPrefix(n, "COM") {
			out = append(out, n)
		}
	}
	return out, nil
}
