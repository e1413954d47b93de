package midi

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-surface/debug"
	"go-surface/device"
)

// DefaultEchoWindow is how long after a write an identical incoming value
// on a motorised control is treated as the device echoing it back
const DefaultEchoWindow = 40 * time.Millisecond

// Options tune an adapter for one controller model
type Options struct {
	Init [][]byte // SysEx payloads sent after opening
	Exit [][]byte // SysEx payloads sent before closing

	// Echo lists the CC and pitchbend addresses of motorised faders. Only
	// these are filtered; notes and everything else always get through.
	Echo       map[device.Address]bool
	EchoWindow time.Duration
	Now        func() time.Time
}

func (o Options) echoes(addr device.Address) bool {
	if addr.Kind != device.KindCC && addr.Kind != device.KindPitchbend {
		return false
	}
	return o.Echo[addr]
}

type sentValue struct {
	value int
	at    time.Time
}

// Adapter is a device.Device on a pair of MIDI ports. Incoming messages
// arrive on the driver's goroutine, so the echo cache is locked.
type Adapter struct {
	name   string
	send   func(gomidi.Message) error
	stop   func()
	events chan device.Event
	opts   Options

	mu      sync.Mutex
	closing bool
	closed  bool
	recent  map[device.Address]sentValue

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// Open connects to the given ports. Either may be nil for input-only or
// output-only controllers.
func Open(name string, in drivers.In, out drivers.Out, opts Options) (*Adapter, error) {
	a := newAdapter(name, nil, opts)

	if out != nil {
		send, err := gomidi.SendTo(out)
		if err != nil {
			return nil, fmt.Errorf("open output %s: %w", name, err)
		}
		a.send = send
		for _, payload := range opts.Init {
			if err := a.send(gomidi.SysEx(payload)); err != nil {
				return nil, fmt.Errorf("init %s: %w", name, err)
			}
		}
	}

	if in != nil {
		stop, err := gomidi.ListenTo(in, a.receive, gomidi.UseSysEx())
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", name, err)
		}
		a.stop = stop
	}

	debug.Info("midi", "opened %s (in=%v out=%v)", name, in != nil, out != nil)
	return a, nil
}

// OpenByName finds ports whose names contain name and opens them
func OpenByName(name string, opts Options) (*Adapter, error) {
	in, inErr := FindInPort(name)
	out, outErr := FindOutPort(name)
	if inErr != nil && outErr != nil {
		return nil, fmt.Errorf("no MIDI ports matching %q", name)
	}
	return Open(name, in, out, opts)
}

func newAdapter(name string, send func(gomidi.Message) error, opts Options) *Adapter {
	if opts.EchoWindow == 0 {
		opts.EchoWindow = DefaultEchoWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Adapter{
		name:   name,
		send:   send,
		events: make(chan device.Event, 256),
		opts:   opts,
		recent: make(map[device.Address]sentValue),
	}
}

func (a *Adapter) receive(msg gomidi.Message, _ int32) {
	ev, ok := Decode(msg)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if s, ok := a.recent[ev.Address]; ok && a.opts.echoes(ev.Address) {
		delete(a.recent, ev.Address)
		if s.value == ev.Value && a.opts.Now().Sub(s.at) <= a.opts.EchoWindow {
			return
		}
	}
	select {
	case a.events <- ev:
	default:
		a.dropped.Add(1)
		debug.LogEvery(100, "midi", "%s: event queue full, dropped %d", a.name, a.dropped.Load())
	}
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Events() <-chan device.Event { return a.events }

// SendRaw writes a note, CC or pitchbend value
func (a *Adapter) SendRaw(addr device.Address, value int) error {
	msg, err := Encode(addr, value)
	if err != nil {
		return err
	}
	if err := a.write(msg); err != nil {
		return err
	}
	if a.opts.echoes(addr) {
		a.mu.Lock()
		a.recent[addr] = sentValue{value: value, at: a.opts.Now()}
		a.mu.Unlock()
	}
	return nil
}

// SendText writes a display cell
func (a *Adapter) SendText(addr device.Address, text string) error {
	msg, err := EncodeText(addr, text)
	if err != nil {
		return err
	}
	return a.write(msg)
}

func (a *Adapter) write(msg gomidi.Message) error {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return device.ErrClosed
	}
	if a.send == nil {
		return nil
	}
	if err := a.send(msg); err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}
	a.sent.Add(1)
	return nil
}

// Stats returns how many messages were sent and how many inputs dropped
func (a *Adapter) Stats() (sent, dropped uint64) {
	return a.sent.Load(), a.dropped.Load()
}

// Close sends the exit sequence, stops listening and closes Events
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closing {
		a.mu.Unlock()
		return nil
	}
	a.closing = true
	a.mu.Unlock()

	if a.send != nil {
		for _, payload := range a.opts.Exit {
			a.send(gomidi.SysEx(payload))
		}
	}
	if a.stop != nil {
		a.stop()
	}

	a.mu.Lock()
	a.closed = true
	close(a.events)
	a.mu.Unlock()
	debug.Info("midi", "closed %s", a.name)
	return nil
}

// FindInPort returns the first input whose name contains substr
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

// FindOutPort returns the first output whose name contains substr
func FindOutPort(substr string) (drivers.Out, error) {
	lower := strings.ToLower(substr)
	for _, port := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", substr)
}
