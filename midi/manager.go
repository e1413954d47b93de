package midi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-surface/config"
	"go-surface/debug"
	"go-surface/device"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type   DeviceEventType
	Device device.Device
	Layout config.Layout
	ID     string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// PortLister returns the names of the current input and output ports
type PortLister func() (ins, outs []string)

// Opener opens a device on the named ports
type Opener func(in, out string, opts Options) (device.Device, error)

// DeviceManager handles hot-plug detection of MIDI controllers. Ports are
// matched against the auto-connect layouts it was given.
type DeviceManager struct {
	layouts  []config.Layout
	devices  map[string]device.Device
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
	timeout  time.Duration

	list PortLister
	open Opener
}

// NewDeviceManager creates a manager for layouts using the registered
// gomidi driver
func NewDeviceManager(layouts []config.Layout) *DeviceManager {
	var midiLayouts []config.Layout
	for _, l := range layouts {
		if l.Transport == config.TransportMIDI && l.AutoConnect {
			midiLayouts = append(midiLayouts, l)
		}
	}
	return &DeviceManager{
		layouts:  midiLayouts,
		devices:  make(map[string]device.Device),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		timeout:  3 * time.Second,
		list:     ListPorts,
		open:     openPorts,
	}
}

// SetPorts replaces port discovery and opening, for tests and other
// drivers
func (dm *DeviceManager) SetPorts(list PortLister, open Opener) {
	dm.list = list
	dm.open = open
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Devices returns a snapshot of connected devices by port
func (dm *DeviceManager) Devices() map[string]device.Device {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]device.Device, len(dm.devices))
	for k, v := range dm.devices {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.Scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.Scan()
		}
	}
}

// Scan compares the current ports with the open devices once
func (dm *DeviceManager) Scan() {
	// listing ports can hang on some drivers
	type portsResult struct {
		ins, outs []string
	}
	ch := make(chan portsResult, 1)
	go func() {
		ins, outs := dm.list()
		ch <- portsResult{ins, outs}
	}()

	var ins, outs []string
	select {
	case result := <-ch:
		ins, outs = result.ins, result.outs
	case <-time.After(dm.timeout):
		debug.Warn("midi", "port scan timed out after %s", dm.timeout)
		return
	}

	seen := make(map[string]bool)
	for _, in := range ins {
		layout, ok := MatchLayout(dm.layouts, in)
		if !ok {
			continue
		}
		seen[in] = true

		dm.mu.RLock()
		_, exists := dm.devices[in]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		out := matchOutput(in, outs)
		dev, err := dm.open(in, out, OptionsFor(layout))
		if err != nil {
			debug.Error("midi", err, "open %s", in)
			continue
		}

		dm.mu.Lock()
		dm.devices[in] = dev
		dm.mu.Unlock()

		dm.events <- DeviceEvent{Type: DeviceConnected, Device: dev, Layout: layout, ID: in}
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.devices {
		if !seen[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.devices[id].Close()
		delete(dm.devices, id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, d := range dm.devices {
		d.Close()
	}
	dm.devices = make(map[string]device.Device)
}

// matchOutput finds the output port that belongs to an input port. Names
// are compared case-insensitively, ignoring a trailing port number.
func matchOutput(in string, outs []string) string {
	key := portKey(in)
	for _, out := range outs {
		if portKey(out) == key {
			return out
		}
	}
	return ""
}

func portKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndexByte(name, ' '); i > 0 {
		if _, err := fmt.Sscanf(name[i+1:], "%d", new(int)); err == nil {
			return name[:i]
		}
	}
	return name
}

// ListPorts returns the port names of the registered driver
func ListPorts() (ins, outs []string) {
	for _, p := range gomidi.GetInPorts() {
		ins = append(ins, p.String())
	}
	for _, p := range gomidi.GetOutPorts() {
		outs = append(outs, p.String())
	}
	return ins, outs
}

func openPorts(in, out string, opts Options) (device.Device, error) {
	inPort, err := FindInPort(in)
	if err != nil {
		return nil, err
	}
	var adapter *Adapter
	if out == "" {
		adapter, err = Open(in, inPort, nil, opts)
	} else {
		outPort, ferr := FindOutPort(out)
		if ferr != nil {
			return nil, ferr
		}
		adapter, err = Open(in, inPort, outPort, opts)
	}
	if err != nil {
		return nil, err
	}
	return adapter, nil
}
