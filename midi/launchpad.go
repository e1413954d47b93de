package midi

import (
	"strings"
	"time"

	"go-surface/config"
	"go-surface/device"
)

// Launchpad X SysEx payloads (without F0/F7)
var (
	// select the programmer layout: F0 00 20 29 02 0C 00 7F F7
	launchpadProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	// brightness to maximum: F0 00 20 29 02 0C 08 <brightness> F7
	launchpadBrightness = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	// LED feedback from the host only: F0 00 20 29 02 0C 0A 01 01 F7
	launchpadFeedback = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
	// back to the session layout on exit
	launchpadSessionMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x00}
)

// OptionsFor returns the adapter options for a layout: the controller
// type's init and exit sequences, and echo filtering for motorised faders
func OptionsFor(l config.Layout) Options {
	var opts Options
	if l.Type == config.ControllerLaunchpadX {
		opts.Init = [][]byte{launchpadProgrammerMode, launchpadBrightness, launchpadFeedback}
		opts.Exit = [][]byte{launchpadSessionMode}
	}
	for _, c := range l.Continuous {
		if !c.Motorized {
			continue
		}
		addr, err := device.ParseAddress(c.Address)
		if err != nil {
			continue
		}
		if opts.Echo == nil {
			opts.Echo = make(map[device.Address]bool)
		}
		opts.Echo[addr] = true
	}
	if l.Timing.EchoWindowMS > 0 {
		opts.EchoWindow = time.Duration(l.Timing.EchoWindowMS) * time.Millisecond
	}
	return opts
}

// isLaunchpad matches the port a Launchpad X exposes for programmer mode
func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// MatchLayout picks the layout for a port: an exact port_name match first,
// then a port_name substring, then the first Launchpad layout for a
// Launchpad port
func MatchLayout(layouts []config.Layout, port string) (config.Layout, bool) {
	lower := strings.ToLower(port)
	for _, l := range layouts {
		if l.PortName != "" && l.PortName == port {
			return l, true
		}
	}
	for _, l := range layouts {
		if l.PortName != "" && strings.Contains(lower, strings.ToLower(l.PortName)) {
			return l, true
		}
	}
	if isLaunchpad(port) {
		for _, l := range layouts {
			if l.Type == config.ControllerLaunchpadX {
				return l, true
			}
		}
	}
	return config.Layout{}, false
}
