package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"go-surface/device"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX ControllerType = "launchpad-x"
	ControllerGeneric    ControllerType = "generic"
	ControllerVirtual    ControllerType = "virtual"
)

// Transport is how the surface reaches its hardware
type Transport string

const (
	TransportMIDI      Transport = "midi"
	TransportSerial    Transport = "serial"
	TransportWebSocket Transport = "websocket"
	TransportVirtual   Transport = "virtual"
)

// Control groups
const (
	GroupGrid = "grid"
)

// ButtonConfig declares one button or pad. Light defaults to Address.
type ButtonConfig struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
	Group   string `yaml:"group,omitempty"`
	Light   string `yaml:"light,omitempty"`
}

// ContinuousConfig declares a knob, fader or encoder
type ContinuousConfig struct {
	ID       string `yaml:"id"`
	Address  string `yaml:"address"`
	Encoding string `yaml:"encoding,omitempty"` // absolute|relative|pitchbend
	Relative string `yaml:"relative,omitempty"` // twos-complement|signed-bit|bin-offset
	Fine     string `yaml:"fine,omitempty"`     // low 7 bits address for 14-bit values
	Touch    string `yaml:"touch,omitempty"`
	Ring     string `yaml:"ring,omitempty"`
	Display  string `yaml:"display,omitempty"`

	DisableTakeOver bool `yaml:"disable_take_over,omitempty"`
	// Motorized faders report the positions the host writes back to them;
	// those echoes are filtered for a short window after each write
	Motorized       bool `yaml:"motorized,omitempty"`
}

// DisplayConfig declares a text cell showing surface state
type DisplayConfig struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
	Source  string `yaml:"source"` // mode|view
}

// TimingConfig tunes long-press and double-click detection
type TimingConfig struct {
	LongPressMS   int  `yaml:"long_press_ms"`
	FloorMS       int  `yaml:"floor_ms,omitempty"`
	CeilingMS     int  `yaml:"ceiling_ms,omitempty"`
	Adaptive      bool `yaml:"adaptive"`
	DoubleClickMS int  `yaml:"double_click_ms"`
	EchoWindowMS  int  `yaml:"echo_window_ms,omitempty"`
}

// Layout is the declarative table for one surface
type Layout struct {
	Name        string         `yaml:"name"`
	Type        ControllerType `yaml:"type"`
	Transport   Transport      `yaml:"transport"`
	PortName    string         `yaml:"port_name,omitempty"`
	SerialPath  string         `yaml:"serial_path,omitempty"`
	SerialBaud  int            `yaml:"serial_baud,omitempty"`
	AutoConnect bool           `yaml:"auto_connect"`
	Palette     string         `yaml:"palette,omitempty"` // launchpad|mono

	Buttons    []ButtonConfig     `yaml:"buttons"`
	Continuous []ContinuousConfig `yaml:"continuous,omitempty"`
	Displays   []DisplayConfig    `yaml:"displays,omitempty"`

	// Roles maps a role name to the button that triggers it
	Roles map[string]string `yaml:"roles,omitempty"`

	Settings map[string]string `yaml:"settings,omitempty"`
	Timing   TimingConfig      `yaml:"timing"`
}

// Config is the main configuration structure
type Config struct {
	UpdateHz int      `yaml:"update_hz"`
	Surfaces []Layout `yaml:"surfaces"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		UpdateHz: 30,
		Surfaces: []Layout{DefaultLayout(ControllerLaunchpadX)},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-surface"), nil
}

// ConfigPath returns the full path to surfaces.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "surfaces.yaml"), nil
}

// Load reads the config from path (empty means ConfigPath), or returns
// defaults if the file does not exist
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates YAML config data
func Parse(data []byte) (*Config, error) {
	cfg := Config{UpdateHz: 30}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i := range cfg.Surfaces {
		cfg.Surfaces[i].applyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path (empty means ConfigPath)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every layout
func (c *Config) Validate() error {
	if c.UpdateHz <= 0 || c.UpdateHz > 1000 {
		return fmt.Errorf("update_hz must be in 1..1000, got %d", c.UpdateHz)
	}
	names := make(map[string]bool)
	for i := range c.Surfaces {
		l := &c.Surfaces[i]
		if names[l.Name] {
			return fmt.Errorf("surface %q declared twice", l.Name)
		}
		names[l.Name] = true
		if err := l.Validate(); err != nil {
			return fmt.Errorf("surface %q: %w", l.Name, err)
		}
	}
	return nil
}

// FindSurface finds a layout by port name
func (c *Config) FindSurface(portName string) *Layout {
	for i := range c.Surfaces {
		if c.Surfaces[i].PortName == portName {
			return &c.Surfaces[i]
		}
	}
	return nil
}

// AddSurface adds or updates a layout by name
func (c *Config) AddSurface(l Layout) {
	for i := range c.Surfaces {
		if c.Surfaces[i].Name == l.Name {
			c.Surfaces[i] = l
			return
		}
	}
	c.Surfaces = append(c.Surfaces, l)
}

// AutoConnectSurfaces returns layouts with auto_connect enabled
func (c *Config) AutoConnectSurfaces() []Layout {
	var result []Layout
	for _, l := range c.Surfaces {
		if l.AutoConnect {
			result = append(result, l)
		}
	}
	return result
}

func (l *Layout) applyDefaults() {
	if l.Transport == "" {
		l.Transport = TransportMIDI
	}
	if l.Timing.LongPressMS == 0 {
		l.Timing.LongPressMS = 300
	}
	if l.Timing.DoubleClickMS == 0 {
		l.Timing.DoubleClickMS = 300
	}
	if l.Transport == TransportSerial && l.SerialBaud == 0 {
		l.SerialBaud = 31250
	}
}

// Validate checks ids are unique and every address parses. Role names are
// checked when the surface is built.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	switch l.Transport {
	case TransportMIDI, TransportSerial, TransportWebSocket, TransportVirtual:
	default:
		return fmt.Errorf("unknown transport %q", l.Transport)
	}
	if l.Transport == TransportSerial && l.SerialPath == "" {
		return errors.New("serial transport needs serial_path")
	}

	ids := make(map[string]bool)
	claim := func(id string) error {
		if id == "" {
			return errors.New("control without id")
		}
		if ids[id] {
			return fmt.Errorf("control id %q declared twice", id)
		}
		ids[id] = true
		return nil
	}
	check := func(id, field, addr string, optional bool) error {
		if addr == "" && optional {
			return nil
		}
		if _, err := device.ParseAddress(addr); err != nil {
			return fmt.Errorf("%s %s: %w", id, field, err)
		}
		return nil
	}

	for _, b := range l.Buttons {
		if err := claim(b.ID); err != nil {
			return err
		}
		if err := check(b.ID, "address", b.Address, false); err != nil {
			return err
		}
		if err := check(b.ID, "light", b.Light, true); err != nil {
			return err
		}
	}
	for _, c := range l.Continuous {
		if err := claim(c.ID); err != nil {
			return err
		}
		for field, addr := range map[string]string{"fine": c.Fine, "touch": c.Touch, "ring": c.Ring, "display": c.Display} {
			if err := check(c.ID, field, addr, true); err != nil {
				return err
			}
		}
		if err := check(c.ID, "address", c.Address, false); err != nil {
			return err
		}
		switch c.Encoding {
		case "", "absolute", "relative", "pitchbend":
		default:
			return fmt.Errorf("%s: unknown encoding %q", c.ID, c.Encoding)
		}
		if c.Motorized {
			addr, _ := device.ParseAddress(c.Address)
			if c.Encoding == "relative" || (addr.Kind != device.KindCC && addr.Kind != device.KindPitchbend) {
				return fmt.Errorf("%s: only absolute CC or pitchbend controls can be motorized", c.ID)
			}
		}
	}
	for _, d := range l.Displays {
		if err := claim(d.ID); err != nil {
			return err
		}
		if err := check(d.ID, "address", d.Address, false); err != nil {
			return err
		}
	}
	if l.Timing.LongPressMS < 0 || l.Timing.DoubleClickMS < 0 || l.Timing.EchoWindowMS < 0 {
		return errors.New("timing values must be positive")
	}
	return nil
}
