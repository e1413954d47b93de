package surface

import (
	"errors"
	"fmt"
	"sort"
	"time"

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

var (
	ErrDuplicateAssignment = errors.New("duplicate assignment")
	ErrUnknownControl      = errors.New("unknown control")
	ErrNoDevice            = errors.New("no device attached")
)

// Lit is implemented by button commands that choose their button's light
type Lit interface {
	LightColor() string
}

type routeKind int

const (
	routeButton routeKind = iota
	routeValue
	routeFine
	routePitchbend
	routeTouch
)

type route struct {
	kind   routeKind
	button *control.Button
	knob   *control.Continuous
}

// Options are the runtime dependencies of a surface
type Options struct {
	Clock   scheduler.Clock
	Palette []theme.DeviceColor // nil picks one from the layout
}

// Surface is one physical controller: its controls, output caches, mode and
// view stacks and its own scheduler. A surface is driven by exactly one
// goroutine; nothing here is safe for concurrent use.
type Surface struct {
	id     uuid.UUID
	layout config.Layout

	sched    *scheduler.Scheduler
	timing   *control.TimeoutOptimizer
	colors   *theme.ColorManager
	settings Settings

	dev device.Device

	buttons  map[string]*control.Button
	grid     []*control.Button
	knobs    []*control.Continuous
	knobByID map[string]*control.Continuous
	roles    map[Role]*control.Button
	routes   map[device.Address]route

	lightCache *output.Cache[int]
	textCache  *output.Cache[string]
	lights     []*output.Light
	texts      []*output.Display

	modes *mode.Modes
	views *mode.Views

	// WriteErrors counts failed output writes, Panics recovered handler panics
	WriteErrors int
	Panics      int
}

// New builds a surface from a layout. Role assignments are checked here:
// an unknown role or button, or two roles on one button, fail construction.
func New(layout config.Layout, opts Options) (*Surface, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	palette := opts.Palette
	if palette == nil && layout.Palette == "launchpad" {
		palette = theme.LaunchpadPalette
	}

	s := &Surface{
		id:       uuid.New(),
		layout:   layout,
		sched:    scheduler.New(opts.Clock),
		timing:   newTiming(layout.Timing),
		colors:   theme.NewColorManager(palette),
		settings: NewSettings(layout.Settings),
		buttons:  make(map[string]*control.Button),
		knobByID: make(map[string]*control.Continuous),
		roles:    make(map[Role]*control.Button),
		routes:   make(map[device.Address]route),
		modes:    mode.NewModes(),
		views:    mode.NewViews(),
	}
	s.lightCache = output.NewCache(s.sendRaw)
	s.textCache = output.NewCache(s.sendText)

	if err := s.buildButtons(); err != nil {
		return nil, err
	}
	if err := s.buildContinuous(); err != nil {
		return nil, err
	}
	if err := s.buildDisplays(); err != nil {
		return nil, err
	}
	if err := s.assignRoles(); err != nil {
		return nil, err
	}

	// a new pad page must not inherit held pads from the old one
	s.views.AddChangeListener(func(_, _ mode.ID) {
		for _, b := range s.grid {
			b.ClearState()
		}
	})
	s.modes.AddChangeListener(func(_, _ mode.ID) { s.bindKnobs() })

	debug.Info("surface", "%s: built %d buttons, %d continuous, %d outputs",
		layout.Name, len(s.buttons), len(s.knobs), len(s.lights)+len(s.texts))
	return s, nil
}

func newTiming(t config.TimingConfig) *control.TimeoutOptimizer {
	o := control.NewTimeoutOptimizer()
	if t.LongPressMS > 0 {
		o.Nominal = time.Duration(t.LongPressMS) * time.Millisecond
	}
	if !t.Adaptive {
		o.Floor, o.Ceiling = o.Nominal, o.Nominal
		return o
	}
	if t.FloorMS > 0 {
		o.Floor = time.Duration(t.FloorMS) * time.Millisecond
	}
	if t.CeilingMS > 0 {
		o.Ceiling = time.Duration(t.CeilingMS) * time.Millisecond
	}
	return o
}

func (s *Surface) addRoute(addr device.Address, r route, owner string) error {
	if _, taken := s.routes[addr]; taken {
		return fmt.Errorf("%w: input %s of %q already routed", ErrDuplicateAssignment, addr, owner)
	}
	s.routes[addr] = r
	return nil
}

func (s *Surface) buildButtons() error {
	for _, bc := range s.layout.Buttons {
		addr, err := device.ParseAddress(bc.Address)
		if err != nil {
			return err
		}
		lightAddr := addr
		if bc.Light != "" {
			if lightAddr, err = device.ParseAddress(bc.Light); err != nil {
				return err
			}
		}

		b := control.NewButton(bc.ID, s.sched, s.timing)
		s.buttons[bc.ID] = b
		if err := s.addRoute(addr, route{kind: routeButton, button: b}, bc.ID); err != nil {
			return err
		}

		light := output.NewControl(bc.ID, lightAddr, s.lightCache, 0)
		if bc.Group == config.GroupGrid {
			index := len(s.grid)
			s.grid = append(s.grid, b)
			b.Bind(gridCommand{s: s, index: index})
			light.SetSupplier(func() int {
				if v, ok := s.views.Current(); ok {
					return v.GridColor(index)
				}
				return 0
			})
		} else {
			light.SetSupplier(func() int { return s.buttonColor(b) })
		}
		s.lights = append(s.lights, light)
	}
	return nil
}

func (s *Surface) buildContinuous() error {
	for _, cc := range s.layout.Continuous {
		addr, err := device.ParseAddress(cc.Address)
		if err != nil {
			return err
		}

		encoding := control.Absolute
		switch {
		case cc.Encoding == "relative":
			encoding = control.Relative
		case cc.Encoding == "pitchbend" || addr.Kind == device.KindPitchbend:
			encoding = control.Pitchbend
		}

		index := len(s.knobs)
		k := control.NewContinuous(cc.ID, encoding, s.sched, s.timing)
		if encoding == control.Relative {
			rel, ok := control.ParseRelativeEncoding(cc.Relative)
			if !ok {
				return fmt.Errorf("%s: unknown relative encoding %q", cc.ID, cc.Relative)
			}
			k.SetRelativeEncoding(rel)
		}
		k.DisableTakeOver(cc.DisableTakeOver)
		k.Bind(knobCommand{s: s, knob: k, index: index})
		k.BindTouch(control.ButtonFunc(func(event control.ButtonEvent, _ int) {
			if m, ok := s.modes.Current(); ok {
				m.OnKnobTouch(index, event)
			}
		}))
		s.knobs = append(s.knobs, k)
		s.knobByID[cc.ID] = k

		kind := routeValue
		if addr.Kind == device.KindPitchbend {
			kind = routePitchbend
		}
		if err := s.addRoute(addr, route{kind: kind, knob: k}, cc.ID); err != nil {
			return err
		}
		if cc.Fine != "" {
			fine, err := device.ParseAddress(cc.Fine)
			if err != nil {
				return err
			}
			k.EnableHighResolution(true)
			if err := s.addRoute(fine, route{kind: routeFine, knob: k}, cc.ID); err != nil {
				return err
			}
		}
		if cc.Touch != "" {
			touch, err := device.ParseAddress(cc.Touch)
			if err != nil {
				return err
			}
			if err := s.addRoute(touch, route{kind: routeTouch, knob: k}, cc.ID); err != nil {
				return err
			}
		}
		if cc.Ring != "" {
			ring, err := device.ParseAddress(cc.Ring)
			if err != nil {
				return err
			}
			l := output.NewControl(cc.ID+"/ring", ring, s.lightCache, 0)
			l.SetSupplier(func() int {
				if m, ok := s.modes.Current(); ok {
					return m.KnobValue(index)
				}
				return 0
			})
			s.lights = append(s.lights, l)
		}
		if cc.Display != "" {
			cell, err := device.ParseAddress(cc.Display)
			if err != nil {
				return err
			}
			d := output.NewControl(cc.ID+"/label", cell, s.textCache, "")
			d.SetSupplier(func() string {
				if m, ok := s.modes.Current(); ok {
					return m.KnobLabel(index)
				}
				return ""
			})
			s.texts = append(s.texts, d)
		}
	}
	return nil
}

func (s *Surface) buildDisplays() error {
	for _, dc := range s.layout.Displays {
		addr, err := device.ParseAddress(dc.Address)
		if err != nil {
			return err
		}
		d := output.NewControl(dc.ID, addr, s.textCache, "")
		switch dc.Source {
		case "mode":
			d.SetSupplier(func() string { return handlerName[mode.Mode](s.modes.Current()) })
		case "view":
			d.SetSupplier(func() string { return handlerName[mode.View](s.views.Current()) })
		default:
			return fmt.Errorf("display %q: unknown source %q", dc.ID, dc.Source)
		}
		s.texts = append(s.texts, d)
	}
	return nil
}

func handlerName[H mode.Handler](h H, ok bool) string {
	if !ok {
		return ""
	}
	return h.Name()
}

func (s *Surface) assignRoles() error {
	names := make([]string, 0, len(s.layout.Roles))
	for name := range s.layout.Roles {
		names = append(names, name)
	}
	sort.Strings(names)

	owner := make(map[string]Role)
	for _, name := range names {
		role, err := ParseRole(name)
		if err != nil {
			return err
		}
		id := s.layout.Roles[name]
		b, ok := s.buttons[id]
		if !ok {
			return fmt.Errorf("%w: role %s names button %q", ErrUnknownControl, role, id)
		}
		if prev, taken := owner[id]; taken {
			return fmt.Errorf("%w: button %q has roles %s and %s", ErrDuplicateAssignment, id, prev, role)
		}
		owner[id] = role
		s.roles[role] = b
	}
	return nil
}

func (s *Surface) buttonColor(b *control.Button) int {
	if lit, ok := b.Command().(Lit); ok {
		return s.colors.Value(lit.LightColor())
	}
	if b.IsPressed() {
		return s.colors.Value(theme.ColorOn)
	}
	return s.colors.Value(theme.ColorOff)
}

func (s *Surface) sendRaw(addr device.Address, value int) error {
	if s.dev == nil {
		return ErrNoDevice
	}
	return s.dev.SendRaw(addr, value)
}

func (s *Surface) sendText(addr device.Address, text string) error {
	if s.dev == nil {
		return ErrNoDevice
	}
	return s.dev.SendText(addr, text)
}

// gridCommand forwards a pad to the current view
type gridCommand struct {
	s     *Surface
	index int
}

func (c gridCommand) Execute(event control.ButtonEvent, velocity int) {
	if v, ok := c.s.views.Current(); ok {
		v.OnGridButton(c.index, event, velocity)
	}
}

// bindKnobs points every knob at the current mode: straight at a parameter
// when the mode offers one, else through knobCommand
func (s *Surface) bindKnobs() {
	m, ok := s.modes.Current()
	pm, params := m.(mode.ParameterMode)
	for i, k := range s.knobs {
		if ok && params {
			if p, found := pm.KnobParameter(i, k.MaxValue()); found {
				k.BindParameter(p)
				continue
			}
		}
		k.Bind(knobCommand{s: s, knob: k, index: i})
	}
}

// knobCommand forwards a knob to the current mode. Relative deltas are
// applied to the mode's value so modes only see absolute values.
type knobCommand struct {
	s     *Surface
	knob  *control.Continuous
	index int
}

func (c knobCommand) Execute(value int) {
	m, ok := c.s.modes.Current()
	if !ok {
		return
	}
	limit := c.knob.MaxValue()
	if c.knob.Encoding() == control.Relative {
		value = min(max(m.KnobValue(c.index)+value, 0), limit)
	}
	m.OnKnobValue(c.index, value, limit)
}
