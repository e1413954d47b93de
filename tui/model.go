// Package tui is a terminal stand-in for a controller: it draws what the
// host wrote to a virtual device and turns key presses into device input.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-surface/config"
	"go-surface/control"
	"go-surface/device"
	"go-surface/host"
	"go-surface/theme"
	"go-surface/widgets"
)

const (
	gridCols  = 8
	pressVel  = 100
	knobWidth = 12
	fineStep  = 1
	bigStep   = 8
)

// roleKeys maps keys to the layout role they press
var roleKeys = map[string]string{
	"p":     "play",
	"s":     "stop",
	"r":     "record",
	"o":     "overdub",
	"m":     "metronome",
	"t":     "tap-tempo",
	"[":     "bank-left",
	"]":     "bank-right",
	"tab":   "mode-cycle",
	"v":     "view-cycle",
	"u":     "undo",
	"U":     "redo",
	"M":     "mute",
	"S":     "solo",
	"A":     "arm",
	"x":     "shift",
	"enter": "select",
}

type pad struct {
	input device.Address
	light device.Address
}

type knob struct {
	id       string
	input    device.Address
	ring     device.Address
	hasRing  bool
	display  device.Address
	hasText  bool
	relative control.RelativeEncoding
	encoding string
	value    int
}

type button struct {
	role  string
	input device.Address
	light device.Address
}

// Model is the bubbletea model of the monitor
type Model struct {
	Host   *host.Host
	Device *device.Virtual
	Layout config.Layout
	Colors *theme.ColorManager
	Theme  *theme.Theme

	pads     []pad
	buttons  []button
	roles    map[string]device.Address
	knobs    []*knob
	displays []device.Address

	cursor   int
	knobSel  int
	showHelp bool
	quitting bool
}

var helpSections = []widgets.KeySection{
	{Title: "Grid", Keys: []widgets.KeyBinding{
		{Key: "hjkl/arrows", Desc: "move the cursor"},
		{Key: "space", Desc: "press the pad"},
	}},
	{Title: "Buttons", Keys: []widgets.KeyBinding{
		{Key: "p s r o", Desc: "play, stop, record, overdub"},
		{Key: "m t", Desc: "metronome, tap tempo"},
		{Key: "[ ]", Desc: "bank left/right"},
		{Key: "tab v", Desc: "next mode, next view"},
		{Key: "x", Desc: "shift"},
		{Key: "enter", Desc: "select (double press for bank start)"},
		{Key: "M S A", Desc: "mute, solo, arm"},
		{Key: "u U", Desc: "undo, redo"},
	}},
	{Title: "Knobs", Keys: []widgets.KeyBinding{
		{Key: "< >", Desc: "pick a knob"},
		{Key: "+ -", Desc: "turn one step"},
		{Key: "pgup pgdown", Desc: "turn eight steps"},
	}},
}

type UpdateMsg struct{}

// NewModel builds a monitor for dev, laid out like layout
func NewModel(h *host.Host, dev *device.Virtual, layout config.Layout, th *theme.Theme) (*Model, error) {
	var palette []theme.DeviceColor
	if layout.Palette == "launchpad" {
		palette = theme.LaunchpadPalette
	}
	m := &Model{
		Host:   h,
		Device: dev,
		Layout: layout,
		Colors: theme.NewColorManager(palette),
		Theme:  th,
		roles:  make(map[string]device.Address),
	}

	byID := make(map[string]device.Address)
	for _, b := range layout.Buttons {
		in, err := device.ParseAddress(b.Address)
		if err != nil {
			return nil, err
		}
		light := in
		if b.Light != "" {
			if light, err = device.ParseAddress(b.Light); err != nil {
				return nil, err
			}
		}
		byID[b.ID] = in
		if b.Group == config.GroupGrid {
			m.pads = append(m.pads, pad{input: in, light: light})
		}
		for role, id := range layout.Roles {
			if id == b.ID {
				m.buttons = append(m.buttons, button{role: role, input: in, light: light})
			}
		}
	}
	for role, id := range layout.Roles {
		if addr, ok := byID[id]; ok {
			m.roles[role] = addr
		}
	}

	for _, c := range layout.Continuous {
		k := &knob{id: c.ID, encoding: c.Encoding}
		var err error
		if k.input, err = device.ParseAddress(c.Address); err != nil {
			return nil, err
		}
		if c.Ring != "" {
			if k.ring, err = device.ParseAddress(c.Ring); err != nil {
				return nil, err
			}
			k.hasRing = true
		}
		if c.Display != "" {
			if k.display, err = device.ParseAddress(c.Display); err != nil {
				return nil, err
			}
			k.hasText = true
		}
		k.relative, _ = control.ParseRelativeEncoding(c.Relative)
		m.knobs = append(m.knobs, k)
	}
	for _, d := range layout.Displays {
		addr, err := device.ParseAddress(d.Address)
		if err != nil {
			return nil, err
		}
		m.displays = append(m.displays, addr)
	}
	return m, nil
}

// ListenForUpdates waits for the host to write something
func ListenForUpdates(h *host.Host) tea.Cmd {
	return func() tea.Msg {
		<-h.Updates
		return UpdateMsg{}
	}
}

func (m *Model) Init() tea.Cmd {
	return ListenForUpdates(m.Host)
}

// tap sends a press and a release
func (m *Model) tap(addr device.Address) {
	m.Device.Emit(device.Event{Address: addr, Value: pressVel})
	m.Device.Emit(device.Event{Address: addr, Value: 0})
}

func (m *Model) turn(delta int) {
	if len(m.knobs) == 0 {
		return
	}
	k := m.knobs[m.knobSel]
	switch k.encoding {
	case "relative":
		m.Device.Emit(device.Event{Address: k.input, Value: k.relative.Encode(delta)})
	case "pitchbend":
		k.value = max(0, min(k.value+delta*128, 0x3FFF))
		m.Device.Emit(device.Event{Address: k.input, Value: k.value})
	default:
		k.value = max(0, min(k.value+delta, 127))
		m.Device.Emit(device.Event{Address: k.input, Value: k.value})
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
		case "left", "h":
			if m.cursor%gridCols > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor%gridCols < gridCols-1 && m.cursor+1 < len(m.pads) {
				m.cursor++
			}
		case "up", "k":
			if m.cursor >= gridCols {
				m.cursor -= gridCols
			}
		case "down", "j":
			if m.cursor+gridCols < len(m.pads) {
				m.cursor += gridCols
			}
		case " ":
			if m.cursor < len(m.pads) {
				m.tap(m.pads[m.cursor].input)
			}
		case "<", ",":
			if m.knobSel > 0 {
				m.knobSel--
			}
		case ">", ".":
			if m.knobSel < len(m.knobs)-1 {
				m.knobSel++
			}
		case "+", "=":
			m.turn(fineStep)
		case "-", "_":
			m.turn(-fineStep)
		case "pgup":
			m.turn(bigStep)
		case "pgdown":
			m.turn(-bigStep)
		default:
			if role, ok := roleKeys[key]; ok {
				if addr, ok := m.roles[role]; ok {
					m.tap(addr)
				}
			}
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Host)
	}
	return m, nil
}

func (m *Model) light(addr device.Address) theme.RGB {
	v, _ := m.Device.Value(addr)
	return m.Colors.RGBFor(v)
}

func (m *Model) renderGrid() string {
	var rows [][]widgets.Cell
	for i, p := range m.pads {
		if i%gridCols == 0 {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], widgets.Cell{Color: m.light(p.light), Cursor: i == m.cursor})
	}
	return widgets.RenderPadGrid(rows, m.Theme.Symbols)
}

func (m *Model) renderButtons() string {
	var parts []string
	for _, b := range m.buttons {
		parts = append(parts, widgets.RenderPad(m.light(b.light), m.Theme.Symbols.Button)+" "+b.role)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderKnobs() string {
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	var lines []string
	for i, k := range m.knobs {
		label := k.id
		if k.hasText {
			if text := strings.TrimSpace(m.Device.TextAt(k.display)); text != "" {
				label = text
			}
		}
		value, limit := k.value, 127
		if k.encoding == "pitchbend" {
			limit = 0x3FFF
		}
		if k.hasRing {
			value, _ = m.Device.Value(k.ring)
		}
		line := widgets.RenderKnob(label, value, limit, knobWidth)
		if i == m.knobSel {
			line = selStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	snap := m.Host.Model().Snapshot()
	playState := "STOP"
	if snap.Playing {
		playState = "PLAY"
	}
	if snap.Recording {
		playState += " REC"
	}
	header := headerStyle.Render(fmt.Sprintf("go-surface  %s  %3.0fbpm  bar:%03d  track:%d",
		playState, snap.Tempo, int(snap.Position/4)+1, snap.Selected+1))

	var texts []string
	for _, addr := range m.displays {
		if t := strings.TrimSpace(m.Device.TextAt(addr)); t != "" {
			texts = append(texts, t)
		}
	}

	var status string
	for _, st := range m.Host.Stats() {
		if st.Name != m.Layout.Name {
			continue
		}
		status = fmt.Sprintf("writes:%d skipped:%d", st.Writes, st.Skipped)
		if st.WriteErrors > 0 || st.Panics > 0 {
			status += warnStyle.Render(fmt.Sprintf(" errors:%d panics:%d", st.WriteErrors, st.Panics))
		}
	}

	help := dimStyle.Render("hjkl:move  space:pad  p/s/r:transport  [ ]:bank  tab:mode  < >:knob  +/-:turn  ?:help  q:quit")
	if m.showHelp {
		help = widgets.RenderKeyHelp(helpSections)
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(strings.Join(texts, " | ")))
	out.WriteString("\n\n")
	out.WriteString(m.renderGrid())
	out.WriteString("\n\n")
	out.WriteString(m.renderButtons())
	if len(m.knobs) > 0 {
		out.WriteString("\n\n")
		out.WriteString(m.renderKnobs())
	}
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(status))
	out.WriteString("\n")
	out.WriteString(help)
	return out.String()
}
