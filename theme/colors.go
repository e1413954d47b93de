package theme

import (
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DeviceColor is one entry of a device's fixed palette
type DeviceColor struct {
	Value int // what the device expects (usually a note velocity)
	RGB   RGB
}

// LaunchpadPalette approximates the Launchpad X velocity palette
var LaunchpadPalette = []DeviceColor{
	{0, RGB{0, 0, 0}},
	{3, RGB{255, 255, 255}},
	{5, RGB{255, 0, 0}},
	{7, RGB{180, 60, 60}},
	{9, RGB{255, 100, 0}},
	{11, RGB{180, 80, 40}},
	{13, RGB{255, 200, 0}},
	{17, RGB{0, 180, 0}},
	{19, RGB{0, 100, 0}},
	{21, RGB{0, 255, 0}},
	{37, RGB{0, 200, 200}},
	{43, RGB{40, 60, 120}},
	{45, RGB{0, 100, 255}},
	{49, RGB{150, 0, 200}},
	{53, RGB{255, 80, 180}},
	{78, RGB{100, 100, 255}},
	{84, RGB{255, 150, 50}},
	{87, RGB{150, 255, 100}},
	{97, RGB{180, 180, 60}},
	{119, RGB{255, 255, 255}},
}

// Named colours every surface registers
const (
	ColorOff    = "off"
	ColorOn     = "on"
	ColorDim    = "dim"
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorBlue   = "blue"
	ColorCyan   = "cyan"
	ColorPurple = "purple"
	ColorPink   = "pink"
)

var defaultColors = map[string]RGB{
	ColorOff:    {0, 0, 0},
	ColorOn:     {255, 255, 255},
	ColorDim:    {40, 60, 120},
	ColorRed:    {255, 0, 0},
	ColorGreen:  {0, 255, 0},
	ColorYellow: {255, 200, 0},
	ColorOrange: {255, 100, 0},
	ColorBlue:   {0, 100, 255},
	ColorCyan:   {0, 200, 200},
	ColorPurple: {150, 0, 200},
	ColorPink:   {255, 80, 180},
}

// ColorManager maps colour names to the values one device understands. Each
// surface owns its own instance.
type ColorManager struct {
	palette []DeviceColor
	named   map[string]int
	rgb     map[string]RGB
}

// NewColorManager builds a manager for palette with the default names
// registered. A nil palette means a monochrome device (0 off, 127 on).
func NewColorManager(palette []DeviceColor) *ColorManager {
	if len(palette) == 0 {
		palette = []DeviceColor{{0, RGB{0, 0, 0}}, {127, RGB{255, 255, 255}}}
	}
	cm := &ColorManager{
		palette: palette,
		named:   make(map[string]int),
		rgb:     make(map[string]RGB),
	}
	for name, c := range defaultColors {
		cm.Register(name, c)
	}
	return cm
}

// Register adds or replaces a named colour
func (cm *ColorManager) Register(name string, c RGB) {
	cm.rgb[name] = c
	cm.named[name] = cm.Nearest(c)
}

// Value returns the device value for name; unknown names are off
func (cm *ColorManager) Value(name string) int {
	if v, ok := cm.named[name]; ok {
		return v
	}
	return cm.named[ColorOff]
}

// Lookup is Value with an existence check
func (cm *ColorManager) Lookup(name string) (int, error) {
	v, ok := cm.named[name]
	if !ok {
		return 0, fmt.Errorf("unknown colour %q", name)
	}
	return v, nil
}

// Names lists registered colours, sorted
func (cm *ColorManager) Names() []string {
	out := make([]string, 0, len(cm.named))
	for name := range cm.named {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Nearest returns the palette value perceptually closest to c (CIE Lab)
func (cm *ColorManager) Nearest(c RGB) int {
	target := toColorful(c)
	best := cm.palette[0].Value
	bestDist := -1.0
	for _, p := range cm.palette {
		d := target.DistanceLab(toColorful(p.RGB))
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = p.Value
		}
	}
	return best
}

// RGBFor returns the palette colour behind a device value (for previews)
func (cm *ColorManager) RGBFor(value int) RGB {
	for _, p := range cm.palette {
		if p.Value == value {
			return p.RGB
		}
	}
	return RGB{}
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}
