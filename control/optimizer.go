package control

import "time"

// Long-press timing defaults
const (
	DefaultLongPress      = 300 * time.Millisecond
	DefaultLongPressFloor = 180 * time.Millisecond
	DefaultLongPressCeil  = 600 * time.Millisecond
)

// TimeoutOptimizer adapts the long-press delay to how long the player's
// ordinary clicks last. It keeps an exponential moving average of click
// durations (presses released before turning LONG) and proposes
// Margin*average, clamped to [Floor, Ceiling]. Until the first click is
// recorded it returns Nominal.
type TimeoutOptimizer struct {
	Nominal time.Duration
	Floor   time.Duration
	Ceiling time.Duration
	Margin  float64
	Alpha   float64

	average time.Duration
	samples int
}

// NewTimeoutOptimizer returns an optimizer with the default policy
func NewTimeoutOptimizer() *TimeoutOptimizer {
	return &TimeoutOptimizer{
		Nominal: DefaultLongPress,
		Floor:   DefaultLongPressFloor,
		Ceiling: DefaultLongPressCeil,
		Margin:  2.5,
		Alpha:   0.2,
	}
}

// Timeout returns the delay to use for the next long-press check
func (o *TimeoutOptimizer) Timeout() time.Duration {
	if o == nil {
		return DefaultLongPress
	}
	if o.samples == 0 {
		return o.Nominal
	}
	d := time.Duration(float64(o.average) * o.Margin)
	if d < o.Floor {
		return o.Floor
	}
	if d > o.Ceiling {
		return o.Ceiling
	}
	return d
}

// RecordClick feeds the duration of a press that was released before LONG
func (o *TimeoutOptimizer) RecordClick(d time.Duration) {
	if o == nil || d <= 0 {
		return
	}
	if o.samples == 0 {
		o.average = d
	} else {
		o.average = time.Duration(o.Alpha*float64(d) + (1-o.Alpha)*float64(o.average))
	}
	o.samples++
}

// Samples returns how many clicks have been recorded
func (o *TimeoutOptimizer) Samples() int {
	if o == nil {
		return 0
	}
	return o.samples
}
