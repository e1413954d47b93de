package control

import (
	"time"

	"go-surface/scheduler"
)

// DefaultDoubleClickWindow is the maximum gap between two releases that
// still counts as a double click
const DefaultDoubleClickWindow = 300 * time.Millisecond

// DoubleClick turns releases into single or double actions. A release
// opens a window; a second release inside it runs Double and closes the
// window, otherwise Single runs when the window expires. Three quick
// releases therefore give one double and one single.
type DoubleClick struct {
	Single func()
	Double func()
	Window time.Duration

	sched   *scheduler.Scheduler
	pending bool
	openAt  time.Time
	clicks  uint64
}

// NewDoubleClick builds the command; either action may be nil
func NewDoubleClick(sched *scheduler.Scheduler, single, double func()) *DoubleClick {
	return &DoubleClick{
		Single: single,
		Double: double,
		Window: DefaultDoubleClickWindow,
		sched:  sched,
	}
}

func (d *DoubleClick) Execute(event ButtonEvent, _ int) {
	if event != EventUp {
		return
	}

	now := d.sched.Now()
	d.clicks++

	if d.pending && now.Sub(d.openAt) <= d.Window {
		d.pending = false
		if d.Double != nil {
			d.Double()
		}
		return
	}

	d.pending = true
	d.openAt = now
	click := d.clicks
	d.sched.Schedule(scheduler.Task{
		Name:  "double-click window",
		Delay: d.Window,
		Guard: func() bool { return d.pending && d.clicks == click },
		Run: func() {
			d.pending = false
			if d.Single != nil {
				d.Single()
			}
		},
	})
}

// Pending reports whether a first click is waiting for its partner
func (d *DoubleClick) Pending() bool { return d.pending }
