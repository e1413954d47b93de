// Package scheduler is the cooperative task queue every surface runs its
// timing through (long-press checks, double-click windows, deferred
// reselects). It never spawns goroutines: tasks only run when the owner
// calls RunDue from its update tick.
package scheduler

import (
	"container/heap"
	"fmt"
	"time"

	"go-surface/debug"
)

// Task is a unit of deferred work. Guard is re-checked when the task fires;
// a false guard turns the task into a no-op. There is no cancellation, so
// tasks that can go stale must carry a guard.
type Task struct {
	Name  string
	Delay time.Duration
	Guard func() bool
	Run   func()
}

type entry struct {
	task Task
	at   time.Time
	seq  uint64
}

type taskQueue []*entry

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*entry)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler orders tasks by fire time, then by submission order
type Scheduler struct {
	clock Clock
	queue taskQueue
	seq   uint64

	// Stale counts tasks that fired with a false guard
	Stale int
}

// New creates a scheduler on the given clock (nil means wall time)
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler's notion of the current time
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule enqueues t to fire at now+t.Delay
func (s *Scheduler) Schedule(t Task) {
	if t.Run == nil {
		return
	}
	if t.Delay < 0 {
		t.Delay = 0
	}
	s.seq++
	heap.Push(&s.queue, &entry{task: t, at: s.clock.Now().Add(t.Delay), seq: s.seq})
}

// After is shorthand for an unguarded task
func (s *Scheduler) After(delay time.Duration, name string, fn func()) {
	s.Schedule(Task{Name: name, Delay: delay, Run: fn})
}

// Pending returns the number of queued tasks
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// NextAt returns the fire time of the earliest task
func (s *Scheduler) NextAt() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].at, true
}

// RunDue runs every task whose fire time has passed and returns how many
// ran. Tasks queued while draining wait for the next call, even with zero
// delay, so a task that reschedules itself cannot spin the loop.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()
	limit := s.seq
	ran := 0

	// Entries queued during the drain have at >= now and a higher seq, so
	// they always sort behind the older due ones.
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.at.After(now) || next.seq > limit {
			break
		}
		heap.Pop(&s.queue)
		if s.run(next) {
			ran++
		}
	}
	return ran
}

func (s *Scheduler) run(e *entry) (ran bool) {
	defer func() {
		if r := recover(); r != nil {
			debug.Error("sched", fmt.Errorf("%v", r), "task %q panicked", e.task.Name)
			ran = false
		}
	}()

	if e.task.Guard != nil && !e.task.Guard() {
		s.Stale++
		debug.Log("sched", "task %q stale, skipped", e.task.Name)
		return false
	}
	e.task.Run()
	return true
}
