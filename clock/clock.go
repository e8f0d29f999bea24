package clock

import (
	"container/heap"

	"github.com/milk9111/parkour/component"
)

type timer struct {
	handle   component.TimerHandle
	deadline float64
	seq      uint64
	fn       func()
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}
func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x any)   { *q = append(*q, x.(*timer)) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Clock is a frame clock with one-shot callbacks. It implements
// component.Scheduler and is not safe for concurrent use.
type Clock struct {
	now     float64
	seq     uint64
	queue   timerQueue
	pending map[component.TimerHandle]*timer
}

func New() *Clock {
	return &Clock{pending: make(map[component.TimerHandle]*timer)}
}

func (c *Clock) Now() float64 {
	if c == nil {
		return 0
	}
	return c.now
}

// After schedules fn to run once the clock has advanced by delay.
func (c *Clock) After(delay float64, fn func()) component.TimerHandle {
	if c == nil || fn == nil {
		return 0
	}
	if delay < 0 {
		delay = 0
	}
	c.seq++
	t := &timer{
		handle:   component.TimerHandle(c.seq),
		deadline: c.now + delay,
		seq:      c.seq,
		fn:       fn,
	}
	heap.Push(&c.queue, t)
	c.pending[t.handle] = t
	return t.handle
}

// Cancel is a no-op for unknown or already fired handles.
func (c *Clock) Cancel(h component.TimerHandle) {
	if c == nil || h == 0 {
		return
	}
	if t, ok := c.pending[h]; ok {
		t.fn = nil
		delete(c.pending, h)
	}
}

// Pending reports whether h is still scheduled.
func (c *Clock) Pending(h component.TimerHandle) bool {
	if c == nil {
		return false
	}
	_, ok := c.pending[h]
	return ok
}

func (c *Clock) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pending)
}

// Advance moves time forward and fires every callback whose deadline has
// passed, in deadline order. Callbacks scheduled while firing are not run
// until the next Advance, even if their deadline is already due.
func (c *Clock) Advance(dt float64) {
	if c == nil {
		return
	}
	if dt > 0 {
		c.now += dt
	}
	limit := c.seq
	var deferred []*timer
	for c.queue.Len() > 0 {
		next := c.queue[0]
		if next.deadline > c.now {
			break
		}
		heap.Pop(&c.queue)
		if next.seq > limit {
			deferred = append(deferred, next)
			continue
		}
		if next.fn == nil {
			continue
		}
		fn := next.fn
		delete(c.pending, next.handle)
		fn()
	}
	for _, t := range deferred {
		heap.Push(&c.queue, t)
	}
}
