package combat

import "container/heap"

// Scheduler is a timer queue keyed by battle time. Timers due at the same
// time fire in the order they were scheduled.
type Scheduler struct {
	h     timerHeap
	seq   uint64
	now   float64
	fired int
}

type timer struct {
	at  float64
	seq uint64
	fn  func()
}

// At schedules fn to run once the clock reaches t.
func (s *Scheduler) At(t float64, fn func()) {
	s.seq++
	heap.Push(&s.h, timer{at: t, seq: s.seq, fn: fn})
}

// After schedules fn delay seconds after the current time.
func (s *Scheduler) After(delay float64, fn func()) {
	s.At(s.now+delay, fn)
}

// Advance moves the clock to now and runs every due timer, including timers
// that due callbacks schedule for a time that has already passed.
func (s *Scheduler) Advance(now float64) {
	s.now = now
	for s.h.Len() > 0 && s.h[0].at <= now {
		t := heap.Pop(&s.h).(timer)
		s.fired++
		t.fn()
	}
}

// Now returns the time of the last Advance.
func (s *Scheduler) Now() float64 { return s.now }

// Len is the number of pending timers.
func (s *Scheduler) Len() int { return s.h.Len() }

// Fired counts timers run so far.
func (s *Scheduler) Fired() int { return s.fired }

type timerHeap []timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	t := old[len(old)-1]
	old[len(old)-1] = timer{}
	*h = old[:len(old)-1]
	return t
}
