package nav

import (
	"context"
	"math"

	"github.com/sasha-s/go-deadlock"
)

// Router hands out paths to agents. ready is false while an asynchronous
// request is still in flight; a ready result with a nil path means no route.
type Router interface {
	Route(agent int, start, end Point) (path []Point, ready bool)
}

// DirectRouter answers every request immediately on the caller's goroutine.
type DirectRouter struct {
	*Pathfinder
}

// NewDirectRouter wraps pf.
func NewDirectRouter(pf *Pathfinder) DirectRouter { return DirectRouter{Pathfinder: pf} }

// Route implements Router.
func (r DirectRouter) Route(_ int, start, end Point) ([]Point, bool) {
	return r.FindPath(start, end), true
}

// DefaultDedupRadius is how close a new goal must be to an existing one to
// reuse it.
const DefaultDedupRadius = 2.0

type request struct {
	start, end Point
}

type result struct {
	end  Point
	path []Point
}

// Service computes paths on a background goroutine. Each agent has at most one
// request in flight; a newer request to a different goal replaces it, while a
// request whose goal lies within DedupRadius of a pending or delivered goal is
// absorbed without another search.
type Service struct {
	DedupRadius float64

	mu       deadlock.Mutex
	pf       *Pathfinder
	pending  map[int]request
	inflight map[int]request
	queue    []int
	results  map[int]result
	wake     chan struct{}
	searches int
}

// NewService takes ownership of pf; it must not be used elsewhere.
func NewService(pf *Pathfinder) *Service {
	return &Service{
		DedupRadius: DefaultDedupRadius,
		pf:          pf,
		pending:     make(map[int]request),
		inflight:    make(map[int]request),
		results:     make(map[int]result),
		wake:        make(chan struct{}, 1),
	}
}

func (s *Service) near(a, b Point) bool {
	return math.Hypot(float64(a.X-b.X), float64(a.Z-b.Z)) <= s.DedupRadius
}

// Route implements Router.
func (s *Service) Route(agent int, start, end Point) ([]Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res, ok := s.results[agent]; ok && s.near(res.end, end) {
		return res.path, true
	}
	if req, ok := s.pending[agent]; ok && s.near(req.end, end) {
		return nil, false
	}
	if req, ok := s.inflight[agent]; ok && s.near(req.end, end) {
		if _, replaced := s.pending[agent]; !replaced {
			return nil, false
		}
	}
	delete(s.results, agent)
	if _, queued := s.pending[agent]; !queued {
		s.queue = append(s.queue, agent)
	}
	s.pending[agent] = request{start: start, end: end}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil, false
}

// Forget drops any pending request or delivered path for agent.
func (s *Service) Forget(agent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, agent)
	delete(s.inflight, agent)
	delete(s.results, agent)
}

// Searches returns how many pathfinder calls the worker has made.
func (s *Service) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

// Pending returns the number of requests waiting for the worker.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) + len(s.inflight)
}

// Run processes requests until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
		for s.step() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// step computes one queued request. It reports false when the queue is empty.
func (s *Service) step() bool {
	s.mu.Lock()
	var (
		agent int
		req   request
		found bool
	)
	for len(s.queue) > 0 && !found {
		agent = s.queue[0]
		s.queue = s.queue[1:]
		req, found = s.pending[agent]
	}
	if !found {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, agent)
	s.inflight[agent] = req
	s.searches++
	s.mu.Unlock()

	path := s.pf.FindPath(req.start, req.end)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Superseded or forgotten while computing.
	if cur, ok := s.inflight[agent]; !ok || cur != req {
		return true
	}
	delete(s.inflight, agent)
	if _, newer := s.pending[agent]; newer {
		return true
	}
	s.results[agent] = result{end: req.end, path: path}
	return true
}
