package nav

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

func TestDirectRouter_AnswersImmediately(t *testing.T) {
	var r Router = NewDirectRouter(NewPathfinder(terrain.NewGrid(10)))
	path, ready := r.Route(1, Point{0, 0}, Point{9, 9})
	assert.True(t, ready)
	assert.Len(t, path, 9)
}

func TestService_DedupsPendingRequests(t *testing.T) {
	s := NewService(NewPathfinder(terrain.NewGrid(40)))
	_, ready := s.Route(1, Point{5, 5}, Point{30, 30})
	assert.False(t, ready)
	_, ready = s.Route(1, Point{6, 6}, Point{31, 30})
	assert.False(t, ready)
	assert.Equal(t, 1, s.Pending())

	require.True(t, s.step())
	assert.False(t, s.step())
	assert.Equal(t, 1, s.Searches())

	path, ready := s.Route(1, Point{6, 6}, Point{30, 31})
	require.True(t, ready)
	assert.Equal(t, Point{30, 30}, path[len(path)-1], "reused the delivered path")
	assert.Equal(t, 1, s.Searches())
}

func TestService_NewGoalSupersedesPending(t *testing.T) {
	s := NewService(NewPathfinder(terrain.NewGrid(40)))
	s.Route(7, Point{5, 5}, Point{30, 30})
	s.Route(7, Point{5, 5}, Point{10, 30})
	assert.Equal(t, 1, s.Pending())

	require.True(t, s.step())
	path, ready := s.Route(7, Point{5, 5}, Point{10, 30})
	require.True(t, ready)
	assert.Equal(t, Point{10, 30}, path[len(path)-1])
	assert.Equal(t, 1, s.Searches())
}

func TestService_Forget(t *testing.T) {
	s := NewService(NewPathfinder(terrain.NewGrid(20)))
	s.Route(1, Point{2, 2}, Point{10, 10})
	s.Forget(1)
	assert.Zero(t, s.Pending())
	assert.False(t, s.step())
}

func TestService_RunDeliversAsynchronously(t *testing.T) {
	s := NewService(NewPathfinder(terrain.NewGrid(40)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var path []Point
	require.Eventually(t, func() bool {
		var ready bool
		path, ready = s.Route(3, Point{2, 2}, Point{20, 20})
		return ready
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, Point{20, 20}, path[len(path)-1])

	require.Eventually(t, func() bool {
		p, ready := s.Route(3, Point{2, 2}, Point{2, 20})
		return ready && p[len(p)-1] == Point{2, 20}
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, s.Searches())

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
