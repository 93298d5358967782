package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_FiresInTimeThenInsertionOrder(t *testing.T) {
	var s Scheduler
	var got []string
	s.At(2, func() { got = append(got, "a") })
	s.At(1, func() { got = append(got, "b") })
	s.At(1, func() { got = append(got, "c") })

	s.Advance(0.5)
	assert.Empty(t, got)
	s.Advance(1)
	assert.Equal(t, []string{"b", "c"}, got)
	s.Advance(5)
	assert.Equal(t, []string{"b", "c", "a"}, got)
	assert.Zero(t, s.Len())
	assert.Equal(t, 3, s.Fired())
}

func TestScheduler_CallbacksCanScheduleDueTimers(t *testing.T) {
	var s Scheduler
	var got []int
	s.At(1, func() {
		got = append(got, 1)
		s.After(0, func() { got = append(got, 2) })
		s.After(10, func() { got = append(got, 3) })
	})
	s.Advance(1)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, s.Len())
	s.Advance(11)
	assert.Equal(t, []int{1, 2, 3}, got)
}
