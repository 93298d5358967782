package simlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_NilReceiverIsSafe(t *testing.T) {
	var l *Log
	l.Add(1, "a", "b", "c", "d", "e", 0)
	l.AddVerbose(1, "a", "b", "c", "d", "e", 0)
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Entries())
	assert.False(t, l.HasEntry("", "", ""))
	assert.Equal(t, -1, l.FirstTick("c", "d", ""))
}

func TestLog_FilterAndCount(t *testing.T) {
	l := New(false)
	l.Add(1, "hero#1", "azure", "ai", "state", "idle->wander roam", 0)
	l.Add(2, "hero#1", "azure", "ai", "state", "wander->flee threat", 0)
	l.Add(3, "", "", "path", "partial", "{1 1}->{9 9} best {4 4}", 5000)
	l.AddVerbose(4, "", "", "path", "direct", "", 0)

	assert.Equal(t, 3, l.Len(), "verbose entries are dropped when verbose is off")
	assert.Equal(t, 2, l.Count("ai", "state"))
	assert.True(t, l.HasEntry("ai", "", "flee"))
	assert.Equal(t, 2, l.FirstTick("ai", "state", "flee"))
	assert.Equal(t, 3, l.FirstTick("", "partial", ""))

	last, ok := l.LastOf("path", "partial")
	assert.True(t, ok)
	assert.Equal(t, 5000.0, last.NumVal)
	assert.Len(t, l.FilterActor("hero#1"), 2)
}

func TestLog_Truncate(t *testing.T) {
	l := New(true)
	for i := 0; i < 10; i++ {
		l.Add(i, "", "", "world", "day", "", float64(i))
	}
	l.Truncate(3)
	entries := l.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, 7, entries[0].Tick)
	assert.Contains(t, l.Format(), "[T=009]")
}

func TestEntry_Matches(t *testing.T) {
	e := Entry{Tick: 42, Actor: "hero#3", Category: "ai", Key: "state", Value: "idle->seek tree:tree#7"}
	assert.True(t, e.Matches("", "", ""))
	assert.True(t, e.Matches("ai", "state", "seek"))
	assert.False(t, e.Matches("path", "state", ""))
	assert.False(t, e.Matches("ai", "rest", ""))
	assert.False(t, e.Matches("ai", "state", "flee"))
	assert.Equal(t, "[T=042] hero#3   ai        state            idle->seek tree:tree#7", e.String())
}
