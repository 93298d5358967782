package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
)

func TestEventLog_RingKeepsNewest(t *testing.T) {
	el := NewEventLog()
	for i := 0; i < eventLogSize+5; i++ {
		el.Add(i, "", "", fmt.Sprintf("e%d", i))
	}
	got := el.Recent()
	require.Len(t, got, eventLogSize)
	assert.Equal(t, 5, got[0].Tick)
	assert.Equal(t, eventLogSize+4, got[len(got)-1].Tick)
}

func TestEventLog_SyncTailsNotableEntries(t *testing.T) {
	l := simlog.New(true)
	el := NewEventLog()
	l.Add(1, "tree#3", "azure", "world", "harvest", "wood", 5)
	l.Add(1, "", "", "path", "failed", "blocked", 0)
	l.AddVerbose(2, "hero#1", "azure", "ai", "state", "idle->wander", 0)
	l.Add(3, "group#4", "player", "battle", "won", "", 20)
	el.Sync(l)

	got := el.Recent()
	require.Len(t, got, 2)
	assert.Equal(t, "harvest wood", got[0].Message)
	assert.Equal(t, "    3 [group#4] won", got[1].String())

	el.Sync(l)
	assert.Equal(t, 2, el.Len(), "entries are consumed once")

	l.Truncate(1)
	el.Rewind(l)
	l.Add(4, "", "", "save", "saved", "a", 0)
	el.Sync(l)
	assert.Equal(t, 3, el.Len())
}
