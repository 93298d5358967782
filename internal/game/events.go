package game

import (
	"fmt"

	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
)

const eventLogSize = 60

// Event is a single line in the on-screen event log.
type Event struct {
	Tick    int
	Actor   string
	Side    string
	Message string
}

func (e Event) String() string {
	if e.Actor == "" {
		return fmt.Sprintf("%5d %s", e.Tick, e.Message)
	}
	return fmt.Sprintf("%5d [%s] %s", e.Tick, e.Actor, e.Message)
}

// EventLog is a ring buffer of the most recent notable simulation events.
// It tails a simlog.Log so the panel and the headless report see the same
// stream.
type EventLog struct {
	entries []Event
	head    int
	count   int
	read    int // simlog entries already consumed
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{entries: make([]Event, eventLogSize)}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(tick int, actor, side, msg string) {
	el.entries[el.head] = Event{Tick: tick, Actor: actor, Side: side, Message: msg}
	el.head = (el.head + 1) % eventLogSize
	if el.count < eventLogSize {
		el.count++
	}
}

// Recent returns entries oldest first.
func (el *EventLog) Recent() []Event {
	out := make([]Event, el.count)
	for i := 0; i < el.count; i++ {
		out[i] = el.entries[(el.head-el.count+i+eventLogSize)%eventLogSize]
	}
	return out
}

// Len returns the number of buffered entries.
func (el *EventLog) Len() int { return el.count }

// Sync copies simlog entries recorded since the last call. Verbose-only
// categories are skipped.
func (el *EventLog) Sync(l *simlog.Log) {
	entries := l.Entries()
	if el.read > len(entries) {
		el.read = 0
	}
	for _, e := range entries[el.read:] {
		if !notable(e) {
			continue
		}
		msg := e.Key
		if e.Value != "" {
			msg += " " + e.Value
		}
		el.Add(e.Tick, e.Actor, e.Side, msg)
	}
	el.read = len(entries)
}

// Rewind must be called after the tailed log is truncated.
func (el *EventLog) Rewind(l *simlog.Log) { el.read = l.Len() }

func notable(e simlog.Entry) bool {
	switch e.Category {
	case "battle", "save":
		return true
	case "world":
		switch e.Key {
		case "harvest", "capture", "pickup", "day", "season":
			return true
		}
	case "ai":
		return e.Key == "rest" || e.Key == "pursuit"
	}
	return false
}
