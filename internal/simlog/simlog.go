// Package simlog records structured simulation events.
//
// Every subsystem takes an optional *Log; all methods are safe on a nil
// receiver so production callers can pass nil to disable recording.
package simlog

import (
	"fmt"
	"strings"
)

// Entry is one recorded simulation event.
type Entry struct {
	Tick     int
	Actor    string  // "hero#3", "group#12", "wolf#4"; empty for world-wide events
	Side     string  // owning faction or battle side
	Category string  // path, combat, ai, world, save
	Key      string
	Value    string
	NumVal   float64
}

// Matches reports whether e has the category, key and value substring given.
// Empty arguments match anything.
func (e Entry) Matches(category, key, valueSubstr string) bool {
	return (category == "" || e.Category == category) &&
		(key == "" || e.Key == key) &&
		(valueSubstr == "" || strings.Contains(e.Value, valueSubstr))
}

// String formats the entry as one aligned line:
//
//	[T=042] hero#3   ai        state            idle->seek tree:tree#7
func (e Entry) String() string {
	return fmt.Sprintf("[T=%03d] %-8s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// Log collects structured events. It is unbounded; long-running processes
// should call Truncate periodically.
type Log struct {
	entries []Entry
	verbose bool
}

// New creates a Log. If verbose is true, AddVerbose entries are recorded too.
func New(verbose bool) *Log {
	return &Log{verbose: verbose}
}

// Add records a new entry.
func (l *Log) Add(tick int, actor, side, category, key, value string, numVal float64) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, Entry{
		Tick:     tick,
		Actor:    actor,
		Side:     side,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (l *Log) AddVerbose(tick int, actor, side, category, key, value string, numVal float64) {
	if l == nil || !l.verbose {
		return
	}
	l.Add(tick, actor, side, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	return l.entries
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Truncate keeps only the newest n entries.
func (l *Log) Truncate(n int) {
	if l == nil || len(l.entries) <= n {
		return
	}
	kept := make([]Entry, n)
	copy(kept, l.entries[len(l.entries)-n:])
	l.entries = kept
}

// Filter returns entries with the given category and key; empty matches any.
func (l *Log) Filter(category, key string) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Matches(category, key, "") {
			out = append(out, e)
		}
	}
	return out
}

// FilterActor returns entries for a specific actor label.
func (l *Log) FilterActor(label string) []Entry {
	if l == nil {
		return nil
	}
	var out []Entry
	for _, e := range l.entries {
		if e.Actor == label {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match the given category and key.
func (l *Log) Count(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the newest entry with category and key.
func (l *Log) LastOf(category, key string) (Entry, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether any entry matches.
func (l *Log) HasEntry(category, key, valueSubstr string) bool {
	return l.FirstTick(category, key, valueSubstr) >= 0
}

// FirstTick returns the tick of the earliest matching entry, or -1.
func (l *Log) FirstTick(category, key, valueSubstr string) int {
	for _, e := range l.Entries() {
		if e.Matches(category, key, valueSubstr) {
			return e.Tick
		}
	}
	return -1
}

// Format renders every entry, one per line.
func (l *Log) Format() string {
	var sb strings.Builder
	for _, e := range l.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
