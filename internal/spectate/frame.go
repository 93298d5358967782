// Package spectate streams overworld snapshots to websocket spectators as
// msgpack frames.
package spectate

import (
	"sort"

	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

// EntityState is the wire form of a visible entity.
type EntityState struct {
	ID    int     `msgpack:"id"`
	Type  uint8   `msgpack:"t"`
	Kind  string  `msgpack:"k,omitempty"`
	X     float64 `msgpack:"x"`
	Z     float64 `msgpack:"z"`
	Owner string  `msgpack:"o,omitempty"`
}

// Frame is one overworld snapshot.
type Frame struct {
	Tick     int             `msgpack:"tick"`
	Day      int             `msgpack:"day"`
	Season   string          `msgpack:"season"`
	PlayerX  float64         `msgpack:"px"`
	PlayerZ  float64         `msgpack:"pz"`
	Entities []EntityState   `msgpack:"entities"`
	Factions []world.Faction `msgpack:"factions"`
	Battle   string          `msgpack:"battle,omitempty"` // enemy template being fought, if any
}

// FrameOf captures the visible part of w.
func FrameOf(w *world.World, tick int) Frame {
	f := Frame{
		Tick:    tick,
		Day:     w.Clock.Day,
		Season:  w.Clock.Season(),
		PlayerX: w.PlayerX,
		PlayerZ: w.PlayerZ,
	}
	vis := w.Visible()
	f.Entities = make([]EntityState, 0, len(vis))
	for _, e := range vis {
		f.Entities = append(f.Entities, EntityState{
			ID: e.ID, Type: uint8(e.Type), Kind: e.Kind, X: e.X, Z: e.Z, Owner: e.Owner,
		})
	}
	names := make([]string, 0, len(w.Factions))
	for name := range w.Factions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Factions = append(f.Factions, *w.Factions[name])
	}
	return f
}
