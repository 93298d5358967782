package ai

import (
	"fmt"
	"math"

	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

// PursuitState is an enemy group's chase phase.
type PursuitState int

const (
	PursuitIdle   PursuitState = iota // parked at the anchor
	PursuitChase                      // closing on the player
	PursuitReturn                     // leash broken, walking home
)

func (s PursuitState) String() string {
	switch s {
	case PursuitIdle:
		return "idle"
	case PursuitChase:
		return "chase"
	case PursuitReturn:
		return "return"
	default:
		return "unknown"
	}
}

// PursuitParams tunes a Pursuer.
type PursuitParams struct {
	Aggro       float64 `yaml:"aggro"` // player distance that starts a chase
	Leash       float64 `yaml:"leash"` // anchor distance that ends it
	Speed       float64 `yaml:"speed"`
	ReturnSpeed float64 `yaml:"return_speed"`
	Catch       float64 `yaml:"catch"` // contact distance that starts a battle
}

// DefaultPursuitParams returns the shipped tuning.
func DefaultPursuitParams() PursuitParams {
	return PursuitParams{Aggro: 8, Leash: 20, Speed: 3.5, ReturnSpeed: 5, Catch: 1}
}

// Pursuer chases the player while it stays within the leash of its anchor.
// Giving up is a state change, never a cancelled search.
type Pursuer struct {
	ID      int
	AnchorX float64
	AnchorZ float64
	Params  PursuitParams

	w     *world.World
	log   *simlog.Log
	tick  int
	state PursuitState
}

// NewPursuer anchors a pursuer at the group's current position.
func NewPursuer(w *world.World, id int, p PursuitParams, log *simlog.Log) *Pursuer {
	pu := &Pursuer{ID: id, Params: p, w: w, log: log}
	if e := w.Entity(id); e != nil {
		pu.AnchorX, pu.AnchorZ = e.X, e.Z
	}
	return pu
}

// RestorePursuer rebuilds a pursuer from a snapshot, keeping its saved anchor.
func RestorePursuer(w *world.World, sv world.PursuerSave, p PursuitParams, log *simlog.Log) *Pursuer {
	return &Pursuer{ID: sv.ID, AnchorX: sv.AnchorX, AnchorZ: sv.AnchorZ, Params: p, w: w, log: log, state: PursuitState(sv.State)}
}

// Save snapshots the pursuer for RestorePursuer.
func (p *Pursuer) Save() world.PursuerSave {
	return world.PursuerSave{ID: p.ID, State: int(p.state), AnchorX: p.AnchorX, AnchorZ: p.AnchorZ}
}

// State returns the chase phase.
func (p *Pursuer) State() PursuitState { return p.state }

// SetTick stamps subsequent log entries.
func (p *Pursuer) SetTick(tick int) { p.tick = tick }

func (p *Pursuer) set(s PursuitState, dist float64) {
	if p.state == s {
		return
	}
	p.log.Add(p.tick, fmt.Sprintf("group#%d", p.ID), "", "ai", "pursuit", fmt.Sprintf("%s->%s", p.state, s), dist)
	p.state = s
}

// Update moves the group and reports whether it reached the player.
func (p *Pursuer) Update(dt float64) bool {
	e := p.w.Entity(p.ID)
	if e == nil || e.Removed {
		return false
	}
	toPlayer := math.Hypot(p.w.PlayerX-e.X, p.w.PlayerZ-e.Z)

	switch p.state {
	case PursuitIdle:
		if toPlayer < p.Params.Aggro {
			p.set(PursuitChase, toPlayer)
		}

	case PursuitChase:
		if fromAnchor := math.Hypot(e.X-p.AnchorX, e.Z-p.AnchorZ); fromAnchor > p.Params.Leash {
			p.set(PursuitReturn, fromAnchor)
			break
		}
		if toPlayer <= p.Params.Catch {
			return true
		}
		p.step(e, p.w.PlayerX, p.w.PlayerZ, p.Params.Speed*dt)

	case PursuitReturn:
		if p.step(e, p.AnchorX, p.AnchorZ, p.Params.ReturnSpeed*dt) {
			p.set(PursuitIdle, 0)
		}
	}
	return false
}

// step walks straight at (tx,tz). A step onto impassable ground is refused,
// except when heading home.
func (p *Pursuer) step(e *world.Entity, tx, tz, step float64) bool {
	dx, dz := tx-e.X, tz-e.Z
	d := math.Hypot(dx, dz)
	nx, nz := tx, tz
	arrived := d <= step
	if !arrived {
		nx, nz = e.X+dx/d*step, e.Z+dz/d*step
	}
	if p.state != PursuitReturn && !p.w.Grid.IsPassable(nx, nz, nav.Clearance) {
		return false
	}
	e.X, e.Z = nx, nz
	p.w.Moved()
	return arrived
}
