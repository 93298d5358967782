// Package ai drives overworld agents: AI heroes that gather resources inside
// a territory that grows with the seasons, and enemy groups that chase the
// player on a leash.
package ai

import (
	"fmt"
	"math"
	"sort"

	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

// State is the controller's current behaviour.
type State int

const (
	StateWander State = iota // ambient movement inside the territory
	StateSeek                // pathing to a resource
	StateFlee                // running straight away from the player
	StateIdle                // waiting for the next decision
	StateRest                // parked at home, making no decisions
)

func (s State) String() string {
	switch s {
	case StateWander:
		return "wander"
	case StateSeek:
		return "seek_resource"
	case StateFlee:
		return "flee"
	case StateIdle:
		return "idle"
	case StateRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Params tunes a Controller. Distances are world units, times are seconds.
type Params struct {
	DecisionInterval   float64 `yaml:"decision_interval"`
	Jitter             float64 `yaml:"jitter"` // fractional spread of the interval across agents
	BaseTerritory      float64 `yaml:"base_territory"`
	TerritoryPerSeason float64 `yaml:"territory_per_season"`
	ThreatFactor       float64 `yaml:"threat_factor"` // threat radius = territory × factor
	WanderMin          float64 `yaml:"wander_min"`
	WanderMax          float64 `yaml:"wander_max"`
	InteractRange      float64 `yaml:"interact_range"`
	InteractEvery      float64 `yaml:"interact_every"`
	Speed              float64 `yaml:"speed"`
	RestAfter          int     `yaml:"rest_after"` // successful interactions before resting
	RestDuration       float64 `yaml:"rest_duration"`
}

// DefaultParams returns the shipped tuning.
func DefaultParams() Params {
	return Params{
		DecisionInterval:   1,
		Jitter:             0.2,
		BaseTerritory:      40,
		TerritoryPerSeason: 10,
		ThreatFactor:       0.25,
		WanderMin:          5,
		WanderMax:          15,
		InteractRange:      1.5,
		InteractEvery:      0.5,
		Speed:              4,
		RestAfter:          5,
		RestDuration:       30,
	}
}

// Controller is the decision loop of one AI hero. The hero's position lives
// on its world entity; the controller keeps only ids.
type Controller struct {
	ID      int // world entity id of the hero
	Faction string
	HomeX   float64
	HomeZ   float64
	Params  Params

	w      *world.World
	router nav.Router
	log    *simlog.Log
	tick   int

	state    State
	interval float64
	timer    float64

	target     int // entity id, -1 when none
	goalCell   nav.Point
	path       []nav.Point
	pathIndex  int
	unreach    map[int]bool
	cooldown   float64
	wanderX    float64
	wanderZ    float64
	wandering  bool
	fleeDirX   float64
	fleeDirZ   float64
	restLeft   float64
	harvests   int
	totalDone  int
	lastReason string
}

// NewController attaches a controller to the hero entity id. Home is the
// entity's position at construction.
func NewController(w *world.World, router nav.Router, id int, p Params, log *simlog.Log) *Controller {
	c := &Controller{
		ID:      id,
		Params:  p,
		w:       w,
		router:  router,
		log:     log,
		state:   StateIdle,
		target:  -1,
		unreach: make(map[int]bool),
	}
	if e := w.Entity(id); e != nil {
		c.Faction = e.Owner
		c.HomeX, c.HomeZ = e.X, e.Z
	}
	r := w.RNG()
	c.interval = p.DecisionInterval * (1 + p.Jitter*(r.Next()-0.5))
	c.timer = r.Float(0, c.interval)
	return c
}

// RestoreController rebuilds a controller from a snapshot. Unlike
// NewController it draws nothing from the world RNG.
func RestoreController(w *world.World, router nav.Router, sv world.HeroSave, p Params, log *simlog.Log) *Controller {
	c := &Controller{
		ID:         sv.ID,
		HomeX:      sv.HomeX,
		HomeZ:      sv.HomeZ,
		Params:     p,
		w:          w,
		router:     router,
		log:        log,
		state:      State(sv.State),
		lastReason: sv.Reason,
		interval:   sv.Interval,
		timer:      sv.Timer,
		target:     sv.Target,
		goalCell:   nav.Point{X: sv.Goal.X, Z: sv.Goal.Z},
		pathIndex:  sv.PathIndex,
		unreach:    make(map[int]bool, len(sv.Unreachable)),
		cooldown:   sv.Cooldown,
		wanderX:    sv.WanderX,
		wanderZ:    sv.WanderZ,
		wandering:  sv.Wandering,
		fleeDirX:   sv.FleeX,
		fleeDirZ:   sv.FleeZ,
		restLeft:   sv.RestLeft,
		harvests:   sv.Harvests,
		totalDone:  sv.Total,
	}
	if e := w.Entity(sv.ID); e != nil {
		c.Faction = e.Owner
	}
	if sv.Path != nil {
		c.path = make([]nav.Point, len(sv.Path))
		for i, pt := range sv.Path {
			c.path[i] = nav.Point{X: pt.X, Z: pt.Z}
		}
	}
	for _, id := range sv.Unreachable {
		c.unreach[id] = true
	}
	return c
}

// Save snapshots the controller for RestoreController.
func (c *Controller) Save() world.HeroSave {
	sv := world.HeroSave{
		ID:        c.ID,
		HomeX:     c.HomeX,
		HomeZ:     c.HomeZ,
		State:     int(c.state),
		Reason:    c.lastReason,
		Interval:  c.interval,
		Timer:     c.timer,
		Target:    c.target,
		Goal:      world.Cell{X: c.goalCell.X, Z: c.goalCell.Z},
		PathIndex: c.pathIndex,
		Cooldown:  c.cooldown,
		WanderX:   c.wanderX,
		WanderZ:   c.wanderZ,
		Wandering: c.wandering,
		FleeX:     c.fleeDirX,
		FleeZ:     c.fleeDirZ,
		RestLeft:  c.restLeft,
		Harvests:  c.harvests,
		Total:     c.totalDone,
	}
	if c.path != nil {
		sv.Path = make([]world.Cell, len(c.path))
		for i, pt := range c.path {
			sv.Path[i] = world.Cell{X: pt.X, Z: pt.Z}
		}
	}
	for id := range c.unreach {
		sv.Unreachable = append(sv.Unreachable, id)
	}
	sort.Ints(sv.Unreachable)
	return sv
}

// State returns the current behaviour.
func (c *Controller) State() State { return c.state }

// Target returns the entity id being sought, or -1.
func (c *Controller) Target() int { return c.target }

// Interval returns the jittered decision interval.
func (c *Controller) Interval() float64 { return c.interval }

// Harvests counts successful interactions over the controller's life.
func (c *Controller) Harvests() int { return c.totalDone }

// SetTick stamps subsequent log entries.
func (c *Controller) SetTick(tick int) { c.tick = tick }

// TerritoryRadius grows linearly with elapsed seasons.
func (c *Controller) TerritoryRadius() float64 {
	return c.Params.BaseTerritory + c.Params.TerritoryPerSeason*float64(c.w.Clock.Seasons())
}

// ThreatRadius is the player distance that triggers a flee.
func (c *Controller) ThreatRadius() float64 {
	return c.TerritoryRadius() * c.Params.ThreatFactor
}

func (c *Controller) hero() *world.Entity {
	e := c.w.Entity(c.ID)
	if e == nil || e.Removed {
		return nil
	}
	return e
}

func (c *Controller) setState(s State, why string) {
	if c.state == s && c.lastReason == why {
		return
	}
	c.log.AddVerbose(c.tick, c.label(), c.Faction, "ai", "state", fmt.Sprintf("%s->%s %s", c.state, s, why), 0)
	c.state = s
	c.lastReason = why
}

func (c *Controller) label() string { return fmt.Sprintf("hero#%d", c.ID) }

// Update advances the controller by dt seconds.
func (c *Controller) Update(dt float64) {
	e := c.hero()
	if e == nil {
		return
	}
	if c.state == StateRest {
		c.restLeft -= dt
		if c.restLeft <= 0 {
			c.setState(StateIdle, "rested")
		}
		return
	}

	c.timer -= dt
	if c.timer <= 0 {
		c.timer += c.interval
		c.decide(e)
	}
	c.act(e, dt)
}

// decide runs the priority chain: threat, then resources, then wandering.
func (c *Controller) decide(e *world.Entity) {
	if math.Hypot(c.w.PlayerX-e.X, c.w.PlayerZ-e.Z) < c.ThreatRadius() {
		dx, dz := e.X-c.w.PlayerX, e.Z-c.w.PlayerZ
		d := math.Hypot(dx, dz)
		if d < 1e-9 {
			a := c.w.RNG().Angle()
			dx, dz, d = math.Cos(a), math.Sin(a), 1
		}
		c.fleeDirX, c.fleeDirZ = dx/d, dz/d
		c.dropTarget()
		c.setState(StateFlee, "threat")
		return
	}

	if c.state == StateSeek && c.validTarget(c.w.Entity(c.target)) {
		return
	}
	if res := c.scan(e); res != nil {
		c.seek(res)
		return
	}

	c.dropTarget()
	if c.state != StateWander || !c.wandering {
		c.pickWander(e)
	}
}

func (c *Controller) eligible(t *world.Entity) bool {
	switch t.Type {
	case world.EntityTree, world.EntityPickup:
		return true
	case world.EntityCapturedBuilding:
		return t.Owner != c.Faction
	}
	return false
}

func (c *Controller) validTarget(t *world.Entity) bool {
	return t != nil && !t.Removed && c.eligible(t)
}

// scan finds the eligible resource inside the territory nearest to the hero.
func (c *Controller) scan(e *world.Entity) *world.Entity {
	cands := c.w.Near(c.HomeX, c.HomeZ, c.TerritoryRadius(), func(t *world.Entity) bool {
		return c.eligible(t) && !c.unreach[t.ID]
	})
	var best *world.Entity
	bestD := math.Inf(1)
	for _, t := range cands {
		if d := math.Hypot(t.X-e.X, t.Z-e.Z); d < bestD {
			best, bestD = t, d
		}
	}
	return best
}

func (c *Controller) seek(t *world.Entity) {
	c.dropTarget()
	c.target = t.ID
	gx, gz := c.w.Grid.CellOf(t.X, t.Z)
	c.goalCell = nav.Point{X: gx, Z: gz}
	c.wandering = false
	c.setState(StateSeek, t.Label())
}

func (c *Controller) forgetRoute() {
	if f, ok := c.router.(interface{ Forget(int) }); ok {
		f.Forget(c.ID)
	}
}

func (c *Controller) dropTarget() {
	if c.target >= 0 {
		c.forgetRoute()
	}
	c.target = -1
	c.path = nil
	c.pathIndex = 0
}

// pickWander chooses a point 5–15 units away, heading home instead when the
// random pick would leave the territory. An impassable pick is dropped and
// the hero stays put.
func (c *Controller) pickWander(e *world.Entity) {
	r := c.w.RNG()
	a := r.Angle()
	d := r.Float(c.Params.WanderMin, c.Params.WanderMax)
	tx, tz := e.X+math.Cos(a)*d, e.Z+math.Sin(a)*d
	if math.Hypot(tx-c.HomeX, tz-c.HomeZ) > c.TerritoryRadius() {
		hx, hz := c.HomeX-e.X, c.HomeZ-e.Z
		if hd := math.Hypot(hx, hz); hd > 1e-9 {
			step := math.Min(d, hd)
			tx, tz = e.X+hx/hd*step, e.Z+hz/hd*step
		}
	}
	if !c.w.Grid.IsPassable(tx, tz, nav.Clearance) {
		c.wandering = false
		c.log.AddVerbose(c.tick, c.label(), c.Faction, "ai", "wander_blocked", "", d)
		c.setState(StateWander, "blocked")
		return
	}
	c.wanderX, c.wanderZ = tx, tz
	c.wandering = true
	c.setState(StateWander, "roam")
}

func (c *Controller) act(e *world.Entity, dt float64) {
	step := c.Params.Speed * dt
	switch c.state {
	case StateFlee:
		nx, nz := e.X+c.fleeDirX*step, e.Z+c.fleeDirZ*step
		if c.w.Grid.IsPassable(nx, nz, nav.Clearance) {
			c.place(e, nx, nz)
		}
		if math.Hypot(c.w.PlayerX-e.X, c.w.PlayerZ-e.Z) >= c.ThreatRadius() {
			c.setState(StateIdle, "escaped")
		}

	case StateWander:
		if !c.wandering {
			return
		}
		if c.moveToward(e, c.wanderX, c.wanderZ, step) {
			c.wandering = false
		}

	case StateSeek:
		c.actSeek(e, dt, step)
	}
}

func (c *Controller) actSeek(e *world.Entity, dt, step float64) {
	t := c.w.Entity(c.target)
	if !c.validTarget(t) {
		c.dropTarget()
		c.setState(StateIdle, "target gone")
		return
	}

	if math.Hypot(t.X-e.X, t.Z-e.Z) <= c.Params.InteractRange {
		c.cooldown -= dt
		if c.cooldown > 0 {
			return
		}
		c.cooldown = c.Params.InteractEvery
		if !c.w.Interact(t.ID, c.Faction) {
			return
		}
		c.harvests++
		c.totalDone++
		c.dropTarget()
		if c.Params.RestAfter > 0 && c.harvests >= c.Params.RestAfter {
			c.rest(e)
			return
		}
		c.setState(StateIdle, "done")
		return
	}
	c.cooldown = 0

	if c.path == nil {
		sx, sz := c.w.Grid.CellOf(e.X, e.Z)
		start := nav.Point{X: sx, Z: sz}
		path, ready := c.router.Route(c.ID, start, c.goalCell)
		if !ready {
			return
		}
		if path == nil || (len(path) == 0 && start != c.goalCell) {
			c.unreach[c.target] = true
			c.log.Add(c.tick, c.label(), c.Faction, "ai", "unreachable", t.Label(), 0)
			c.dropTarget()
			c.setState(StateIdle, "no route")
			return
		}
		c.path, c.pathIndex = path, 0
	}
	c.followPath(e, t, step)
}

// followPath walks the remaining waypoints. Only a path that ends on the goal
// cell is closed with a direct step onto the target; the end of a partial path
// is routed again from where the hero now stands.
func (c *Controller) followPath(e, t *world.Entity, step float64) {
	remaining := step
	for remaining > 0 && c.pathIndex < len(c.path) {
		wx, wz := c.w.Grid.GridToWorld(c.path[c.pathIndex].X, c.path[c.pathIndex].Z)
		dist := math.Hypot(wx-e.X, wz-e.Z)
		if dist <= remaining {
			c.place(e, wx, wz)
			remaining -= dist
			c.pathIndex++
			continue
		}
		c.place(e, e.X+(wx-e.X)/dist*remaining, e.Z+(wz-e.Z)/dist*remaining)
		remaining = 0
	}
	if c.pathIndex < len(c.path) {
		return
	}
	if n := len(c.path); n > 0 && c.path[n-1] != c.goalCell {
		c.log.AddVerbose(c.tick, c.label(), c.Faction, "ai", "reroute", t.Label(), float64(n))
		c.forgetRoute()
		c.path, c.pathIndex = nil, 0
		return
	}
	if remaining > 0 {
		c.moveToward(e, t.X, t.Z, remaining)
	}
}

// moveToward steps straight at (tx,tz) and reports arrival. A step that would
// leave passable ground is refused and counts as arrival.
func (c *Controller) moveToward(e *world.Entity, tx, tz, step float64) bool {
	dx, dz := tx-e.X, tz-e.Z
	d := math.Hypot(dx, dz)
	nx, nz := tx, tz
	if d > step {
		nx, nz = e.X+dx/d*step, e.Z+dz/d*step
	}
	if !c.w.Grid.IsPassable(nx, nz, nav.Clearance) {
		return true
	}
	c.place(e, nx, nz)
	return d <= step
}

func (c *Controller) place(e *world.Entity, x, z float64) {
	e.X, e.Z = x, z
	c.w.Moved()
}

func (c *Controller) rest(e *world.Entity) {
	c.place(e, c.HomeX, c.HomeZ)
	c.harvests = 0
	c.restLeft = c.Params.RestDuration
	clear(c.unreach)
	c.log.Add(c.tick, c.label(), c.Faction, "ai", "rest", "", c.Params.RestDuration)
	c.setState(StateRest, "tired")
}
