package game

import (
	"context"
	"fmt"
	"math"

	"github.com/KesselZ/HeroHour-sub000/internal/ai"
	"github.com/KesselZ/HeroHour-sub000/internal/combat"
	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/persist"
	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
	"github.com/KesselZ/HeroHour-sub000/internal/spectate"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

const (
	playerSpeed   = 6.0
	goldPerEnemy  = 5 // battle reward per enemy unit
	formationRows = 6
	formationGap  = 1.5
)

// Encounter is the battle in progress, fought against one enemy group.
type Encounter struct {
	GroupID   int
	Kind      string
	StartTick int
	Battle    *combat.Battle
}

// BattleRecord summarises a finished encounter.
type BattleRecord struct {
	GroupID int
	Kind    string
	Tick    int // overworld tick the battle ended on
	Ticks   int // battle ticks fought
	Result  combat.OutcomeReason
}

// Sim wires the overworld, its AI, routing and battles into one
// single-threaded tick loop. Only the optional async path service runs on
// another goroutine.
type Sim struct {
	World  *world.World
	Log    *simlog.Log
	Events *EventLog

	cfg      *config.Config
	units    map[string]combat.UnitTemplate
	skills   map[string]combat.SkillTemplate
	talents  [2]combat.Pipeline
	renderer sink.Renderer
	audio    sink.Audio

	paths       *nav.Pathfinder
	router      nav.Router
	service     *nav.Service
	ctx         context.Context
	stopService context.CancelFunc

	heroes   []*ai.Controller
	pursuers []*ai.Pursuer
	attached map[int]bool

	encounter *Encounter
	history   []BattleRecord

	tick    int
	lastDay int
}

// Option configures a Sim at construction.
type Option func(*Sim)

// WithRenderer sets the sink that battles and the overworld draw into.
func WithRenderer(r sink.Renderer) Option {
	return func(s *Sim) { s.renderer = r }
}

// WithAudio sets the sound sink.
func WithAudio(a sink.Audio) Option {
	return func(s *Sim) { s.audio = a }
}

// WithLog records into l instead of a fresh non-verbose log.
func WithLog(l *simlog.Log) Option {
	return func(s *Sim) { s.Log = l }
}

// NewSim generates a world from cfg and attaches AI to it.
func NewSim(cfg *config.Config, opts ...Option) (*Sim, error) {
	s, err := newSim(cfg, opts)
	if err != nil {
		return nil, err
	}
	w := world.Generate(rng.New(cfg.Seed), cfg.TerrainOptions(), cfg.World, cfg.SpawnModel(), cfg.NewClock(), s.Log)
	s.attachWorld(w)
	return s, nil
}

// NewSimWithWorld runs the simulation over an existing world.
func NewSimWithWorld(cfg *config.Config, w *world.World, opts ...Option) (*Sim, error) {
	s, err := newSim(cfg, opts)
	if err != nil {
		return nil, err
	}
	s.attachWorld(w)
	return s, nil
}

func newSim(cfg *config.Config, opts []Option) (*Sim, error) {
	talents, err := cfg.TalentPipelines()
	if err != nil {
		return nil, fmt.Errorf("new sim: %w", err)
	}
	s := &Sim{
		Events:  NewEventLog(),
		cfg:     cfg,
		units:   cfg.UnitMap(),
		skills:  cfg.SkillMap(),
		talents: talents,
	}
	for _, o := range opts {
		o(s)
	}
	if s.Log == nil {
		s.Log = simlog.New(false)
	}
	if s.renderer == nil {
		s.renderer = sink.Nop{}
	}
	if s.audio == nil {
		s.audio = sink.Nop{}
	}
	return s, nil
}

func (s *Sim) attachWorld(w *world.World) {
	s.World = w
	s.lastDay = w.Clock.Day
	s.buildNav()
	s.heroes, s.pursuers = nil, nil
	s.attached = make(map[int]bool)
	for _, e := range w.Entities() {
		s.attach(e)
	}
}

// restoreAI rebuilds controllers from a snapshot without drawing from the
// world RNG. Agents the snapshot does not cover are attached fresh.
func (s *Sim) restoreAI(snap *world.SaveData) {
	s.buildNav()
	s.heroes, s.pursuers = nil, nil
	s.attached = make(map[int]bool)
	for _, sv := range snap.Heroes {
		s.heroes = append(s.heroes, ai.RestoreController(s.World, s.router, sv, s.cfg.AI, s.Log))
		s.attached[sv.ID] = true
	}
	for _, sv := range snap.Pursuers {
		s.pursuers = append(s.pursuers, ai.RestorePursuer(s.World, sv, s.cfg.Pursuit, s.Log))
		s.attached[sv.ID] = true
	}
	for _, e := range s.World.Entities() {
		s.attach(e)
	}
}

// buildNav (re)creates routing over the current grid. The async service gets
// its own pathfinder and no log, since it runs off the simulation goroutine.
func (s *Sim) buildNav() {
	if s.stopService != nil {
		s.stopService()
		s.stopService = nil
	}
	grid := s.World.Grid
	s.paths = nav.NewPathfinder(grid, append(s.cfg.PathOptions(), nav.WithLog(s.Log))...)
	s.service = nil
	if s.cfg.Pathfinding.Async {
		s.service = nav.NewService(nav.NewPathfinder(grid, s.cfg.PathOptions()...))
		if s.cfg.Pathfinding.DedupRadius > 0 {
			s.service.DedupRadius = s.cfg.Pathfinding.DedupRadius
		}
		s.router = s.service
		s.startService()
		return
	}
	s.router = nav.NewDirectRouter(s.paths)
}

// Start runs the async path service, if configured, until ctx is done. It is
// a no-op for synchronous routing.
func (s *Sim) Start(ctx context.Context) {
	s.ctx = ctx
	s.startService()
}

func (s *Sim) startService() {
	if s.service == nil || s.ctx == nil {
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopService = cancel
	go s.service.Run(ctx)
}

// Stop cancels the async path service.
func (s *Sim) Stop() {
	if s.stopService != nil {
		s.stopService()
		s.stopService = nil
	}
}

func (s *Sim) attach(e *world.Entity) {
	if e.Removed || s.attached[e.ID] {
		return
	}
	switch e.Type {
	case world.EntityAIHero:
		s.heroes = append(s.heroes, ai.NewController(s.World, s.router, e.ID, s.cfg.AI, s.Log))
	case world.EntityEnemyGroup:
		s.pursuers = append(s.pursuers, ai.NewPursuer(s.World, e.ID, s.cfg.Pursuit, s.Log))
	default:
		return
	}
	s.attached[e.ID] = true
}

// AddEntity places e in the world, attaching AI when it is a hero or an enemy
// group.
func (s *Sim) AddEntity(e world.Entity) *world.Entity {
	added := s.World.Add(e)
	s.attach(added)
	return added
}

// Config returns the configuration the sim was built from.
func (s *Sim) Config() *config.Config { return s.cfg }

// Tick returns the number of updates run so far.
func (s *Sim) Tick() int { return s.tick }

// Heroes returns the AI hero controllers.
func (s *Sim) Heroes() []*ai.Controller { return s.heroes }

// Pursuers returns the enemy group controllers.
func (s *Sim) Pursuers() []*ai.Pursuer { return s.pursuers }

// Router returns the routing in use.
func (s *Sim) Router() nav.Router { return s.router }

// Paths returns the synchronous pathfinder.
func (s *Sim) Paths() *nav.Pathfinder { return s.paths }

// Encounter returns the battle in progress, or nil.
func (s *Sim) Encounter() *Encounter { return s.encounter }

// History returns every finished battle, oldest first.
func (s *Sim) History() []BattleRecord { return s.history }

func (s *Sim) stamp() {
	s.World.SetTick(s.tick)
	s.paths.SetTick(s.tick)
	for _, h := range s.heroes {
		h.SetTick(s.tick)
	}
	for _, p := range s.pursuers {
		p.SetTick(s.tick)
	}
}

// Step advances one tick of the configured battle step length.
func (s *Sim) Step() { s.Update(s.cfg.Combat.Dt) }

// Update advances the simulation by dt seconds. While a battle is being
// fought the overworld is frozen and the battle advances one fixed step.
func (s *Sim) Update(dt float64) {
	s.tick++
	s.stamp()
	if s.encounter != nil {
		s.updateBattle()
		s.Events.Sync(s.Log)
		return
	}

	for _, h := range s.heroes {
		h.Update(dt)
	}
	for _, p := range s.pursuers {
		if p.Update(dt) {
			s.startBattle(p.ID)
			break
		}
	}
	s.World.Advance(dt)
	s.checkCalendar()
	s.Events.Sync(s.Log)
}

func (s *Sim) checkCalendar() {
	c := s.World.Clock
	if c.Day == s.lastDay {
		return
	}
	prevSeason := s.lastDay / max(1, c.DaysPerSeason)
	s.lastDay = c.Day
	s.Log.Add(s.tick, "", "", "world", "day", fmt.Sprintf("%d", c.Day), float64(c.Day))
	if c.Seasons() != prevSeason {
		s.Log.Add(s.tick, "", "", "world", "season", fmt.Sprintf("%s year %d", c.Season(), c.Year()), float64(c.Seasons()))
	}
}

// MovePlayer walks the player along (dx,dz) for dt seconds. Moves onto
// impassable ground are refused.
func (s *Sim) MovePlayer(dx, dz, dt float64) bool {
	if s.encounter != nil {
		return false
	}
	d := math.Hypot(dx, dz)
	if d == 0 {
		return false
	}
	step := playerSpeed * dt / d
	nx, nz := s.World.PlayerX+dx*step, s.World.PlayerZ+dz*step
	if !s.World.Grid.IsPassable(nx, nz, nav.Clearance) {
		return false
	}
	s.World.PlayerX, s.World.PlayerZ = nx, nz
	return true
}

// PlayerInteract acts on the nearest tree, pickup or unowned building within
// reach of the player. It returns the entity acted on, or nil.
func (s *Sim) PlayerInteract() *world.Entity {
	if s.encounter != nil {
		return nil
	}
	w := s.World
	e := w.Nearest(w.PlayerX, w.PlayerZ, s.cfg.AI.InteractRange, func(e *world.Entity) bool {
		switch e.Type {
		case world.EntityTree, world.EntityPickup:
			return true
		case world.EntityCapturedBuilding:
			return e.Owner != world.PlayerFaction
		}
		return false
	})
	if e == nil {
		return nil
	}
	w.Interact(e.ID, world.PlayerFaction)
	switch e.Type {
	case world.EntityTree:
		s.audio.Play("chop", sink.PlayOptions{Volume: 0.7, PitchVariance: 0.1})
	case world.EntityPickup:
		s.audio.Play("pickup", sink.PlayOptions{Force: true})
	case world.EntityCapturedBuilding:
		s.audio.Play("capture", sink.PlayOptions{Force: true})
	}
	return e
}

// startBattle turns the enemy group into an army and lines both sides up.
func (s *Sim) startBattle(groupID int) {
	g := s.World.Entity(groupID)
	if g == nil || g.Removed {
		return
	}
	b := combat.NewBattle(s.World.RNG(), combat.Options{
		Arena:    s.cfg.Combat.Arena,
		CellSize: s.cfg.Combat.CellSize,
		Skills:   s.skills,
		Talents:  s.talents,
		Log:      s.Log,
		Renderer: s.renderer,
		Audio:    s.audio,
	})
	front := b.Arena() * 0.4
	player := s.deploy(b, combat.SidePlayer, s.cfg.Combat.Army, -front)
	var groups []world.UnitGroup
	if t, ok := s.World.Spawns.Template(g.Kind); ok {
		groups = t.Units
	}
	enemy := s.deploy(b, combat.SideEnemy, groups, front)

	s.Log.Add(s.tick, g.Label(), "", "battle", "start",
		fmt.Sprintf("%s %d vs %d", g.Kind, player, enemy), float64(enemy))
	s.encounter = &Encounter{GroupID: groupID, Kind: g.Kind, StartTick: s.tick, Battle: b}
	s.audio.Play("skill", sink.PlayOptions{Force: true})
	if player == 0 || enemy == 0 {
		s.finishBattle()
	}
}

// deploy spawns groups in columns facing the centre line and returns how many
// units it placed. Unknown unit types are logged and skipped.
func (s *Sim) deploy(b *combat.Battle, side combat.Side, groups []world.UnitGroup, x0 float64) int {
	dir := 1.0
	if x0 > 0 {
		dir = -1
	}
	n := 0
	for _, g := range groups {
		t, ok := s.units[g.Type]
		if !ok {
			s.Log.Add(s.tick, "", side.String(), "battle", "unknown_unit", g.Type, 0)
			continue
		}
		for i := 0; i < g.Count; i++ {
			col, row := n/formationRows, n%formationRows
			x := x0 - dir*float64(col)*formationGap
			z := (float64(row) - float64(formationRows-1)/2) * formationGap
			b.Spawn(t, side, x, z)
			n++
		}
	}
	return n
}

func (s *Sim) updateBattle() {
	enc := s.encounter
	enc.Battle.Update(s.cfg.Combat.Dt)
	out := enc.Battle.Outcome()
	if out.Outcome != combat.OutcomeInconclusive || enc.Battle.Tick() >= s.cfg.Combat.MaxTicks {
		s.finishBattle()
	}
}

// finishBattle applies the result: a won battle removes the group and pays a
// bounty; anything else sends the player home.
func (s *Sim) finishBattle() {
	enc := s.encounter
	s.encounter = nil
	out := enc.Battle.Outcome()
	rec := BattleRecord{GroupID: enc.GroupID, Kind: enc.Kind, Tick: s.tick, Ticks: enc.Battle.Tick(), Result: out}
	s.history = append(s.history, rec)

	w := s.World
	switch {
	case out.Outcome == combat.OutcomePlayerVictory || out.EnemyTotal == 0:
		bounty := out.EnemyTotal * goldPerEnemy
		w.Faction(world.PlayerFaction).Credit("gold", bounty)
		w.Remove(enc.GroupID)
		s.Log.Add(s.tick, fmt.Sprintf("group#%d", enc.GroupID), world.PlayerFaction, "battle", "won", out.Description, float64(bounty))
	default:
		w.PlayerX, w.PlayerZ = w.HomeX, w.HomeZ
		s.Log.Add(s.tick, fmt.Sprintf("group#%d", enc.GroupID), world.PlayerFaction, "battle", "retreat", out.Description, float64(rec.Ticks))
	}
}

// Draw hands the battle, or else every visible overworld entity, to the
// renderer.
func (s *Sim) Draw() {
	if s.encounter != nil {
		s.encounter.Battle.Draw(s.renderer)
		return
	}
	g := s.World.Grid
	for _, e := range s.World.Visible() {
		sprite := e.Type.String()
		if e.Kind != "" {
			sprite += ":" + e.Kind
		}
		s.renderer.DrawUnit(sink.Vec3{X: e.X, Y: g.HeightAt(e.X, e.Z), Z: e.Z}, 0, sprite)
	}
	s.renderer.DrawUnit(sink.Vec3{X: s.World.PlayerX, Y: g.HeightAt(s.World.PlayerX, s.World.PlayerZ), Z: s.World.PlayerZ}, 0, "player")
}

// Frame captures the spectator view of the current tick.
func (s *Sim) Frame() spectate.Frame {
	f := spectate.FrameOf(s.World, s.tick)
	if s.encounter != nil {
		f.Battle = s.encounter.Kind
	}
	return f
}

// Save writes the overworld to a slot. Battles in progress are not saved.
func (s *Sim) Save(st *persist.Store, slot string) error {
	if err := st.Save(slot, s.tick, s.SaveData()); err != nil {
		return err
	}
	s.Log.Add(s.tick, "", "", "save", "saved", slot, float64(s.World.Clock.Day))
	return nil
}

// Load restores a slot, abandoning any battle and rebuilding routing and AI.
// A missing slot reports false and changes nothing.
func (s *Sim) Load(st *persist.Store, slot string) (bool, error) {
	sl, ok, err := st.Load(slot)
	if err != nil || !ok {
		return false, err
	}
	if err := s.World.LoadSaveData(sl.World); err != nil {
		return false, fmt.Errorf("load slot %q: %w", slot, err)
	}
	s.encounter = nil
	s.tick = sl.Tick
	s.lastDay = s.World.Clock.Day
	s.restoreAI(sl.World)
	return true, nil
}

// SaveData snapshots the world together with every hero and pursuer, so a
// loaded slot carries on exactly where it was saved.
func (s *Sim) SaveData() *world.SaveData {
	snap := s.World.SaveData()
	for _, h := range s.heroes {
		snap.Heroes = append(snap.Heroes, h.Save())
	}
	for _, p := range s.pursuers {
		snap.Pursuers = append(snap.Pursuers, p.Save())
	}
	return snap
}
