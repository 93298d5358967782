package combat

import (
	"fmt"
	"math"

	"github.com/KesselZ/HeroHour-sub000/internal/nav"
	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/simlog"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
)

const (
	defaultArena    = 30.0
	defaultCellSize = 2.0
)

// Options configures a battle. Zero values pick defaults; nil sinks discard.
type Options struct {
	Arena    float64 // half-width of the field; fleeing units past it escape
	CellSize float64 // spatial hash bucket width
	Skills   map[string]SkillTemplate
	Talents  [2]Pipeline // indexed by Side
	Log      *simlog.Log
	Renderer sink.Renderer
	Audio    sink.Audio
}

// Stats are running battle counters.
type Stats struct {
	Ticks       int
	Hits        int
	Crits       int
	Damage      [2]float64 // health lost, by the side that lost it
	Healing     [2]float64
	Deaths      [2]int
	Fled        [2]int
	SkillCasts  int
	Separations int
	TimersFired int
}

// Battle owns the units of one fight and advances them in fixed order.
type Battle struct {
	units    []*Unit
	hash     *nav.Hash[*Unit]
	scratch  []*Unit
	rnd      *rng.RNG
	timers   Scheduler
	now      float64
	tick     int
	arena    float64
	skills   map[string]SkillTemplate
	talents  [2]Pipeline
	log      *simlog.Log
	renderer sink.Renderer
	audio    sink.Audio
	stats    Stats
	maxR     float64
}

// NewBattle creates an empty battle. r drives crits and separation of
// coincident units.
func NewBattle(r *rng.RNG, opts Options) *Battle {
	if opts.Arena <= 0 {
		opts.Arena = defaultArena
	}
	if opts.CellSize <= 0 {
		opts.CellSize = defaultCellSize
	}
	b := &Battle{
		hash:     nav.NewHash[*Unit](opts.CellSize),
		rnd:      r,
		arena:    opts.Arena,
		skills:   opts.Skills,
		talents:  opts.Talents,
		log:      opts.Log,
		renderer: opts.Renderer,
		audio:    opts.Audio,
	}
	if b.renderer == nil {
		b.renderer = sink.Nop{}
	}
	if b.audio == nil {
		b.audio = sink.Nop{}
	}
	return b
}

// Spawn adds a unit built from t. Unknown or invalid skills are skipped.
func (b *Battle) Spawn(t UnitTemplate, side Side, x, z float64) *Unit {
	u := NewUnit(len(b.units), t, side, x, z)
	u.battle = b
	for _, name := range t.Skills {
		st, ok := b.skills[name]
		if !ok {
			b.log.Add(b.tick, u.Label(), side.String(), "combat", "unknown_skill", name, 0)
			continue
		}
		s, err := newSkillState(st)
		if err != nil {
			b.log.Add(b.tick, u.Label(), side.String(), "combat", "bad_skill", err.Error(), 0)
			continue
		}
		u.skills = append(u.skills, s)
	}
	b.maxR = math.Max(b.maxR, u.Radius)
	b.units = append(b.units, u)
	b.hash.Insert(u)
	b.log.AddVerbose(b.tick, u.Label(), side.String(), "combat", "spawn", fmt.Sprintf("%.1f,%.1f", x, z), 0)
	return u
}

// Unit looks up a unit by id; nil if unknown.
func (b *Battle) Unit(id int) *Unit {
	if id < 0 || id >= len(b.units) {
		return nil
	}
	return b.units[id]
}

// Units returns every unit ever spawned, dead ones included.
func (b *Battle) Units() []*Unit { return b.units }

// Now is battle time in seconds.
func (b *Battle) Now() float64 { return b.now }

// Arena returns the half-width of the field.
func (b *Battle) Arena() float64 { return b.arena }

// Tick is the number of Update calls so far.
func (b *Battle) Tick() int { return b.tick }

// Stats returns a copy of the counters.
func (b *Battle) Stats() Stats {
	s := b.stats
	s.TimersFired = b.timers.Fired()
	return s
}

// Standing counts units of side still on the field.
func (b *Battle) Standing(side Side) int {
	n := 0
	for _, u := range b.units {
		if u.Side == side && !u.dead && !u.Escaped {
			n++
		}
	}
	return n
}

// Update advances the battle by dt seconds: due timers, then every unit in
// spawn order, then one separation pass.
func (b *Battle) Update(dt float64) {
	b.now += dt
	b.tick++
	b.stats.Ticks++
	b.timers.Advance(b.now)

	for _, u := range b.units {
		if u.dead || u.Escaped {
			continue
		}
		b.step(u, dt)
	}
	b.separate()
	b.boundaries()
}

func (b *Battle) step(u *Unit, dt float64) {
	if u.Fleeing {
		speed := u.BaseMoveSpeed * fleeSpeedFactor * dt
		u.X += u.FleeDirX * speed
		u.Z += u.FleeDirZ * speed
		u.face(u.X+u.FleeDirX, u.Z+u.FleeDirZ)
		return
	}
	if u.Stunned() {
		u.integrateKnockback()
		u.Sprite = "stunned"
		return
	}
	u.integrateKnockback()
	if u.KnockSpeed() > knockStunSpeed {
		u.Sprite = "hit"
		return
	}

	if u.FleeBelow > 0 && u.HealthRatio() < u.FleeBelow {
		if e := b.nearestEnemy(u); e != nil {
			u.Flee(math.Atan2(u.Z-e.Z, u.X-e.X))
			return
		}
	}

	t := b.acquire(u)
	if t == nil {
		u.Sprite = "idle"
		return
	}
	u.face(t.X, t.Z)
	d := u.distTo(t)
	if d > u.AttackRange {
		step := math.Min(u.MoveSpeed*dt, d-u.AttackRange)
		u.X += (t.X - u.X) / d * step
		u.Z += (t.Z - u.Z) / d * step
		u.Sprite = "walk"
		return
	}
	if b.now-u.lastAttack < u.AttackCooldown {
		return
	}
	u.lastAttack = b.now
	u.Sprite = "attack"
	b.attack(u, t, d)
}

// acquire refreshes u's target: the nearest living enemy, or for healers the
// most injured ally below the heal threshold when there is one.
func (b *Battle) acquire(u *Unit) *Unit {
	var t *Unit
	if u.Healer {
		t = b.mostInjuredAlly(u)
	}
	if t == nil {
		t = b.nearestEnemy(u)
	}
	if t == nil {
		u.Target = -1
		return nil
	}
	u.Target = t.ID
	return t
}

func (b *Battle) nearestEnemy(u *Unit) *Unit {
	var best *Unit
	bestD := math.Inf(1)
	for _, o := range b.units {
		if o.Side == u.Side || o.dead || o.Escaped {
			continue
		}
		if d := u.distTo(o); d < bestD {
			best, bestD = o, d
		}
	}
	return best
}

func (b *Battle) mostInjuredAlly(u *Unit) *Unit {
	var best *Unit
	bestR := healThreshold
	for _, o := range b.units {
		if o == u || o.Side != u.Side || o.dead || o.Escaped {
			continue
		}
		if r := o.HealthRatio(); r < bestR {
			best, bestR = o, r
		}
	}
	return best
}

func (b *Battle) attack(u, t *Unit, dist float64) {
	if s := u.readySkill(b.now, dist); s != nil && t.Side != u.Side {
		b.cast(u, t, s)
		return
	}
	if t.Side == u.Side {
		b.resolve(Action{Kind: ActHeal, Amount: u.AttackDamage, Source: u.ID}, u, t)
		b.renderer.PlayEffect("heal", map[string]float64{"x": t.X, "z": t.Z})
		return
	}

	crit := b.rnd != nil && u.CritChance > 0 && b.rnd.Chance(u.CritChance)
	amount := u.AttackDamage
	if crit {
		amount *= u.CritMultiplier
	}
	b.resolve(Action{Kind: ActDamage, Amount: amount, Critical: crit, Source: u.ID}, u, t)
	if u.KnockbackForce > 0 && !t.dead {
		b.resolve(Action{Kind: ActKnockback, Force: u.KnockbackForce, Source: u.ID, FromX: u.X, FromZ: u.Z}, u, t)
	}
}

// Resolve runs a through the talents of src's side and applies it to dst.
// src may be nil for environmental effects, which skip talents.
func (b *Battle) Resolve(a Action, src, dst *Unit) { b.resolve(a, src, dst) }

func (b *Battle) resolve(a Action, src, dst *Unit) {
	if src != nil {
		a = b.talents[src.Side].Run(a, src, dst)
	}
	a.Apply(dst)
}

func (b *Battle) onDamaged(u *Unit, lost float64, critical bool) {
	if lost > 0 {
		b.stats.Hits++
		b.stats.Damage[u.Side] += lost
		if critical {
			b.stats.Crits++
		}
		b.log.AddVerbose(b.tick, u.Label(), u.Side.String(), "combat", "hit", fmt.Sprintf("crit=%t", critical), lost)
		b.renderer.PlayEffect("hit", map[string]float64{"x": u.X, "z": u.Z, "amount": lost})
		b.audio.Play("hit", sink.PlayOptions{Volume: 0.5, PitchVariance: 0.1, Chance: 0.6, Force: critical})
	} else if lost < 0 {
		b.stats.Healing[u.Side] -= lost
	}
}

func (b *Battle) onDeath(u *Unit) {
	b.stats.Deaths[u.Side]++
	b.log.Add(b.tick, u.Label(), u.Side.String(), "combat", "death", "", b.now)
	b.audio.Play("death", sink.PlayOptions{Volume: 0.8, PitchVariance: 0.05, Force: true})
	b.timers.After(fadeDuration, func() { u.removed = true })
}

// separate pushes overlapping units apart, each unordered pair once, with the
// spatial hash as broad phase. The overlap is split by inverse mass.
func (b *Battle) separate() {
	b.hash.Clear()
	for _, u := range b.units {
		if !u.Escaped {
			b.hash.Insert(u)
		}
	}
	for _, u := range b.units {
		if u.dead || u.Escaped {
			continue
		}
		b.scratch = b.hash.QueryInto(b.scratch[:0], u.X, u.Z, u.Radius+b.maxR)
		for _, o := range b.scratch {
			if o.ID <= u.ID || o.dead || o.Escaped {
				continue
			}
			b.separatePair(u, o)
		}
	}
}

func (b *Battle) separatePair(u, o *Unit) {
	dx, dz := o.X-u.X, o.Z-u.Z
	d := math.Hypot(dx, dz)
	minD := u.Radius + o.Radius
	if d >= minD {
		return
	}
	if d < 1e-9 {
		a := 0.0
		if b.rnd != nil {
			a = b.rnd.Angle()
		}
		dx, dz, d = math.Cos(a), math.Sin(a), 0
	} else {
		dx, dz = dx/d, dz/d
	}
	overlap := minD - d
	total := u.Mass + o.Mass
	uShare, oShare := 0.5, 0.5
	if total > 0 {
		uShare, oShare = o.Mass/total, u.Mass/total
	}
	u.X -= dx * overlap * uShare
	u.Z -= dz * overlap * uShare
	o.X += dx * overlap * oShare
	o.Z += dz * overlap * oShare
	b.stats.Separations++
}

// boundaries lets fleeing units leave the field and keeps everyone else on it.
func (b *Battle) boundaries() {
	for _, u := range b.units {
		if u.dead || u.Escaped {
			continue
		}
		out := math.Abs(u.X) > b.arena || math.Abs(u.Z) > b.arena
		if !out {
			continue
		}
		if u.Fleeing {
			u.Escaped = true
			u.Sprite = "escaped"
			b.stats.Fled[u.Side]++
			b.log.Add(b.tick, u.Label(), u.Side.String(), "combat", "escaped", "", b.now)
			continue
		}
		u.X = math.Max(-b.arena, math.Min(b.arena, u.X))
		u.Z = math.Max(-b.arena, math.Min(b.arena, u.Z))
	}
}

// TotalOverlap sums pairwise penetration depth over living units.
func (b *Battle) TotalOverlap() float64 {
	sum := 0.0
	for i, u := range b.units {
		if u.dead || u.Escaped {
			continue
		}
		for _, o := range b.units[i+1:] {
			if o.dead || o.Escaped {
				continue
			}
			if d := u.distTo(o); d < u.Radius+o.Radius {
				sum += u.Radius + o.Radius - d
			}
		}
	}
	return sum
}

// Draw hands every visible unit to r.
func (b *Battle) Draw(r sink.Renderer) {
	for _, u := range b.units {
		if u.removed || u.Escaped {
			continue
		}
		r.DrawUnit(sink.Vec3{X: u.X, Y: u.Y, Z: u.Z}, u.Facing, u.SpriteKey())
	}
}

// Run updates until the battle is decided or maxTicks pass.
func (b *Battle) Run(dt float64, maxTicks int) OutcomeReason {
	for i := 0; i < maxTicks; i++ {
		if b.Outcome().Outcome != OutcomeInconclusive {
			break
		}
		b.Update(dt)
	}
	return b.Outcome()
}
