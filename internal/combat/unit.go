// Package combat runs tactical battles: unit movement and attacks, knockback
// and stun, a positional separation pass, delayed skill effects through a
// timer queue, and talent modifiers through an action pipeline.
package combat

import (
	"fmt"
	"math"
)

// Side is the team a unit fights for.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "enemy"
}

// Other returns the opposing side.
func (s Side) Other() Side { return 1 - s }

// UnitTemplate is static per-type data loaded from configuration.
type UnitTemplate struct {
	ID               string   `yaml:"id"`
	Scale            float64  `yaml:"scale"`
	Health           float64  `yaml:"health"`
	MoveSpeed        float64  `yaml:"move_speed"`
	AttackRange      float64  `yaml:"attack_range"`
	AttackDamage     float64  `yaml:"attack_damage"`
	AttackCooldown   float64  `yaml:"attack_cooldown"`
	DamageMultiplier float64  `yaml:"damage_multiplier"`
	Knockback        float64  `yaml:"knockback"`
	CritChance       float64  `yaml:"crit_chance"`
	CritMultiplier   float64  `yaml:"crit_multiplier"`
	Healer           bool     `yaml:"healer"`
	FleeBelow        float64  `yaml:"flee_below"`
	ControlImmune    bool     `yaml:"control_immune"`
	Skills           []string `yaml:"skills"`
}

// Collision radius and mass both follow the visual scale.
const (
	radiusPerScale = 0.5
	renderHeight   = 0.0

	knockFriction   = 0.85
	knockStunSpeed  = 0.05 // above this, knockback suppresses targeting
	healThreshold   = 0.9  // healers ignore allies at or above this ratio
	fadeDuration    = 1.0  // seconds a corpse stays visible
	fleeSpeedFactor = 0.5
)

// Unit is one combatant. Units refer to each other by id only.
type Unit struct {
	ID   int
	Side Side
	Type string

	X, Y, Z float64
	Facing  float64
	Sprite  string

	Health, MaxHealth        float64
	MoveSpeed, BaseMoveSpeed float64
	AttackRange              float64
	AttackDamage             float64
	AttackCooldown           float64
	DamageMultiplier         float64
	KnockbackForce           float64
	CritChance               float64
	CritMultiplier           float64
	Healer                   bool
	FleeBelow                float64

	KnockX, KnockZ float64
	StunUntil      float64
	LockUntil      float64
	Invincible     bool
	ControlImmune  bool
	Mass           float64
	Radius         float64

	Target     int // unit id, -1 for none
	Fleeing    bool
	FleeDirX   float64
	FleeDirZ   float64
	Escaped    bool
	lastAttack float64
	skills     []*skillState

	dead    bool
	diedAt  float64
	removed bool
	battle  *Battle
}

// NewUnit builds a unit from a template. Units made outside a battle see a
// clock frozen at zero.
func NewUnit(id int, t UnitTemplate, side Side, x, z float64) *Unit {
	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}
	mult := t.DamageMultiplier
	if mult <= 0 {
		mult = 1
	}
	crit := t.CritMultiplier
	if crit <= 0 {
		crit = 1.5
	}
	return &Unit{
		ID:               id,
		Side:             side,
		Type:             t.ID,
		X:                x,
		Y:                renderHeight,
		Z:                z,
		Sprite:           "idle",
		Health:           t.Health,
		MaxHealth:        t.Health,
		MoveSpeed:        t.MoveSpeed,
		BaseMoveSpeed:    t.MoveSpeed,
		AttackRange:      t.AttackRange,
		AttackDamage:     t.AttackDamage,
		AttackCooldown:   t.AttackCooldown,
		DamageMultiplier: mult,
		KnockbackForce:   t.Knockback,
		CritChance:       t.CritChance,
		CritMultiplier:   crit,
		Healer:           t.Healer,
		FleeBelow:        t.FleeBelow,
		ControlImmune:    t.ControlImmune,
		Mass:             scale * scale,
		Radius:           radiusPerScale * scale,
		Target:           -1,
		lastAttack:       math.Inf(-1),
	}
}

// Label identifies the unit in logs.
func (u *Unit) Label() string { return fmt.Sprintf("%s#%d", u.Type, u.ID) }

// SpriteKey names the sprite to draw: side, unit type and animation state.
func (u *Unit) SpriteKey() string { return u.Side.String() + "/" + u.Type + "/" + u.Sprite }

// Pos implements nav.Body.
func (u *Unit) Pos() (float64, float64) { return u.X, u.Z }

// Alive implements nav.Body.
func (u *Unit) Alive() bool { return !u.dead }

// IsDead reports whether the unit has died. Death is permanent.
func (u *Unit) IsDead() bool { return u.dead }

// Removed reports whether a dead unit has finished fading out.
func (u *Unit) Removed() bool { return u.removed }

// HealthRatio is health over max health.
func (u *Unit) HealthRatio() float64 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return u.Health / u.MaxHealth
}

// Opacity is 1 while alive and fades to 0 over the corpse lifetime.
func (u *Unit) Opacity() float64 {
	if !u.dead {
		return 1
	}
	return math.Max(0, 1-(u.now()-u.diedAt)/fadeDuration)
}

func (u *Unit) now() float64 {
	if u.battle == nil {
		return 0
	}
	return u.battle.now
}

// Stunned reports whether a stun is active.
func (u *Unit) Stunned() bool { return u.now() < u.StunUntil }

// Locked reports whether the health lock is active.
func (u *Unit) Locked() bool { return u.now() < u.LockUntil }

// TakeDamage applies amount scaled by the damage multiplier. Negative amounts
// heal; health never exceeds max. A locked unit cannot drop below 1. Dead and
// invincible units ignore the call. Returns the change in health.
func (u *Unit) TakeDamage(amount float64, critical bool) float64 {
	if u.dead || u.Invincible {
		return 0
	}
	before := u.Health
	h := u.Health - amount*u.DamageMultiplier
	if u.Locked() && h < 1 {
		h = math.Max(1, math.Min(h, before))
	}
	u.Health = math.Min(h, u.MaxHealth)
	if u.Health <= 0 {
		u.die()
	}
	if u.battle != nil {
		u.battle.onDamaged(u, before-u.Health, critical)
	}
	return before - u.Health
}

func (u *Unit) die() {
	u.dead = true
	u.Sprite = "dead"
	u.Target = -1
	u.KnockX, u.KnockZ = 0, 0
	u.diedAt = u.now()
	if u.battle != nil {
		u.battle.onDeath(u)
	}
}

// ApplyKnockback pushes the unit away from (fromX, fromZ). Impulses add up.
func (u *Unit) ApplyKnockback(fromX, fromZ, force float64) {
	if u.dead || u.ControlImmune || u.Invincible {
		return
	}
	dx, dz := u.X-fromX, u.Z-fromZ
	d := math.Hypot(dx, dz)
	if d < 1e-9 {
		dx, dz, d = math.Cos(u.Facing), math.Sin(u.Facing), 1
	}
	u.KnockX += dx / d * force
	u.KnockZ += dz / d * force
}

// ApplyStun stuns for d seconds from now. A shorter stun never cuts an
// existing one.
func (u *Unit) ApplyStun(d float64) {
	if u.ControlImmune || u.Invincible || u.dead {
		return
	}
	u.StunUntil = math.Max(u.StunUntil, u.now()+d)
}

// ApplyLock keeps health at or above 1 for d seconds.
func (u *Unit) ApplyLock(d float64) {
	if u.dead {
		return
	}
	u.LockUntil = math.Max(u.LockUntil, u.now()+d)
}

// Flee sends the unit running along heading (radians) for the rest of the battle.
func (u *Unit) Flee(heading float64) {
	if u.dead || u.Fleeing {
		return
	}
	u.Fleeing = true
	u.FleeDirX, u.FleeDirZ = math.Cos(heading), math.Sin(heading)
	u.Target = -1
	u.Sprite = "flee"
	if u.battle != nil {
		u.battle.log.Add(u.battle.tick, u.Label(), u.Side.String(), "combat", "flee", "", u.HealthRatio())
	}
}

// KnockSpeed is the magnitude of pending knockback.
func (u *Unit) KnockSpeed() float64 { return math.Hypot(u.KnockX, u.KnockZ) }

func (u *Unit) integrateKnockback() {
	u.X += u.KnockX
	u.Z += u.KnockZ
	u.KnockX *= knockFriction
	u.KnockZ *= knockFriction
}

func (u *Unit) distTo(o *Unit) float64 { return math.Hypot(o.X-u.X, o.Z-u.Z) }

func (u *Unit) face(x, z float64) {
	if dx, dz := x-u.X, z-u.Z; dx != 0 || dz != 0 {
		u.Facing = math.Atan2(dz, dx)
	}
}
