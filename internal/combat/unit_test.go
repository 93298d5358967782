package combat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var footman = UnitTemplate{
	ID:             "footman",
	Scale:          1,
	Health:         100,
	MoveSpeed:      3,
	AttackRange:    1,
	AttackDamage:   10,
	AttackCooldown: 1,
}

func TestTakeDamage_DeathIsPermanent(t *testing.T) {
	u := NewUnit(0, footman, SidePlayer, 0, 0)
	u.TakeDamage(30, false)
	u.TakeDamage(30, false)
	assert.Equal(t, 40.0, u.Health)
	assert.False(t, u.IsDead())

	u.TakeDamage(50, false)
	assert.LessOrEqual(t, u.Health, 0.0)
	require.True(t, u.IsDead())

	assert.Zero(t, u.TakeDamage(-500, false), "no revive through healing")
	assert.True(t, u.IsDead())
}

func TestTakeDamage_MultiplierAndInvincible(t *testing.T) {
	tpl := footman
	tpl.DamageMultiplier = 0.5
	u := NewUnit(0, tpl, SidePlayer, 0, 0)
	assert.Equal(t, 15.0, u.TakeDamage(30, false))

	u.Invincible = true
	assert.Zero(t, u.TakeDamage(1000, true))
	assert.Equal(t, 85.0, u.Health)
}

func TestTakeDamage_HealClampsToMax(t *testing.T) {
	u := NewUnit(0, footman, SidePlayer, 0, 0)
	u.TakeDamage(50, false)
	u.TakeDamage(-500, false)
	assert.Equal(t, 100.0, u.Health)
}

func TestApplyKnockback_Accumulates(t *testing.T) {
	u := NewUnit(0, footman, SidePlayer, 0, 0)
	u.ApplyKnockback(-1, 0, 1)
	u.ApplyKnockback(0, -1, 1)
	assert.InDelta(t, 1.0, u.KnockX, 1e-12)
	assert.InDelta(t, 1.0, u.KnockZ, 1e-12)

	tpl := footman
	tpl.ControlImmune = true
	immune := NewUnit(1, tpl, SidePlayer, 0, 0)
	immune.ApplyKnockback(-1, 0, 5)
	immune.ApplyStun(3)
	assert.Zero(t, immune.KnockSpeed())
	assert.Zero(t, immune.StunUntil)
}

func TestApplyStun_ExtendsNeverShortens(t *testing.T) {
	u := NewUnit(0, footman, SidePlayer, 0, 0)
	u.ApplyStun(2)
	u.ApplyStun(1)
	assert.Equal(t, 2.0, u.StunUntil)
	u.ApplyStun(4)
	assert.Equal(t, 4.0, u.StunUntil)
	assert.True(t, u.Stunned())
}

func TestDerivedBodyFromScale(t *testing.T) {
	tpl := footman
	tpl.Scale = 2
	u := NewUnit(0, tpl, SideEnemy, 0, 0)
	assert.Equal(t, 4.0, u.Mass)
	assert.Equal(t, 1.0, u.Radius)
	assert.Equal(t, math.Inf(-1), u.lastAttack)
	assert.Equal(t, -1, u.Target)
}
