package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpriteSink_EffectsExpire(t *testing.T) {
	ts := NewTestSim(WithFlatWorld(32))
	v := NewSpriteSink()
	ts.renderer = v

	ts.Draw()
	require.Len(t, v.units, 2, "home and player")
	v.beginFrame()
	assert.Empty(t, v.units)

	v.PlayEffect("heal", map[string]float64{"x": 1, "z": 2})
	for i := 0; i < effectFrames-1; i++ {
		v.age()
	}
	require.Len(t, v.effects, 1)
	assert.Equal(t, 2.0, v.effects[0].z)
	v.age()
	assert.Empty(t, v.effects)
}

func TestSpriteStyle(t *testing.T) {
	home, _ := spriteStyle("city:home")
	sect, _ := spriteStyle("city:sect")
	assert.NotEqual(t, home, sect)

	ally, r := spriteStyle("player/swordsman/walk")
	foe, _ := spriteStyle("enemy/wolf/walk")
	assert.NotEqual(t, ally, foe)
	assert.Equal(t, float32(0.5), r)

	hit, _ := spriteStyle("enemy/wolf/hit")
	assert.Equal(t, uint8(255), hit.G)
	stunned, _ := spriteStyle("enemy/wolf/stunned")
	assert.Equal(t, foe.R/2, stunned.R)
}
