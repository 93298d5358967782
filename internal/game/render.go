package game

import (
	"image/color"
	"strings"

	"github.com/KesselZ/HeroHour-sub000/internal/sink"
)

// effectFrames is how long a one-shot effect stays on screen.
const effectFrames = 18

// flash is a one-shot effect being shown.
type flash struct {
	name string
	x, z float64
	left int
}

// SpriteSink is the sink.Renderer of the ebiten front end. The simulation
// hands it units during Draw and effects whenever they happen; the Game
// turns both into shapes.
type SpriteSink struct {
	units   []sink.DrawCall
	effects []flash
}

var _ sink.Renderer = (*SpriteSink)(nil)

// NewSpriteSink creates an empty sink.
func NewSpriteSink() *SpriteSink { return &SpriteSink{} }

func (v *SpriteSink) DrawUnit(pos sink.Vec3, facing float64, sprite string) {
	v.units = append(v.units, sink.DrawCall{Pos: pos, Facing: facing, Sprite: sprite})
}

func (v *SpriteSink) PlayEffect(name string, params map[string]float64) {
	v.effects = append(v.effects, flash{name: name, x: params["x"], z: params["z"], left: effectFrames})
}

// beginFrame drops last frame's units.
func (v *SpriteSink) beginFrame() { v.units = v.units[:0] }

// age counts effects down and forgets expired ones.
func (v *SpriteSink) age() {
	kept := v.effects[:0]
	for _, f := range v.effects {
		f.left--
		if f.left > 0 {
			kept = append(kept, f)
		}
	}
	v.effects = kept
}

// clearEffects drops every pending effect, e.g. when a battle ends.
func (v *SpriteSink) clearEffects() { v.effects = v.effects[:0] }

// spriteStyle maps a sprite key to a marker colour and radius in world units.
func spriteStyle(sprite string) (color.RGBA, float32) {
	switch {
	case sprite == "player":
		return color.RGBA{R: 250, G: 250, B: 250, A: 255}, 1.6
	case strings.HasPrefix(sprite, "city:home"):
		return color.RGBA{R: 90, G: 160, B: 255, A: 255}, 2.5
	case strings.HasPrefix(sprite, "city:evil_base"):
		return color.RGBA{R: 150, G: 20, B: 160, A: 255}, 2.5
	case strings.HasPrefix(sprite, "city"):
		return color.RGBA{R: 240, G: 200, B: 80, A: 255}, 2.5
	case strings.HasPrefix(sprite, "enemy_group"):
		return color.RGBA{R: 220, G: 50, B: 40, A: 255}, 1.4
	case strings.HasPrefix(sprite, "ai_hero"):
		return color.RGBA{R: 255, G: 150, B: 40, A: 255}, 1.4
	case strings.HasPrefix(sprite, "tree"):
		return color.RGBA{R: 20, G: 90, B: 30, A: 255}, 0.9
	case strings.HasPrefix(sprite, "pickup"):
		return color.RGBA{R: 255, G: 230, B: 60, A: 255}, 0.7
	case strings.HasPrefix(sprite, "captured_building"):
		return color.RGBA{R: 170, G: 140, B: 110, A: 255}, 1.2
	case strings.HasPrefix(sprite, "player/"):
		return unitColour(sprite, color.RGBA{R: 70, G: 120, B: 220, A: 255}), 0.5
	case strings.HasPrefix(sprite, "enemy/"):
		return unitColour(sprite, color.RGBA{R: 210, G: 70, B: 70, A: 255}), 0.5
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}, 0.6
}

// unitColour brightens hit units and dims stunned or fleeing ones.
func unitColour(sprite string, base color.RGBA) color.RGBA {
	switch {
	case strings.HasSuffix(sprite, "/hit"):
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	case strings.HasSuffix(sprite, "/stunned"):
		return color.RGBA{R: base.R / 2, G: base.G / 2, B: base.B / 2, A: 255}
	}
	return base
}

func effectColour(name string) color.RGBA {
	switch {
	case name == "heal":
		return color.RGBA{R: 80, G: 240, B: 120, A: 200}
	case strings.HasPrefix(name, "skill:"):
		return color.RGBA{R: 255, G: 160, B: 40, A: 200}
	}
	return color.RGBA{R: 255, G: 240, B: 200, A: 160}
}
