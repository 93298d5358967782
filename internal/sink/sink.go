// Package sink declares the fire-and-forget boundaries the simulation talks
// to: a renderer for units and effects, and an audio player. Nothing the
// simulation decides depends on what a sink does with a call.
package sink

// Vec3 is a world position; Y is render height only.
type Vec3 struct {
	X, Y, Z float64
}

// Renderer draws units and one-shot visual effects.
type Renderer interface {
	DrawUnit(pos Vec3, facing float64, sprite string)
	PlayEffect(name string, params map[string]float64)
}

// PlayOptions tune a single sound.
type PlayOptions struct {
	Volume        float64 // 0..1
	PitchVariance float64 // ± fraction of base pitch
	Chance        float64 // probability the sound plays at all; 0 means always
	Force         bool    // play even when the sound is rate limited
}

// Audio plays named sounds.
type Audio interface {
	Play(id string, opts PlayOptions)
}

// Nop discards everything. It is the default for headless runs.
type Nop struct{}

func (Nop) DrawUnit(Vec3, float64, string)        {}
func (Nop) PlayEffect(string, map[string]float64) {}
func (Nop) Play(string, PlayOptions)              {}

// Recorder keeps every call. Tests use it to check what a system emitted.
type Recorder struct {
	Units   []DrawCall
	Effects []EffectCall
	Sounds  []SoundCall
}

type DrawCall struct {
	Pos    Vec3
	Facing float64
	Sprite string
}

type EffectCall struct {
	Name   string
	Params map[string]float64
}

type SoundCall struct {
	ID   string
	Opts PlayOptions
}

func (r *Recorder) DrawUnit(pos Vec3, facing float64, sprite string) {
	r.Units = append(r.Units, DrawCall{Pos: pos, Facing: facing, Sprite: sprite})
}

func (r *Recorder) PlayEffect(name string, params map[string]float64) {
	r.Effects = append(r.Effects, EffectCall{Name: name, Params: params})
}

func (r *Recorder) Play(id string, opts PlayOptions) {
	r.Sounds = append(r.Sounds, SoundCall{ID: id, Opts: opts})
}

// CountEffect returns how many effects with name were played.
func (r *Recorder) CountEffect(name string) int {
	n := 0
	for _, e := range r.Effects {
		if e.Name == name {
			n++
		}
	}
	return n
}

// CountSound returns how many sounds with id were played.
func (r *Recorder) CountSound(id string) int {
	n := 0
	for _, s := range r.Sounds {
		if s.ID == id {
			n++
		}
	}
	return n
}

// Reset drops recorded calls.
func (r *Recorder) Reset() {
	r.Units = r.Units[:0]
	r.Effects = r.Effects[:0]
	r.Sounds = r.Sounds[:0]
}
