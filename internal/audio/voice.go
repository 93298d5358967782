package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Voice describes a synthesised sound: one or two partials through an
// attack/release envelope.
type Voice struct {
	Freq     float64
	Overtone float64 // second partial frequency, 0 for none
	Wave     Wave
	Duration time.Duration
	Attack   time.Duration
	Release  time.Duration
}

// Sounds is the built-in catalogue, keyed by the ids the simulation plays.
var Sounds = map[string]Voice{
	"hit":     {Freq: 180, Wave: WaveSaw, Duration: 90 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 60 * time.Millisecond},
	"crit":    {Freq: 260, Overtone: 520, Wave: WaveSquare, Duration: 140 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 90 * time.Millisecond},
	"death":   {Freq: 110, Wave: WaveSaw, Duration: 400 * time.Millisecond, Attack: 10 * time.Millisecond, Release: 300 * time.Millisecond},
	"skill":   {Freq: 0, Wave: WaveNoise, Duration: 250 * time.Millisecond, Attack: 20 * time.Millisecond, Release: 180 * time.Millisecond},
	"heal":    {Freq: 660, Overtone: 990, Wave: WaveSine, Duration: 300 * time.Millisecond, Attack: 30 * time.Millisecond, Release: 200 * time.Millisecond},
	"chop":    {Freq: 140, Wave: WaveNoise, Duration: 70 * time.Millisecond, Attack: 2 * time.Millisecond, Release: 50 * time.Millisecond},
	"pickup":  {Freq: 987.77, Overtone: 1318.51, Wave: WaveSquare, Duration: 180 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 120 * time.Millisecond},
	"capture": {Freq: 440, Overtone: 880, Wave: WaveSine, Duration: 500 * time.Millisecond, Attack: 20 * time.Millisecond, Release: 350 * time.Millisecond},
}

type oscillator struct {
	freq  float64
	phase float64
	left  int
	wave  Wave
	rate  beep.SampleRate
	noise rng.Source
}

func newOscillator(freq float64, d time.Duration, wave Wave, rate beep.SampleRate, noise rng.Source) *oscillator {
	return &oscillator{freq: freq, left: rate.N(d), wave: wave, rate: rate, noise: noise}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.left <= 0 {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = o.noise.Next()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.left--
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope ramps a stream in over attack and out over release.
type envelope struct {
	s     beep.Streamer
	pos   int
	total int
	att   int
	relAt int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) *envelope {
	total := rate.N(d)
	return &envelope{s: s, total: total, att: rate.N(attack), relAt: max(0, total-rate.N(release))}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if e.pos < e.att {
			g = float64(e.pos) / float64(e.att)
		}
		if e.pos >= e.relAt && e.total > e.relAt {
			g = math.Max(0, float64(e.total-e.pos)/float64(e.total-e.relAt))
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Render builds a streamer for v with its pitch scaled by pitch.
func (v Voice) Render(rate beep.SampleRate, pitch float64, noise rng.Source) beep.Streamer {
	shaped := func(freq float64) beep.Streamer {
		return newEnvelope(newOscillator(freq*pitch, v.Duration, v.Wave, rate, noise), v.Duration, v.Attack, v.Release, rate)
	}
	if v.Overtone <= 0 {
		return shaped(v.Freq)
	}
	return beep.Mix(withVolume(shaped(v.Freq), 0.7), withVolume(shaped(v.Overtone), 0.3))
}
