// Package audio synthesises the game's sound effects with beep and mixes them
// onto the speaker.
package audio

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sasha-s/go-deadlock"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
)

// DefaultMaxVoices caps how many copies of one sound play at once.
const DefaultMaxVoices = 4

// Player implements sink.Audio. Sounds are mixed into a single beep.Mixer
// that is either handed to the speaker (Start) or pulled directly.
type Player struct {
	MaxVoices int

	mu      deadlock.Mutex
	rate    beep.SampleRate
	master  float64
	mixer   *beep.Mixer
	rnd     rng.Source
	sounds  map[string]Voice
	active  map[string]*atomic.Int32
	live    bool
	played  int
	dropped int
}

var _ sink.Audio = (*Player)(nil)

// NewPlayer creates a silent player; call Start to open the speaker. r drives
// chance rolls, pitch variance and noise.
func NewPlayer(sampleRate int, master float64, r rng.Source) *Player {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &Player{
		MaxVoices: DefaultMaxVoices,
		rate:      beep.SampleRate(sampleRate),
		master:    master,
		mixer:     &beep.Mixer{},
		rnd:       r,
		sounds:    Sounds,
		active:    make(map[string]*atomic.Int32),
	}
}

// Start opens the speaker and begins playback of the mix.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.live = true
	return nil
}

// Close silences everything and detaches from the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.live {
		return
	}
	speaker.Clear()
	p.live = false
}

// Mix returns the mixed stream. Only pull from it while the player is not
// started.
func (p *Player) Mix() beep.Streamer { return p.mixer }

// Stats returns how many Play calls produced sound and how many were dropped.
func (p *Player) Stats() (played, dropped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played, p.dropped
}

// Active returns the number of voices of id still sounding.
func (p *Player) Active(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.active[id]; ok {
		return int(n.Load())
	}
	return 0
}

// Play implements sink.Audio.
func (p *Player) Play(id string, opts sink.PlayOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.sounds[id]
	if !ok {
		p.dropped++
		return
	}
	if !opts.Force && opts.Chance > 0 && p.rnd.Next() >= opts.Chance {
		p.dropped++
		return
	}
	n, ok := p.active[id]
	if !ok {
		n = new(atomic.Int32)
		p.active[id] = n
	}
	if !opts.Force && int(n.Load()) >= p.MaxVoices {
		p.dropped++
		return
	}

	pitch := 1.0
	if opts.PitchVariance > 0 {
		pitch += opts.PitchVariance * (2*p.rnd.Next() - 1)
	}
	vol := opts.Volume
	if vol == 0 {
		vol = 1
	}
	n.Add(1)
	noise := rng.New(uint32(p.rnd.Next() * math.MaxUint32))
	s := &tracked{Streamer: withVolume(v.Render(p.rate, pitch, noise), vol*p.master), n: n}

	if p.live {
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	} else {
		p.mixer.Add(s)
	}
	p.played++
}

// tracked frees its voice slot once the wrapped stream runs short. It runs on
// the speaker goroutine, so it touches only the atomic counter.
type tracked struct {
	beep.Streamer
	n    *atomic.Int32
	done bool
}

func (t *tracked) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	if (!ok || n < len(samples)) && !t.done {
		t.done = true
		t.n.Add(-1)
	}
	return n, ok
}
