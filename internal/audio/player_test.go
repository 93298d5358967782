package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
)

// fixed always returns the same roll.
type fixed float64

func (f fixed) Next() float64 { return float64(f) }

func pull(s beep.Streamer, n int) (peak float64) {
	buf := make([][2]float64, 512)
	for n > 0 {
		k := min(n, len(buf))
		got, _ := s.Stream(buf[:k])
		for _, v := range buf[:got] {
			peak = math.Max(peak, math.Abs(v[0]))
		}
		n -= k
	}
	return peak
}

func TestOscillator_StaysInRangeAndDrains(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, w := range []Wave{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		o := newOscillator(440, 10*time.Millisecond, w, rate, rng.New(1))
		buf := make([][2]float64, 1000)
		n, ok := o.Stream(buf)
		require.True(t, ok)
		assert.Equal(t, rate.N(10*time.Millisecond), n)
		for _, s := range buf[:n] {
			assert.LessOrEqual(t, math.Abs(s[0]), 1.0)
			assert.Equal(t, s[0], s[1])
		}
		n, ok = o.Stream(buf)
		assert.Zero(t, n)
		assert.False(t, ok)
	}
}

func TestEnvelope_RampsInAndOut(t *testing.T) {
	rate := beep.SampleRate(1000)
	e := newEnvelope(newOscillator(0, time.Second, WaveSquare, rate, nil), time.Second, 100*time.Millisecond, 200*time.Millisecond, rate)
	buf := make([][2]float64, 1000)
	n, _ := e.Stream(buf)
	require.Equal(t, 1000, n)
	assert.Zero(t, buf[0][0])
	assert.InDelta(t, 0.5, buf[50][0], 1e-9)
	assert.Equal(t, 1.0, buf[500][0])
	assert.InDelta(t, 0.5, buf[900][0], 1e-9)
}

func TestPlayer_PlaysIntoMix(t *testing.T) {
	p := NewPlayer(44100, 1, rng.New(3))
	p.Play("crit", sink.PlayOptions{Volume: 1})
	assert.Equal(t, 1, p.Active("crit"))
	assert.Greater(t, pull(p.Mix(), 2048), 0.1)

	pull(p.Mix(), 44100)
	assert.Zero(t, p.Active("crit"), "drained voices free their slot")
	played, dropped := p.Stats()
	assert.Equal(t, 1, played)
	assert.Zero(t, dropped)
}

func TestPlayer_ChanceAndForce(t *testing.T) {
	p := NewPlayer(44100, 1, fixed(0.9))
	p.Play("hit", sink.PlayOptions{Chance: 0.5})
	p.Play("hit", sink.PlayOptions{Chance: 0.5, Force: true})
	p.Play("hit", sink.PlayOptions{})
	p.Play("no-such-sound", sink.PlayOptions{Force: true})
	played, dropped := p.Stats()
	assert.Equal(t, 2, played)
	assert.Equal(t, 2, dropped)
}

func TestPlayer_VoiceCap(t *testing.T) {
	p := NewPlayer(44100, 1, rng.New(8))
	for i := 0; i < DefaultMaxVoices+2; i++ {
		p.Play("hit", sink.PlayOptions{})
	}
	assert.Equal(t, DefaultMaxVoices, p.Active("hit"))
	p.Play("hit", sink.PlayOptions{Force: true})
	assert.Equal(t, DefaultMaxVoices+1, p.Active("hit"))

	pull(p.Mix(), 44100)
	assert.Zero(t, p.Active("hit"))
	p.Play("hit", sink.PlayOptions{})
	assert.Equal(t, 1, p.Active("hit"))
}

func TestPlayer_SilentMaster(t *testing.T) {
	p := NewPlayer(44100, 0, rng.New(2))
	p.Play("death", sink.PlayOptions{Volume: 1})
	assert.Zero(t, pull(p.Mix(), 4096))
}
