// Package audio synthesizes short gameplay cues with beep. Tones are
// generated, enveloped, and handed to the speaker; no samples are
// loaded from disk.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player implements game.Cues over the beep speaker.
type Player struct {
	ready bool
}

// NewPlayer initializes the speaker. Failure is recoverable: the game
// just runs muted.
func NewPlayer() (*Player, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Player{ready: true}, nil
}

func (p *Player) Close() {
	if p.ready {
		speaker.Close()
		p.ready = false
	}
}

// Launch plays a rising whoosh.
func (p *Player) Launch() {
	p.play(newTone(220, 660, 120*time.Millisecond, 0.35))
}

// Vanish plays a low thud when the projectile leaves the world.
func (p *Player) Vanish() {
	p.play(newTone(200, 90, 160*time.Millisecond, 0.4))
}

func (p *Player) play(s beep.Streamer) {
	if !p.ready {
		return
	}
	speaker.Play(s)
}

// tone is a sine sweep from f0 to f1 with a short attack/release
// envelope.
type tone struct {
	f0, f1 float64
	gain   float64
	total  int
	pos    int
	phase  float64
}

func newTone(f0, f1 float64, d time.Duration, gain float64) *tone {
	return &tone{f0: f0, f1: f1, gain: gain, total: sampleRate.N(d)}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.pos >= t.total {
		return 0, false
	}
	n := 0
	for i := range samples {
		if t.pos >= t.total {
			break
		}
		progress := float64(t.pos) / float64(t.total)
		freq := t.f0 + (t.f1-t.f0)*progress
		t.phase += freq / float64(sampleRate)
		if t.phase >= 1 {
			t.phase -= 1
		}
		v := math.Sin(2*math.Pi*t.phase) * t.gain * envelope(progress)
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
		n++
	}
	return n, true
}

func (t *tone) Err() error { return nil }

// envelope shapes a tone with a fast attack and linear release.
func envelope(progress float64) float64 {
	const attack = 0.1
	if progress < attack {
		return progress / attack
	}
	return 1 - (progress-attack)/(1-attack)
}
