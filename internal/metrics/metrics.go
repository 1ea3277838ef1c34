// Package metrics collects per-run gameplay telemetry from session
// snapshots. Used by the headless command to summarize a run.
package metrics

import "github.com/san-kum/topple/internal/game"

// Metric accumulates one scalar over a run.
type Metric interface {
	Name() string
	Observe(s game.Snapshot)
	Value() float64
	Reset()
}

// Set fans session snapshots out to a group of metrics. It implements
// game.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) OnTick(snap game.Snapshot) {
	for _, m := range s.metrics {
		m.Observe(snap)
	}
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Values returns every metric's current value keyed by name.
func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Each visits the metrics in registration order.
func (s *Set) Each(fn func(Metric)) {
	for _, m := range s.metrics {
		fn(m)
	}
}

// PeakHeight tracks the highest projectile y reached while launched.
type PeakHeight struct {
	peak float64
	seen bool
}

func (p *PeakHeight) Name() string { return "peak_height" }

func (p *PeakHeight) Observe(s game.Snapshot) {
	if s.State != game.Launched || !s.ShotLive {
		return
	}
	if !p.seen || s.ShotPos.Y > p.peak {
		p.peak = s.ShotPos.Y
		p.seen = true
	}
}

func (p *PeakHeight) Value() float64 { return p.peak }
func (p *PeakHeight) Reset()         { p.peak = 0; p.seen = false }

// FlightTime accumulates seconds spent in the Launched state.
type FlightTime struct {
	total     float64
	lastTime  float64
	lastState game.LaunchState
	primed    bool
}

func (f *FlightTime) Name() string { return "flight_time" }

func (f *FlightTime) Observe(s game.Snapshot) {
	if f.primed && f.lastState == game.Launched {
		f.total += s.Time - f.lastTime
	}
	f.lastTime = s.Time
	f.lastState = s.State
	f.primed = true
}

func (f *FlightTime) Value() float64 { return f.total }
func (f *FlightTime) Reset()         { *f = FlightTime{} }

// Launches counts transitions into the Launched state.
type Launches struct {
	count     int
	lastState game.LaunchState
}

func (l *Launches) Name() string { return "launches" }

func (l *Launches) Observe(s game.Snapshot) {
	if s.State == game.Launched && l.lastState != game.Launched {
		l.count++
	}
	l.lastState = s.State
}

func (l *Launches) Value() float64 { return float64(l.count) }
func (l *Launches) Reset()         { *l = Launches{} }

// Toppled reports the number of structure blocks swept out of bounds.
type Toppled struct {
	swept int
}

func (t *Toppled) Name() string { return "toppled_blocks" }

func (t *Toppled) Observe(s game.Snapshot) { t.swept = s.SweptBlocks }

func (t *Toppled) Value() float64 { return float64(t.swept) }
func (t *Toppled) Reset()         { t.swept = 0 }
