package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/topple/internal/config"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/input"
	"github.com/san-kum/topple/internal/physics"
	"github.com/san-kum/topple/internal/sched"
	"github.com/san-kum/topple/internal/scene"
)

// Snapshot is the per-tick telemetry handed to observers.
type Snapshot struct {
	Tick        uint64
	Time        float64
	State       LaunchState
	Objects     int
	ShotLive    bool
	ShotPos     geom.Vec2
	ShotVel     geom.Vec2
	SweptBlocks int
}

// Observer sees a snapshot after every completed frame.
type Observer interface {
	OnTick(s Snapshot)
}

// Session owns the world, registry, level, launcher, and scheduler,
// and drives them from a single frame-loop entry point. All state
// mutation happens inside Tick or HandlePointer; the host must call
// them serially.
type Session struct {
	cfg       *config.Config
	world     *physics.World
	registry  *Registry
	launcher  *Launcher
	clock     *sched.Scheduler
	visual    scene.Visual
	log       *slog.Logger
	observers []Observer
	ambient   []func(dt float64)

	viewport    geom.Vec2
	accum       float64
	ticks       uint64
	elapsed     float64
	sweptBlocks int
}

// NewSession builds the full game state: physics world, registry,
// level structure, and the initial projectile. A physics-engine
// failure aborts with an error and no partial state. Block-level
// construction failures degrade the structure instead.
func NewSession(cfg *config.Config, visual scene.Visual, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("game: config: %w", err)
	}

	world, err := physics.NewWorld(geom.V(cfg.Gravity.X, cfg.Gravity.Y))
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	world.SetTickDt(cfg.TickDt)

	registry := NewRegistry(world, visual, log)
	clock := sched.New()
	rng := rand.New(rand.NewSource(cfg.Seed))
	launcher := NewLauncher(registry, world, clock, cfg.Launch, rng, log)

	s := &Session{
		cfg:      cfg,
		world:    world,
		registry: registry,
		launcher: launcher,
		clock:    clock,
		visual:   visual,
		log:      log,
	}

	ctx := context.Background()
	builder := NewBuilder(registry, world, cfg.Level, log)
	if err := builder.Build(ctx); err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("game: build level: %w", err)
	}
	if err := launcher.Spawn(ctx); err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("game: spawn projectile: %w", err)
	}
	return s, nil
}

func (s *Session) Registry() *Registry     { return s.registry }
func (s *Session) Launcher() *Launcher     { return s.launcher }
func (s *Session) World() *physics.World   { return s.world }
func (s *Session) Clock() *sched.Scheduler { return s.clock }

// AddObserver subscribes a per-tick telemetry observer.
func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddAmbient registers a non-physical per-frame update (background
// drift, audio level decay). Ambient updates run after the physics
// work of every frame.
func (s *Session) AddAmbient(fn func(dt float64)) { s.ambient = append(s.ambient, fn) }

// SetViewport tells the input mapper the current window size in
// pixels.
func (s *Session) SetViewport(w, h float64) { s.viewport = geom.V(w, h) }

// Mapper returns the current screen-to-world mapper, derived from the
// viewport and the camera's world bounds.
func (s *Session) Mapper() input.Mapper {
	return input.NewMapper(s.viewport, s.visual.CameraBounds())
}

// HandlePointer maps a screen-space pointer event into world space and
// forwards it to the launch controller.
func (s *Session) HandlePointer(ev *input.PointerEvent) {
	p := s.Mapper().ToWorld(ev.Screen)
	switch ev.Type {
	case input.PointerDown:
		ev.Consumed = s.launcher.PointerDown(p)
	case input.PointerMove:
		ev.Consumed = s.launcher.PointerMove(p)
	case input.PointerUp:
		ev.Consumed = s.launcher.PointerUp()
	}
}

// inBounds is the sweep predicate: objects keep existing while above
// the floor threshold and inside the lateral boundary.
func (s *Session) inBounds(pos geom.Vec2) bool {
	return pos.Y >= s.cfg.Bounds.FloorY && math.Abs(pos.X) <= s.cfg.Bounds.BoundaryX
}

// Tick advances the session by dt seconds of host time: fixed-step
// physics, deferred actions, body-to-sprite sync, out-of-bounds sweep,
// then ambient updates.
func (s *Session) Tick(dt float64) {
	s.accum += dt
	for s.accum >= s.cfg.TickDt {
		s.world.Step()
		s.accum -= s.cfg.TickDt
		s.ticks++
	}
	s.elapsed += dt

	// Deferred actions run before the sweep: a timer armed by this
	// frame's sweep starts counting from the next frame.
	s.clock.Advance(time.Duration(dt * float64(time.Second)))

	s.registry.SyncSprites()

	removed := s.registry.Sweep(s.inBounds)
	if len(removed) > 0 {
		shot := s.launcher.Shot()
		blocks := len(removed)
		if shot != nil {
			for _, id := range removed {
				if id == shot.ID {
					blocks--
				}
			}
		}
		s.sweptBlocks += blocks
		s.launcher.NoteRemoved(removed)
	}

	for _, fn := range s.ambient {
		fn(dt)
	}

	if len(s.observers) > 0 {
		snap := s.snapshot()
		for _, o := range s.observers {
			o.OnTick(snap)
		}
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Tick:        s.ticks,
		Time:        s.elapsed,
		State:       s.launcher.State(),
		Objects:     s.registry.Len(),
		SweptBlocks: s.sweptBlocks,
	}
	if shot := s.launcher.Shot(); shot != nil {
		if pos, _, err := s.world.Pose(shot.Body); err == nil {
			snap.ShotLive = true
			snap.ShotPos = pos
		}
		if vel, err := s.world.LinearVelocity(shot.Body); err == nil {
			snap.ShotVel = vel
		}
	}
	return snap
}

// Reset destroys every object and rebuilds the level plus a fresh
// projectile.
func (s *Session) Reset(ctx context.Context) error {
	s.clock.CancelAll()
	s.launcher.Drop()
	s.registry.Clear()
	s.sweptBlocks = 0
	builder := NewBuilder(s.registry, s.world, s.cfg.Level, s.log)
	if err := builder.Build(ctx); err != nil {
		return err
	}
	return s.launcher.Reset(ctx)
}

// Shutdown cancels pending deferred actions and destroys every live
// object, sprite before body, releasing all simulation and rendering
// resources. Nothing outlives this call.
func (s *Session) Shutdown() {
	s.clock.CancelAll()
	s.launcher.Drop()
	s.registry.Clear()
}
