package game

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/topple/internal/config"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/physics"
	"github.com/san-kum/topple/internal/sched"
)

// LaunchState is the launch controller's state machine state.
type LaunchState int

const (
	// Ready: projectile exists, kinematic, waiting for a pick.
	Ready LaunchState = iota
	// Aiming: projectile tracks the pointer, clamped to the max drag
	// radius, still kinematic.
	Aiming
	// Launched: projectile is dynamic; physics owns its motion.
	Launched
	// Empty: no projectile; the respawn timer is running.
	Empty
)

func (s LaunchState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Aiming:
		return "aiming"
	case Launched:
		return "launched"
	case Empty:
		return "empty"
	}
	return "unknown"
}

// spinJitter bounds the randomized angular velocity applied at launch,
// in rad/s. Purely cosmetic.
const spinJitter = 3.0

// Cues receives gameplay moments worth a sound. A nil Cues is silent.
type Cues interface {
	Launch()
	Vanish()
}

// Launcher drives the aim/launch/respawn cycle of the single
// projectile.
type Launcher struct {
	registry *Registry
	world    *physics.World
	clock    *sched.Scheduler
	log      *slog.Logger
	rng      *rand.Rand
	cfg      config.LaunchConf
	cues     Cues

	state      LaunchState
	shot       *GameObject
	pickOffset geom.Vec2
	respawn    sched.Handle
}

func NewLauncher(registry *Registry, world *physics.World, clock *sched.Scheduler, cfg config.LaunchConf, rng *rand.Rand, log *slog.Logger) *Launcher {
	if log == nil {
		log = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Launcher{
		registry: registry,
		world:    world,
		clock:    clock,
		log:      log,
		rng:      rng,
		cfg:      cfg,
		state:    Empty,
	}
}

// SetCues installs the audio sink.
func (l *Launcher) SetCues(c Cues) { l.cues = c }

func (l *Launcher) State() LaunchState { return l.state }

// Shot returns the live projectile, or nil in Empty.
func (l *Launcher) Shot() *GameObject { return l.shot }

func (l *Launcher) Origin() geom.Vec2 {
	return geom.V(l.cfg.OriginX, l.cfg.OriginY)
}

// Spawn creates a fresh kinematic projectile at the origin and enters
// Ready. Creation failure is recoverable: the controller stays Empty.
func (l *Launcher) Spawn(ctx context.Context) error {
	if l.shot != nil {
		return nil
	}
	d := l.cfg.ShotRadius * 2
	obj, err := l.registry.Create(ctx, Projectile, l.Origin(), d, d, physics.Kinematic)
	if err != nil {
		return err
	}
	l.shot = obj
	l.state = Ready
	l.log.Debug("projectile spawned", "id", uint64(obj.ID))
	return nil
}

// PointerDown picks the projectile up when the press lands within the
// pick radius. Reports whether the event was consumed.
func (l *Launcher) PointerDown(p geom.Vec2) bool {
	if l.state != Ready || l.shot == nil {
		return false
	}
	pos, _, err := l.world.Pose(l.shot.Body)
	if err != nil {
		return false
	}
	if p.Distance(pos) > l.cfg.PickRadius {
		return false
	}
	l.pickOffset = pos.Sub(p)
	l.state = Aiming
	return true
}

// PointerMove tracks the pointer while aiming, clamping the projectile
// to the max drag radius around the origin.
func (l *Launcher) PointerMove(p geom.Vec2) bool {
	if l.state != Aiming || l.shot == nil {
		return false
	}
	target := p.Add(l.pickOffset)
	clamped := l.Origin().Add(target.Sub(l.Origin()).Clamp(l.cfg.MaxDrag))
	l.world.SetTranslation(l.shot.Body, clamped)
	l.world.SetLinearVelocity(l.shot.Body, geom.Vec2{})
	return true
}

// PointerUp releases the shot. A drag below the minimum threshold is a
// defined no-op back to Ready; the projectile keeps its dragged
// position rather than snapping to the origin, matching the drag-free
// release feel.
func (l *Launcher) PointerUp() bool {
	if l.state != Aiming || l.shot == nil {
		return false
	}
	pos, _, err := l.world.Pose(l.shot.Body)
	if err != nil {
		l.state = Ready
		return true
	}
	drag := pos.Sub(l.Origin())
	if drag.Length() < l.cfg.MinDrag {
		l.state = Ready
		return true
	}

	l.world.SetMotionType(l.shot.Body, physics.Dynamic)
	l.world.SetLinearVelocity(l.shot.Body, drag.Scale(-l.cfg.Power))
	l.world.SetAngularVelocity(l.shot.Body, (l.rng.Float64()*2-1)*spinJitter)
	l.shot.Motion = physics.Dynamic
	l.state = Launched
	l.log.Debug("launched", "vx", -drag.X*l.cfg.Power, "vy", -drag.Y*l.cfg.Power)
	if l.cues != nil {
		l.cues.Launch()
	}
	return true
}

// NoteRemoved reacts to swept objects. If the projectile was among
// them the controller enters Empty and arms the one-shot respawn
// timer.
func (l *Launcher) NoteRemoved(removed []ObjectID) {
	if l.shot == nil {
		return
	}
	for _, id := range removed {
		if id != l.shot.ID {
			continue
		}
		l.shot = nil
		l.state = Empty
		l.respawn = l.clock.After(time.Duration(l.cfg.RespawnMs)*time.Millisecond, func() {
			if err := l.Spawn(context.Background()); err != nil {
				l.log.Error("respawn failed", "err", err)
			}
		})
		if l.cues != nil {
			l.cues.Vanish()
		}
		return
	}
}

// Reset cancels any pending respawn, destroys the live projectile if
// any, and spawns a fresh one. Used on explicit level reset.
func (l *Launcher) Reset(ctx context.Context) error {
	l.clock.Cancel(l.respawn)
	if l.shot != nil {
		l.registry.Destroy(l.shot)
		l.shot = nil
	}
	l.state = Empty
	return l.Spawn(ctx)
}

// Drop forgets the projectile without destroying it. Used when the
// registry is cleared wholesale, so the launcher never touches a
// stale object.
func (l *Launcher) Drop() {
	l.clock.Cancel(l.respawn)
	l.shot = nil
	l.state = Empty
}
