package game

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/topple/internal/config"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/physics"
	"github.com/san-kum/topple/internal/sched"
)

func testLaunchConf() config.LaunchConf {
	return config.LaunchConf{
		Power:      8.0,
		MaxDrag:    4.0,
		MinDrag:    0.1,
		RespawnMs:  2000,
		OriginX:    0,
		OriginY:    0,
		ShotRadius: 0.5,
		PickRadius: 1.2,
	}
}

func newTestLauncher(t *testing.T) (*Launcher, *physics.World, *sched.Scheduler) {
	t.Helper()
	world := newTestWorld(t)
	reg := NewRegistry(world, newFakeVisual(), quietLogger())
	clock := sched.New()
	rng := rand.New(rand.NewSource(7))
	l := NewLauncher(reg, world, clock, testLaunchConf(), rng, quietLogger())
	if err := l.Spawn(context.Background()); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	return l, world, clock
}

func TestLauncherSpawnEntersReady(t *testing.T) {
	l, world, _ := newTestLauncher(t)

	if l.State() != Ready {
		t.Fatalf("state = %s, want ready", l.State())
	}
	shot := l.Shot()
	if shot == nil {
		t.Fatal("no projectile after spawn")
	}
	pos, _, err := world.Pose(shot.Body)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if pos.Distance(l.Origin()) > 1e-9 {
		t.Errorf("spawned at %+v, want origin", pos)
	}
	if shot.Motion != physics.Kinematic {
		t.Errorf("motion = %s, want kinematic", shot.Motion)
	}
}

func TestLauncherPickRadius(t *testing.T) {
	tests := []struct {
		name string
		at   geom.Vec2
		want LaunchState
	}{
		{"inside", geom.V(0.5, 0.5), Aiming},
		{"boundary", geom.V(1.2, 0), Aiming},
		{"outside", geom.V(3, 0), Ready},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _ := newTestLauncher(t)
			l.PointerDown(tt.at)
			if l.State() != tt.want {
				t.Errorf("state = %s, want %s", l.State(), tt.want)
			}
		})
	}
}

func TestLauncherAimClampsToMaxDrag(t *testing.T) {
	l, world, _ := newTestLauncher(t)
	l.PointerDown(geom.V(0, 0))

	for _, p := range []geom.Vec2{
		{X: 100, Y: 0},
		{X: -50, Y: 80},
		{X: 0, Y: -1e6},
		{X: 3.9, Y: 0},
	} {
		l.PointerMove(p)
		pos, _, err := world.Pose(l.Shot().Body)
		if err != nil {
			t.Fatalf("pose: %v", err)
		}
		if d := pos.Distance(l.Origin()); d > 4.0+1e-9 {
			t.Errorf("pointer %+v: drag distance %f exceeds max 4.0", p, d)
		}
	}
}

func TestLauncherLaunchVelocityIsDeterministic(t *testing.T) {
	l, world, _ := newTestLauncher(t)
	l.PointerDown(geom.V(0, 0))
	l.PointerMove(geom.V(3, 0))
	l.PointerUp()

	if l.State() != Launched {
		t.Fatalf("state = %s, want launched", l.State())
	}
	vel, err := world.LinearVelocity(l.Shot().Body)
	if err != nil {
		t.Fatalf("velocity: %v", err)
	}
	if math.Abs(vel.X-(-24.0)) > 1e-9 || math.Abs(vel.Y) > 1e-9 {
		t.Errorf("velocity = %+v, want (-24, 0)", vel)
	}
	if l.Shot().Motion != physics.Dynamic {
		t.Error("projectile should be dynamic after launch")
	}
}

func TestLauncherSubThresholdReleaseIsNoOp(t *testing.T) {
	l, world, _ := newTestLauncher(t)
	l.PointerDown(geom.V(0, 0))
	l.PointerMove(geom.V(0.05, 0))
	l.PointerUp()

	if l.State() != Ready {
		t.Fatalf("state = %s, want ready", l.State())
	}
	if l.Shot().Motion != physics.Kinematic {
		t.Error("projectile should stay kinematic")
	}
	// The dragged position is kept, not reset to the origin.
	pos, _, err := world.Pose(l.Shot().Body)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if math.Abs(pos.X-0.05) > 1e-9 {
		t.Errorf("position = %+v, want dragged position kept", pos)
	}
}

func TestLauncherRespawnCycle(t *testing.T) {
	l, _, clock := newTestLauncher(t)
	l.PointerDown(geom.V(0, 0))
	l.PointerMove(geom.V(3, 0))
	l.PointerUp()

	id := l.Shot().ID
	l.registry.Destroy(l.Shot())
	l.NoteRemoved([]ObjectID{id})

	if l.State() != Empty {
		t.Fatalf("state = %s, want empty", l.State())
	}
	if l.Shot() != nil {
		t.Fatal("projectile should be gone")
	}

	clock.Advance(1999 * time.Millisecond)
	if l.State() != Empty {
		t.Error("respawned before the delay elapsed")
	}
	clock.Advance(1 * time.Millisecond)
	if l.State() != Ready {
		t.Fatalf("state = %s, want ready after respawn delay", l.State())
	}
	if l.Shot() == nil {
		t.Fatal("no projectile after respawn")
	}
	if l.Shot().ID == id {
		t.Error("respawn should create a fresh object")
	}
}

func TestLauncherIgnoresForeignRemovals(t *testing.T) {
	l, _, _ := newTestLauncher(t)
	l.NoteRemoved([]ObjectID{9999})
	if l.State() != Ready {
		t.Errorf("state = %s, want ready", l.State())
	}
	if l.Shot() == nil {
		t.Error("projectile should survive foreign removals")
	}
}

func TestLauncherReset(t *testing.T) {
	l, _, clock := newTestLauncher(t)
	l.PointerDown(geom.V(0, 0))
	l.PointerMove(geom.V(2, 1))
	l.PointerUp()

	if err := l.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if l.State() != Ready {
		t.Fatalf("state = %s, want ready", l.State())
	}
	if clock.Pending() != 0 {
		t.Error("reset should leave no pending respawn")
	}
}
