package game

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/topple/internal/config"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/input"
)

const tickDt = 1.0 / 60.0

func newTestSession(t *testing.T) (*Session, *fakeVisual) {
	t.Helper()
	visual := newFakeVisual()
	s, err := NewSession(config.DefaultConfig(), visual, quietLogger())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s, visual
}

func checkPairing(t *testing.T, s *Session, visual *fakeVisual) {
	t.Helper()
	if s.Registry().Len() != s.World().BodyCount() || s.Registry().Len() != visual.live {
		t.Fatalf("pairing invariant broken: registry=%d bodies=%d sprites=%d",
			s.Registry().Len(), s.World().BodyCount(), visual.live)
	}
}

func TestSessionPairingInvariantAcrossTicks(t *testing.T) {
	s, visual := newTestSession(t)
	checkPairing(t, s, visual)

	for i := 0; i < 120; i++ {
		s.Tick(tickDt)
		checkPairing(t, s, visual)
	}
}

func TestSessionSweepAndRespawn(t *testing.T) {
	s, visual := newTestSession(t)
	shot := s.Launcher().Shot()
	if shot == nil {
		t.Fatal("no projectile")
	}

	// Drop the projectile below the floor threshold; the next tick
	// must sweep it and enter Empty immediately.
	s.World().SetTranslation(shot.Body, geom.V(0, -30))
	s.Tick(tickDt)

	if s.Launcher().State() != Empty {
		t.Fatalf("state = %s, want empty right after the sweep", s.Launcher().State())
	}
	if s.Registry().Projectile() != nil {
		t.Fatal("projectile should be gone")
	}
	checkPairing(t, s, visual)

	// 2000 ms of virtual time after the arming frame exactly one
	// fresh projectile exists, in Ready, at the origin.
	for i := 0; i < 121; i++ {
		s.Tick(tickDt)
	}
	if s.Launcher().State() != Ready {
		t.Fatalf("state = %s, want ready after respawn delay", s.Launcher().State())
	}
	fresh := s.Registry().Projectile()
	if fresh == nil {
		t.Fatal("no projectile after respawn")
	}
	if fresh.ID == shot.ID {
		t.Error("respawn must create a fresh object")
	}
	pos, _, err := s.World().Pose(fresh.Body)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if pos.Distance(s.Launcher().Origin()) > 1e-9 {
		t.Errorf("respawned at %+v, want origin %+v", pos, s.Launcher().Origin())
	}
	checkPairing(t, s, visual)
}

func TestSessionRespawnDelayExcludesArmingFrame(t *testing.T) {
	s, _ := newTestSession(t)
	shot := s.Launcher().Shot()
	s.World().SetTranslation(shot.Body, geom.V(0, -30))
	s.Tick(tickDt)
	if s.Launcher().State() != Empty {
		t.Fatalf("state = %s, want empty", s.Launcher().State())
	}

	// 1999 ms after the arming frame the timer must not have fired;
	// the frame that armed it contributes nothing to the delay.
	s.Tick(1.999)
	if s.Launcher().State() != Empty {
		t.Fatal("respawned early: the arming frame's dt counted toward the delay")
	}
	s.Tick(0.002)
	if s.Launcher().State() != Ready {
		t.Fatalf("state = %s, want ready once the full delay elapsed", s.Launcher().State())
	}
}

func TestSessionPointerFlow(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetViewport(1280, 720)
	mapper := s.Mapper()

	origin := s.Launcher().Origin()
	down := input.PointerEvent{Type: input.PointerDown, Screen: mapper.ToScreen(origin)}
	s.HandlePointer(&down)
	if !down.Consumed {
		t.Fatal("pointer-down on the projectile should be consumed")
	}
	if s.Launcher().State() != Aiming {
		t.Fatalf("state = %s, want aiming", s.Launcher().State())
	}

	drag := origin.Add(geom.V(3, 0))
	move := input.PointerEvent{Type: input.PointerMove, Screen: mapper.ToScreen(drag)}
	s.HandlePointer(&move)

	up := input.PointerEvent{Type: input.PointerUp, Screen: mapper.ToScreen(drag)}
	s.HandlePointer(&up)
	if s.Launcher().State() != Launched {
		t.Fatalf("state = %s, want launched", s.Launcher().State())
	}

	vel, err := s.World().LinearVelocity(s.Launcher().Shot().Body)
	if err != nil {
		t.Fatalf("velocity: %v", err)
	}
	// Screen mapping round-trips within a pixel, so allow a loose
	// tolerance on the resulting launch velocity.
	if math.Abs(vel.X-(-24.0)) > 0.5 || math.Abs(vel.Y) > 0.5 {
		t.Errorf("velocity = %+v, want about (-24, 0)", vel)
	}
}

func TestSessionPointerOutsidePickRadiusNotConsumed(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetViewport(1280, 720)

	far := s.Launcher().Origin().Add(geom.V(5, 5))
	ev := input.PointerEvent{Type: input.PointerDown, Screen: s.Mapper().ToScreen(far)}
	s.HandlePointer(&ev)
	if ev.Consumed {
		t.Error("press far from the projectile should not be consumed")
	}
	if s.Launcher().State() != Ready {
		t.Errorf("state = %s, want ready", s.Launcher().State())
	}
}

func TestSessionAmbientAndObserversRunEachFrame(t *testing.T) {
	s, _ := newTestSession(t)

	ambientTime := 0.0
	s.AddAmbient(func(dt float64) { ambientTime += dt })

	var snaps []Snapshot
	s.AddObserver(observerFunc(func(snap Snapshot) { snaps = append(snaps, snap) }))

	for i := 0; i < 10; i++ {
		s.Tick(tickDt)
	}

	if math.Abs(ambientTime-10*tickDt) > 1e-9 {
		t.Errorf("ambient time = %f, want %f", ambientTime, 10*tickDt)
	}
	if len(snaps) != 10 {
		t.Fatalf("observed %d snapshots, want 10", len(snaps))
	}
	last := snaps[len(snaps)-1]
	if last.Tick != 10 || !last.ShotLive || last.State != Ready {
		t.Errorf("final snapshot = %+v", last)
	}
}

type observerFunc func(Snapshot)

func (f observerFunc) OnTick(s Snapshot) { f(s) }

func TestSessionShutdownReleasesEverything(t *testing.T) {
	visual := newFakeVisual()
	s, err := NewSession(config.DefaultConfig(), visual, quietLogger())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	// Arm the respawn timer so shutdown has something to cancel.
	shot := s.Launcher().Shot()
	s.World().SetTranslation(shot.Body, geom.V(0, -30))
	s.Tick(tickDt)

	s.Shutdown()

	if s.World().BodyCount() != 0 {
		t.Errorf("bodies after shutdown: %d", s.World().BodyCount())
	}
	if s.World().JointCount() != 0 {
		t.Errorf("joints after shutdown: %d", s.World().JointCount())
	}
	if visual.live != 0 {
		t.Errorf("sprites after shutdown: %d", visual.live)
	}
	if s.Clock().Pending() != 0 {
		t.Errorf("pending actions after shutdown: %d", s.Clock().Pending())
	}
}

func TestSessionReset(t *testing.T) {
	s, visual := newTestSession(t)
	before := s.Registry().Len()

	// Launch and let the projectile fly for a while.
	s.SetViewport(1280, 720)
	mapper := s.Mapper()
	origin := s.Launcher().Origin()
	for _, ev := range []input.PointerEvent{
		{Type: input.PointerDown, Screen: mapper.ToScreen(origin)},
		{Type: input.PointerMove, Screen: mapper.ToScreen(origin.Add(geom.V(3, 1)))},
		{Type: input.PointerUp},
	} {
		ev := ev
		s.HandlePointer(&ev)
	}
	for i := 0; i < 60; i++ {
		s.Tick(tickDt)
	}

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Registry().Len() != before {
		t.Errorf("objects after reset = %d, want %d", s.Registry().Len(), before)
	}
	if s.Launcher().State() != Ready {
		t.Errorf("state = %s, want ready", s.Launcher().State())
	}
	checkPairing(t, s, visual)
}
