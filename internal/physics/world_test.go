package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/topple/internal/geom"
)

func newWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(geom.V(0, -9.81))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func TestNewWorldRejectsInvalidGravity(t *testing.T) {
	if _, err := NewWorld(geom.V(0, math.NaN())); err == nil {
		t.Error("expected error for NaN gravity")
	}
}

func TestCreateAndQueryBody(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(2, 3), Dynamic)
	if err := w.AttachCollider(h, Box(0.5, 0.5), Material{Friction: 0.8, Density: 1}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	pos, angle, err := w.Pose(h)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if pos.X != 2 || pos.Y != 3 || angle != 0 {
		t.Errorf("pose = %+v %f, want (2,3) 0", pos, angle)
	}
	if w.BodyCount() != 1 {
		t.Errorf("bodies = %d, want 1", w.BodyCount())
	}
}

func TestDynamicBodyFalls(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(0, 10), Dynamic)
	if err := w.AttachCollider(h, Circle(0.5), Material{Density: 1}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	for i := 0; i < 60; i++ {
		w.Step()
	}
	pos, _, err := w.Pose(h)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if pos.Y >= 10 {
		t.Errorf("dynamic body did not fall: y = %f", pos.Y)
	}
}

func TestKinematicBodyIgnoresGravity(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(0, 5), Kinematic)
	if err := w.AttachCollider(h, Circle(0.5), Material{Density: 1}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	for i := 0; i < 60; i++ {
		w.Step()
	}
	pos, _, err := w.Pose(h)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if pos.Y != 5 {
		t.Errorf("kinematic body moved under gravity: y = %f", pos.Y)
	}
}

func TestSetLinearVelocityIsApplied(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(0, 0), Dynamic)
	if err := w.AttachCollider(h, Circle(0.5), Material{Density: 1}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := w.SetLinearVelocity(h, geom.V(-24, 0)); err != nil {
		t.Fatalf("set velocity: %v", err)
	}
	vel, err := w.LinearVelocity(h)
	if err != nil {
		t.Fatalf("velocity: %v", err)
	}
	if vel.X != -24 || vel.Y != 0 {
		t.Errorf("velocity = %+v, want (-24, 0)", vel)
	}
}

func TestJointLocksRelativeRotation(t *testing.T) {
	w := newWorld(t)
	a := w.CreateBody(geom.V(0, 0), Dynamic)
	b := w.CreateBody(geom.V(2, 0), Dynamic)
	for _, h := range []BodyHandle{a, b} {
		if err := w.AttachCollider(h, Circle(0.5), Material{Density: 1}); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}
	if _, err := w.CreateJoint(a, geom.V(1, 0), b, geom.V(-1, 0)); err != nil {
		t.Fatalf("joint: %v", err)
	}

	// Spin the endpoints in opposite directions. A weld must keep
	// their relative angle fixed; a bare pivot would let them hinge.
	if err := w.SetAngularVelocity(a, 3); err != nil {
		t.Fatalf("spin a: %v", err)
	}
	if err := w.SetAngularVelocity(b, -3); err != nil {
		t.Fatalf("spin b: %v", err)
	}
	for i := 0; i < 60; i++ {
		w.Step()
	}

	_, angA, err := w.Pose(a)
	if err != nil {
		t.Fatalf("pose a: %v", err)
	}
	_, angB, err := w.Pose(b)
	if err != nil {
		t.Fatalf("pose b: %v", err)
	}
	if diff := math.Abs(angA - angB); diff > 0.05 {
		t.Errorf("relative angle after 1s = %f rad, want rigidly locked", diff)
	}
}

func TestRemoveBodyCascadesJoints(t *testing.T) {
	w := newWorld(t)
	a := w.CreateBody(geom.V(0, 0), Dynamic)
	b := w.CreateBody(geom.V(1, 0), Dynamic)
	c := w.CreateBody(geom.V(2, 0), Dynamic)
	for _, h := range []BodyHandle{a, b, c} {
		if err := w.AttachCollider(h, Box(0.5, 0.5), Material{Density: 1}); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}

	if _, err := w.CreateJoint(a, geom.V(0.5, 0), b, geom.V(-0.5, 0)); err != nil {
		t.Fatalf("joint ab: %v", err)
	}
	if _, err := w.CreateJoint(b, geom.V(0.5, 0), c, geom.V(-0.5, 0)); err != nil {
		t.Fatalf("joint bc: %v", err)
	}
	if w.JointCount() != 2 {
		t.Fatalf("joints = %d, want 2", w.JointCount())
	}

	// Removing the shared endpoint must take both joints with it.
	w.RemoveBody(b)

	if w.JointCount() != 0 {
		t.Errorf("joints = %d, want 0 after removing shared body", w.JointCount())
	}
	if w.BodyCount() != 2 {
		t.Errorf("bodies = %d, want 2", w.BodyCount())
	}

	// The world must still step cleanly afterwards.
	for i := 0; i < 10; i++ {
		w.Step()
	}
}

func TestRemoveBodyIsIdempotent(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(0, 0), Dynamic)
	w.RemoveBody(h)
	w.RemoveBody(h)
	if w.BodyCount() != 0 {
		t.Errorf("bodies = %d, want 0", w.BodyCount())
	}
}

func TestCreateJointRejectsStaleHandles(t *testing.T) {
	w := newWorld(t)
	a := w.CreateBody(geom.V(0, 0), Dynamic)
	b := w.CreateBody(geom.V(1, 0), Dynamic)
	w.RemoveBody(b)

	if _, err := w.CreateJoint(a, geom.Vec2{}, b, geom.Vec2{}); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("err = %v, want ErrUnknownBody", err)
	}
}

func TestStaleHandleQueries(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(0, 0), Dynamic)
	w.RemoveBody(h)

	if _, _, err := w.Pose(h); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Pose err = %v, want ErrUnknownBody", err)
	}
	if err := w.SetLinearVelocity(h, geom.V(1, 0)); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("SetLinearVelocity err = %v, want ErrUnknownBody", err)
	}
	if err := w.SetMotionType(h, Dynamic); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("SetMotionType err = %v, want ErrUnknownBody", err)
	}
}

func TestMotionTypeSwitchKinematicToDynamic(t *testing.T) {
	w := newWorld(t)
	h := w.CreateBody(geom.V(0, 10), Kinematic)
	if err := w.AttachCollider(h, Circle(0.5), Material{Density: 2}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	for i := 0; i < 10; i++ {
		w.Step()
	}
	if err := w.SetMotionType(h, Dynamic); err != nil {
		t.Fatalf("set motion: %v", err)
	}
	for i := 0; i < 30; i++ {
		w.Step()
	}

	pos, _, err := w.Pose(h)
	if err != nil {
		t.Fatalf("pose: %v", err)
	}
	if pos.Y >= 10 {
		t.Errorf("body did not fall after becoming dynamic: y = %f", pos.Y)
	}
}
