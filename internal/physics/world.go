package physics

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/san-kum/topple/internal/geom"
)

// DefaultTickDt is the fixed simulation timestep. Step advances exactly
// one tick; callers own accumulation.
const DefaultTickDt = 1.0 / 60.0

var ErrUnknownBody = errors.New("physics: unknown body handle")

// MotionType determines how a body participates in the simulation.
type MotionType int

const (
	// Fixed bodies never move (ground, walls).
	Fixed MotionType = iota
	// Kinematic bodies are driven externally but still collide.
	Kinematic
	// Dynamic bodies are fully simulated under gravity and contacts.
	Dynamic
)

func (m MotionType) String() string {
	switch m {
	case Fixed:
		return "fixed"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// BodyHandle identifies a body owned by a World. The zero value is never
// a live body.
type BodyHandle uint64

// JointHandle identifies a joint owned by a World.
type JointHandle uint64

// Shape is a collider shape: a circle or an axis-aligned box in body
// space.
type Shape struct {
	Radius float64 // circle radius; zero for boxes
	HalfW  float64
	HalfH  float64
}

func Circle(radius float64) Shape { return Shape{Radius: radius} }

func Box(halfW, halfH float64) Shape { return Shape{HalfW: halfW, HalfH: halfH} }

// Material describes the surface and mass properties of a collider.
type Material struct {
	Restitution float64
	Friction    float64
	Density     float64
}

type bodyEntry struct {
	body   *cp.Body
	shapes []*cp.Shape
}

type jointEntry struct {
	constraints []*cp.Constraint
	a, b        BodyHandle
}

// World wraps the rigid-body engine behind opaque handles. No engine
// type escapes this package. Not safe for concurrent use; the session
// serializes all access through the frame loop.
type World struct {
	space     *cp.Space
	tickDt    float64
	bodies    map[BodyHandle]*bodyEntry
	joints    map[JointHandle]*jointEntry
	nextBody  BodyHandle
	nextJoint JointHandle
}

// NewWorld initializes the simulation space with the given gravity.
// Failure here is fatal to startup: no partial game state may exist
// without a working world.
func NewWorld(gravity geom.Vec2) (*World, error) {
	if !gravity.IsValid() {
		return nil, fmt.Errorf("physics: invalid gravity %+v", gravity)
	}
	space := cp.NewSpace()
	if space == nil {
		return nil, errors.New("physics: engine initialization failed")
	}
	space.SetGravity(cp.Vector{X: gravity.X, Y: gravity.Y})
	return &World{
		space:  space,
		tickDt: DefaultTickDt,
		bodies: make(map[BodyHandle]*bodyEntry),
		joints: make(map[JointHandle]*jointEntry),
	}, nil
}

// SetTickDt overrides the fixed timestep. Only meaningful before the
// first Step.
func (w *World) SetTickDt(dt float64) { w.tickDt = dt }

func (w *World) TickDt() float64 { return w.tickDt }

// CreateBody adds a body at pos with the given motion type. Colliders
// are attached separately.
func (w *World) CreateBody(pos geom.Vec2, mt MotionType) BodyHandle {
	var body *cp.Body
	switch mt {
	case Fixed:
		body = cp.NewStaticBody()
	case Kinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewBody(0, 0)
	}
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	w.space.AddBody(body)

	w.nextBody++
	h := w.nextBody
	w.bodies[h] = &bodyEntry{body: body}
	return h
}

// AttachCollider adds a shape with the given material to a body. For
// dynamic bodies the engine derives mass and moment from the shape's
// density.
func (w *World) AttachCollider(h BodyHandle, s Shape, m Material) error {
	e, ok := w.bodies[h]
	if !ok {
		return ErrUnknownBody
	}
	var shape *cp.Shape
	if s.Radius > 0 {
		shape = cp.NewCircle(e.body, s.Radius, cp.Vector{})
	} else {
		shape = cp.NewBox(e.body, s.HalfW*2, s.HalfH*2, 0)
	}
	shape.SetElasticity(m.Restitution)
	shape.SetFriction(m.Friction)
	if m.Density > 0 {
		shape.SetDensity(m.Density)
	}
	w.space.AddShape(shape)
	e.shapes = append(e.shapes, shape)
	return nil
}

// CreateJoint welds bodies a and b together at their local anchor
// points: a pivot pins the anchors to coincide and a gear locks their
// relative rotation, so the joined pair moves as one rigid assembly.
// Both handles must be live; callers are structured so that a joint is
// only attempted after both endpoints are known-successful.
func (w *World) CreateJoint(a BodyHandle, anchorA geom.Vec2, b BodyHandle, anchorB geom.Vec2) (JointHandle, error) {
	ea, ok := w.bodies[a]
	if !ok {
		return 0, fmt.Errorf("physics: joint endpoint a: %w", ErrUnknownBody)
	}
	eb, ok := w.bodies[b]
	if !ok {
		return 0, fmt.Errorf("physics: joint endpoint b: %w", ErrUnknownBody)
	}
	pivot := cp.NewPivotJoint2(ea.body, eb.body,
		cp.Vector{X: anchorA.X, Y: anchorA.Y},
		cp.Vector{X: anchorB.X, Y: anchorB.Y})
	gear := cp.NewGearJoint(ea.body, eb.body, 0, 1)
	w.space.AddConstraint(pivot)
	w.space.AddConstraint(gear)

	w.nextJoint++
	h := w.nextJoint
	w.joints[h] = &jointEntry{constraints: []*cp.Constraint{pivot, gear}, a: a, b: b}
	return h, nil
}

// Step advances the simulation by exactly one fixed tick.
func (w *World) Step() {
	w.space.Step(w.tickDt)
}

// RemoveBody removes a body together with every collider and joint that
// references it, so no dangling joint handle survives. Stale handles
// are a no-op.
func (w *World) RemoveBody(h BodyHandle) {
	e, ok := w.bodies[h]
	if !ok {
		return
	}
	for jh, j := range w.joints {
		if j.a == h || j.b == h {
			for _, c := range j.constraints {
				w.space.RemoveConstraint(c)
			}
			delete(w.joints, jh)
		}
	}
	for _, shape := range e.shapes {
		w.space.RemoveShape(shape)
	}
	w.space.RemoveBody(e.body)
	delete(w.bodies, h)
}

// Pose reports a body's current position and rotation in radians.
func (w *World) Pose(h BodyHandle) (geom.Vec2, float64, error) {
	e, ok := w.bodies[h]
	if !ok {
		return geom.Vec2{}, 0, ErrUnknownBody
	}
	p := e.body.Position()
	return geom.Vec2{X: p.X, Y: p.Y}, e.body.Angle(), nil
}

// SetMotionType changes how a body is simulated. Switching to Dynamic
// recomputes mass and moment from the attached colliders.
func (w *World) SetMotionType(h BodyHandle, mt MotionType) error {
	e, ok := w.bodies[h]
	if !ok {
		return ErrUnknownBody
	}
	switch mt {
	case Fixed:
		e.body.SetType(cp.BODY_STATIC)
	case Kinematic:
		e.body.SetType(cp.BODY_KINEMATIC)
	default:
		e.body.SetType(cp.BODY_DYNAMIC)
	}
	return nil
}

func (w *World) SetLinearVelocity(h BodyHandle, v geom.Vec2) error {
	e, ok := w.bodies[h]
	if !ok {
		return ErrUnknownBody
	}
	e.body.SetVelocityVector(cp.Vector{X: v.X, Y: v.Y})
	return nil
}

func (w *World) SetAngularVelocity(h BodyHandle, omega float64) error {
	e, ok := w.bodies[h]
	if !ok {
		return ErrUnknownBody
	}
	e.body.SetAngularVelocity(omega)
	return nil
}

func (w *World) SetTranslation(h BodyHandle, pos geom.Vec2) error {
	e, ok := w.bodies[h]
	if !ok {
		return ErrUnknownBody
	}
	e.body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	return nil
}

// LinearVelocity reports a body's current velocity.
func (w *World) LinearVelocity(h BodyHandle) (geom.Vec2, error) {
	e, ok := w.bodies[h]
	if !ok {
		return geom.Vec2{}, ErrUnknownBody
	}
	v := e.body.Velocity()
	return geom.Vec2{X: v.X, Y: v.Y}, nil
}

// BodyCount reports the number of live bodies.
func (w *World) BodyCount() int { return len(w.bodies) }

// JointCount reports the number of live joints.
func (w *World) JointCount() int { return len(w.joints) }
