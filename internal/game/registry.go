package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/physics"
	"github.com/san-kum/topple/internal/scene"
)

// Registry owns the authoritative collection of live game objects and
// enforces the paired body/sprite lifecycle.
type Registry struct {
	world   *physics.World
	visual  scene.Visual
	log     *slog.Logger
	objects []*GameObject
	nextID  ObjectID
}

func NewRegistry(world *physics.World, visual scene.Visual, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{world: world, visual: visual, log: log}
}

// Create allocates a body and collider, then requests the visual proxy.
// If the proxy cannot be built the body is removed again before the
// error returns, so a failed create leaves no physics state behind.
// The object is only observable once both halves exist.
func (r *Registry) Create(ctx context.Context, kind Kind, pos geom.Vec2, w, h float64, mt physics.MotionType) (*GameObject, error) {
	if kind == Projectile && r.Projectile() != nil {
		return nil, fmt.Errorf("game: a projectile already exists")
	}

	body := r.world.CreateBody(pos, mt)

	var shape physics.Shape
	if kind == Projectile {
		shape = physics.Circle(w / 2)
	} else {
		shape = physics.Box(w/2, h/2)
	}
	if err := r.world.AttachCollider(body, shape, materialFor(kind)); err != nil {
		r.world.RemoveBody(body)
		return nil, fmt.Errorf("game: attach collider: %w", err)
	}

	sprite, err := r.visual.CreateSprite(ctx, scene.SpriteSpec{
		Kind:   kind.spriteKind(),
		Pos:    pos,
		Width:  w,
		Height: h,
	})
	if err != nil {
		r.world.RemoveBody(body)
		r.log.Warn("sprite creation failed, object skipped",
			"kind", kind.String(), "x", pos.X, "y", pos.Y, "err", err)
		return nil, fmt.Errorf("game: create %s sprite: %w", kind, err)
	}

	r.nextID++
	obj := &GameObject{
		ID:     r.nextID,
		Kind:   kind,
		Body:   body,
		Sprite: sprite,
		Width:  w,
		Height: h,
		Motion: mt,
	}
	r.objects = append(r.objects, obj)
	return obj, nil
}

// Destroy tears an object down: sprite first, then the body (which
// cascades joint and collider removal), then the registry entry.
func (r *Registry) Destroy(obj *GameObject) {
	obj.Sprite.Destroy()
	r.world.RemoveBody(obj.Body)
	for i, o := range r.objects {
		if o.ID == obj.ID {
			last := len(r.objects) - 1
			r.objects[i] = r.objects[last]
			r.objects = r.objects[:last]
			break
		}
	}
}

// Sweep destroys every object whose current position fails keep and
// returns the removed ids so the caller can react.
func (r *Registry) Sweep(keep func(pos geom.Vec2) bool) []ObjectID {
	var victims []*GameObject
	for _, obj := range r.objects {
		pos, _, err := r.world.Pose(obj.Body)
		if err != nil || !keep(pos) {
			victims = append(victims, obj)
		}
	}
	removed := make([]ObjectID, 0, len(victims))
	for _, obj := range victims {
		r.Destroy(obj)
		removed = append(removed, obj.ID)
	}
	return removed
}

// SyncSprites pushes every body's pose into its sprite. Physics is the
// single source of truth; nothing flows back.
func (r *Registry) SyncSprites() {
	for _, obj := range r.objects {
		pos, angle, err := r.world.Pose(obj.Body)
		if err != nil {
			continue
		}
		obj.Sprite.SetPose(pos, angle)
	}
}

// Each calls fn for every live object.
func (r *Registry) Each(fn func(*GameObject)) {
	for _, obj := range r.objects {
		fn(obj)
	}
}

// Len reports the number of live objects.
func (r *Registry) Len() int { return len(r.objects) }

// Projectile returns the live projectile, or nil.
func (r *Registry) Projectile() *GameObject {
	for _, obj := range r.objects {
		if obj.Kind == Projectile {
			return obj
		}
	}
	return nil
}

// Clear destroys every live object. Used on shutdown and level reset.
func (r *Registry) Clear() {
	for len(r.objects) > 0 {
		r.Destroy(r.objects[len(r.objects)-1])
	}
}
