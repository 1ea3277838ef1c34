// Package scene declares the visual capabilities the game core draws
// through. Implementations live in internal/render (raylib window),
// internal/tui (terminal canvas), and test fakes.
package scene

import (
	"context"

	"github.com/san-kum/topple/internal/geom"
)

// SpriteKind selects the visual treatment of a sprite.
type SpriteKind int

const (
	KindBlock SpriteKind = iota
	KindProjectile
	KindGround
)

// SpriteSpec describes a sprite to create.
type SpriteSpec struct {
	Kind   SpriteKind
	Pos    geom.Vec2
	Width  float64
	Height float64
}

// Sprite is a visual proxy for one game object. Pose flows
// one-directionally from the physics body into the sprite.
type Sprite interface {
	SetPose(pos geom.Vec2, angle float64)
	Destroy()
}

// Visual creates and destroys sprites and exposes the camera's
// world-space bounds.
//
// CreateSprite is the asynchronous phase of object creation: it may
// decode resources off-frame, but it must return success or failure
// before the caller registers the object. A failed creation leaves no
// visual resource behind.
type Visual interface {
	CreateSprite(ctx context.Context, spec SpriteSpec) (Sprite, error)
	CameraBounds() geom.Rect
}
