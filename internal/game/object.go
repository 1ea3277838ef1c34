package game

import (
	"github.com/san-kum/topple/internal/physics"
	"github.com/san-kum/topple/internal/scene"
)

// ObjectID identifies a registered game object. Ids are never reused
// within a session.
type ObjectID uint64

// Kind classifies game objects.
type Kind int

const (
	// Block is a structure block: static at rest, fully simulated once
	// disturbed.
	Block Kind = iota
	// Projectile is the single launchable object. At most one exists
	// at any instant.
	Projectile
	// Ground is the immovable slab the structure stands on.
	Ground
)

func (k Kind) String() string {
	switch k {
	case Block:
		return "block"
	case Projectile:
		return "projectile"
	case Ground:
		return "ground"
	}
	return "unknown"
}

func (k Kind) spriteKind() scene.SpriteKind {
	switch k {
	case Projectile:
		return scene.KindProjectile
	case Ground:
		return scene.KindGround
	}
	return scene.KindBlock
}

// materialFor returns the collider material for a kind.
func materialFor(k Kind) physics.Material {
	switch k {
	case Projectile:
		return physics.Material{Restitution: 0.4, Friction: 0.7, Density: 2.0}
	case Ground:
		return physics.Material{Restitution: 0.1, Friction: 0.9, Density: 0}
	}
	return physics.Material{Restitution: 0.1, Friction: 0.8, Density: 1.0}
}

// GameObject pairs a physics body with its visual proxy. An object is
// registered iff both halves exist; they are created and destroyed
// atomically by the Registry.
type GameObject struct {
	ID     ObjectID
	Kind   Kind
	Body   physics.BodyHandle
	Sprite scene.Sprite
	Width  float64
	Height float64
	Motion physics.MotionType
}
