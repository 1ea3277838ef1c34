package scene

import (
	"context"

	"github.com/san-kum/topple/internal/geom"
)

// NopVisual satisfies Visual without rendering anything. Used by the
// headless command and anywhere a session runs without a display.
type NopVisual struct {
	Bounds geom.Rect
	live   int
}

func NewNop(bounds geom.Rect) *NopVisual {
	return &NopVisual{Bounds: bounds}
}

func (v *NopVisual) CreateSprite(_ context.Context, _ SpriteSpec) (Sprite, error) {
	v.live++
	return &nopSprite{visual: v}, nil
}

func (v *NopVisual) CameraBounds() geom.Rect { return v.Bounds }

// Live reports the number of undestroyed sprites.
func (v *NopVisual) Live() int { return v.live }

type nopSprite struct {
	visual *NopVisual
	dead   bool
}

func (s *nopSprite) SetPose(geom.Vec2, float64) {}

func (s *nopSprite) Destroy() {
	if !s.dead {
		s.dead = true
		s.visual.live--
	}
}
