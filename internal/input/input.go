// Package input defines pointer events and the screen-to-world mapper.
package input

import "github.com/san-kum/topple/internal/geom"

// PointerType is the kind of pointer event.
type PointerType int

const (
	PointerDown PointerType = iota
	PointerMove
	PointerUp
)

// PointerEvent is one pointer sample in screen space. Handlers set
// Consumed to suppress further propagation.
type PointerEvent struct {
	Type     PointerType
	Screen   geom.Vec2
	Consumed bool
}

// Mapper converts screen-space coordinates into world space using the
// current viewport dimensions and the camera's world bounds. The
// mapping is linear with the y axis inverted (screen y grows down,
// world y grows up).
type Mapper struct {
	Viewport geom.Vec2 // width, height in pixels
	World    geom.Rect
}

func NewMapper(viewport geom.Vec2, world geom.Rect) Mapper {
	return Mapper{Viewport: viewport, World: world}
}

// ToWorld maps a screen point into world space.
func (m Mapper) ToWorld(screen geom.Vec2) geom.Vec2 {
	if m.Viewport.X == 0 || m.Viewport.Y == 0 {
		return geom.Vec2{}
	}
	fx := screen.X / m.Viewport.X
	fy := screen.Y / m.Viewport.Y
	return geom.Vec2{
		X: m.World.Min.X + fx*m.World.Width(),
		Y: m.World.Max.Y - fy*m.World.Height(),
	}
}

// ToScreen maps a world point into screen space. Inverse of ToWorld.
func (m Mapper) ToScreen(world geom.Vec2) geom.Vec2 {
	if m.World.Width() == 0 || m.World.Height() == 0 {
		return geom.Vec2{}
	}
	fx := (world.X - m.World.Min.X) / m.World.Width()
	fy := (m.World.Max.Y - world.Y) / m.World.Height()
	return geom.Vec2{X: fx * m.Viewport.X, Y: fy * m.Viewport.Y}
}

// ClampDrag limits pos so its offset from origin never exceeds maxDrag,
// rescaling along the drag direction.
func ClampDrag(origin, pos geom.Vec2, maxDrag float64) geom.Vec2 {
	return origin.Add(pos.Sub(origin).Clamp(maxDrag))
}
