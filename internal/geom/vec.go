package geom

import "math"

// Vec2 is a 2D world-space vector.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Length() }

// Normalize returns the unit vector in v's direction, or the zero
// vector if v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Clamp limits the vector's magnitude to max by rescaling along its
// direction. Components are never truncated independently.
func (v Vec2) Clamp(max float64) Vec2 {
	l := v.Length()
	if l <= max {
		return v
	}
	return v.Normalize().Scale(max)
}

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned world-space rectangle.
type Rect struct {
	Min, Max Vec2
}

func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Vec2{minX, minY}, Max: Vec2{maxX, maxY}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
