package tui

import (
	"context"
	"strings"

	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/input"
	"github.com/san-kum/topple/internal/scene"
)

// Canvas is the terminal visual: sprites are plotted onto a rune grid
// each frame. It implements scene.Visual.
type Canvas struct {
	bounds  geom.Rect
	sprites []*cell
}

type cell struct {
	canvas *Canvas
	kind   scene.SpriteKind
	pos    geom.Vec2
	width  float64
	height float64
	dead   bool
}

func (c *cell) SetPose(pos geom.Vec2, _ float64) { c.pos = pos }

func (c *cell) Destroy() {
	if c.dead {
		return
	}
	c.dead = true
	for i, o := range c.canvas.sprites {
		if o == c {
			last := len(c.canvas.sprites) - 1
			c.canvas.sprites[i] = c.canvas.sprites[last]
			c.canvas.sprites = c.canvas.sprites[:last]
			return
		}
	}
}

// NewCanvas builds a canvas spanning the given world bounds.
func NewCanvas(bounds geom.Rect) *Canvas {
	return &Canvas{bounds: bounds}
}

func (c *Canvas) CreateSprite(_ context.Context, spec scene.SpriteSpec) (scene.Sprite, error) {
	s := &cell{
		canvas: c,
		kind:   spec.Kind,
		pos:    spec.Pos,
		width:  spec.Width,
		height: spec.Height,
	}
	c.sprites = append(c.sprites, s)
	return s, nil
}

func (c *Canvas) CameraBounds() geom.Rect { return c.bounds }

// Render plots every sprite onto the grid and returns it as text.
func (c *Canvas) Render() string {
	grid := make([][]rune, canvasH)
	for y := range grid {
		grid[y] = make([]rune, canvasW)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	mapper := input.NewMapper(geom.V(canvasW, canvasH), c.bounds)
	set := func(p geom.Vec2, r rune) {
		s := mapper.ToScreen(p)
		x, y := int(s.X), int(s.Y)
		if x >= 0 && x < canvasW && y >= 0 && y < canvasH {
			grid[y][x] = r
		}
	}

	for _, sp := range c.sprites {
		switch sp.kind {
		case scene.KindProjectile:
			set(sp.pos, '@')
		case scene.KindGround:
			// Spread the slab across its full width.
			half := sp.width / 2
			step := c.bounds.Width() / canvasW
			for x := sp.pos.X - half; x <= sp.pos.X+half; x += step {
				set(geom.V(x, sp.pos.Y), '=')
			}
		default:
			set(sp.pos, '#')
		}
	}

	var b strings.Builder
	for y := range grid {
		b.WriteString(string(grid[y]))
		if y < canvasH-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
