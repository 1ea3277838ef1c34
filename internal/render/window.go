// Package render draws the game into a raylib window and pumps pointer
// events back into the session. It implements scene.Visual.
package render

import (
	"context"
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/input"
	"github.com/san-kum/topple/internal/scene"
)

// Theme colors (monochrome, matching the rest of the tooling).
var (
	colBg     = rl.NewColor(10, 10, 10, 255)
	colBlock  = rl.NewColor(180, 180, 180, 255)
	colShot   = rl.NewColor(255, 255, 255, 255)
	colGround = rl.NewColor(60, 60, 60, 255)
	colAim    = rl.NewColor(140, 140, 140, 255)
	colText   = rl.NewColor(140, 140, 140, 255)
)

// Window is a raylib-backed visual: it owns the live sprites and the
// camera, and converts between world and screen space.
type Window struct {
	worldHeight float64
	sprites     []*Sprite
	prevMouse   rl.Vector2
	mouseDown   bool
	open        bool
}

// Sprite is one drawable proxy. Pose is pushed in by the registry
// every frame.
type Sprite struct {
	win    *Window
	kind   scene.SpriteKind
	pos    geom.Vec2
	angle  float64
	width  float64
	height float64
	dead   bool
}

func (s *Sprite) SetPose(pos geom.Vec2, angle float64) {
	s.pos = pos
	s.angle = angle
}

func (s *Sprite) Destroy() {
	if s.dead {
		return
	}
	s.dead = true
	for i, o := range s.win.sprites {
		if o == s {
			last := len(s.win.sprites) - 1
			s.win.sprites[i] = s.win.sprites[last]
			s.win.sprites = s.win.sprites[:last]
			return
		}
	}
}

// Open creates the window. Must be called before any drawing.
func Open(title string, width, height int32, worldHeight float64) *Window {
	rl.InitWindow(width, height, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
	return &Window{worldHeight: worldHeight, open: true}
}

func (w *Window) Close() {
	if w.open {
		rl.CloseWindow()
		w.open = false
	}
}

func (w *Window) ShouldClose() bool { return rl.WindowShouldClose() }

// CreateSprite implements scene.Visual. Window creation is synchronous
// and cannot fail once the window exists; the error return covers a
// closed window.
func (w *Window) CreateSprite(_ context.Context, spec scene.SpriteSpec) (scene.Sprite, error) {
	if !w.open {
		return nil, fmt.Errorf("render: window closed")
	}
	s := &Sprite{
		win:    w,
		kind:   spec.Kind,
		pos:    spec.Pos,
		width:  spec.Width,
		height: spec.Height,
	}
	w.sprites = append(w.sprites, s)
	return s, nil
}

// CameraBounds derives the world-space view from the window's aspect
// ratio and the fixed world height, centered on the origin.
func (w *Window) CameraBounds() geom.Rect {
	sw := float64(rl.GetScreenWidth())
	sh := float64(rl.GetScreenHeight())
	if sh == 0 {
		sh = 1
	}
	halfH := w.worldHeight / 2
	halfW := halfH * sw / sh
	return geom.NewRect(-halfW, -halfH, halfW, halfH)
}

// Viewport reports the window size in pixels.
func (w *Window) Viewport() (float64, float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

// Poll drains this frame's pointer events in occurrence order.
func (w *Window) Poll() []input.PointerEvent {
	var events []input.PointerEvent
	mouse := rl.GetMousePosition()
	at := geom.V(float64(mouse.X), float64(mouse.Y))

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		w.mouseDown = true
		events = append(events, input.PointerEvent{Type: input.PointerDown, Screen: at})
	}
	if (mouse.X != w.prevMouse.X || mouse.Y != w.prevMouse.Y) && w.mouseDown {
		events = append(events, input.PointerEvent{Type: input.PointerMove, Screen: at})
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		w.mouseDown = false
		events = append(events, input.PointerEvent{Type: input.PointerUp, Screen: at})
	}
	w.prevMouse = mouse
	return events
}

// Frame draws all sprites plus the aim indicator and HUD. aim is drawn
// from origin to shotPos while aiming.
func (w *Window) Frame(hud HUD) {
	mapper := w.mapper()
	scale := float64(rl.GetScreenHeight()) / w.worldHeight

	rl.BeginDrawing()
	rl.ClearBackground(colBg)

	for _, s := range w.sprites {
		p := mapper.ToScreen(s.pos)
		switch s.kind {
		case scene.KindProjectile:
			rl.DrawCircleV(rl.NewVector2(float32(p.X), float32(p.Y)),
				float32(s.width/2*scale), colShot)
		case scene.KindGround:
			w.drawBox(s, p, scale, colGround)
		default:
			w.drawBox(s, p, scale, colBlock)
		}
	}

	if hud.Aiming {
		a := mapper.ToScreen(hud.AimFrom)
		b := mapper.ToScreen(hud.AimTo)
		rl.DrawLineEx(rl.NewVector2(float32(a.X), float32(a.Y)),
			rl.NewVector2(float32(b.X), float32(b.Y)), 2, colAim)
	}

	rl.DrawText(hud.Status, 12, 12, 20, colText)
	rl.EndDrawing()
}

func (w *Window) drawBox(s *Sprite, p geom.Vec2, scale float64, col rl.Color) {
	pw := float32(s.width * scale)
	ph := float32(s.height * scale)
	rec := rl.NewRectangle(float32(p.X), float32(p.Y), pw, ph)
	// Screen y grows down, so a CCW world rotation is CW on screen.
	deg := float32(-s.angle * 180 / math.Pi)
	rl.DrawRectanglePro(rec, rl.NewVector2(pw/2, ph/2), deg, col)
}

func (w *Window) mapper() input.Mapper {
	sw, sh := w.Viewport()
	return input.NewMapper(geom.V(sw, sh), w.CameraBounds())
}

// HUD is the per-frame overlay state.
type HUD struct {
	Status  string
	Aiming  bool
	AimFrom geom.Vec2
	AimTo   geom.Vec2
}
