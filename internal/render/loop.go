package render

import (
	"context"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/topple/internal/game"
)

// Run drives the session from the window's frame loop until the window
// closes or Escape is pressed. The host invokes everything serially
// from here: input, tick, draw.
func Run(s *game.Session, w *Window) error {
	for !w.ShouldClose() {
		if rl.IsKeyPressed(rl.KeyEscape) {
			return nil
		}
		if rl.IsKeyPressed(rl.KeyR) {
			if err := s.Reset(context.Background()); err != nil {
				return fmt.Errorf("render: reset: %w", err)
			}
		}

		sw, sh := w.Viewport()
		s.SetViewport(sw, sh)

		for _, ev := range w.Poll() {
			ev := ev
			s.HandlePointer(&ev)
		}

		dt := float64(rl.GetFrameTime())
		if dt > 0.25 {
			dt = 0.25
		}
		s.Tick(dt)

		w.Frame(buildHUD(s))
	}
	return nil
}

func buildHUD(s *game.Session) HUD {
	l := s.Launcher()
	hud := HUD{
		Status: fmt.Sprintf("%s  objects %d   drag to launch | R reset | Esc quit",
			l.State(), s.Registry().Len()),
	}
	if l.State() == game.Aiming {
		if shot := l.Shot(); shot != nil {
			if pos, _, err := s.World().Pose(shot.Body); err == nil {
				hud.Aiming = true
				hud.AimFrom = l.Origin()
				hud.AimTo = pos
			}
		}
	}
	return hud
}
