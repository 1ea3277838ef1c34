package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/topple/internal/audio"
	"github.com/san-kum/topple/internal/config"
	"github.com/san-kum/topple/internal/game"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/input"
	"github.com/san-kum/topple/internal/metrics"
	"github.com/san-kum/topple/internal/render"
	"github.com/san-kum/topple/internal/scene"
	"github.com/san-kum/topple/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	configFile string
	preset     string
	seed       int64
	mute       bool
	duration   float64
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "topple",
		Short: "physics launch game: knock the structure down",
		RunE:  runPlay,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "level preset")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed for launch spin")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play in a window",
		RunE:  runPlay,
	}
	playCmd.Flags().BoolVar(&mute, "mute", false, "disable audio")
	rootCmd.Flags().BoolVar(&mute, "mute", false, "disable audio")

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run a scripted launch without a window and print a summary",
		RunE:  runHeadless,
	}
	headlessCmd.Flags().Float64Var(&duration, "time", 10.0, "seconds to simulate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch an autoplaying session in the terminal",
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list level presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(playCmd, headlessCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig resolves defaults, preset, config file, then flags, in
// ascending precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		level, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Level = *level
	}

	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if cmd.Flags().Changed("seed") || cmd.InheritedFlags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()

	win := render.Open("topple", 1280, 720, cfg.WorldHeight)
	defer win.Close()

	session, err := game.NewSession(cfg, win, log)
	if err != nil {
		return err
	}
	defer session.Shutdown()

	if !mute {
		if player, err := audio.NewPlayer(); err != nil {
			log.Warn("audio unavailable", "err", err)
		} else {
			defer player.Close()
			session.Launcher().SetCues(player)
		}
	}

	return render.Run(session, win)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger()

	halfH := cfg.WorldHeight / 2
	visual := scene.NewNop(geom.NewRect(-halfH*16/9, -halfH, halfH*16/9, halfH))
	session, err := game.NewSession(cfg, visual, log)
	if err != nil {
		return err
	}
	defer session.Shutdown()
	session.SetViewport(1280, 720)

	set := metrics.NewSet(
		&metrics.PeakHeight{},
		&metrics.FlightTime{},
		&metrics.Launches{},
		&metrics.Toppled{},
	)
	session.AddObserver(set)

	var trajectory []float64
	startObjects := session.Registry().Len()

	const dt = 1.0 / 60.0
	steps := int(duration / dt)
	for i := 0; i < steps; i++ {
		scriptPointer(session, i)
		session.Tick(dt)
		if shot := session.Launcher().Shot(); shot != nil && session.Launcher().State() == game.Launched {
			if pos, _, err := session.World().Pose(shot.Body); err == nil {
				trajectory = append(trajectory, pos.Y)
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "time\t%.1fs\n", duration)
	fmt.Fprintf(w, "objects\t%d (started %d)\n", session.Registry().Len(), startObjects)
	fmt.Fprintf(w, "state\t%s\n", session.Launcher().State())
	set.Each(func(m metrics.Metric) {
		fmt.Fprintf(w, "%s\t%.2f\n", m.Name(), m.Value())
	})
	w.Flush()

	if len(trajectory) > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(trajectory,
			asciigraph.Height(10), asciigraph.Caption("projectile height (first launch)")))
	}
	return nil
}

// scriptPointer feeds a fixed drag gesture: pick the projectile at
// half a second, pull back over a quarter second, release.
func scriptPointer(s *game.Session, step int) {
	const pickStep = 30
	const releaseStep = 45

	l := s.Launcher()
	switch {
	case step == pickStep:
		if shot := l.Shot(); shot != nil {
			if pos, _, err := s.World().Pose(shot.Body); err == nil {
				sendPointer(s, input.PointerDown, pos)
			}
		}
	case step > pickStep && step < releaseStep:
		f := float64(step-pickStep) / float64(releaseStep-pickStep)
		target := l.Origin().Add(geom.V(-3.0, -1.0).Scale(f))
		sendPointer(s, input.PointerMove, target)
	case step == releaseStep:
		sendPointer(s, input.PointerUp, l.Origin())
	}
}

func sendPointer(s *game.Session, t input.PointerType, world geom.Vec2) {
	ev := input.PointerEvent{Type: t, Screen: s.Mapper().ToScreen(world)}
	s.HandlePointer(&ev)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	halfH := cfg.WorldHeight / 2
	canvas := tui.NewCanvas(geom.NewRect(-halfH*1.6, -halfH, halfH*1.6, halfH))
	session, err := game.NewSession(cfg, canvas, log)
	if err != nil {
		return err
	}
	defer session.Shutdown()

	p := tea.NewProgram(tui.NewModel(session, canvas))
	_, err = p.Run()
	return err
}
