package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorldHeight  = 20.0
	DefaultGravityY     = -9.81
	DefaultLaunchPower  = 8.0
	DefaultMaxDrag      = 4.0
	DefaultMinDrag      = 0.1
	DefaultRespawnMs    = 2000
	DefaultFloorY       = -17.5
	DefaultBoundaryX    = 20.0
	DefaultTickDt       = 1.0 / 60.0
	DefaultShotRadius   = 0.5
	DefaultPickRadius   = 1.2
	DefaultBlockSize    = 1.0
	DefaultSpacing      = 1.5
	DefaultTowerHeight  = 5
	DefaultGateColumns  = 2
	DefaultLevelOriginX = 2.0
	DefaultLevelOriginY = -9.5
	DefaultShotOriginX  = -14.0
	DefaultShotOriginY  = -8.0
)

// Config is the full tunable surface of a session.
type Config struct {
	WorldHeight float64     `yaml:"world_height"`
	Gravity     GravityConf `yaml:"gravity"`
	TickDt      float64     `yaml:"tick_dt"`
	Launch      LaunchConf  `yaml:"launch"`
	Bounds      BoundsConf  `yaml:"bounds"`
	Level       LevelConf   `yaml:"level"`
	Seed        int64       `yaml:"seed"`
}

type GravityConf struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type LaunchConf struct {
	Power      float64 `yaml:"power"`
	MaxDrag    float64 `yaml:"max_drag"`
	MinDrag    float64 `yaml:"min_drag"`
	RespawnMs  int     `yaml:"respawn_ms"`
	OriginX    float64 `yaml:"origin_x"`
	OriginY    float64 `yaml:"origin_y"`
	ShotRadius float64 `yaml:"shot_radius"`
	PickRadius float64 `yaml:"pick_radius"`
}

type BoundsConf struct {
	FloorY    float64 `yaml:"floor_y"`
	BoundaryX float64 `yaml:"boundary_x"`
}

type LevelConf struct {
	BlockSize   float64 `yaml:"block_size"`
	Spacing     float64 `yaml:"spacing"`
	OriginX     float64 `yaml:"origin_x"`
	OriginY     float64 `yaml:"origin_y"`
	TowerHeight int     `yaml:"tower_height"`
	GateColumns int     `yaml:"gate_columns"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldHeight: DefaultWorldHeight,
		Gravity:     GravityConf{X: 0, Y: DefaultGravityY},
		TickDt:      DefaultTickDt,
		Launch: LaunchConf{
			Power:      DefaultLaunchPower,
			MaxDrag:    DefaultMaxDrag,
			MinDrag:    DefaultMinDrag,
			RespawnMs:  DefaultRespawnMs,
			OriginX:    DefaultShotOriginX,
			OriginY:    DefaultShotOriginY,
			ShotRadius: DefaultShotRadius,
			PickRadius: DefaultPickRadius,
		},
		Bounds: BoundsConf{
			FloorY:    DefaultFloorY,
			BoundaryX: DefaultBoundaryX,
		},
		Level: LevelConf{
			BlockSize:   DefaultBlockSize,
			Spacing:     DefaultSpacing,
			OriginX:     DefaultLevelOriginX,
			OriginY:     DefaultLevelOriginY,
			TowerHeight: DefaultTowerHeight,
			GateColumns: DefaultGateColumns,
		},
	}
}

// Load reads a yaml config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays a yaml config file onto c: only keys present in
// the file are overwritten, everything else keeps its current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	return c.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.TickDt <= 0 {
		return fmt.Errorf("tick_dt must be positive, got %f", c.TickDt)
	}
	if c.WorldHeight <= 0 {
		return fmt.Errorf("world_height must be positive, got %f", c.WorldHeight)
	}
	if c.Launch.MaxDrag <= 0 {
		return fmt.Errorf("launch.max_drag must be positive, got %f", c.Launch.MaxDrag)
	}
	if c.Launch.MinDrag < 0 || c.Launch.MinDrag > c.Launch.MaxDrag {
		return fmt.Errorf("launch.min_drag out of range: %f", c.Launch.MinDrag)
	}
	if c.Launch.RespawnMs < 0 {
		return fmt.Errorf("launch.respawn_ms must be non-negative, got %d", c.Launch.RespawnMs)
	}
	if c.Level.TowerHeight < 1 {
		return fmt.Errorf("level.tower_height must be at least 1, got %d", c.Level.TowerHeight)
	}
	if c.Level.BlockSize <= 0 || c.Level.Spacing <= 0 {
		return fmt.Errorf("level block_size and spacing must be positive")
	}
	return nil
}
