package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Window    WindowConfig    `toml:"window"`
	Loop      LoopConfig      `toml:"loop"`
	Logging   LoggingConfig   `toml:"logging"`
	Database  DatabaseConfig  `toml:"database"`
	Resources ResourcesConfig `toml:"resources"`
	Scene     SceneConfig     `toml:"scene"`
	Input     InputConfig     `toml:"input"`
	Scripting ScriptingConfig `toml:"scripting"`
}

type AppConfig struct {
	Name      string `toml:"name" env:"GLADE_APP_NAME"`
	StartTime int64  // set at boot, not from config
}

type WindowConfig struct {
	Width  int `toml:"width" env:"GLADE_WINDOW_WIDTH"`
	Height int `toml:"height" env:"GLADE_WINDOW_HEIGHT"`
}

type LoopConfig struct {
	FrameTime time.Duration `toml:"frame_time" env:"GLADE_FRAME_TIME"` // pacing target, 0 = unpaced
	FixedStep time.Duration `toml:"fixed_step" env:"GLADE_FIXED_STEP"` // fixed dt, 0 = measured
	MaxFrames uint64        `toml:"max_frames" env:"GLADE_MAX_FRAMES"` // 0 = until stopped
	Phases    []string      `toml:"phases" env:"GLADE_FRAME_PHASES"`   // empty = update, begin_draw, draw, end_draw
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"GLADE_LOG_LEVEL"`
	Format string `toml:"format" env:"GLADE_LOG_FORMAT"` // "json" or "console"
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn" env:"GLADE_DATABASE_DSN"` // empty = scene state kept in memory
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	StateTimeout    time.Duration `toml:"state_timeout"`
}

type ResourcesConfig struct {
	Manifest string `toml:"manifest" env:"GLADE_RESOURCES_MANIFEST"`
	Workers  int    `toml:"workers" env:"GLADE_RESOURCES_WORKERS"`
}

type SceneConfig struct {
	Layout string `toml:"layout" env:"GLADE_SCENE_LAYOUT"`
}

type InputConfig struct {
	Script            string `toml:"script" env:"GLADE_INPUT_SCRIPT"` // empty = no scripted input
	QueueSize         int    `toml:"queue_size"`
	MaxEventsPerFrame int    `toml:"max_events_per_frame"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir" env:"GLADE_SCRIPTS_DIR"` // empty = no Lua controllers
}

// Load reads the TOML file at path over the defaults, then applies
// GLADE_* environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.App.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Loop.FrameTime < 0 || c.Loop.FixedStep < 0 {
		return fmt.Errorf("loop durations must not be negative")
	}
	if c.Resources.Workers < 1 {
		return fmt.Errorf("resources.workers must be at least 1")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q: want json or console", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name: "Glade",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
		},
		Loop: LoopConfig{
			FrameTime: 16 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			StateTimeout:    5 * time.Second,
		},
		Resources: ResourcesConfig{
			Manifest: "assets/manifest.yaml",
			Workers:  4,
		},
		Scene: SceneConfig{
			Layout: "assets/scene.yaml",
		},
		Input: InputConfig{
			QueueSize:         64,
			MaxEventsPerFrame: 32,
		},
	}
}
