package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glade/glade/internal/config"
	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/engine"
	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/persist"
	"github.com/glade/glade/internal/platform"
	"github.com/glade/glade/internal/scene"
	"github.com/glade/glade/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(appName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              Glade  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       controller lifecycle scheduler      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mApp:\033[0m %s\n\n", appName)
}

// displayWidth counts terminal columns; East Asian wide runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main logic ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/glade.toml"
	if p := os.Getenv("GLADE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.App.Name)

	// 3. Scene state store: PostgreSQL when configured, memory otherwise
	printSection("Scene state")
	store, closeStore, err := openStateStore(cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()
	fmt.Println()

	// 4. Scene data and input
	printSection("Scene")
	layout, err := scene.LoadLayout(cfg.Scene.Layout)
	if err != nil {
		return fmt.Errorf("scene layout: %w", err)
	}
	printStat("placements", len(layout.Placements))
	printStat("instances", layout.Instances())

	input, queue, err := openInput(cfg.Input)
	if err != nil {
		return err
	}

	phases, err := parsePhases(cfg.Loop.Phases)
	if err != nil {
		return fmt.Errorf("loop phases: %w", err)
	}

	// 5. Lua controllers
	lua := scripting.NewEngine(log.Named("lua"))
	defer lua.Close()
	var scripts []*scripting.ScriptController
	if cfg.Scripting.Dir != "" {
		if scripts, err = lua.LoadDir(cfg.Scripting.Dir); err != nil {
			return fmt.Errorf("lua scripts: %w", err)
		}
	}
	printStat("lua controllers", len(scripts))
	fmt.Println()

	// 6. Engine and application controllers
	app, err := engine.New(engine.Options{
		Input:       input,
		FrameTime:   cfg.Loop.FrameTime,
		FixedStep:   cfg.Loop.FixedStep,
		Renderer:    graphics.NewRecorder(log.Named("render")),
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		Manifest:    cfg.Resources.Manifest,
		Workers:     cfg.Resources.Workers,
		MaxFrames:   cfg.Loop.MaxFrames,
		FramePhases: phases,
	}, log)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	mainCtl := scene.NewMainController(layout, log.Named("scene"))
	gui := scene.NewGUIController(log.Named("gui"))
	bloom := graphics.NewBloomController()
	state := scene.NewStateController(store, cfg.Database.StateTimeout, log.Named("state"))

	setup := func(a *engine.App) error {
		for _, c := range []controller.Controller{mainCtl, gui, bloom, state} {
			if err := a.Register(c); err != nil {
				return err
			}
		}
		edges := [][2]controller.Controller{
			{gui, mainCtl},
			{bloom, mainCtl},
			{bloom, gui},
			{state, mainCtl},
		}
		for _, e := range edges {
			if err := a.After(e[0], e[1]); err != nil {
				return err
			}
		}
		return scripting.Register(a, scripts)
	}

	// 7. Shutdown signals become a window close request
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)
	go func() {
		sig, ok := <-shutdownCh
		if !ok {
			return
		}
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		queue.Push(platform.InputEvent{Kind: platform.EventClose})
	}()

	printSection("Ready")
	if cfg.Loop.FrameTime > 0 {
		printReady(fmt.Sprintf("frame loop started (frame time: %s)", cfg.Loop.FrameTime))
	} else {
		printReady("frame loop started (unpaced)")
	}
	fmt.Println()

	start := time.Now()
	if err := app.Run(setup); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	printOK(fmt.Sprintf("stopped after %d frames in %s", app.Platform.Presented(), time.Since(start).Round(time.Millisecond)))
	log.Info("shutdown complete")
	return nil
}

func openStateStore(cfg config.DatabaseConfig, log *zap.Logger) (scene.StateStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log.Named("db"))
	if errors.Is(err, persist.ErrNoDSN) {
		printOK("no database configured, scene state kept in memory")
		return scene.NewMemoryStore(), func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	printOK("PostgreSQL connected")

	version, err := persist.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	printOK(fmt.Sprintf("migrations applied (schema version %d)", version))
	return persist.NewSceneStateRepo(db), db.Close, nil
}

// openInput combines the optional scripted timeline with the queue fed by
// signal handling.
func openInput(cfg config.InputConfig) (platform.Source, *platform.QueueSource, error) {
	queue := platform.NewQueueSource(cfg.QueueSize, cfg.MaxEventsPerFrame)
	if cfg.Script == "" {
		return queue, queue, nil
	}
	script, err := platform.LoadScript(cfg.Script)
	if err != nil {
		return nil, nil, err
	}
	printStat("scripted input frames", int(script.LastFrame()))
	return platform.MultiSource{script, queue}, queue, nil
}

func parsePhases(names []string) ([]controller.Phase, error) {
	phases := make([]controller.Phase, 0, len(names))
	for _, n := range names {
		p, err := controller.ParsePhase(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
