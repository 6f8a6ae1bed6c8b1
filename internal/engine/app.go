package engine

import (
	"fmt"
	"time"

	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/core/event"
	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/platform"
	"github.com/glade/glade/internal/resources"
	"go.uber.org/zap"
)

// EngineControllersEnd marks the end of the engine's own controllers.
// Application controllers registered through App.Register run after it.
type EngineControllersEnd struct{}

func (*EngineControllersEnd) Name() string { return "engine.end" }

type Options struct {
	Input     platform.Source
	Clock     platform.Clock
	FrameTime time.Duration
	FixedStep time.Duration

	Renderer graphics.Renderer // nil: headless Recorder
	Width    int
	Height   int

	Manifest string
	Workers  int

	MaxFrames   uint64
	FramePhases []controller.Phase
}

// App owns one scheduler instance and everything registered with it.
type App struct {
	Registry *controller.Registry
	Events   *event.Bus
	Log      *zap.Logger

	Platform  *platform.Controller
	Graphics  *graphics.Controller
	Resources *resources.Controller
	End       *EngineControllersEnd

	opts Options
}

// New registers the engine controllers (platform, graphics, resources) and
// the end marker.
func New(opts Options, log *zap.Logger) (*App, error) {
	if opts.Renderer == nil {
		opts.Renderer = graphics.NewRecorder(log.Named("render"))
	}
	a := &App{
		Registry: controller.NewRegistry(log.Named("registry")),
		Events:   event.NewBus(),
		Log:      log,
		opts:     opts,
	}
	a.Platform = platform.NewController(opts.Input, opts.Clock, platform.Options{
		FrameTime: opts.FrameTime,
		FixedStep: opts.FixedStep,
	}, log.Named("platform"))
	a.Graphics = graphics.NewController(opts.Renderer, opts.Width, opts.Height)
	a.Resources = resources.NewController(opts.Manifest, opts.Workers, log.Named("resources"))
	a.End = &EngineControllersEnd{}

	engine := []controller.Controller{a.Platform, a.Graphics, a.Resources}
	for _, c := range append(engine, a.End) {
		if err := a.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	for _, c := range engine {
		if err := a.Registry.After(a.End, c); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds an application controller, ordered after the engine.
func (a *App) Register(c controller.Controller) error {
	if err := a.Registry.Register(c); err != nil {
		return err
	}
	return a.Registry.After(c, a.End)
}

// After declares that c runs after dep.
func (a *App) After(c, dep controller.Controller) error {
	return a.Registry.After(c, dep)
}

// Setup is the application's registration hook.
type Setup func(a *App) error

// Run calls setup, then drives the scheduler until a controller votes stop.
func (a *App) Run(setup Setup) error {
	if setup != nil {
		if err := setup(a); err != nil {
			return fmt.Errorf("app setup: %w", err)
		}
	}
	var opts []controller.Option
	if len(a.opts.FramePhases) > 0 {
		opts = append(opts, controller.WithFramePhases(a.opts.FramePhases...))
	}
	if a.opts.MaxFrames > 0 {
		opts = append(opts, controller.WithMaxFrames(a.opts.MaxFrames))
	}
	sched, err := controller.NewScheduler(a.Registry, a.Events, a.Log.Named("scheduler"), opts...)
	if err != nil {
		return err
	}

	order, err := a.Registry.Order()
	if err != nil {
		return err
	}
	names := make([]string, len(order))
	for i, c := range order {
		names[i] = c.Name()
	}
	a.Log.Info("execution order", zap.Strings("controllers", names))

	return sched.Run()
}
