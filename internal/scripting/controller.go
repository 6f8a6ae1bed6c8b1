package scripting

import (
	"fmt"

	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/engine"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ScriptController runs the hooks a Lua script returned. Several share one
// Go type, so each is keyed by its script name.
type ScriptController struct {
	engine *Engine
	name   string
	file   string
	after  []string

	initFn   *lua.LFunction
	loopFn   *lua.LFunction
	updateFn *lua.LFunction
	drawFn   *lua.LFunction
	termFn   *lua.LFunction
}

func (s *ScriptController) Name() string { return "lua." + s.name }

func (s *ScriptController) ControllerID() controller.ID {
	return controller.ID("lua:" + s.name)
}

// After lists the controller names this script declared it runs after.
func (s *ScriptController) After() []string { return append([]string(nil), s.after...) }

func (s *ScriptController) Initialize(c *controller.Context) error {
	if err := s.engine.bind(c); err != nil {
		return err
	}
	return s.run(c, "initialize", s.initFn)
}

// Loop votes stop when the script's loop returns false, when it raises an
// error, or once any script called glade.stop().
func (s *ScriptController) Loop(c *controller.Context) bool {
	if s.loopFn != nil {
		if err := s.engine.call(s, c, s.loopFn, 1); err != nil {
			s.engine.log.Error("lua loop error", zap.String("script", s.name), zap.Error(err))
			return false
		}
		ret := s.engine.vm.Get(-1)
		s.engine.vm.Pop(1)
		if ret != lua.LNil && !lua.LVAsBool(ret) {
			return false
		}
	}
	return !s.engine.stop
}

func (s *ScriptController) Update(c *controller.Context) error {
	if s.updateFn == nil {
		return nil
	}
	return s.run(c, "update", s.updateFn, lua.LNumber(s.engine.platform.DT()))
}

func (s *ScriptController) Draw(c *controller.Context) error {
	return s.run(c, "draw", s.drawFn)
}

func (s *ScriptController) Terminate(c *controller.Context) error {
	return s.run(c, "terminate", s.termFn)
}

func (s *ScriptController) run(c *controller.Context, hook string, fn *lua.LFunction, args ...lua.LValue) error {
	if fn == nil {
		return nil
	}
	if err := s.engine.call(s, c, fn, 0, args...); err != nil {
		return fmt.Errorf("%s %s: %w", s.file, hook, err)
	}
	return nil
}

// Register adds the scripts to app and turns each declared after-name into
// an ordering edge. Names are matched against Controller.Name() of
// everything registered, scripts included.
func Register(app *engine.App, scripts []*ScriptController) error {
	for _, s := range scripts {
		if err := app.Register(s); err != nil {
			return err
		}
	}

	byName := map[string][]controller.ID{}
	app.Registry.Each(func(id controller.ID, c controller.Controller) {
		byName[c.Name()] = append(byName[c.Name()], id)
	})

	for _, s := range scripts {
		for _, dep := range s.after {
			ids := byName[dep]
			switch len(ids) {
			case 0:
				return &controller.ConfigError{Op: "after", ID: controller.ID(dep), Err: controller.ErrNotFound}
			case 1:
			default:
				return fmt.Errorf("script %s: controller name %q is ambiguous", s.name, dep)
			}
			if err := app.Registry.AfterID(s.ControllerID(), ids[0]); err != nil {
				return err
			}
		}
	}
	return nil
}
