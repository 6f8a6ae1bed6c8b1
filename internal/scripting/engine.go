package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/platform"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM shared by every script controller.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	// bound on the first script Initialize
	platform *platform.Controller
	gfx      *graphics.Controller

	ctx     *controller.Context
	current *ScriptController
	stop    bool
}

// NewEngine creates a Lua VM with the glade API table installed.
func NewEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	api := vm.NewTable()
	vm.SetFuncs(api, map[string]lua.LGFunction{
		"key_down":    e.luaKeyDown,
		"key_pressed": e.luaKeyPressed,
		"dt":          e.luaDT,
		"frame":       e.luaFrame,
		"phase":       e.luaPhase,
		"log":         e.luaLog,
		"stop":        e.luaStop,
		"draw_model":  e.luaDrawModel,
	})
	vm.SetGlobal("glade", api)
	return e
}

// LoadDir runs every .lua file in dir, in file name order. Each file must
// return a table describing one controller. A missing dir yields none.
func (e *Engine) LoadDir(dir string) ([]*ScriptController, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // skip missing dirs
		}
		return nil, err
	}
	var out []*ScriptController
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		sc, err := e.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path), zap.String("name", sc.name))
		out = append(out, sc)
	}
	return out, nil
}

func (e *Engine) loadFile(path string) (*ScriptController, error) {
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return nil, err
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	t, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script must return a table, got %s", ret.Type())
	}

	name := lStr(t, "name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".lua")
	}
	sc := &ScriptController{
		engine:   e,
		name:     name,
		file:     path,
		initFn:   lFunc(t, "initialize"),
		loopFn:   lFunc(t, "loop"),
		updateFn: lFunc(t, "update"),
		drawFn:   lFunc(t, "draw"),
		termFn:   lFunc(t, "terminate"),
	}
	switch after := t.RawGetString("after").(type) {
	case lua.LString:
		sc.after = []string{string(after)}
	case *lua.LTable:
		for i := 1; i <= after.Len(); i++ {
			sc.after = append(sc.after, lua.LVAsString(after.RawGetInt(i)))
		}
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("after must be a string or a list, got %s", after.Type())
	}
	return sc, nil
}

// bind resolves the engine controllers the API talks to.
func (e *Engine) bind(c *controller.Context) error {
	if e.platform != nil {
		return nil
	}
	var err error
	if e.platform, err = controller.Get[*platform.Controller](c.Registry); err != nil {
		return err
	}
	if e.gfx, err = controller.Get[*graphics.Controller](c.Registry); err != nil {
		e.platform = nil
		return err
	}
	return nil
}

// StopRequested reports whether a script called glade.stop().
func (e *Engine) StopRequested() bool { return e.stop }

// call runs fn with the given args as script sc. nret results are left for
// the caller to pop.
func (e *Engine) call(sc *ScriptController, c *controller.Context, fn *lua.LFunction, nret int, args ...lua.LValue) error {
	e.ctx, e.current = c, sc
	defer func() { e.current = nil }()
	return e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    nret,
		Protect: true,
	}, args...)
}

// --- glade API ---

func (e *Engine) requireBound(L *lua.LState, fn string) {
	if e.platform == nil || e.ctx == nil {
		L.RaiseError("glade.%s called before initialize", fn)
	}
}

func (e *Engine) checkKey(L *lua.LState) platform.Key {
	k, err := platform.ParseKey(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	return k
}

func (e *Engine) luaKeyDown(L *lua.LState) int {
	e.requireBound(L, "key_down")
	L.Push(lua.LBool(e.platform.Key(e.checkKey(L)).IsDown()))
	return 1
}

func (e *Engine) luaKeyPressed(L *lua.LState) int {
	e.requireBound(L, "key_pressed")
	L.Push(lua.LBool(e.platform.Key(e.checkKey(L)) == platform.StateJustPressed))
	return 1
}

func (e *Engine) luaDT(L *lua.LState) int {
	e.requireBound(L, "dt")
	L.Push(lua.LNumber(e.platform.DT()))
	return 1
}

func (e *Engine) luaFrame(L *lua.LState) int {
	e.requireBound(L, "frame")
	L.Push(lua.LNumber(e.ctx.Frame()))
	return 1
}

func (e *Engine) luaPhase(L *lua.LState) int {
	e.requireBound(L, "phase")
	L.Push(lua.LString(e.ctx.Phase().String()))
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	script := ""
	if e.current != nil {
		script = e.current.name
	}
	e.log.Info(L.CheckString(1), zap.String("script", script))
	return 0
}

func (e *Engine) luaStop(L *lua.LState) int {
	e.stop = true
	return 0
}

// glade.draw_model(model, shader, x, y, z [, scale])
func (e *Engine) luaDrawModel(L *lua.LState) int {
	e.requireBound(L, "draw_model")
	t := graphics.Transform{
		Position: graphics.V(
			float32(L.CheckNumber(3)),
			float32(L.CheckNumber(4)),
			float32(L.CheckNumber(5)),
		),
		Scale: float32(L.OptNumber(6, 1)),
		Axis:  graphics.V(0, 1, 0),
	}
	if err := e.gfx.DrawModel(L.CheckString(1), L.CheckString(2), t); err != nil {
		L.RaiseError("draw_model: %v", err)
	}
	return 0
}

// --- Lua helpers ---

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// lFunc reads a function field from a Lua table, nil if absent.
func lFunc(t *lua.LTable, key string) *lua.LFunction {
	fn, _ := t.RawGetString(key).(*lua.LFunction)
	return fn
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
