package controller

import (
	"fmt"

	"github.com/glade/glade/internal/core/event"
	"go.uber.org/zap"
)

// Phase identifies one step of the controller lifecycle.
type Phase int

const (
	PhaseInitialize Phase = iota // once, before the first frame
	PhaseLoop                    // continue/stop vote, start of every frame
	PhaseUpdate                  // per-frame logic
	PhaseBeginDraw               // clear targets
	PhaseDraw                    // issue draw calls
	PhaseEndDraw                 // present
	PhaseTerminate               // once, after the loop exits
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseLoop:
		return "loop"
	case PhaseUpdate:
		return "update"
	case PhaseBeginDraw:
		return "begin_draw"
	case PhaseDraw:
		return "draw"
	case PhaseEndDraw:
		return "end_draw"
	case PhaseTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// ParsePhase maps a phase name as printed by String back to its Phase.
func ParsePhase(name string) (Phase, error) {
	for p := PhaseInitialize; p <= PhaseTerminate; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown phase %q", ErrPhaseOrder, name)
}

// Controller is an independently schedulable unit of per-frame behavior.
// Phase hooks are optional: implement only the interfaces below that the
// controller needs. A missing hook completes its phase as a no-op.
type Controller interface {
	Name() string
}

type Initializer interface {
	Initialize(c *Context) error
}

// Looper votes on whether the frame loop continues. Returning false stops the
// loop once every controller has voted for the current frame.
type Looper interface {
	Loop(c *Context) bool
}

type Updater interface {
	Update(c *Context) error
}

type DrawBeginner interface {
	BeginDraw(c *Context) error
}

type Drawer interface {
	Draw(c *Context) error
}

type DrawEnder interface {
	EndDraw(c *Context) error
}

// Terminator is called in reverse execution order after the loop exits,
// only for controllers whose Initialize completed.
type Terminator interface {
	Terminate(c *Context) error
}

// Keyed lets a controller supply its own identity token instead of the one
// derived from its Go type. Needed when several instances share a type.
type Keyed interface {
	ControllerID() ID
}

// Base can be embedded by controllers that want to state explicitly that
// they rely on no-op defaults. It carries no behavior.
type Base struct{}

// Context is handed to every phase hook. It replaces process-wide engine
// pointers: everything a controller may reach is scoped to one scheduler.
type Context struct {
	Registry *Registry
	Events   *event.Bus
	Log      *zap.Logger

	frame uint64
	phase Phase
}

// Frame returns the index of the frame being executed, starting at 1.
// It is 0 during Initialize.
func (c *Context) Frame() uint64 { return c.frame }

// Phase returns the phase currently executing.
func (c *Context) Phase() Phase { return c.phase }

// hooks caches the phase interfaces a controller implements, so the frame
// loop does no type assertions.
type hooks struct {
	init      Initializer
	loop      Looper
	update    Updater
	beginDraw DrawBeginner
	draw      Drawer
	endDraw   DrawEnder
	terminate Terminator
}

func hooksOf(c Controller) hooks {
	var h hooks
	h.init, _ = c.(Initializer)
	h.loop, _ = c.(Looper)
	h.update, _ = c.(Updater)
	h.beginDraw, _ = c.(DrawBeginner)
	h.draw, _ = c.(Drawer)
	h.endDraw, _ = c.(DrawEnder)
	h.terminate, _ = c.(Terminator)
	return h
}

// call runs the error-returning hook for phase p, if present.
func (h *hooks) call(p Phase, c *Context) error {
	switch p {
	case PhaseInitialize:
		if h.init != nil {
			return h.init.Initialize(c)
		}
	case PhaseUpdate:
		if h.update != nil {
			return h.update.Update(c)
		}
	case PhaseBeginDraw:
		if h.beginDraw != nil {
			return h.beginDraw.BeginDraw(c)
		}
	case PhaseDraw:
		if h.draw != nil {
			return h.draw.Draw(c)
		}
	case PhaseEndDraw:
		if h.endDraw != nil {
			return h.endDraw.EndDraw(c)
		}
	case PhaseTerminate:
		if h.terminate != nil {
			return h.terminate.Terminate(c)
		}
	}
	return nil
}
