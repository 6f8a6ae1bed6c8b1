package platform

import (
	"time"

	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/core/event"
	"go.uber.org/zap"
)

// MouseMoved is published once per pointer movement.
type MouseMoved struct {
	DX, DY float64
}

// KeyChanged is published when a key is pressed or released.
type KeyChanged struct {
	Key   Key
	State KeyState
}

// Clock abstracts wall time so frame pacing can be tested.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

type Options struct {
	// FrameTime paces SwapBuffers to one frame per interval. 0 disables
	// pacing.
	FrameTime time.Duration
	// FixedStep, when set, is reported by DT instead of measured time.
	FixedStep time.Duration
}

// Controller is the headless platform layer: it polls input once per frame
// during the loop phase, keeps key state, measures frame time and paces
// presentation.
type Controller struct {
	src   Source
	clock Clock
	opts  Options
	log   *zap.Logger

	bus       *event.Bus
	keys      [keyCount]KeyState
	dt        float64
	last      time.Time
	nextFrame time.Time
	presented uint64

	cursorEnabled  bool
	closeRequested bool
}

func NewController(src Source, clock Clock, opts Options, log *zap.Logger) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Controller{src: src, clock: clock, opts: opts, log: log, cursorEnabled: true}
}

func (p *Controller) Name() string { return "platform" }

func (p *Controller) Initialize(c *controller.Context) error {
	p.bus = c.Events
	p.last = p.clock.Now()
	p.nextFrame = p.last
	return nil
}

// Loop polls input for the frame and votes stop once a close was requested.
func (p *Controller) Loop(c *controller.Context) bool {
	for k := range p.keys {
		p.keys[k] = p.keys[k].settle()
	}
	if p.src != nil {
		for _, ev := range p.src.Poll(c.Frame()) {
			p.apply(ev)
		}
	}
	p.bus.Flush()

	now := p.clock.Now()
	if p.opts.FixedStep > 0 {
		p.dt = p.opts.FixedStep.Seconds()
	} else {
		p.dt = now.Sub(p.last).Seconds()
	}
	p.last = now

	if p.closeRequested {
		p.log.Info("platform close requested", zap.Uint64("frame", c.Frame()))
	}
	return !p.closeRequested
}

func (p *Controller) apply(ev InputEvent) {
	switch ev.Kind {
	case EventKeyDown:
		if ev.Key <= KeyUnknown || ev.Key >= keyCount || p.keys[ev.Key].IsDown() {
			return
		}
		p.keys[ev.Key] = StateJustPressed
		event.Publish(p.bus, KeyChanged{Key: ev.Key, State: StateJustPressed})
	case EventKeyUp:
		if ev.Key <= KeyUnknown || ev.Key >= keyCount || !p.keys[ev.Key].IsDown() {
			return
		}
		p.keys[ev.Key] = StateJustReleased
		event.Publish(p.bus, KeyChanged{Key: ev.Key, State: StateJustReleased})
	case EventMouseMove:
		event.Publish(p.bus, MouseMoved{DX: ev.DX, DY: ev.DY})
	case EventClose:
		p.closeRequested = true
	}
}

// Key returns the state of k for the current frame.
func (p *Controller) Key(k Key) KeyState {
	if k <= KeyUnknown || k >= keyCount {
		return StateUp
	}
	return p.keys[k]
}

// DT returns the duration of the previous frame in seconds.
func (p *Controller) DT() float64 { return p.dt }

func (p *Controller) CursorEnabled() bool      { return p.cursorEnabled }
func (p *Controller) SetCursorEnabled(on bool) { p.cursorEnabled = on }

// RequestClose makes the next loop phase vote stop.
func (p *Controller) RequestClose() { p.closeRequested = true }

// SwapBuffers presents the frame, blocking until the next frame slot when
// pacing is enabled.
func (p *Controller) SwapBuffers() {
	p.presented++
	if p.opts.FrameTime <= 0 {
		return
	}
	p.nextFrame = p.nextFrame.Add(p.opts.FrameTime)
	if wait := p.nextFrame.Sub(p.clock.Now()); wait > 0 {
		p.clock.Sleep(wait)
	} else if wait < -p.opts.FrameTime {
		// Fell more than a frame behind: resync instead of bursting.
		p.nextFrame = p.clock.Now()
	}
}

// Presented returns the number of SwapBuffers calls.
func (p *Controller) Presented() uint64 { return p.presented }
