package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/glade/glade/internal/core/event"
	"go.uber.org/zap"
)

// DefaultFramePhases is the per-frame phase order used unless the host
// declares its own.
var DefaultFramePhases = []Phase{PhaseUpdate, PhaseBeginDraw, PhaseDraw, PhaseEndDraw}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithFramePhases sets the order of the per-frame phases. Each of Update,
// BeginDraw, Draw and EndDraw must appear exactly once, with Draw between
// BeginDraw and EndDraw.
func WithFramePhases(phases ...Phase) Option {
	return func(s *Scheduler) error {
		if err := validateFramePhases(phases); err != nil {
			return err
		}
		s.phases = append([]Phase(nil), phases...)
		return nil
	}
}

// WithMaxFrames stops the loop after n frames. 0 means no limit.
func WithMaxFrames(n uint64) Option {
	return func(s *Scheduler) error {
		s.maxFrames = n
		return nil
	}
}

func validateFramePhases(phases []Phase) error {
	pos := map[Phase]int{}
	for i, p := range phases {
		switch p {
		case PhaseUpdate, PhaseBeginDraw, PhaseDraw, PhaseEndDraw:
		default:
			return fmt.Errorf("%w: %s is not a frame phase", ErrPhaseOrder, p)
		}
		if _, dup := pos[p]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrPhaseOrder, p)
		}
		pos[p] = i
	}
	if len(pos) != 4 {
		return fmt.Errorf("%w: need update, begin_draw, draw and end_draw", ErrPhaseOrder)
	}
	if !(pos[PhaseBeginDraw] < pos[PhaseDraw] && pos[PhaseDraw] < pos[PhaseEndDraw]) {
		return fmt.Errorf("%w: draw must run between begin_draw and end_draw", ErrPhaseOrder)
	}
	return nil
}

// Scheduler drives every registered controller through the lifecycle
// phases in resolved order. All controllers finish a phase before any
// starts the next one. Single goroutine only.
type Scheduler struct {
	reg       *Registry
	log       *zap.Logger
	ctx       Context
	phases    []Phase
	maxFrames uint64
	frames    uint64
	ran       bool
}

func NewScheduler(reg *Registry, bus *event.Bus, log *zap.Logger, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		reg:    reg,
		log:    log,
		phases: DefaultFramePhases,
		ctx:    Context{Registry: reg, Events: bus, Log: log},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Frames returns the number of frames that ran to completion.
func (s *Scheduler) Frames() uint64 { return s.frames }

// Phases returns the per-frame phase order.
func (s *Scheduler) Phases() []Phase { return append([]Phase(nil), s.phases...) }

// Run initializes every controller once, then runs frames until a Loop vote
// says stop. The first hook error ends the run; it is neither retried nor
// skipped. Controllers that initialized are terminated in reverse order
// before Run returns.
func (s *Scheduler) Run() (err error) {
	if s.ran {
		return ErrAlreadyRun
	}
	s.ran = true

	order, err := s.reg.resolve()
	if err != nil {
		return err
	}

	initialized := 0
	defer func() {
		if terr := s.terminate(order[:initialized]); terr != nil {
			err = errors.Join(err, terr)
		}
	}()

	s.ctx.phase = PhaseInitialize
	for _, sl := range order {
		if err := sl.hooks.call(PhaseInitialize, &s.ctx); err != nil {
			return &PhaseError{Phase: PhaseInitialize, ID: sl.id, Err: err}
		}
		initialized++
	}
	s.log.Info("controllers initialized", zap.Int("count", initialized))

	start := time.Now()
	for {
		s.ctx.frame = s.frames + 1
		if !s.loop(order) {
			break
		}
		for _, p := range s.phases {
			if err := s.runPhase(p, order); err != nil {
				return err
			}
		}
		s.frames++
	}
	s.log.Info("frame loop stopped",
		zap.Uint64("frames", s.frames),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// loop collects the continue/stop vote of every controller. Nobody is
// skipped once a stop vote is seen.
func (s *Scheduler) loop(order []*slot) bool {
	s.ctx.phase = PhaseLoop
	keepGoing := true
	for _, sl := range order {
		if sl.hooks.loop == nil {
			continue
		}
		if !sl.hooks.loop.Loop(&s.ctx) {
			if keepGoing {
				s.log.Debug("stop requested", zap.String("id", string(sl.id)), zap.Uint64("frame", s.ctx.frame))
			}
			keepGoing = false
		}
	}
	if s.maxFrames > 0 && s.frames >= s.maxFrames {
		keepGoing = false
	}
	return keepGoing
}

func (s *Scheduler) runPhase(p Phase, order []*slot) error {
	s.ctx.phase = p
	for _, sl := range order {
		if err := sl.hooks.call(p, &s.ctx); err != nil {
			return &PhaseError{Phase: p, ID: sl.id, Frame: s.ctx.frame, Err: err}
		}
	}
	return nil
}

func (s *Scheduler) terminate(initialized []*slot) error {
	s.ctx.phase = PhaseTerminate
	var errs []error
	for i := len(initialized) - 1; i >= 0; i-- {
		sl := initialized[i]
		if err := sl.hooks.call(PhaseTerminate, &s.ctx); err != nil {
			s.log.Error("controller terminate failed", zap.String("id", string(sl.id)), zap.Error(err))
			errs = append(errs, &PhaseError{Phase: PhaseTerminate, ID: sl.id, Frame: s.ctx.frame, Err: err})
		}
	}
	return errors.Join(errs...)
}
