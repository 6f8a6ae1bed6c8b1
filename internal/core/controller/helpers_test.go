package controller

import (
	"fmt"
	"testing"

	"github.com/glade/glade/internal/core/event"
	"go.uber.org/zap/zaptest"
)

// probe records every hook call into a shared trace.
type probe struct {
	id    string
	trace *[]string

	stopAt   uint64 // Loop returns false from this frame on; 0 never
	failIn   Phase
	failAt   uint64
	failWith error
}

func (p *probe) Name() string     { return p.id }
func (p *probe) ControllerID() ID { return ID(p.id) }
func (p *probe) record(ph Phase)  { *p.trace = append(*p.trace, p.id+":"+ph.String()) }
func (p *probe) fail(ph Phase, c *Context) error {
	if p.failWith != nil && p.failIn == ph && (ph == PhaseInitialize || ph == PhaseTerminate || c.Frame() == p.failAt) {
		return p.failWith
	}
	return nil
}

func (p *probe) Initialize(c *Context) error {
	p.record(PhaseInitialize)
	return p.fail(PhaseInitialize, c)
}

func (p *probe) Update(c *Context) error {
	p.record(PhaseUpdate)
	return p.fail(PhaseUpdate, c)
}

func (p *probe) BeginDraw(c *Context) error {
	p.record(PhaseBeginDraw)
	return p.fail(PhaseBeginDraw, c)
}

func (p *probe) Draw(c *Context) error {
	p.record(PhaseDraw)
	return p.fail(PhaseDraw, c)
}

func (p *probe) EndDraw(c *Context) error {
	p.record(PhaseEndDraw)
	return p.fail(PhaseEndDraw, c)
}

func (p *probe) Terminate(c *Context) error {
	p.record(PhaseTerminate)
	return p.fail(PhaseTerminate, c)
}


func (p *probe) Loop(c *Context) bool {
	p.record(PhaseLoop)
	return p.stopAt == 0 || c.Frame() < p.stopAt
}

// Typed controllers for type-derived identities.
type physics struct{ Base }
type render struct{ Base }
type audio struct{ Base }

func (*physics) Name() string { return "physics" }
func (*render) Name() string  { return "render" }
func (*audio) Name() string   { return "audio" }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(zaptest.NewLogger(t))
}

func newTestScheduler(t *testing.T, reg *Registry, opts ...Option) *Scheduler {
	t.Helper()
	s, err := NewScheduler(reg, event.NewBus(), zaptest.NewLogger(t), opts...)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func mustRegisterProbes(t *testing.T, reg *Registry, trace *[]string, ids ...string) map[string]*probe {
	t.Helper()
	out := make(map[string]*probe, len(ids))
	for _, id := range ids {
		p := &probe{id: id, trace: trace}
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%s): %v", id, err)
		}
		out[id] = p
	}
	return out
}

func orderIDs(t *testing.T, reg *Registry) []ID {
	t.Helper()
	order, err := reg.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	ids := make([]ID, len(order))
	for i, c := range order {
		ids[i] = IDFor(c)
	}
	return ids
}

func position(ids []ID, id ID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	panic(fmt.Sprintf("%s not in order", id))
}
