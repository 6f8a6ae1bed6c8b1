package platform

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// EventKind classifies raw input delivered by a Source.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventMouseMove
	EventClose
)

// InputEvent is one raw input record.
type InputEvent struct {
	Kind EventKind
	Key  Key
	DX   float64
	DY   float64
}

// Source yields the raw input for a frame. Poll is called once per frame on
// the scheduler goroutine.
type Source interface {
	Poll(frame uint64) []InputEvent
}

// ── Scripted input ─────────────────────────────────────────────────

type scriptStep struct {
	Frame uint64    `yaml:"frame"`
	Down  []Key     `yaml:"down"`
	Up    []Key     `yaml:"up"`
	Move  []float64 `yaml:"move"` // [dx, dy]
	Close bool      `yaml:"close"`
}

// ScriptSource replays a fixed input timeline, keyed by frame number.
// Used for headless runs and tests.
type ScriptSource struct {
	steps map[uint64][]InputEvent
	last  uint64
}

// LoadScript reads an input timeline such as
//
//	- frame: 1
//	  down: [w, left_shift]
//	- frame: 30
//	  up: [w]
//	  move: [4.0, -1.5]
//	- frame: 60
//	  close: true
func LoadScript(path string) (*ScriptSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input script: %w", err)
	}
	return ParseScript(raw)
}

// ParseScript builds a ScriptSource from YAML.
func ParseScript(raw []byte) (*ScriptSource, error) {
	var steps []scriptStep
	if err := yaml.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Frame < steps[j].Frame })

	s := &ScriptSource{steps: make(map[uint64][]InputEvent, len(steps))}
	for _, st := range steps {
		evs := s.steps[st.Frame]
		for _, k := range st.Down {
			evs = append(evs, InputEvent{Kind: EventKeyDown, Key: k})
		}
		for _, k := range st.Up {
			evs = append(evs, InputEvent{Kind: EventKeyUp, Key: k})
		}
		if len(st.Move) > 0 {
			if len(st.Move) != 2 {
				return nil, fmt.Errorf("input script frame %d: move needs [dx, dy]", st.Frame)
			}
			evs = append(evs, InputEvent{Kind: EventMouseMove, DX: st.Move[0], DY: st.Move[1]})
		}
		if st.Close {
			evs = append(evs, InputEvent{Kind: EventClose})
		}
		s.steps[st.Frame] = evs
		if st.Frame > s.last {
			s.last = st.Frame
		}
	}
	return s, nil
}

func (s *ScriptSource) Poll(frame uint64) []InputEvent {
	return s.steps[frame]
}

// LastFrame returns the highest frame the script has input for.
func (s *ScriptSource) LastFrame() uint64 { return s.last }

// ── Queued input ───────────────────────────────────────────────────

// QueueSource accepts input from other goroutines (signal handlers, a
// terminal reader) and hands it to the scheduler goroutine on Poll.
type QueueSource struct {
	in         chan InputEvent
	maxPerPoll int
}

func NewQueueSource(size, maxPerPoll int) *QueueSource {
	return &QueueSource{in: make(chan InputEvent, size), maxPerPoll: maxPerPoll}
}

// Push queues ev. Returns false when the queue is full and ev was dropped.
func (q *QueueSource) Push(ev InputEvent) bool {
	select {
	case q.in <- ev:
		return true
	default:
		return false
	}
}

func (q *QueueSource) Poll(uint64) []InputEvent {
	var out []InputEvent
	for i := 0; q.maxPerPoll <= 0 || i < q.maxPerPoll; i++ {
		select {
		case ev := <-q.in:
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}

// MultiSource polls several sources in order.
type MultiSource []Source

func (m MultiSource) Poll(frame uint64) []InputEvent {
	var out []InputEvent
	for _, s := range m {
		out = append(out, s.Poll(frame)...)
	}
	return out
}
