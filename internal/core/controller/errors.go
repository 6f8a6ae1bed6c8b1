package controller

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicate  = errors.New("controller already registered")
	ErrNotFound   = errors.New("controller not registered")
	ErrSelfEdge   = errors.New("controller cannot run after itself")
	ErrSealed     = errors.New("execution order already resolved")
	ErrCycle      = errors.New("dependency cycle")
	ErrPhaseOrder = errors.New("invalid frame phase order")
	ErrAlreadyRun = errors.New("scheduler already run")
)

// ConfigError reports a setup mistake together with the controller it
// concerns.
type ConfigError struct {
	Op  string // "register", "after", "get"
	ID  ID
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// CycleError lists every group of controllers that depend on each other.
// Each group is one strongly connected component, ordered by registration.
type CycleError struct {
	Cycles [][]ID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		names := make([]string, len(c))
		for j, id := range c {
			names[j] = string(id)
		}
		parts[i] = "{" + strings.Join(names, ", ") + "}"
	}
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(parts, " "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// IDs returns every controller taking part in a cycle.
func (e *CycleError) IDs() []ID {
	var out []ID
	for _, c := range e.Cycles {
		out = append(out, c...)
	}
	return out
}

// PhaseError wraps an error returned by a controller hook. It is fatal to
// the run.
type PhaseError struct {
	Phase Phase
	ID    ID
	Frame uint64
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s %s (frame %d): %v", e.Phase, e.ID, e.Frame, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
