package controller

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

// ID is the stable identity of a registered controller. By default it is
// derived from the controller's concrete Go type.
type ID string

// IDOf returns the identity of controller type T.
func IDOf[T any]() ID {
	return typeID(reflect.TypeOf((*T)(nil)).Elem())
}

// IDFor returns the identity of a controller instance.
func IDFor(c Controller) ID {
	if k, ok := c.(Keyed); ok {
		return k.ControllerID()
	}
	return typeID(reflect.TypeOf(c))
}

func typeID(t reflect.Type) ID {
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return ID(prefix + t.String())
	}
	return ID(prefix + t.PkgPath() + "." + t.Name())
}

type slot struct {
	id    ID
	ctrl  Controller
	hooks hooks
	index int   // registration order
	after []int // indices of controllers this one runs after
}

// Registry holds exactly one instance per controller identity plus the
// after-edges between them. Mutated only during setup; once the execution
// order is resolved it is read-only.
type Registry struct {
	log   *zap.Logger
	slots []*slot
	byID  map[ID]*slot

	resolved bool
	order    []*slot
	orderErr error
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:   log,
		slots: make([]*slot, 0, 16),
		byID:  make(map[ID]*slot, 16),
	}
}

// Register stores c under its identity.
func (r *Registry) Register(c Controller) error {
	if c == nil {
		return &ConfigError{Op: "register", ID: "<nil>", Err: errors.New("nil controller")}
	}
	id := IDFor(c)
	if _, ok := r.byID[id]; ok {
		return &ConfigError{Op: "register", ID: id, Err: ErrDuplicate}
	}
	if r.resolved {
		return &ConfigError{Op: "register", ID: id, Err: ErrSealed}
	}
	s := &slot{id: id, ctrl: c, hooks: hooksOf(c), index: len(r.slots)}
	r.slots = append(r.slots, s)
	r.byID[id] = s
	r.log.Debug("controller registered", zap.String("id", string(id)), zap.String("name", c.Name()))
	return nil
}

// MustRegister is Register for setup code where a failure is a bug.
func (r *Registry) MustRegister(c Controller) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// After declares that c runs after dep in every ordered phase.
func (r *Registry) After(c, dep Controller) error {
	if c == nil || dep == nil {
		return &ConfigError{Op: "after", ID: "<nil>", Err: errors.New("nil controller")}
	}
	return r.AfterID(IDFor(c), IDFor(dep))
}

// AfterID is After for identities.
func (r *Registry) AfterID(id, dep ID) error {
	if r.resolved {
		return &ConfigError{Op: "after", ID: id, Err: ErrSealed}
	}
	if id == dep {
		return &ConfigError{Op: "after", ID: id, Err: ErrSelfEdge}
	}
	s, ok := r.byID[id]
	if !ok {
		return &ConfigError{Op: "after", ID: id, Err: ErrNotFound}
	}
	d, ok := r.byID[dep]
	if !ok {
		return &ConfigError{Op: "after", ID: dep, Err: ErrNotFound}
	}
	for _, i := range s.after {
		if i == d.index {
			return nil
		}
	}
	s.after = append(s.after, d.index)
	return nil
}

// Lookup returns the controller registered under id.
func (r *Registry) Lookup(id ID) (Controller, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, &ConfigError{Op: "get", ID: id, Err: ErrNotFound}
	}
	return s.ctrl, nil
}

// Get returns the registered instance of controller type T.
func Get[T Controller](r *Registry) (T, error) {
	var zero T
	c, err := r.Lookup(IDOf[T]())
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, &ConfigError{Op: "get", ID: IDOf[T](), Err: ErrNotFound}
	}
	return t, nil
}

// MustGet is Get for lookups whose failure means a broken dependency
// declaration.
func MustGet[T Controller](r *Registry) T {
	t, err := Get[T](r)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of registered controllers.
func (r *Registry) Len() int { return len(r.slots) }

// IDs returns the registered identities in registration order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, len(r.slots))
	for i, s := range r.slots {
		ids[i] = s.id
	}
	return ids
}

// Each calls fn for every controller in registration order.
func (r *Registry) Each(fn func(ID, Controller)) {
	for _, s := range r.slots {
		fn(s.id, s.ctrl)
	}
}

// Sealed reports whether the execution order has been resolved.
func (r *Registry) Sealed() bool { return r.resolved }

// Order returns the resolved execution order, resolving it on first use.
// The result, including a cycle error, is memoized.
func (r *Registry) Order() ([]Controller, error) {
	order, err := r.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]Controller, len(order))
	for i, s := range order {
		out[i] = s.ctrl
	}
	return out, nil
}

func (r *Registry) resolve() ([]*slot, error) {
	if !r.resolved {
		r.order, r.orderErr = sortSlots(r.slots)
		r.resolved = true
		if r.orderErr != nil {
			r.log.Error("execution order resolution failed", zap.Error(r.orderErr))
		} else {
			r.log.Debug("execution order resolved", zap.Int("controllers", len(r.order)))
		}
	}
	return r.order, r.orderErr
}
