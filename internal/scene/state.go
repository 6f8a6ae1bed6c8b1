package scene

import (
	"context"
	"sync"
	"time"

	"github.com/glade/glade/internal/core/controller"
	"go.uber.org/zap"
)

// State is the part of a scene that survives restarts.
type State struct {
	Scene       string
	Camera      CameraPose
	Period      Period
	DaySkybox   string
	NightSkybox string
	SavedAt     time.Time
}

// StateStore persists scene state by scene name.
type StateStore interface {
	LoadScene(ctx context.Context, scene string) (State, bool, error)
	SaveScene(ctx context.Context, s State) error
}

// MemoryStore is a StateStore kept in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	scenes map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenes: make(map[string]State)}
}

func (m *MemoryStore) LoadScene(_ context.Context, scene string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scenes[scene]
	return s, ok, nil
}

func (m *MemoryStore) SaveScene(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[s.Scene] = s
	return nil
}

// StateController restores the scene on start and saves it on shutdown.
// Declare it after MainController.
type StateController struct {
	store   StateStore
	timeout time.Duration
	log     *zap.Logger
	main    *MainController
}

func NewStateController(store StateStore, timeout time.Duration, log *zap.Logger) *StateController {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &StateController{store: store, timeout: timeout, log: log}
}

func (s *StateController) Name() string { return "scene.state" }

func (s *StateController) Initialize(c *controller.Context) error {
	main, err := controller.Get[*MainController](c.Registry)
	if err != nil {
		return err
	}
	s.main = main

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	name := main.layout.Name
	st, ok, err := s.store.LoadScene(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Info("no saved scene state", zap.String("scene", name))
		return nil
	}
	main.Restore(st)
	s.log.Info("scene state restored",
		zap.String("scene", name),
		zap.Stringer("period", st.Period),
		zap.Time("saved_at", st.SavedAt),
	)
	return nil
}

func (s *StateController) Terminate(*controller.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	st := s.main.Snapshot()
	st.SavedAt = time.Now()
	if err := s.store.SaveScene(ctx, st); err != nil {
		return err
	}
	s.log.Info("scene state saved", zap.String("scene", st.Scene))
	return nil
}
