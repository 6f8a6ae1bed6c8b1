package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/engine"
	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/platform"
	"github.com/glade/glade/internal/resources"
	"go.uber.org/zap/zaptest"
)

const testLayout = `
name: test
camera:
  position: [0, 0, 0]
  yaw: -90
placements:
  - model: tree
    instances:
      - position: [1, 0, 0]
      - position: [2, 0, 0]
  - model: fire
    night_only: true
    instances:
      - position: [0, 0, 0]
`

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"tree.obj":   "o tree",
		"fire.obj":   "o fire",
		"basic.glsl": "void main() {}",
		"manifest.yaml": `
models:
  tree: tree.obj
  fire: fire.obj
shaders:
  basic: basic.glsl
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "manifest.yaml")
}

type harness struct {
	app   *engine.App
	rec   *graphics.Recorder
	main  *MainController
	gui   *GUIController
	bloom *graphics.BloomController
	state *StateController
}

func newHarness(t *testing.T, input string, maxFrames uint64, store StateStore) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	src, err := platform.ParseScript([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	layout, err := ParseLayout([]byte(testLayout))
	if err != nil {
		t.Fatal(err)
	}
	rec := graphics.NewRecorder(log)
	app, err := engine.New(engine.Options{
		Input:     src,
		FixedStep: 500 * time.Millisecond,
		Renderer:  rec,
		Manifest:  writeAssets(t),
		MaxFrames: maxFrames,
	}, log)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{
		app:   app,
		rec:   rec,
		main:  NewMainController(layout, log),
		gui:   NewGUIController(log),
		bloom: graphics.NewBloomController(),
	}
	if store != nil {
		h.state = NewStateController(store, time.Second, log)
	}
	return h
}

// setup mirrors the application wiring: bloom after gui after main.
func (h *harness) setup(a *engine.App) error {
	for _, c := range []controller.Controller{h.main, h.gui, h.bloom} {
		if err := a.Register(c); err != nil {
			return err
		}
	}
	if err := a.After(h.bloom, h.main); err != nil {
		return err
	}
	if err := a.After(h.gui, h.main); err != nil {
		return err
	}
	if err := a.After(h.bloom, h.gui); err != nil {
		return err
	}
	if h.state != nil {
		if err := a.Register(h.state); err != nil {
			return err
		}
		return a.After(h.state, h.main)
	}
	return nil
}

func TestSceneStopsOnEscape(t *testing.T) {
	h := newHarness(t, `
- frame: 4
  down: [escape]
`, 0, nil)
	if err := h.app.Run(h.setup); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.rec.Frames() != 3 {
		t.Errorf("presented %d frames, want 3", h.rec.Frames())
	}
	// Day: two trees, no fire, one skybox.
	last := h.rec.Last()
	if last.Models != 2 || last.ByModel["fire"] != 0 || last.Skyboxes != 1 {
		t.Errorf("day frame = %+v", last)
	}
	if h.bloom.Passes() != 3 {
		t.Errorf("bloom passes = %d, want 3", h.bloom.Passes())
	}
	if h.app.Platform.CursorEnabled() {
		t.Error("cursor left enabled by scene")
	}
}

func TestSceneNightDrawsFire(t *testing.T) {
	// dt is 0.5s per frame; the switch commits 3s after the request.
	h := newHarness(t, `
- frame: 1
  down: [n]
- frame: 2
  up: [n]
`, 8, nil)
	if err := h.app.Run(h.setup); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.main.Cycle().Period() != Night {
		t.Fatalf("period = %v, want night", h.main.Cycle().Period())
	}
	last := h.rec.Last()
	if last.ByModel["fire"] != 1 || last.Models != 3 {
		t.Errorf("night frame = %+v", last)
	}
	if last.Exposure != NightExposure {
		t.Errorf("exposure = %v, want %v", last.Exposure, NightExposure)
	}
}

func TestSceneCameraInput(t *testing.T) {
	h := newHarness(t, `
- frame: 1
  down: [w]
- frame: 3
  up: [w]
  down: [left_shift, d]
- frame: 4
  up: [left_shift, d]
`, 4, nil)
	if err := h.app.Run(h.setup); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cam := h.app.Graphics.Camera()
	// Frames 1-2 walk forward (-z) at 7 u/s, frame 3 runs right (+x) at 20.
	if !approx(cam.Position.Z, -7) || !approx(cam.Position.X, 10) {
		t.Errorf("camera position = %+v, want (10, 0, -7)", cam.Position)
	}
}

func TestSceneGUIBlocksCamera(t *testing.T) {
	h := newHarness(t, `
- frame: 1
  down: [f1]
- frame: 2
  up: [f1]
  down: [w]
  move: [100, 0]
`, 3, nil)
	if err := h.app.Run(h.setup); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !h.gui.Enabled() {
		t.Fatal("gui not enabled")
	}
	cam := h.app.Graphics.Camera()
	if !approx(cam.Position.Z, 0) || cam.Yaw != -90 {
		t.Errorf("camera moved while gui open: %+v yaw=%v", cam.Position, cam.Yaw)
	}
	if !h.app.Platform.CursorEnabled() {
		t.Error("cursor not released while gui open")
	}
	if h.gui.ShownFrames() != 3 {
		t.Errorf("gui shown %d frames, want 3", h.gui.ShownFrames())
	}
}

func TestSceneMouseRotatesCamera(t *testing.T) {
	h := newHarness(t, `
- frame: 1
  move: [100, 50]
`, 1, nil)
	if err := h.app.Run(h.setup); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cam := h.app.Graphics.Camera()
	if !approx(cam.Yaw, -80) || !approx(cam.Pitch, 5) {
		t.Errorf("yaw/pitch = %v/%v, want -80/5", cam.Yaw, cam.Pitch)
	}
}

func TestSceneMissingAssetFailsInitialize(t *testing.T) {
	h := newHarness(t, ``, 1, nil)
	h.main.layout.Placements = append(h.main.layout.Placements, Placement{Model: "oak", Shader: "basic"})
	err := h.app.Run(h.setup)
	if !errors.Is(err, resources.ErrMissing) {
		t.Fatalf("err = %v, want ErrMissing", err)
	}
	var pe *controller.PhaseError
	if !errors.As(err, &pe) || pe.Phase != controller.PhaseInitialize {
		t.Errorf("err = %v, want initialize phase error", err)
	}
}

func TestSceneStateRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	h := newHarness(t, `
- frame: 1
  down: [n, w]
`, 8, store)
	if err := h.app.Run(h.setup); err != nil {
		t.Fatalf("Run: %v", err)
	}
	saved, ok, err := store.LoadScene(context.Background(), "test")
	if err != nil || !ok {
		t.Fatalf("LoadScene = %v, %v", ok, err)
	}
	if saved.Period != Night || saved.Camera.Position.Z >= 0 || saved.SavedAt.IsZero() {
		t.Errorf("saved = %+v", saved)
	}

	// A fresh run restores it before the first frame.
	h2 := newHarness(t, ``, 1, store)
	if err := h2.app.Run(h2.setup); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if h2.main.Cycle().Period() != Night {
		t.Errorf("restored period = %v", h2.main.Cycle().Period())
	}
	if h2.rec.Last().ByModel["fire"] != 1 {
		t.Error("restored night did not draw fire")
	}
}

type failingStore struct{ *MemoryStore }

func (*failingStore) SaveScene(context.Context, State) error { return errors.New("disk full") }

func TestSceneStateSaveErrorSurfaces(t *testing.T) {
	h := newHarness(t, ``, 1, &failingStore{MemoryStore: NewMemoryStore()})
	err := h.app.Run(h.setup)
	var pe *controller.PhaseError
	if !errors.As(err, &pe) || pe.Phase != controller.PhaseTerminate {
		t.Errorf("err = %v, want terminate phase error", err)
	}
}

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-3 && d > -1e-3
}
