package resources

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glade/glade/internal/core/controller"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "tree.obj"), "v 0 0 0\n")
	writeFile(t, filepath.Join(dir, "shaders", "basic.glsl"), "void main() {}\n")
	writeFile(t, filepath.Join(dir, "skyboxes", "day", "front.png"), "png")
	writeFile(t, filepath.Join(dir, "skyboxes", "day", "back.png"), "png!")
	writeFile(t, filepath.Join(dir, "manifest.yaml"), `
models:
  tree: models/tree.obj
shaders:
  basic: shaders/basic.glsl
skyboxes:
  skybox_day: skyboxes/day
`)
	return filepath.Join(dir, "manifest.yaml")
}

func TestControllerLoadsManifest(t *testing.T) {
	r := NewController(fixture(t), 2, zaptest.NewLogger(t))
	if err := r.Initialize(&controller.Context{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	tree, err := r.Model("tree")
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if string(tree.Data) != "v 0 0 0\n" || tree.Size != 8 {
		t.Errorf("tree = %+v", tree)
	}
	if _, err := r.Shader("basic"); err != nil {
		t.Errorf("Shader: %v", err)
	}
	sky, err := r.Skybox("skybox_day")
	if err != nil {
		t.Fatalf("Skybox: %v", err)
	}
	if len(sky.Files) != 2 || sky.Size != 7 {
		t.Errorf("skybox = %+v", sky)
	}
	if r.Count(KindModel) != 1 || r.Count(KindTexture) != 0 {
		t.Errorf("counts model=%d texture=%d", r.Count(KindModel), r.Count(KindTexture))
	}
}

func TestControllerMissingAsset(t *testing.T) {
	r := NewController(fixture(t), 1, zaptest.NewLogger(t))
	if err := r.Initialize(&controller.Context{}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Model("oak"); !errors.Is(err, ErrMissing) {
		t.Errorf("Model(oak) err = %v, want ErrMissing", err)
	}
	if _, err := r.Texture("tree"); !errors.Is(err, ErrMissing) {
		t.Errorf("Texture(tree) err = %v, want ErrMissing", err)
	}
}

func TestControllerMissingFileFailsInitialize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifest.yaml"), "models:\n  ghost: nowhere.obj\n")
	r := NewController(filepath.Join(dir, "manifest.yaml"), 4, zaptest.NewLogger(t))
	if err := r.Initialize(&controller.Context{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Initialize err = %v, want not-exist", err)
	}
}

func TestControllerWithoutManifest(t *testing.T) {
	r := NewController("", 0, zaptest.NewLogger(t))
	if err := r.Initialize(&controller.Context{}); err != nil {
		t.Errorf("Initialize: %v", err)
	}
	if r.Count(KindModel) != 0 {
		t.Error("assets loaded without manifest")
	}
}
