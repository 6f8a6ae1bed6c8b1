package resources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glade/glade/internal/core/controller"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrMissing = errors.New("resource not loaded")

// Asset is a loaded resource. Data holds file contents; a directory asset
// (a skybox's faces) keeps its file list instead.
type Asset struct {
	Name  string
	Kind  Kind
	Path  string
	Size  int64
	Data  []byte
	Files []string
}

// Controller loads every asset named by the manifest during Initialize.
// Files are read on worker goroutines; Initialize returns only after all
// of them finished, so every result is owned by the scheduler goroutine
// before any frame phase can consume it.
type Controller struct {
	manifestPath string
	workers      int
	log          *zap.Logger

	assets map[Kind]map[string]*Asset
}

func NewController(manifestPath string, workers int, log *zap.Logger) *Controller {
	if workers <= 0 {
		workers = 4
	}
	return &Controller{
		manifestPath: manifestPath,
		workers:      workers,
		log:          log,
		assets:       make(map[Kind]map[string]*Asset, 4),
	}
}

func (r *Controller) Name() string { return "resources" }

func (r *Controller) Initialize(*controller.Context) error {
	if r.manifestPath == "" {
		r.log.Info("no resource manifest configured")
		return nil
	}
	m, err := LoadManifest(r.manifestPath)
	if err != nil {
		return err
	}
	start := time.Now()
	loaded, err := r.loadAll(context.Background(), m.entries())
	if err != nil {
		return err
	}
	for _, a := range loaded {
		set, ok := r.assets[a.Kind]
		if !ok {
			set = make(map[string]*Asset)
			r.assets[a.Kind] = set
		}
		set[a.Name] = a
	}
	r.log.Info("resources loaded",
		zap.Int("assets", len(loaded)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (r *Controller) loadAll(ctx context.Context, entries []entry) ([]*Asset, error) {
	out := make([]*Asset, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := load(e)
			if err != nil {
				return err
			}
			out[i] = a // each goroutine owns its slot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func load(e entry) (*Asset, error) {
	info, err := os.Stat(e.path)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", e.kind, e.name, err)
	}
	a := &Asset{Name: e.name, Kind: e.kind, Path: e.path}
	if !info.IsDir() {
		data, err := os.ReadFile(e.path)
		if err != nil {
			return nil, fmt.Errorf("load %s %s: %w", e.kind, e.name, err)
		}
		a.Data = data
		a.Size = int64(len(data))
		return a, nil
	}
	dirEntries, err := os.ReadDir(e.path)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", e.kind, e.name, err)
	}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("load %s %s: %w", e.kind, e.name, err)
		}
		a.Files = append(a.Files, filepath.Join(e.path, de.Name()))
		a.Size += fi.Size()
	}
	return a, nil
}

func (r *Controller) get(k Kind, name string) (*Asset, error) {
	if a, ok := r.assets[k][name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%s %q: %w", k, name, ErrMissing)
}

func (r *Controller) Model(name string) (*Asset, error)   { return r.get(KindModel, name) }
func (r *Controller) Shader(name string) (*Asset, error)  { return r.get(KindShader, name) }
func (r *Controller) Texture(name string) (*Asset, error) { return r.get(KindTexture, name) }
func (r *Controller) Skybox(name string) (*Asset, error)  { return r.get(KindSkybox, name) }

// Count returns the number of loaded assets of kind k.
func (r *Controller) Count(k Kind) int { return len(r.assets[k]) }
