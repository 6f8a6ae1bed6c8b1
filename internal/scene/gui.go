package scene

import (
	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/platform"
	"go.uber.org/zap"
)

// GUIController toggles an overlay with F1. While it is open the camera
// ignores input and the cursor is released.
type GUIController struct {
	log      *zap.Logger
	platform *platform.Controller
	enabled  bool
	shown    uint64
}

func NewGUIController(log *zap.Logger) *GUIController {
	return &GUIController{log: log}
}

func (g *GUIController) Name() string { return "scene.gui" }

func (g *GUIController) Initialize(c *controller.Context) error {
	p, err := controller.Get[*platform.Controller](c.Registry)
	if err != nil {
		return err
	}
	g.platform = p
	return nil
}

func (g *GUIController) Update(*controller.Context) error {
	if g.platform.Key(platform.KeyF1) == platform.StateJustPressed {
		g.enabled = !g.enabled
		g.platform.SetCursorEnabled(g.enabled)
		g.log.Debug("gui toggled", zap.Bool("enabled", g.enabled))
	}
	return nil
}

func (g *GUIController) Draw(*controller.Context) error {
	if g.enabled {
		g.shown++
	}
	return nil
}

func (g *GUIController) Enabled() bool { return g.enabled }

// ShownFrames returns how many frames drew the overlay.
func (g *GUIController) ShownFrames() uint64 { return g.shown }
