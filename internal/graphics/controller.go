package graphics

import (
	"fmt"

	"github.com/glade/glade/internal/core/controller"
)

// Controller owns the camera and the renderer. BeginDraw clears the frame
// and opens the draw window, EndDraw presents and closes it; draw calls made
// outside that window are rejected.
type Controller struct {
	renderer Renderer
	camera   *Camera
	drawing  bool

	width, height int
}

func NewController(r Renderer, width, height int) *Controller {
	return &Controller{renderer: r, width: width, height: height}
}

func (g *Controller) Name() string { return "graphics" }

func (g *Controller) Initialize(*controller.Context) error {
	if g.renderer == nil {
		return fmt.Errorf("graphics: no renderer")
	}
	g.camera = NewCamera(V(0, 0, 3))
	return nil
}

func (g *Controller) BeginDraw(*controller.Context) error {
	g.renderer.Clear()
	g.drawing = true
	return nil
}

func (g *Controller) EndDraw(*controller.Context) error {
	g.drawing = false
	return nil
}

// Present hands the finished frame to the renderer. Called by the
// application during its end-draw, before swapping buffers.
func (g *Controller) Present() { g.renderer.Present() }

func (g *Controller) Camera() *Camera { return g.camera }

// AspectRatio returns width/height of the render target.
func (g *Controller) AspectRatio() float32 {
	if g.height == 0 {
		return 1
	}
	return float32(g.width) / float32(g.height)
}

func (g *Controller) DrawModel(model, shader string, t Transform) error {
	if !g.drawing {
		return fmt.Errorf("model %s: %w", model, ErrOutsideDraw)
	}
	return g.renderer.DrawModel(model, shader, t)
}

func (g *Controller) DrawSkybox(name string) error {
	if !g.drawing {
		return fmt.Errorf("skybox %s: %w", name, ErrOutsideDraw)
	}
	return g.renderer.DrawSkybox(name)
}

func (g *Controller) SetExposure(e float32) { g.renderer.SetExposure(e) }
