package graphics

import (
	"errors"

	"github.com/glade/glade/internal/core/controller"
)

var ErrBloomState = errors.New("bloom pass out of order")

// BloomController brackets the scene's draw calls with an HDR pass.
// PrepareHDR and FinalizeBloom must pair within one frame.
type BloomController struct {
	gfx      *Controller
	open     bool
	exposure float32
	passes   uint64
}

func NewBloomController() *BloomController {
	return &BloomController{exposure: 1}
}

func (b *BloomController) Name() string { return "bloom" }

func (b *BloomController) Initialize(c *controller.Context) error {
	gfx, err := controller.Get[*Controller](c.Registry)
	if err != nil {
		return err
	}
	b.gfx = gfx
	return nil
}

// SetExposure sets the tone-mapping exposure used by FinalizeBloom.
func (b *BloomController) SetExposure(e float32) { b.exposure = e }

func (b *BloomController) PrepareHDR() error {
	if b.open {
		return ErrBloomState
	}
	b.open = true
	return nil
}

func (b *BloomController) FinalizeBloom() error {
	if !b.open {
		return ErrBloomState
	}
	b.open = false
	b.passes++
	b.gfx.SetExposure(b.exposure)
	return nil
}

// EndDraw fails the frame if a pass was left open.
func (b *BloomController) EndDraw(*controller.Context) error {
	if b.open {
		b.open = false
		return ErrBloomState
	}
	return nil
}

// Passes returns the number of completed bloom passes.
func (b *BloomController) Passes() uint64 { return b.passes }
