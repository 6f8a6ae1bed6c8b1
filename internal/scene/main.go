package scene

import (
	"errors"
	"fmt"

	"github.com/glade/glade/internal/core/controller"
	"github.com/glade/glade/internal/core/event"
	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/platform"
	"github.com/glade/glade/internal/resources"
	"go.uber.org/zap"
)

const (
	walkSpeed = 7
	runSpeed  = 20
	turnStep  = 10 // yaw delta per frame while Q/E is held
)

// MainController drives the scene: camera input, the day/night cycle and
// the draw list.
type MainController struct {
	layout *Layout
	cycle  *DayNight
	log    *zap.Logger

	platform *platform.Controller
	gfx      *graphics.Controller
	res      *resources.Controller
	bloom    *graphics.BloomController
	gui      *GUIController // optional
}

func NewMainController(layout *Layout, log *zap.Logger) *MainController {
	if layout == nil {
		layout = &Layout{Name: "default"}
	}
	return &MainController{layout: layout, cycle: NewDayNight(), log: log}
}

func (m *MainController) Name() string { return "scene.main" }

func (m *MainController) Initialize(c *controller.Context) error {
	var err error
	if m.platform, err = controller.Get[*platform.Controller](c.Registry); err != nil {
		return err
	}
	if m.gfx, err = controller.Get[*graphics.Controller](c.Registry); err != nil {
		return err
	}
	if m.res, err = controller.Get[*resources.Controller](c.Registry); err != nil {
		return err
	}
	if m.bloom, err = controller.Get[*graphics.BloomController](c.Registry); err != nil {
		return err
	}
	m.gui, err = controller.Get[*GUIController](c.Registry)
	if err != nil && !errors.Is(err, controller.ErrNotFound) {
		return err
	}

	if err := m.checkAssets(); err != nil {
		return err
	}

	event.Subscribe(c.Events, m.onMouseMove)
	m.platform.SetCursorEnabled(false)

	cam := m.gfx.Camera()
	cam.Position = m.layout.Camera.Position
	cam.SetOrientation(m.layout.Camera.Yaw, m.layout.Camera.Pitch)

	m.log.Info("scene initialized",
		zap.String("scene", m.layout.Name),
		zap.Int("placements", len(m.layout.Placements)),
		zap.Int("instances", m.layout.Instances()),
	)
	return nil
}

// checkAssets fails fast when the layout names something the loader lacks.
func (m *MainController) checkAssets() error {
	for _, p := range m.layout.Placements {
		if _, err := m.res.Model(p.Model); err != nil {
			return fmt.Errorf("scene %s: %w", m.layout.Name, err)
		}
		if _, err := m.res.Shader(p.Shader); err != nil {
			return fmt.Errorf("scene %s: %w", m.layout.Name, err)
		}
	}
	return nil
}

func (m *MainController) guiEnabled() bool {
	return m.gui != nil && m.gui.Enabled()
}

func (m *MainController) onMouseMove(ev platform.MouseMoved) {
	if m.guiEnabled() {
		return
	}
	m.gfx.Camera().Rotate(float32(ev.DX), float32(ev.DY))
}

// Loop stops the application on Escape.
func (m *MainController) Loop(*controller.Context) bool {
	return !m.platform.Key(platform.KeyEscape).IsDown()
}

func (m *MainController) Update(*controller.Context) error {
	m.updateCamera()
	if m.cycle.Advance(m.platform.DT()) {
		m.log.Info("time of day changed", zap.Stringer("period", m.cycle.Period()))
	}
	m.bloom.SetExposure(m.cycle.Exposure())
	return nil
}

func (m *MainController) updateCamera() {
	if m.guiEnabled() {
		return
	}
	p := m.platform
	cam := m.gfx.Camera()
	dt := float32(p.DT())
	down := func(keys ...platform.Key) bool {
		for _, k := range keys {
			if p.Key(k).IsDown() {
				return true
			}
		}
		return false
	}

	speed := float32(walkSpeed)
	if down(platform.KeyLeftShift) {
		speed = runSpeed
	}
	for _, mv := range []struct {
		dir  graphics.Movement
		keys []platform.Key
	}{
		{graphics.Forward, []platform.Key{platform.KeyW, platform.KeyUp}},
		{graphics.Backward, []platform.Key{platform.KeyS, platform.KeyDown}},
		{graphics.Left, []platform.Key{platform.KeyA, platform.KeyLeft}},
		{graphics.Right, []platform.Key{platform.KeyD, platform.KeyRight}},
	} {
		if down(mv.keys...) {
			cam.MovementSpeed = speed
			cam.Move(mv.dir, dt)
		}
	}
	if down(platform.KeySpace) {
		if down(platform.KeyLeftShift) {
			cam.Move(graphics.Down, dt)
		} else {
			cam.Move(graphics.Up, dt)
		}
	}
	if p.Key(platform.KeyP) == platform.StateJustPressed {
		p.SetCursorEnabled(!p.CursorEnabled())
	}
	if p.Key(platform.KeyN) == platform.StateJustPressed && m.cycle.Request() {
		m.log.Debug("time of day change requested", zap.Stringer("from", m.cycle.Period()))
	}
	if down(platform.KeyQ) {
		cam.Rotate(-turnStep, 0)
	}
	if down(platform.KeyE) {
		cam.Rotate(turnStep, 0)
	}
}

func (m *MainController) Draw(*controller.Context) error {
	if err := m.bloom.PrepareHDR(); err != nil {
		return err
	}
	night := m.cycle.Period() == Night
	for _, p := range m.layout.Placements {
		if p.NightOnly && !night {
			continue
		}
		for _, t := range p.Instances {
			if err := m.gfx.DrawModel(p.Model, p.Shader, t); err != nil {
				return err
			}
		}
	}
	if err := m.gfx.DrawSkybox(m.cycle.Skybox()); err != nil {
		return err
	}
	return m.bloom.FinalizeBloom()
}

func (m *MainController) EndDraw(*controller.Context) error {
	m.gfx.Present()
	m.platform.SwapBuffers()
	return nil
}

// Cycle exposes the day/night state.
func (m *MainController) Cycle() *DayNight { return m.cycle }

// SetSkybox changes the skybox of the current period.
func (m *MainController) SetSkybox(name string, daytime bool) { m.cycle.SetSkybox(name, daytime) }

// Snapshot captures the restorable scene state.
func (m *MainController) Snapshot() State {
	cam := m.gfx.Camera()
	day, night := m.cycle.Skyboxes()
	return State{
		Scene:       m.layout.Name,
		Camera:      CameraPose{Position: cam.Position, Yaw: cam.Yaw, Pitch: cam.Pitch},
		Period:      m.cycle.Period(),
		DaySkybox:   day,
		NightSkybox: night,
	}
}

// Restore applies a saved state. Must run after Initialize.
func (m *MainController) Restore(s State) {
	cam := m.gfx.Camera()
	cam.Position = s.Camera.Position
	cam.SetOrientation(s.Camera.Yaw, s.Camera.Pitch)
	m.cycle.Restore(s.Period, s.DaySkybox, s.NightSkybox)
	m.bloom.SetExposure(m.cycle.Exposure())
}
