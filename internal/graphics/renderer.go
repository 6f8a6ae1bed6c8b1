package graphics

import (
	"errors"

	"go.uber.org/zap"
)

var ErrOutsideDraw = errors.New("draw call outside the draw phase")

// Transform places one model instance in the world.
type Transform struct {
	Position Vec3    `yaml:"position"`
	Scale    float32 `yaml:"scale"`
	Angle    float32 `yaml:"angle"` // degrees around Axis
	Axis     Vec3    `yaml:"axis"`
}

// Renderer is the drawing surface controllers talk to. Its implementation
// (meshes, shaders, GPU) lives outside the scheduler.
type Renderer interface {
	Clear()
	DrawModel(model, shader string, t Transform) error
	DrawSkybox(name string) error
	SetExposure(exposure float32)
	Present()
}

// FrameStats counts what a Recorder saw during one frame.
type FrameStats struct {
	Clears   int
	Models   int
	Skyboxes int
	Exposure float32
	ByModel  map[string]int
}

// Recorder is a headless Renderer. It keeps per-frame counters and a
// running total, and logs each presented frame at debug level.
type Recorder struct {
	log    *zap.Logger
	frame  FrameStats
	last   FrameStats
	frames uint64
	total  int
}

func NewRecorder(log *zap.Logger) *Recorder {
	return &Recorder{log: log, frame: FrameStats{ByModel: map[string]int{}}}
}

func (r *Recorder) Clear() { r.frame.Clears++ }

func (r *Recorder) DrawModel(model, _ string, _ Transform) error {
	r.frame.Models++
	r.frame.ByModel[model]++
	return nil
}

func (r *Recorder) DrawSkybox(string) error {
	r.frame.Skyboxes++
	return nil
}

func (r *Recorder) SetExposure(e float32) { r.frame.Exposure = e }

func (r *Recorder) Present() {
	r.frames++
	r.total += r.frame.Models
	r.log.Debug("frame presented",
		zap.Uint64("frame", r.frames),
		zap.Int("models", r.frame.Models),
		zap.Int("skyboxes", r.frame.Skyboxes),
		zap.Float32("exposure", r.frame.Exposure),
	)
	r.last = r.frame
	r.frame = FrameStats{ByModel: map[string]int{}, Exposure: r.last.Exposure}
}

// Last returns the counters of the most recently presented frame.
func (r *Recorder) Last() FrameStats { return r.last }

// Frames returns the number of presented frames.
func (r *Recorder) Frames() uint64 { return r.frames }

// TotalModels returns the model draws across all presented frames.
func (r *Recorder) TotalModels() int { return r.total }
