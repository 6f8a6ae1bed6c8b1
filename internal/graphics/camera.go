package graphics

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Vec3 is a 3-component float vector. In YAML it is written [x, y, z].
type Vec3 struct {
	X, Y, Z float32
}

func V(x, y, z float32) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float32   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float32         { return float32(math.Sqrt(float64(a.Dot(a)))) }

func (a *Vec3) UnmarshalYAML(n *yaml.Node) error {
	var xyz []float32
	if err := n.Decode(&xyz); err != nil {
		return err
	}
	if len(xyz) != 3 {
		return fmt.Errorf("line %d: vector needs 3 components, got %d", n.Line, len(xyz))
	}
	*a = Vec3{xyz[0], xyz[1], xyz[2]}
	return nil
}

func (a Vec3) MarshalYAML() (any, error) {
	return []float32{a.X, a.Y, a.Z}, nil
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Movement is a camera translation direction.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
	Up
	Down
)

const (
	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultSpeed       = 7.0
	DefaultSensitivity = 0.1
)

// Camera is a fly camera driven by yaw and pitch in degrees.
type Camera struct {
	Position Vec3
	Front    Vec3
	Up       Vec3
	Right    Vec3
	WorldUp  Vec3

	Yaw              float32
	Pitch            float32
	MovementSpeed    float32
	MouseSensitivity float32
}

func NewCamera(position Vec3) *Camera {
	c := &Camera{
		Position:         position,
		WorldUp:          V(0, 1, 0),
		Yaw:              DefaultYaw,
		Pitch:            DefaultPitch,
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
	}
	c.updateVectors()
	return c
}

// Move translates the camera for dt seconds at MovementSpeed.
func (c *Camera) Move(dir Movement, dt float32) {
	v := c.MovementSpeed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Scale(v))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Scale(v))
	case Left:
		c.Position = c.Position.Sub(c.Right.Scale(v))
	case Right:
		c.Position = c.Position.Add(c.Right.Scale(v))
	case Up:
		c.Position = c.Position.Add(c.WorldUp.Scale(v))
	case Down:
		c.Position = c.Position.Sub(c.WorldUp.Scale(v))
	}
}

// Rotate applies a pointer delta. Pitch is clamped to ±89° so the view
// never flips.
func (c *Camera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch += dy * c.MouseSensitivity
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}
	c.updateVectors()
}

// SetOrientation sets yaw and pitch directly.
func (c *Camera) SetOrientation(yaw, pitch float32) {
	c.Yaw, c.Pitch = yaw, pitch
	c.Rotate(0, 0)
}

func (c *Camera) updateVectors() {
	yaw := float64(c.Yaw) * math.Pi / 180
	pitch := float64(c.Pitch) * math.Pi / 180
	c.Front = Vec3{
		X: float32(math.Cos(yaw) * math.Cos(pitch)),
		Y: float32(math.Sin(pitch)),
		Z: float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
