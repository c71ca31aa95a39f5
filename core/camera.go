package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the fixed up axis of the scene
var WorldUp = mgl32.Vec3{0, 1, 0}

// Camera is a free-fly camera. Yaw and pitch accumulate without clamping;
// the trig functions wrap them naturally.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	lookAt mgl32.Vec3
}

// NewCamera places a camera at pos facing +X
func NewCamera(pos mgl32.Vec3) *Camera {
	c := &Camera{Position: pos}
	c.UpdateLookAt()
	return c
}

// FrontVector is the raw direction (cos yaw cos pitch, sin pitch, sin yaw cos pitch)
func FrontVector(yaw, pitch float32) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}
}

// Front returns the normalized facing direction
func (c *Camera) Front() mgl32.Vec3 {
	return FrontVector(c.Yaw, c.Pitch).Normalize()
}

// UpdateLookAt recomputes the look-at point. Call it after changing the
// position, yaw or pitch and before reading LookAt.
func (c *Camera) UpdateLookAt() {
	c.lookAt = c.Position.Add(c.Front())
}

// LookAt returns the point one unit in front of the camera
func (c *Camera) LookAt() mgl32.Vec3 {
	return c.lookAt
}
