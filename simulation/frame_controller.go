package simulation

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"voxelviewer/core"
)

const (
	// DefaultCameraSpeed divides every movement vector applied in one frame
	DefaultCameraSpeed = 10.0
	// DefaultMouseSensitivity divides the cursor offset, in pixels, before it
	// is added to yaw and pitch
	DefaultMouseSensitivity = 800.0
)

// Uniforms is the per-frame input surface of the raymarching shader
type Uniforms struct {
	Resolution mgl32.Vec2         // u_resolution
	Texture    core.TextureHandle // u_texture
	CamPos     mgl32.Vec3         // u_cam_pos
	CamLookAt  mgl32.Vec3         // u_cam_look_at
	Yaw        float32            // u_yaw
	Pitch      float32            // u_pitch
}

// Renderer draws one frame with the given uniforms and shows diagnostics.
// Draw failures are fatal inside the renderer.
type Renderer interface {
	Draw(u Uniforms)
	SetTitle(title string)
}

// FrameStats is the snapshot published after every frame
type FrameStats struct {
	Frame     uint64     `json:"frame"`
	FPS       float64    `json:"fps"`
	CamPos    mgl32.Vec3 `json:"camPos"`
	CamLookAt mgl32.Vec3 `json:"camLookAt"`
	Yaw       float32    `json:"yaw"`
	Pitch     float32    `json:"pitch"`
}

// Observer receives frame snapshots. It must not block.
type Observer interface {
	ObserveFrame(stats FrameStats)
}

// KeyMap binds the six movement directions to keys
type KeyMap struct {
	Forward core.Key
	Left    core.Key
	Back    core.Key
	Right   core.Key
	Up      core.Key
	Down    core.Key
}

// DefaultKeyMap is W/A/S/D with Space and left Shift for vertical movement
var DefaultKeyMap = KeyMap{
	Forward: core.KeyW,
	Left:    core.KeyA,
	Back:    core.KeyS,
	Right:   core.KeyD,
	Up:      core.KeySpace,
	Down:    core.KeyLeftShift,
}

// Options configures a FrameController
type Options struct {
	Resolution       mgl32.Vec2
	CameraSpeed      float32
	MouseSensitivity float32
	Keys             KeyMap
	Texture          core.TextureHandle
	Renderer         Renderer
	Observer         Observer
}

// FrameController owns the per-frame application state and turns input into
// camera motion and shader uniforms.
type FrameController struct {
	camera *core.Camera
	input  *core.InputState
	clock  *core.FrameClock

	renderer Renderer
	observer Observer

	keys             KeyMap
	texture          core.TextureHandle
	resolution       mgl32.Vec2
	cameraSpeed      float32
	mouseSensitivity float32

	frames uint64
}

// NewFrameController wires a controller around camera and clock. Zero speed
// or sensitivity options fall back to the defaults.
func NewFrameController(camera *core.Camera, clock *core.FrameClock, opts Options) *FrameController {
	if opts.CameraSpeed == 0 {
		opts.CameraSpeed = DefaultCameraSpeed
	}
	if opts.MouseSensitivity == 0 {
		opts.MouseSensitivity = DefaultMouseSensitivity
	}
	if opts.Keys == (KeyMap{}) {
		opts.Keys = DefaultKeyMap
	}

	return &FrameController{
		camera:           camera,
		input:            core.NewInputState(),
		clock:            clock,
		renderer:         opts.Renderer,
		observer:         opts.Observer,
		keys:             opts.Keys,
		texture:          opts.Texture,
		resolution:       opts.Resolution,
		cameraSpeed:      opts.CameraSpeed,
		mouseSensitivity: opts.MouseSensitivity,
	}
}

// Input returns the input state fed by the window callbacks
func (fc *FrameController) Input() *core.InputState {
	return fc.input
}

// Camera returns the controlled camera
func (fc *FrameController) Camera() *core.Camera {
	return fc.camera
}

// SetResolution updates u_resolution after a framebuffer resize
func (fc *FrameController) SetResolution(width, height int) {
	fc.resolution = mgl32.Vec2{float32(width), float32(height)}
}

// Resolution returns the current u_resolution value
func (fc *FrameController) Resolution() mgl32.Vec2 {
	return fc.resolution
}

// Frames returns the number of completed frames
func (fc *FrameController) Frames() uint64 {
	return fc.frames
}

// Frame runs one redraw cycle
func (fc *FrameController) Frame() {
	fc.move()
	fc.look()
	// yaw and pitch are final for this frame, refresh before anything reads look-at
	fc.camera.UpdateLookAt()

	u := fc.Uniforms()
	if fc.renderer != nil {
		fc.renderer.Draw(u)
	}

	fps := fc.clock.Tick()
	fc.frames++
	if fc.renderer != nil {
		fc.renderer.SetTitle(strconv.FormatFloat(math.Floor(fps), 'f', -1, 64))
	}

	if fc.observer != nil {
		fc.observer.ObserveFrame(FrameStats{
			Frame:     fc.frames,
			FPS:       fps,
			CamPos:    u.CamPos,
			CamLookAt: u.CamLookAt,
			Yaw:       u.Yaw,
			Pitch:     u.Pitch,
		})
	}
}

// Uniforms snapshots the shader inputs for the current state
func (fc *FrameController) Uniforms() Uniforms {
	return Uniforms{
		Resolution: fc.resolution,
		Texture:    fc.texture,
		CamPos:     fc.camera.Position,
		CamLookAt:  fc.camera.LookAt(),
		Yaw:        fc.camera.Yaw,
		Pitch:      fc.camera.Pitch,
	}
}

// MovementBasis returns the front and right vectors used for movement.
// Right is up x front and is left unnormalized, so its length is cos(pitch).
func MovementBasis(yaw, pitch float32) (front, right mgl32.Vec3) {
	front = core.FrontVector(yaw, pitch)
	right = core.WorldUp.Cross(front)
	return front, right
}

func (fc *FrameController) move() {
	front, right := MovementBasis(fc.camera.Yaw, fc.camera.Pitch)
	speed := fc.cameraSpeed
	pos := fc.camera.Position

	if fc.input.IsPressed(fc.keys.Forward) {
		pos = pos.Add(scaleDown(front, speed))
	}
	if fc.input.IsPressed(fc.keys.Left) {
		pos = pos.Sub(scaleDown(right, speed))
	}
	if fc.input.IsPressed(fc.keys.Back) {
		pos = pos.Sub(scaleDown(front, speed))
	}
	if fc.input.IsPressed(fc.keys.Right) {
		pos = pos.Add(scaleDown(right, speed))
	}
	if fc.input.IsPressed(fc.keys.Up) {
		pos[1] += 1 / speed
	}
	if fc.input.IsPressed(fc.keys.Down) {
		pos[1] -= 1 / speed
	}

	fc.camera.Position = pos
}

// scaleDown divides component-wise; v.Mul(1/d) rounds differently
func scaleDown(v mgl32.Vec3, d float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0] / d, v[1] / d, v[2] / d}
}

// look applies the pending mouse delta while the window has focus
func (fc *FrameController) look() {
	dx, dy := fc.input.TakeMouseDelta()
	if !fc.input.Focused() {
		return
	}
	fc.camera.Yaw += dx / fc.mouseSensitivity
	fc.camera.Pitch += dy / fc.mouseSensitivity
}
