package opengl

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxelviewer/core"
	"voxelviewer/rendering/opengl/shaders"
	"voxelviewer/simulation"
)

// Options configures the window and its GL context
type Options struct {
	Width        int
	Height       int
	Title        string
	SwapInterval int
	Shaders      shaders.Sources
}

// VoxelRenderer owns the window, the raymarching program and the fullscreen
// quad. It must be created and used from the locked main thread.
type VoxelRenderer struct {
	window *glfw.Window

	program  uint32
	uniforms shaders.UniformLocations

	// Vertex array for fullscreen quad
	quadVAO uint32

	volume *VolumeTexture
}

// NewVoxelRenderer opens the window, creates the GL context and compiles
// the raymarching program
func NewVoxelRenderer(opts Options) (*VoxelRenderer, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.New("initializing GLFW failed").Wrap(err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.New("creating window failed").
			WithTag("width", opts.Width).
			WithTag("height", opts.Height).
			Wrap(err)
	}

	window.MakeContextCurrent()
	glfw.SwapInterval(opts.SwapInterval)

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, errors.New("initializing OpenGL failed").Wrap(err)
	}

	logs.WithTag("version", gl.GoStr(gl.GetString(gl.VERSION))).
		WithTag("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		Debug("opengl context created")

	program, err := shaders.CompileRayMarchProgram(opts.Shaders)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, errors.New("compiling raymarch program failed").Wrap(err)
	}

	r := &VoxelRenderer{
		window:   window,
		program:  program,
		uniforms: shaders.LookupUniforms(program),
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)
	r.createQuad()

	window.SetInputMode(glfw.CursorMode, glfw.CursorHidden)

	return r, nil
}

// createQuad creates a VAO for fullscreen quad
func (r *VoxelRenderer) createQuad() {
	gl.GenVertexArrays(1, &r.quadVAO)
	// No VBO needed - we generate vertices in shader
}

// UploadVolume uploads the volume texture once and returns its handle
func (r *VoxelRenderer) UploadVolume(desc core.TextureDescriptor) (core.TextureHandle, error) {
	if r.volume != nil {
		r.volume.Delete()
	}

	vt, err := NewVolumeTexture(desc)
	if err != nil {
		return 0, err
	}
	r.volume = vt
	return vt.Handle(), nil
}

// FramebufferSize returns the drawable size in pixels
func (r *VoxelRenderer) FramebufferSize() (width, height int) {
	return r.window.GetFramebufferSize()
}

// Bind routes window events into the frame controller's input state
func (r *VoxelRenderer) Bind(fc *simulation.FrameController) {
	input := fc.Input()
	input.SetFocused(r.window.GetAttrib(glfw.Focused) == glfw.True)

	r.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		r.onKey(input, key, action)
	})

	r.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		r.onMouseMove(input, xpos, ypos)
	})

	r.window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		input.SetFocused(focused)
	})

	r.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(fc, width, height)
	})
}

// Event handlers
func (r *VoxelRenderer) onResize(fc *simulation.FrameController, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	fc.SetResolution(width, height)
}

func (r *VoxelRenderer) onKey(input *core.InputState, key glfw.Key, action glfw.Action) {
	if key == glfw.KeyUnknown {
		return
	}

	if key == glfw.KeyEscape && action == glfw.Press {
		r.window.SetShouldClose(true)
		return
	}

	input.SetPressed(core.Key(key), action != glfw.Release)
}

// onMouseMove turns cursor travel away from the window centre into a look
// delta and puts the cursor back
func (r *VoxelRenderer) onMouseMove(input *core.InputState, xpos, ypos float64) {
	if !input.Focused() {
		r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		return
	}
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorHidden)

	width, height := r.window.GetSize()
	cx, cy := float64(width)/2, float64(height)/2

	input.AddMouseDelta(float32(cx-xpos), float32(cy-ypos))
	r.window.SetCursorPos(cx, cy)
}

// Draw uploads the uniforms, draws the fullscreen quad and presents
func (r *VoxelRenderer) Draw(u simulation.Uniforms) {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.program)

	gl.Uniform2f(r.uniforms.Resolution, u.Resolution.X(), u.Resolution.Y())

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_3D, uint32(u.Texture))
	gl.Uniform1i(r.uniforms.Texture, 0)

	gl.Uniform3fv(r.uniforms.CamPos, 1, &u.CamPos[0])
	gl.Uniform3fv(r.uniforms.CamLookAt, 1, &u.CamLookAt[0])
	gl.Uniform1f(r.uniforms.Yaw, u.Yaw)
	gl.Uniform1f(r.uniforms.Pitch, u.Pitch)

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		logs.Fatal(errors.New("drawing frame failed").
			WithTag("gl_error", fmt.Sprintf("0x%x", glErr)))
	}

	r.window.SwapBuffers()
}

// SetTitle replaces the window title
func (r *VoxelRenderer) SetTitle(title string) {
	r.window.SetTitle(title)
}

// ShouldClose returns true if the window should close
func (r *VoxelRenderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

// PollEvents processes window events
func (r *VoxelRenderer) PollEvents() {
	glfw.PollEvents()
}

// Terminate cleans up OpenGL resources
func (r *VoxelRenderer) Terminate() {
	if r.volume != nil {
		r.volume.Delete()
	}
	gl.DeleteProgram(r.program)
	gl.DeleteVertexArrays(1, &r.quadVAO)
	r.window.Destroy()
	glfw.Terminate()
}
