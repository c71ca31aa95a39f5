package shaders

import (
	"os"
	"path/filepath"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	VertexShaderFile   = "vertex.glsl"
	FragmentShaderFile = "fragment.glsl"
)

// Uniform names of the raymarching program
const (
	UniformResolution = "u_resolution"
	UniformTexture    = "u_texture"
	UniformCamPos     = "u_cam_pos"
	UniformCamLookAt  = "u_cam_look_at"
	UniformYaw        = "u_yaw"
	UniformPitch      = "u_pitch"
)

// Sources holds the GLSL text of the raymarching program
type Sources struct {
	Vertex   string
	Fragment string
}

// ReadSources loads vertex.glsl and fragment.glsl from dir
func ReadSources(dir string) (Sources, error) {
	vertex, err := os.ReadFile(filepath.Join(dir, VertexShaderFile))
	if err != nil {
		return Sources{}, errors.New("reading vertex shader failed").
			WithTag("dir", dir).
			Wrap(err)
	}

	fragment, err := os.ReadFile(filepath.Join(dir, FragmentShaderFile))
	if err != nil {
		return Sources{}, errors.New("reading fragment shader failed").
			WithTag("dir", dir).
			Wrap(err)
	}

	return Sources{Vertex: string(vertex), Fragment: string(fragment)}, nil
}

// CompileRayMarchProgram compiles and links the raymarching program.
// A GL context must be current.
func CompileRayMarchProgram(src Sources) (uint32, error) {
	vertShader, err := compileShader(src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, errors.New("vertex shader error").Wrap(err)
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, errors.New("fragment shader error").Wrap(err)
	}
	defer gl.DeleteShader(fragShader)

	return linkProgram(vertShader, fragShader)
}

// UniformLocations caches the raymarching uniform locations of a program
type UniformLocations struct {
	Resolution int32
	Texture    int32
	CamPos     int32
	CamLookAt  int32
	Yaw        int32
	Pitch      int32
}

// LookupUniforms resolves the uniform locations of program. Uniforms the
// driver optimised away resolve to -1, which GL ignores on upload.
func LookupUniforms(program uint32) UniformLocations {
	return UniformLocations{
		Resolution: uniformLocation(program, UniformResolution),
		Texture:    uniformLocation(program, UniformTexture),
		CamPos:     uniformLocation(program, UniformCamPos),
		CamLookAt:  uniformLocation(program, UniformCamLookAt),
		Yaw:        uniformLocation(program, UniformYaw),
		Pitch:      uniformLocation(program, UniformPitch),
	}
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
