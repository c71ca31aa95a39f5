package shaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"voxelviewer/core"
	"voxelviewer/simulation"
)

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VertexShaderFile), []byte("vertex"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FragmentShaderFile), []byte("fragment"), 0o644))

	src, err := ReadSources(dir)
	require.NoError(t, err)
	require.Equal(t, Sources{Vertex: "vertex", Fragment: "fragment"}, src)
}

func TestReadSourcesMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VertexShaderFile), []byte("vertex"), 0o644))

	_, err := ReadSources(dir)
	require.Error(t, err)

	_, err = ReadSources(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestBundledProgramsExist(t *testing.T) {
	src, err := ReadSources(filepath.Join("..", "..", "..", "programs"))
	require.NoError(t, err)

	for _, name := range []string{
		UniformResolution,
		UniformTexture,
		UniformCamPos,
		UniformCamLookAt,
		UniformYaw,
		UniformPitch,
	} {
		require.Contains(t, src.Fragment, name)
	}
}

func TestBundledScreenBasisMatchesStrafe(t *testing.T) {
	src, err := ReadSources(filepath.Join("..", "..", "..", "programs"))
	require.NoError(t, err)
	require.Contains(t, src.Fragment, "vec3 right = normalize(cross(vec3(0.0, 1.0, 0.0), forward));")
	require.Contains(t, src.Fragment, "vec3 up = cross(forward, right);")

	for _, yaw := range []float32{0, 0.5, 1.5, -2, 3} {
		front, strafe := simulation.MovementBasis(yaw, 0.3)

		// same construction as the fragment shader
		forward := front.Normalize()
		screenRight := core.WorldUp.Cross(forward).Normalize()
		screenUp := forward.Cross(screenRight)

		require.InDelta(t, 1, screenRight.Dot(strafe.Normalize()), 1e-5, "yaw %v", yaw)
		require.Greater(t, screenUp.Dot(core.WorldUp), float32(0), "yaw %v", yaw)
	}

	// turning with the cursor to the right of centre swings the view towards screen right
	front, _ := simulation.MovementBasis(0, 0)
	screenRight := core.WorldUp.Cross(front.Normalize()).Normalize()
	turned := core.FrontVector(-1.0/simulation.DefaultMouseSensitivity, 0)
	require.Greater(t, turned.Sub(front).Dot(screenRight), float32(0))
	require.Equal(t, mgl32.Vec3{0, 0, -1}, screenRight)
}
