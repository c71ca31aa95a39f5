package opengl

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelviewer/core"
)

// VolumeTexture is the volume uploaded once as an RGBA32F 3D texture
type VolumeTexture struct {
	id     uint32
	width  int32
	height int32
	depth  int32
}

// NewVolumeTexture uploads desc to the GPU. A GL context must be current.
func NewVolumeTexture(desc core.TextureDescriptor) (*VolumeTexture, error) {
	if desc.Format != core.FormatRGBA32F {
		return nil, errors.New("unsupported volume texture format").
			WithTag("format", desc.Format.String())
	}

	want := desc.Width * desc.Height * desc.Depth * core.ChannelsPerVoxel
	if want == 0 || len(desc.Data) != want {
		return nil, errors.New("volume texture data does not match its dimensions").
			WithTag("length", len(desc.Data)).
			WithTag("expected", want)
	}

	vt := &VolumeTexture{
		width:  int32(desc.Width),
		height: int32(desc.Height),
		depth:  int32(desc.Depth),
	}

	gl.GenTextures(1, &vt.id)
	gl.BindTexture(gl.TEXTURE_3D, vt.id)

	// Nearest filtering keeps voxel edges sharp for the raymarcher
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.RGBA32F, vt.width, vt.height, vt.depth,
		0, gl.RGBA, gl.FLOAT, gl.Ptr(desc.Data))

	gl.BindTexture(gl.TEXTURE_3D, 0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		gl.DeleteTextures(1, &vt.id)
		return nil, errors.New("uploading volume texture failed").
			WithTag("gl_error", fmt.Sprintf("0x%x", glErr)).
			WithTag("width", desc.Width).
			WithTag("height", desc.Height).
			WithTag("depth", desc.Depth)
	}

	return vt, nil
}

// Handle returns the GL texture name
func (vt *VolumeTexture) Handle() core.TextureHandle {
	return core.TextureHandle(vt.id)
}

// Delete releases the texture
func (vt *VolumeTexture) Delete() {
	if vt.id != 0 {
		gl.DeleteTextures(1, &vt.id)
		vt.id = 0
	}
}
