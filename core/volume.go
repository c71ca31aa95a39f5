package core

import (
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/cespare/xxhash/v2"
)

// ChannelsPerVoxel is the number of float channels stored for every voxel (RGBA)
const ChannelsPerVoxel = 4

// AlphaChannel is the channel offset holding occupancy
const AlphaChannel = 3

// Dimensions describes the extent of a volume in voxels
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Depth  int `json:"depth"`
}

// DefaultDimensions is the reference 128x10x128 scene
var DefaultDimensions = Dimensions{Width: 128, Height: 10, Depth: 128}

// Voxels returns the number of voxels in the grid
func (d Dimensions) Voxels() int {
	return d.Width * d.Height * d.Depth
}

// Len returns the length of the flat channel slice
func (d Dimensions) Len() int {
	return d.Voxels() * ChannelsPerVoxel
}

// Contains reports whether a voxel coordinate lies inside the grid
func (d Dimensions) Contains(x, y, z int) bool {
	return x >= 0 && x < d.Width &&
		y >= 0 && y < d.Height &&
		z >= 0 && z < d.Depth
}

// Index returns the offset of the first channel of voxel (x, y, z).
// Coordinates outside the grid are a programming error and panic.
func (d Dimensions) Index(x, y, z int) int {
	if !d.Contains(x, y, z) {
		panic(fmt.Sprintf("voxel (%d, %d, %d) outside %dx%dx%d volume",
			x, y, z, d.Width, d.Height, d.Depth))
	}
	return (x + y*d.Width + z*d.Width*d.Height) * ChannelsPerVoxel
}

// Volume is a dense RGBA float grid. It is immutable once built.
type Volume struct {
	dims Dimensions
	data []float32
}

// GenerateVolume builds the procedural default volume.
// Every channel starts at 1.0, the lowest layer is carved open by zeroing its
// alpha, then each RGB channel gets an independent value in [0, 1).
func GenerateVolume(dims Dimensions, rng *rand.Rand) *Volume {
	data := make([]float32, dims.Len())
	for i := range data {
		data[i] = 1.0
	}

	for x := 0; x < dims.Width; x++ {
		for z := 0; z < dims.Depth; z++ {
			data[dims.Index(x, 0, z)+AlphaChannel] = 0.0
		}
	}

	for i := range data {
		if i%ChannelsPerVoxel == AlphaChannel {
			continue
		}
		data[i] = rng.Float32()
	}

	return &Volume{dims: dims, data: data}
}

// newVolumeFromData wraps a decoded channel slice after checking its length
func newVolumeFromData(dims Dimensions, data []float32) (*Volume, error) {
	if len(data) != dims.Len() {
		return nil, errors.New("volume data length mismatch").
			WithTag("length", len(data)).
			WithTag("expected", dims.Len())
	}
	return &Volume{dims: dims, data: data}, nil
}

// Dimensions returns the grid extent
func (v *Volume) Dimensions() Dimensions {
	return v.dims
}

// Data returns the flat channel slice. Callers must treat it as read-only.
func (v *Volume) Data() []float32 {
	return v.data
}

// Voxel returns the four channels of voxel (x, y, z)
func (v *Volume) Voxel(x, y, z int) [ChannelsPerVoxel]float32 {
	i := v.dims.Index(x, y, z)
	return [ChannelsPerVoxel]float32{v.data[i], v.data[i+1], v.data[i+2], v.data[i+3]}
}

// Alpha returns the occupancy channel of voxel (x, y, z)
func (v *Volume) Alpha(x, y, z int) float32 {
	return v.data[v.dims.Index(x, y, z)+AlphaChannel]
}

// Digest hashes the raw channel bytes; equal volumes have equal digests
func (v *Volume) Digest() uint64 {
	if len(v.data) == 0 {
		return xxhash.Sum64(nil)
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&v.data[0])), len(v.data)*4)
	return xxhash.Sum64(raw)
}

// TextureFormat names the per-voxel client layout handed to the GPU
type TextureFormat int

const (
	// FormatRGBA32F is four float32 channels per voxel
	FormatRGBA32F TextureFormat = iota
)

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA32F:
		return "rgba32f"
	default:
		return fmt.Sprintf("TextureFormat(%d)", int(f))
	}
}

// TextureHandle identifies an uploaded 3D texture on the GPU side
type TextureHandle uint32

// TextureDescriptor is the read-only view lent to the texture upload
type TextureDescriptor struct {
	Data   []float32
	Width  int
	Height int
	Depth  int
	Format TextureFormat
}
