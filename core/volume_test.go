package core

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var smallDims = Dimensions{Width: 6, Height: 3, Depth: 5}

func TestIndexIsInjective(t *testing.T) {
	seen := make(map[int]bool, smallDims.Voxels())

	for z := 0; z < smallDims.Depth; z++ {
		for y := 0; y < smallDims.Height; y++ {
			for x := 0; x < smallDims.Width; x++ {
				i := smallDims.Index(x, y, z)
				require.Zero(t, i%ChannelsPerVoxel)
				require.GreaterOrEqual(t, i, 0)
				require.Less(t, i+AlphaChannel, smallDims.Len())
				require.False(t, seen[i], "index %d reused at (%d, %d, %d)", i, x, y, z)
				seen[i] = true
			}
		}
	}

	require.Len(t, seen, smallDims.Voxels())
}

func TestIndexLayout(t *testing.T) {
	d := DefaultDimensions

	require.Equal(t, 0, d.Index(0, 0, 0))
	require.Equal(t, 4, d.Index(1, 0, 0))
	require.Equal(t, 128*4, d.Index(0, 1, 0))
	require.Equal(t, 128*10*4, d.Index(0, 0, 1))
	require.Equal(t, d.Len()-4, d.Index(127, 9, 127))
}

func TestIndexOutOfRangePanics(t *testing.T) {
	require.Panics(t, func() { smallDims.Index(-1, 0, 0) })
	require.Panics(t, func() { smallDims.Index(0, smallDims.Height, 0) })
	require.Panics(t, func() { smallDims.Index(0, 0, smallDims.Depth) })
}

func TestGenerateVolume(t *testing.T) {
	d := DefaultDimensions
	v := GenerateVolume(d, rand.New(rand.NewSource(1)))

	require.Equal(t, d, v.Dimensions())
	require.Len(t, v.Data(), 128*10*128*4)

	for z := 0; z < d.Depth; z++ {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				voxel := v.Voxel(x, y, z)
				if y == 0 {
					require.Equal(t, float32(0), voxel[AlphaChannel])
				} else {
					require.Equal(t, float32(1), voxel[AlphaChannel])
				}
				for c := 0; c < AlphaChannel; c++ {
					require.GreaterOrEqual(t, voxel[c], float32(0))
					require.Less(t, voxel[c], float32(1))
				}
			}
		}
	}
}

func TestGenerateVolumeShapeIsDeterministic(t *testing.T) {
	a := GenerateVolume(smallDims, rand.New(rand.NewSource(1)))
	b := GenerateVolume(smallDims, rand.New(rand.NewSource(2)))

	require.Equal(t, len(a.Data()), len(b.Data()))
	require.Equal(t, alphaMask(a), alphaMask(b))
	require.NotEqual(t, a.Data(), b.Data())
}

func TestGenerateVolumeWithSameSeed(t *testing.T) {
	a := GenerateVolume(smallDims, rand.New(rand.NewSource(42)))
	b := GenerateVolume(smallDims, rand.New(rand.NewSource(42)))

	require.Equal(t, a.Data(), b.Data())
	require.Equal(t, a.Digest(), b.Digest())
}

func TestDigest(t *testing.T) {
	a := GenerateVolume(smallDims, rand.New(rand.NewSource(1)))
	b := GenerateVolume(smallDims, rand.New(rand.NewSource(2)))

	require.NotEqual(t, a.Digest(), b.Digest())
}

func TestSaveAndLoadVolume(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{name: "json", file: "data.json"},
		{name: "zstd", file: "data.json" + CompressedSuffix},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			original := GenerateVolume(smallDims, rand.New(rand.NewSource(7)))

			require.NoError(t, SaveVolume(path, original))

			loaded, err := LoadVolume(path, smallDims)
			require.NoError(t, err)
			require.Equal(t, original.Data(), loaded.Data())
			require.Equal(t, original.Digest(), loaded.Digest())
		})
	}
}

func TestLoadOrGenerateReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	original := GenerateVolume(smallDims, rand.New(rand.NewSource(3)))
	require.NoError(t, SaveVolume(path, original))

	store := LoadOrGenerate(path, smallDims, rand.New(rand.NewSource(4)))

	require.Equal(t, SourceFile, store.Source())
	require.Equal(t, path, store.Path())
	require.Equal(t, original.Data(), store.Volume().Data())
}

func TestLoadOrGenerateFallsBack(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{"data": [1, 2,`), 0o644))

	wrongLength := filepath.Join(dir, "short.json")
	require.NoError(t, os.WriteFile(wrongLength, []byte(`{"data": [1, 0.5, 0.25, 1]}`), 0o644))

	missingField := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(missingField, []byte(`{}`), 0o644))

	trailing := filepath.Join(dir, "trailing.json")
	require.NoError(t, SaveVolume(trailing, GenerateVolume(smallDims, rand.New(rand.NewSource(9)))))
	f, err := os.OpenFile(trailing, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(" trailing garbage")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	notZstd := filepath.Join(dir, "plain.json"+CompressedSuffix)
	require.NoError(t, os.WriteFile(notZstd, []byte(`{"data": []}`), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.json")},
		{name: "malformed json", path: malformed},
		{name: "wrong length", path: wrongLength},
		{name: "missing data field", path: missingField},
		{name: "trailing content", path: trailing},
		{name: "corrupt zstd", path: notZstd},
		{name: "directory", path: dir},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := LoadOrGenerate(tc.path, smallDims, rand.New(rand.NewSource(5)))

			require.Equal(t, SourceGenerated, store.Source())
			require.Len(t, store.Volume().Data(), smallDims.Len())
			require.Equal(t, float32(0), store.Volume().Alpha(0, 0, 0))
			require.Equal(t, float32(1), store.Volume().Alpha(0, 1, 0))
		})
	}
}

func TestTextureDescriptor(t *testing.T) {
	store := LoadOrGenerate(filepath.Join(t.TempDir(), "missing.json"), smallDims, rand.New(rand.NewSource(1)))

	desc := store.TextureDescriptor()

	require.Equal(t, smallDims.Width, desc.Width)
	require.Equal(t, smallDims.Height, desc.Height)
	require.Equal(t, smallDims.Depth, desc.Depth)
	require.Equal(t, FormatRGBA32F, desc.Format)
	require.Equal(t, "rgba32f", desc.Format.String())
	require.Len(t, desc.Data, smallDims.Len())
	require.Same(t, &store.Volume().Data()[0], &desc.Data[0])
}

func alphaMask(v *Volume) []float32 {
	mask := make([]float32, 0, v.Dimensions().Voxels())
	for i := AlphaChannel; i < len(v.Data()); i += ChannelsPerVoxel {
		mask = append(mask, v.Data()[i])
	}
	return mask
}
