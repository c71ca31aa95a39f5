package core

import (
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/encoding/json"
)

// CompressedSuffix marks volume files stored as zstd-compressed JSON
const CompressedSuffix = ".zst"

// volumeFile is the persisted document: one flat list of channel values
type volumeFile struct {
	Data []float32 `json:"data"`
}

// VolumeSource records where the store's volume came from
type VolumeSource int

const (
	// SourceFile means the volume was decoded from the persisted file
	SourceFile VolumeSource = iota
	// SourceGenerated means the file was unusable and the volume was generated
	SourceGenerated
)

func (s VolumeSource) String() string {
	if s == SourceFile {
		return "file"
	}
	return "generated"
}

// VolumeStore owns the scene volume for the lifetime of the process
type VolumeStore struct {
	path   string
	volume *Volume
	source VolumeSource
}

// LoadOrGenerate reads the volume persisted at path. Any failure (missing
// file, read error, malformed document, wrong length) falls back to a freshly
// generated volume without reporting an error.
func LoadOrGenerate(path string, dims Dimensions, rng *rand.Rand) *VolumeStore {
	volume, err := LoadVolume(path, dims)
	if err == nil {
		return &VolumeStore{path: path, volume: volume, source: SourceFile}
	}

	logs.WithTag("path", path).
		WithTag("reason", err.Error()).
		Debug("volume file unavailable, generating default volume")

	return &VolumeStore{
		path:   path,
		volume: GenerateVolume(dims, rng),
		source: SourceGenerated,
	}
}

// Volume returns the owned volume
func (s *VolumeStore) Volume() *Volume {
	return s.volume
}

// Source reports whether the volume was loaded or generated
func (s *VolumeStore) Source() VolumeSource {
	return s.source
}

// Path returns the file the store tried to load
func (s *VolumeStore) Path() string {
	return s.path
}

// TextureDescriptor lends the volume data to the GPU upload
func (s *VolumeStore) TextureDescriptor() TextureDescriptor {
	dims := s.volume.Dimensions()
	return TextureDescriptor{
		Data:   s.volume.Data(),
		Width:  dims.Width,
		Height: dims.Height,
		Depth:  dims.Depth,
		Format: FormatRGBA32F,
	}
}

// LoadVolume decodes a persisted volume and checks it against dims
func LoadVolume(path string, dims Dimensions) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("opening volume file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedSuffix) {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.New("creating zstd reader failed").
				WithTag("path", path).
				Wrap(err)
		}
		defer zr.Close()
		r = zr
	}

	var file volumeFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.New("decoding volume file failed").
			WithTag("path", path).
			Wrap(err)
	}

	// the document must be the only value in the file
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); err != io.EOF {
		trailingErr := errors.New("volume file has trailing content").WithTag("path", path)
		if err != nil {
			return nil, trailingErr.Wrap(err)
		}
		return nil, trailingErr
	}

	volume, err := newVolumeFromData(dims, file.Data)
	if err != nil {
		return nil, errors.New("invalid volume file").
			WithTag("path", path).
			Wrap(err)
	}
	return volume, nil
}

// SaveVolume writes v in the persisted format, compressed when path ends in .zst
func SaveVolume(path string, v *Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New("creating volume file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, CompressedSuffix) {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return errors.New("creating zstd writer failed").
				WithTag("path", path).
				Wrap(err)
		}
		w = enc
	}

	if err := json.NewEncoder(w).Encode(volumeFile{Data: v.Data()}); err != nil {
		return errors.New("encoding volume file failed").
			WithTag("path", path).
			Wrap(err)
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return errors.New("flushing zstd stream failed").
				WithTag("path", path).
				Wrap(err)
		}
	}

	return f.Close()
}
