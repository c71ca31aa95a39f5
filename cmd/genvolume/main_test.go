package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"voxelviewer/core"
)

func testConfig(t *testing.T) config {
	return config{
		Output: filepath.Join(t.TempDir(), "volume.json"+core.CompressedSuffix),
		Width:  3,
		Height: 2,
		Depth:  4,
		Seed:   11,
	}
}

func TestGenerateWritesLoadableVolume(t *testing.T) {
	conf := testConfig(t)

	v, err := generate(context.Background(), conf)
	require.NoError(t, err)

	loaded, err := core.LoadVolume(conf.Output, v.Dimensions())
	require.NoError(t, err)
	require.Equal(t, v.Data(), loaded.Data())
}

func TestGenerateSkipsWriteWhenCancelled(t *testing.T) {
	conf := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generate(ctx, conf)
	require.Error(t, err)

	_, err = os.Stat(conf.Output)
	require.True(t, os.IsNotExist(err))
}

func TestGenerateRejectsEmptyDimensions(t *testing.T) {
	conf := testConfig(t)
	conf.Depth = 0

	_, err := generate(context.Background(), conf)
	require.Error(t, err)
}
