package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"

	"voxelviewer/core"
)

var _ = reflect.TypeOf(config{})

type config struct {
	Output   string `cli:"" env:"GENVOLUME_OUTPUT"    help:"Destination file; a .zst suffix compresses it."`
	Width    int    `cli:"" env:"GENVOLUME_WIDTH"     help:"Volume width in voxels."`
	Height   int    `cli:"" env:"GENVOLUME_HEIGHT"    help:"Volume height in voxels."`
	Depth    int    `cli:"" env:"GENVOLUME_DEPTH"     help:"Volume depth in voxels."`
	Seed     int64  `cli:"" env:"GENVOLUME_SEED"      help:"Random seed, 0 picks one from the clock."`
	LogLevel string `cli:"" env:"GENVOLUME_LOG_LEVEL" help:"Log level (debug|info|warning|error)."`
	Help     bool   `cli:"" env:"-"                   help:"Show help."`
}

func main() {
	conf := config{
		Output:   "data.json",
		Width:    core.DefaultDimensions.Width,
		Height:   core.DefaultDimensions.Height,
		Depth:    core.DefaultDimensions.Depth,
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Writes a random voxel volume the viewer can load.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	v, err := generate(ctx, conf)
	if err != nil {
		logs.Fatal(err)
	}

	logs.WithTag("path", conf.Output).
		WithTag("digest", fmt.Sprintf("%016x", v.Digest())).
		Info("volume written")
}

// generate builds the volume described by conf and writes it to conf.Output.
// Nothing is written once ctx is done.
func generate(ctx context.Context, conf config) (*core.Volume, error) {
	dims := core.Dimensions{Width: conf.Width, Height: conf.Height, Depth: conf.Depth}
	if dims.Width <= 0 || dims.Height <= 0 || dims.Depth <= 0 {
		return nil, errors.New("volume dimensions must be positive").
			WithTag("width", dims.Width).
			WithTag("height", dims.Height).
			WithTag("depth", dims.Depth)
	}

	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logs.WithTag("seed", seed).Debug("generating volume")

	v := core.GenerateVolume(dims, rand.New(rand.NewSource(seed)))

	// large volumes take a while to generate; leave any existing file alone if interrupted
	if err := ctx.Err(); err != nil {
		return nil, errors.New("interrupted before saving volume").
			WithTag("path", conf.Output).
			Wrap(err)
	}

	if err := core.SaveVolume(conf.Output, v); err != nil {
		return nil, errors.New("saving volume failed").
			WithTag("path", conf.Output).
			Wrap(err)
	}
	return v, nil
}
