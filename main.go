package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/segmentio/encoding/json"

	"voxelviewer/config"
	"voxelviewer/core"
	"voxelviewer/diagnostics"
	"voxelviewer/rendering/opengl"
	"voxelviewer/rendering/opengl/shaders"
	"voxelviewer/simulation"
)

// The viewer version number. Set at build.
var version = "v0.1.0"

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	conf := config.Default()

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Opens a window and raymarches a voxel volume.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := conf.Validate(); err != nil {
		logs.Fatal(errors.New("invalid configuration").Wrap(err))
	}

	seed := conf.Volume.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	dims := conf.Dimensions()
	store := core.LoadOrGenerate(conf.Volume.Path, dims, rand.New(rand.NewSource(seed)))
	logs.WithTag("path", store.Path()).
		WithTag("source", store.Source().String()).
		WithTag("digest", fmt.Sprintf("%016x", store.Volume().Digest())).
		WithTag("width", dims.Width).
		WithTag("height", dims.Height).
		WithTag("depth", dims.Depth).
		Info("volume ready")

	src, err := shaders.ReadSources(conf.ShaderDir)
	if err != nil {
		logs.Fatal(err)
	}

	renderer, err := opengl.NewVoxelRenderer(opengl.Options{
		Width:        conf.Window.Width,
		Height:       conf.Window.Height,
		Title:        conf.Window.Title,
		SwapInterval: conf.Window.SwapInterval,
		Shaders:      src,
	})
	if err != nil {
		logs.Fatal(errors.New("creating renderer failed").Wrap(err))
	}
	defer renderer.Terminate()

	texture, err := renderer.UploadVolume(store.TextureDescriptor())
	if err != nil {
		logs.Fatal(err)
	}

	fbWidth, fbHeight := renderer.FramebufferSize()
	camera := core.NewCamera(mgl32.Vec3{0, float32(dims.Height) + 3, 0})

	opts := simulation.Options{
		Resolution:       mgl32.Vec2{float32(fbWidth), float32(fbHeight)},
		CameraSpeed:      float32(conf.Camera.Speed),
		MouseSensitivity: float32(conf.Camera.MouseSensitivity),
		Texture:          texture,
		Renderer:         renderer,
	}

	if conf.Diagnostics.Addr != "" {
		ln, err := diagnostics.Listen(conf.Diagnostics.Addr)
		if err != nil {
			logs.Fatal(err)
		}

		diag := diagnostics.NewServer(conf.Diagnostics.PushInterval)
		opts.Observer = diag

		go func() {
			if err := diag.Serve(ctx, ln); err != nil {
				logs.Warn(err)
			}
		}()
	}

	fc := simulation.NewFrameController(camera, core.NewFrameClock(), opts)
	renderer.Bind(fc)

	logs.WithTag("width", conf.Window.Width).
		WithTag("height", conf.Window.Height).
		Info("starting render loop")

	for !renderer.ShouldClose() && ctx.Err() == nil {
		renderer.PollEvents()
		fc.Frame()
	}

	logs.WithTag("frames", fc.Frames()).Info("shutting down")
}
