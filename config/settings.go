package config

import (
	"reflect"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"voxelviewer/core"
	"voxelviewer/simulation"
)

// Keeps field names intact under obfuscating builds so cli options stay readable.
var _ = reflect.TypeOf(Settings{})

// Settings holds everything the viewer reads from flags and environment
type Settings struct {
	Window      WindowSettings      `cli:",hidden" env:"-"                          help:"Window configuration."`
	Volume      VolumeSettings      `cli:",hidden" env:"-"                          help:"Volume configuration."`
	Camera      CameraSettings      `cli:",hidden" env:"-"                          help:"Camera configuration."`
	Diagnostics DiagnosticsSettings `cli:",hidden" env:"-"                          help:"Diagnostics server configuration."`
	ShaderDir   string              `cli:""        env:"VOXELVIEW_SHADER_DIR"       help:"Directory holding vertex.glsl and fragment.glsl."`
	LogLevel    string              `cli:""        env:"VOXELVIEW_LOG_LEVEL"        help:"Log level (debug|info|warning|error)."`
	LogIndent   bool                `cli:""        env:"VOXELVIEW_LOG_INDENT"       help:"Indent logs."`
	Version     bool                `cli:""        env:"-"                          help:"Show version."`
	Help        bool                `cli:""        env:"-"                          help:"Show help."`
}

// WindowSettings configures the window and its swap interval
type WindowSettings struct {
	Width        int    `cli:""        env:"VOXELVIEW_WINDOW_WIDTH"     help:"Window width in pixels."`
	Height       int    `cli:""        env:"VOXELVIEW_WINDOW_HEIGHT"    help:"Window height in pixels."`
	Title        string `cli:",hidden" env:"VOXELVIEW_WINDOW_TITLE"     help:"Initial window title."`
	SwapInterval int    `cli:",hidden" env:"VOXELVIEW_SWAP_INTERVAL"    help:"Buffer swap interval, 0 disables vsync."`
}

// VolumeSettings locates the volume file and sizes the generated fallback
type VolumeSettings struct {
	Path   string `cli:""        env:"VOXELVIEW_VOLUME_PATH"   help:"Volume file; .zst selects zstd compression."`
	Width  int    `cli:",hidden" env:"VOXELVIEW_VOLUME_WIDTH"  help:"Volume width in voxels."`
	Height int    `cli:",hidden" env:"VOXELVIEW_VOLUME_HEIGHT" help:"Volume height in voxels."`
	Depth  int    `cli:",hidden" env:"VOXELVIEW_VOLUME_DEPTH"  help:"Volume depth in voxels."`
	Seed   int64  `cli:""        env:"VOXELVIEW_VOLUME_SEED"   help:"Seed for the generated volume, 0 picks one from the clock."`
}

// CameraSettings tunes movement and mouse look
type CameraSettings struct {
	Speed            float64 `cli:",hidden" env:"VOXELVIEW_CAMERA_SPEED"       help:"Movement divisor applied every frame."`
	MouseSensitivity float64 `cli:",hidden" env:"VOXELVIEW_MOUSE_SENSITIVITY" help:"Cursor offset divisor for yaw and pitch."`
}

// DiagnosticsSettings configures the optional diagnostics server
type DiagnosticsSettings struct {
	Addr         string        `cli:""        env:"VOXELVIEW_DIAGNOSTICS_ADDR"          help:"Listening address for /metrics, /stats and /health; empty disables it."`
	PushInterval time.Duration `cli:",hidden" env:"VOXELVIEW_DIAGNOSTICS_PUSH_INTERVAL" help:"Interval between /stats websocket pushes."`
}

// Default returns the reference configuration
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Width:        1280,
			Height:       720,
			Title:        "raymarching voxels",
			SwapInterval: 1,
		},
		Volume: VolumeSettings{
			Path:   "data.json",
			Width:  core.DefaultDimensions.Width,
			Height: core.DefaultDimensions.Height,
			Depth:  core.DefaultDimensions.Depth,
		},
		Camera: CameraSettings{
			Speed:            simulation.DefaultCameraSpeed,
			MouseSensitivity: simulation.DefaultMouseSensitivity,
		},
		Diagnostics: DiagnosticsSettings{
			PushInterval: 100 * time.Millisecond,
		},
		ShaderDir: "programs",
		LogLevel:  logs.InfoLevel.String(),
	}
}

// Dimensions returns the configured volume extent
func (s Settings) Dimensions() core.Dimensions {
	return core.Dimensions{
		Width:  s.Volume.Width,
		Height: s.Volume.Height,
		Depth:  s.Volume.Depth,
	}
}

// Validate rejects settings the viewer cannot start with
func (s Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return errors.New("window size must be positive").
			WithTag("width", s.Window.Width).
			WithTag("height", s.Window.Height)
	}

	dims := s.Dimensions()
	if dims.Width <= 0 || dims.Height <= 0 || dims.Depth <= 0 {
		return errors.New("volume dimensions must be positive").
			WithTag("width", dims.Width).
			WithTag("height", dims.Height).
			WithTag("depth", dims.Depth)
	}

	if s.Volume.Path == "" {
		return errors.New("volume path is empty")
	}

	if s.ShaderDir == "" {
		return errors.New("shader directory is empty")
	}

	if s.Camera.Speed <= 0 {
		return errors.New("camera speed must be positive").
			WithTag("speed", s.Camera.Speed)
	}

	if s.Camera.MouseSensitivity <= 0 {
		return errors.New("mouse sensitivity must be positive").
			WithTag("mouse_sensitivity", s.Camera.MouseSensitivity)
	}

	if s.Diagnostics.Addr != "" && s.Diagnostics.PushInterval <= 0 {
		return errors.New("diagnostics push interval must be positive").
			WithTag("push_interval", s.Diagnostics.PushInterval)
	}

	return nil
}
