package diagnostics

import (
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"

	"voxelviewer/simulation"
)

// Server exposes read-only frame diagnostics: Prometheus metrics on /metrics,
// a websocket feed of the latest FrameStats on /stats and /health.
// ObserveFrame is called from the render thread; everything else runs on
// HTTP goroutines and only sees copies of the stats.
type Server struct {
	pushInterval time.Duration
	registry     *prometheus.Registry
	upgrader     websocket.Upgrader

	mu       sync.RWMutex
	latest   simulation.FrameStats
	hasStats bool

	fps    prometheus.Gauge
	frames prometheus.Counter
	camPos *prometheus.GaugeVec
	yaw    prometheus.Gauge
	pitch  prometheus.Gauge
}

// NewServer creates a diagnostics server pushing stats every pushInterval
func NewServer(pushInterval time.Duration) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Server{
		pushInterval: pushInterval,
		registry:     registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // allow all origins
			},
		},
		fps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voxelviewer_fps",
			Help: "Frames per second, refreshed once per second.",
		}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxelviewer_frames_total",
			Help: "Frames rendered since start.",
		}),
		camPos: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voxelviewer_camera_position",
			Help: "Camera position by axis.",
		}, []string{"axis"}),
		yaw: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voxelviewer_camera_yaw_radians",
			Help: "Accumulated camera yaw.",
		}),
		pitch: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voxelviewer_camera_pitch_radians",
			Help: "Accumulated camera pitch.",
		}),
	}
}

// ObserveFrame records the latest frame snapshot. It never blocks on clients.
func (s *Server) ObserveFrame(stats simulation.FrameStats) {
	s.mu.Lock()
	s.latest = stats
	s.hasStats = true
	s.mu.Unlock()

	s.fps.Set(stats.FPS)
	s.frames.Inc()
	s.camPos.WithLabelValues("x").Set(float64(stats.CamPos[0]))
	s.camPos.WithLabelValues("y").Set(float64(stats.CamPos[1]))
	s.camPos.WithLabelValues("z").Set(float64(stats.CamPos[2]))
	s.yaw.Set(float64(stats.Yaw))
	s.pitch.Set(float64(stats.Pitch))
}

// Latest returns the most recent snapshot, if any frame was observed
func (s *Server) Latest() (simulation.FrameStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasStats
}

// Handler returns the diagnostics routes
func (s *Server) Handler() http.Handler {
	var mux http.ServeMux
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", handleHealthCheck)
	mux.HandleFunc("/stats", s.handleStats)
	return &mux
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logs.WithTag("remote_addr", r.RemoteAddr).
			Debug(errors.New("stats websocket upgrade failed").Wrap(err))
		return
	}
	defer conn.Close()

	logs.WithTag("remote_addr", r.RemoteAddr).Debug("stats client connected")

	// Drain client frames so close messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	var lastFrame uint64
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		stats, ok := s.Latest()
		if !ok || stats.Frame == lastFrame {
			continue
		}

		msg, err := json.Marshal(stats)
		if err != nil {
			logs.Warn(errors.New("encoding frame stats failed").Wrap(err))
			return
		}

		conn.SetWriteDeadline(time.Now().Add(s.pushInterval * 10))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logs.WithTag("remote_addr", r.RemoteAddr).
				Debug(errors.New("stats push failed").Wrap(err))
			return
		}
		lastFrame = stats.Frame
	}
}
