package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/mvu/pkg/protocol"
)

// metrics holds the socket-level Prometheus metrics. A nil *metrics records
// nothing.
type metrics struct {
	activeSessions prometheus.Gauge
	frames         *prometheus.CounterVec
	frameBytes     *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mvu",
			Subsystem: "server",
			Name:      "active_sessions",
			Help:      "Number of connected websocket sessions",
		}),
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mvu",
			Subsystem: "server",
			Name:      "frames_total",
			Help:      "Frames by direction and type",
		}, []string{"direction", "type"}),
		frameBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mvu",
			Subsystem: "server",
			Name:      "frame_bytes_total",
			Help:      "Frame bytes by direction",
		}, []string{"direction"}),
		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mvu",
			Subsystem: "server",
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by type",
		}, []string{"type"}),
	}
}

func (m *metrics) sessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

func (m *metrics) sessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}

func (m *metrics) frameSent(ft protocol.FrameType, n int) {
	if m != nil {
		m.frames.WithLabelValues("out", ft.String()).Inc()
		m.frameBytes.WithLabelValues("out").Add(float64(n))
	}
}

func (m *metrics) frameReceived(ft protocol.FrameType, n int) {
	if m != nil {
		m.frames.WithLabelValues("in", ft.String()).Inc()
		m.frameBytes.WithLabelValues("in").Add(float64(n))
	}
}

func (m *metrics) wsError(kind string) {
	if m != nil {
		m.wsErrors.WithLabelValues(kind).Inc()
	}
}
