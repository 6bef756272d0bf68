package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the playback coordinator.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        prometheus.Counter
	uploadsTotal         prometheus.Counter
	uploadsRejectedTotal prometheus.Counter
	sessionsEndedTotal   prometheus.Counter
	activeSession        prometheus.Gauge
	viewers              prometheus.Gauge
	errorsTotal          prometheus.Counter
}

// New creates and registers Prometheus metrics for the coordinator.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sharedvideo_requests_total",
		Help: "Total number of HTTP requests received",
	})
	uploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sharedvideo_uploads_total",
		Help: "Total number of videos successfully uploaded and started",
	})
	uploadsRejectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sharedvideo_uploads_rejected_total",
		Help: "Total number of uploads rejected (validation, probe, or conflict)",
	})
	sessionsEndedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sharedvideo_sessions_ended_total",
		Help: "Total number of playback sessions ended explicitly",
	})
	activeSession := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sharedvideo_active_session",
		Help: "1 while a video is playing, 0 while idle",
	})
	viewers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sharedvideo_viewers",
		Help: "Number of viewers seen within the presence window",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sharedvideo_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		uploadsTotal,
		uploadsRejectedTotal,
		sessionsEndedTotal,
		activeSession,
		viewers,
		errorsTotal,
	)

	return &Metrics{
		registry:             registry,
		requestsTotal:        requestsTotal,
		uploadsTotal:         uploadsTotal,
		uploadsRejectedTotal: uploadsRejectedTotal,
		sessionsEndedTotal:   sessionsEndedTotal,
		activeSession:        activeSession,
		viewers:              viewers,
		errorsTotal:          errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncUploads increments the successful upload counter.
func (m *Metrics) IncUploads() {
	m.uploadsTotal.Inc()
}

// IncUploadsRejected increments the rejected upload counter.
func (m *Metrics) IncUploadsRejected() {
	m.uploadsRejectedTotal.Inc()
}

// IncSessionsEnded increments the sessions ended counter.
func (m *Metrics) IncSessionsEnded() {
	m.sessionsEndedTotal.Inc()
}

// SetActiveSession sets the active session gauge to 1 (playing) or 0 (idle).
func (m *Metrics) SetActiveSession(playing bool) {
	if playing {
		m.activeSession.Set(1)
	} else {
		m.activeSession.Set(0)
	}
}

// SetViewers sets the viewers gauge.
func (m *Metrics) SetViewers(n int) {
	m.viewers.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values
// (e.g. active session and viewer count).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
