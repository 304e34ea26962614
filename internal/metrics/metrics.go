package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsAdmitted   prometheus.Counter
	requestsRejected   prometheus.Counter
	rateLimitKeys      prometheus.Gauge
	extractionsTotal   *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	processesActive    prometheus.Gauge
	downloadsTotal     *prometheus.CounterVec
	downloadBytesTotal prometheus.Counter
	workspacesActive   prometheus.Gauge
}

// New creates a metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsAdmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "downfb_requests_admitted_total",
				Help: "Total number of requests admitted by the rate limiter",
			},
		),
		requestsRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "downfb_requests_rejected_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
		rateLimitKeys: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "downfb_ratelimit_keys",
				Help: "Number of client keys currently tracked by the rate limiter",
			},
		),
		extractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "downfb_extractions_total",
				Help: "Total number of metadata extractions by result",
			},
			[]string{"result"},
		),
		extractionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "downfb_extraction_duration_seconds",
				Help:    "Duration of metadata extractions in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s to ~1 minute
			},
		),
		processesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "downfb_ytdlp_processes_active",
				Help: "Number of currently running yt-dlp processes",
			},
		),
		downloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "downfb_downloads_total",
				Help: "Total number of materialized downloads by result",
			},
			[]string{"result"},
		),
		downloadBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "downfb_download_bytes_total",
				Help: "Total bytes streamed to clients",
			},
		),
		workspacesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "downfb_scratch_workspaces_active",
				Help: "Number of scratch workspaces currently on disk",
			},
		),
	}
}

// RecordAdmission counts one rate limiter decision
func (m *Metrics) RecordAdmission(allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.requestsAdmitted.Inc()
		return
	}
	m.requestsRejected.Inc()
}

// SetRateLimitKeys sets the tracked keys gauge
func (m *Metrics) SetRateLimitKeys(count int) {
	if m == nil {
		return
	}
	m.rateLimitKeys.Set(float64(count))
}

// RecordExtraction records the outcome and duration of one extraction
func (m *Metrics) RecordExtraction(result string, seconds float64) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(result).Inc()
	m.extractionDuration.Observe(seconds)
}

// IncrementProcesses increments the running processes gauge
func (m *Metrics) IncrementProcesses() {
	if m == nil {
		return
	}
	m.processesActive.Inc()
}

// DecrementProcesses decrements the running processes gauge
func (m *Metrics) DecrementProcesses() {
	if m == nil {
		return
	}
	m.processesActive.Dec()
}

// IncrementDownloads increments the downloads counter
func (m *Metrics) IncrementDownloads(result string) {
	if m == nil {
		return
	}
	m.downloadsTotal.WithLabelValues(result).Inc()
}

// AddDownloadBytes adds bytes to the streamed total
func (m *Metrics) AddDownloadBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.downloadBytesTotal.Add(float64(n))
}

// IncrementWorkspaces increments the scratch workspaces gauge
func (m *Metrics) IncrementWorkspaces() {
	if m == nil {
		return
	}
	m.workspacesActive.Inc()
}

// DecrementWorkspaces decrements the scratch workspaces gauge
func (m *Metrics) DecrementWorkspaces() {
	if m == nil {
		return
	}
	m.workspacesActive.Dec()
}
