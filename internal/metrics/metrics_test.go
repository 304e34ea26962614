package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered sums every sample of the named family.
func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		var total float64
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordAdmission(true)
	m.RecordAdmission(true)
	m.RecordAdmission(false)
	m.RecordExtraction("success", 1.5)
	m.IncrementProcesses()
	m.IncrementProcesses()
	m.DecrementProcesses()
	m.IncrementDownloads("failed")
	m.AddDownloadBytes(2048)
	m.AddDownloadBytes(-1)
	m.SetRateLimitKeys(3)
	m.IncrementWorkspaces()

	assert.Equal(t, 2.0, gathered(t, reg, "downfb_requests_admitted_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "downfb_requests_rejected_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "downfb_extractions_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "downfb_extraction_duration_seconds"))
	assert.Equal(t, 1.0, gathered(t, reg, "downfb_ytdlp_processes_active"))
	assert.Equal(t, 1.0, gathered(t, reg, "downfb_downloads_total"))
	assert.Equal(t, 2048.0, gathered(t, reg, "downfb_download_bytes_total"))
	assert.Equal(t, 3.0, gathered(t, reg, "downfb_ratelimit_keys"))
	assert.Equal(t, 1.0, gathered(t, reg, "downfb_scratch_workspaces_active"))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAdmission(true)
		m.SetRateLimitKeys(1)
		m.RecordExtraction("failed", 0.1)
		m.IncrementProcesses()
		m.DecrementProcesses()
		m.IncrementDownloads("success")
		m.AddDownloadBytes(10)
		m.IncrementWorkspaces()
		m.DecrementWorkspaces()
	})
}
