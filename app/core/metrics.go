package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avatarops-ai/avatarops/pkg/metrics"
)

type Metrics struct {
	apiResponseTime   *prometheus.HistogramVec
	summarizeTime     *prometheus.HistogramVec
	summariesTotal    *prometheus.CounterVec
	fragmentsTotal    *prometheus.CounterVec
	messagesFinalized *prometheus.CounterVec
	liveSessions      prometheus.Gauge
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.NewRegistry())

	return &Metrics{
		apiResponseTime:   metrics.NewHistogramVec("api_response_time", []string{"api"}),
		summarizeTime:     metrics.NewHistogramVec("conversation_summarize_time", []string{"operation"}),
		summariesTotal:    metrics.NewCounterVec("conversation_summaries_total", []string{"operation"}),
		fragmentsTotal:    metrics.NewCounterVec("transcript_fragments_total", []string{"channel"}),
		messagesFinalized: metrics.NewCounterVec("transcript_messages_total", []string{"channel"}),
		liveSessions:      metrics.NewGaugeVec("live_sessions", nil).WithLabelValues(),
	}
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) SummarizeTimer(operation string) *prometheus.Timer {
	m.summariesTotal.WithLabelValues(operation).Inc()
	return prometheus.NewTimer(m.summarizeTime.WithLabelValues(operation))
}

// The live.Metrics contract.

func (m *Metrics) SessionStarted() {
	m.liveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	m.liveSessions.Dec()
}

func (m *Metrics) FragmentReceived(channel string) {
	m.fragmentsTotal.WithLabelValues(channel).Inc()
}

func (m *Metrics) MessageFinalized(channel string) {
	m.messagesFinalized.WithLabelValues(channel).Inc()
}
