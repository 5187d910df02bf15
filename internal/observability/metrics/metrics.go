package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for conversation turns.
type ChatMetrics struct {
	turnsTotal    *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medbook",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"intent", "state"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medbook",
			Subsystem: "chat",
			Name:      "bookings_total",
			Help:      "Total booking save attempts",
		}, []string{"status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medbook",
			Subsystem: "chat",
			Name:      "llm_latency_seconds",
			Help:      "Latency of LLM completions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.bookingsTotal, m.llmLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(intent, state string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, state).Inc()
}

func (m *ChatMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ChatMetrics) ObserveLLMLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider).Observe(seconds)
}
