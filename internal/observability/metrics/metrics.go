package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "seher"

// WidgetMetrics exposes counters/histograms for widget conversations and
// lead capture.
type WidgetMetrics struct {
	modeTransitions *prometheus.CounterVec
	aiReplies       *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	crmLatency      prometheus.Histogram
	activeSessions  prometheus.Gauge
	widgetEvents    *prometheus.CounterVec
}

func NewWidgetMetrics(reg prometheus.Registerer) *WidgetMetrics {
	m := &WidgetMetrics{
		modeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "mode_transitions_total",
			Help:      "Input mode transitions by trigger",
		}, []string{"from", "to", "trigger"}),
		aiReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "ai_replies_total",
			Help:      "Assistant replies by outcome",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "CRM lead submissions by status",
		}, []string{"status"}),
		crmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "crm_latency_seconds",
			Help:      "Latency of CRM lead creation calls",
			Buckets:   prometheus.DefBuckets,
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "active_sessions",
			Help:      "Mounted widget sessions",
		}),
		widgetEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "events_total",
			Help:      "Tracked widget analytics events",
		}, []string{"type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.modeTransitions, m.aiReplies, m.submissions, m.crmLatency, m.activeSessions, m.widgetEvents)
	return m
}

func (m *WidgetMetrics) ObserveTransition(from, to, trigger string) {
	if m == nil {
		return
	}
	m.modeTransitions.WithLabelValues(from, to, trigger).Inc()
}

// ObserveAIReply records "ai", "fallback", "error" or "stale".
func (m *WidgetMetrics) ObserveAIReply(outcome string) {
	if m == nil {
		return
	}
	m.aiReplies.WithLabelValues(outcome).Inc()
}

func (m *WidgetMetrics) ObserveSubmission(status string, seconds float64) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(status).Inc()
	m.crmLatency.Observe(seconds)
}

func (m *WidgetMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *WidgetMetrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.widgetEvents.WithLabelValues(eventType).Inc()
}
