package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the booking chat.
type ConversationMetrics struct {
	turnsTotal      *prometheus.CounterVec
	replyFallbacks  *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	mirrorFailures  prometheus.Counter
	fieldsExtracted *prometheus.CounterVec
	turnLatency     *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vipride",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns processed, by classified mode",
		}, []string{"mode"}),
		replyFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vipride",
			Subsystem: "chat",
			Name:      "reply_fallbacks_total",
			Help:      "Replies served from templates instead of the generator",
		}, []string{"reason"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vipride",
			Subsystem: "chat",
			Name:      "booking_persist_total",
			Help:      "Booking insert attempts from completed chats",
		}, []string{"status"}),
		mirrorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vipride",
			Subsystem: "chat",
			Name:      "snapshot_mirror_failures_total",
			Help:      "Conversation snapshot upserts that failed",
		}),
		fieldsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vipride",
			Subsystem: "chat",
			Name:      "fields_extracted_total",
			Help:      "Booking fields detected in customer messages",
		}, []string{"field"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vipride",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end latency of a chat turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.replyFallbacks, m.bookingsTotal, m.mirrorFailures, m.fieldsExtracted, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(mode).Inc()
	m.turnLatency.WithLabelValues(mode).Observe(seconds)
}

func (m *ConversationMetrics) ObserveReplyFallback(reason string) {
	if m == nil {
		return
	}
	m.replyFallbacks.WithLabelValues(reason).Inc()
}

// ObserveBookingPersist records an insert attempt; status is "ok", "existing" or "error".
func (m *ConversationMetrics) ObserveBookingPersist(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ConversationMetrics) ObserveMirrorFailure() {
	if m == nil {
		return
	}
	m.mirrorFailures.Inc()
}

func (m *ConversationMetrics) ObserveFieldsExtracted(fields []string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.fieldsExtracted.WithLabelValues(f).Inc()
	}
}
