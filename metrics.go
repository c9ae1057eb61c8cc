package station

import "github.com/prometheus/client_golang/prometheus"

// Reasons for rejecting a single field of a reply line.
const (
	RejectUnknown   = "unknown"
	RejectMalformed = "malformed"
	RejectNumber    = "number"
)

// Metrics holds the Prometheus counters of a station and its decoder. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	CommandsSent   *prometheus.CounterVec // labels: command
	EmptyReplies   prometheus.Counter
	RecordsDecoded prometheus.Counter
	FieldsRejected *prometheus.CounterVec // labels: reason={unknown,malformed,number}
}

// NewMetrics creates the counters and registers them with reg. If reg is nil,
// the counters are not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_station",
			Name:      "commands_sent_total",
			Help:      "Total commands written to the station.",
		}, []string{"command"}),
		EmptyReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_station",
			Name:      "empty_replies_total",
			Help:      "Total requests that timed out without a reply.",
		}),
		RecordsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_station",
			Name:      "records_decoded_total",
			Help:      "Total reply lines decoded into records.",
		}),
		FieldsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_station",
			Name:      "fields_rejected_total",
			Help:      "Total reply fields that were skipped or invalidated.",
		}, []string{"reason"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CommandsSent,
			m.EmptyReplies,
			m.RecordsDecoded,
			m.FieldsRejected,
		)
	}

	return m
}

func (m *Metrics) commandSent(c Command) {
	if m == nil {
		return
	}

	m.CommandsSent.WithLabelValues(c.label()).Inc()
}

func (m *Metrics) emptyReply() {
	if m == nil {
		return
	}

	m.EmptyReplies.Inc()
}

func (m *Metrics) recordDecoded() {
	if m == nil {
		return
	}

	m.RecordsDecoded.Inc()
}

func (m *Metrics) fieldRejected(reason string) {
	if m == nil {
		return
	}

	m.FieldsRejected.WithLabelValues(reason).Inc()
}
