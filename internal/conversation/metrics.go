package conversation

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	turns *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendant",
			Name:      "chat_turns_total",
			Help:      "Chat turns processed, by response action.",
		}, []string{"action"}),
	}
	if reg != nil {
		reg.MustRegister(m.turns)
	}
	return m
}

func (m *Metrics) observe(action string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(action).Inc()
}
