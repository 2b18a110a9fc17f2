package classifier

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	classified *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendant",
			Name:      "emails_classified_total",
			Help:      "Emails classified, by winning category.",
		}, []string{"category"}),
	}
	if reg != nil {
		reg.MustRegister(m.classified)
	}
	return m
}

func (m *Metrics) observe(summary map[string]int) {
	if m == nil {
		return
	}
	for category, n := range summary {
		m.classified.WithLabelValues(category).Add(float64(n))
	}
}
