package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"Newsroom-Apps/internal/news"
)

type Metrics struct {
	PublishTotal    prometheus.Counter
	DeliveriesTotal prometheus.Counter
	Subscribers     prometheus.Gauge
}

// New registers the newsroom collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PublishTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsroom_publish_total",
			Help: "Total number of publish calls",
		}),
		DeliveriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsroom_deliveries_total",
			Help: "Total number of content deliveries to subscribers",
		}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsroom_subscribers",
			Help: "Current number of membership entries",
		}),
	}
}

func (m *Metrics) SubscriberAdded() {
	m.Subscribers.Inc()
}

func (m *Metrics) SubscribersRemoved(n int) {
	m.Subscribers.Sub(float64(n))
}

func (m *Metrics) Published(deliveries int) {
	m.PublishTotal.Inc()
	m.DeliveriesTotal.Add(float64(deliveries))
}

var _ news.Recorder = (*Metrics)(nil)
