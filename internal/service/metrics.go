package service

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Purchases   *prometheus.CounterVec
	Refunds     *prometheus.CounterVec
	Completions *prometheus.CounterVec
	LiveTasks   prometheus.Gauge
	Deposits    *prometheus.CounterVec
}

// NewMetrics registers the coordinator collectors on registerer. A nil
// registerer keeps them unregistered, which tests rely on.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicksms",
			Name:      "purchases_total",
			Help:      "Purchase attempts by result.",
		}, []string{"result"}),
		Refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicksms",
			Name:      "refunds_total",
			Help:      "Refunded orders by reason.",
		}, []string{"reason"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicksms",
			Name:      "completions_total",
			Help:      "Completed orders by trigger.",
		}, []string{"trigger"}),
		LiveTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicksms",
			Name:      "live_tasks",
			Help:      "Orders currently polled.",
		}),
		Deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicksms",
			Name:      "deposits_total",
			Help:      "Recorded deposits by source.",
		}, []string{"source"}),
	}

	if registerer != nil {
		registerer.MustRegister(metrics.Purchases, metrics.Refunds, metrics.Completions, metrics.LiveTasks, metrics.Deposits)
	}
	return metrics
}
