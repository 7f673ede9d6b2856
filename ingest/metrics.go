package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "medisys_ingest"

type Metrics struct {
	Files                *prometheus.CounterVec
	Reports              *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	EmailFailures        prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_total",
			Help:      "Uploaded files by processing status",
		}, []string{"status"}),
		Reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reports_total",
			Help:      "Normalized reports by persistence result",
		}, []string{"result"}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_failures_total",
			Help:      "Reports that were persisted but could not be enqueued",
		}),
		EmailFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "email_failures_total",
			Help:      "Reports that were persisted but could not be emailed",
		}),
	}
}
