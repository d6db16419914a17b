package listener

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nowplaying",
		Subsystem: "listener",
		Name:      "connections_active",
		Help:      "Source connections currently streaming.",
	})

	metricConnections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nowplaying",
		Subsystem: "listener",
		Name:      "connections_total",
		Help:      "Source connections by outcome.",
	}, []string{"result"})
)

const (
	resultClosed      = "closed"
	resultFormatError = "format_error"
	resultError       = "error"
	resultRejected    = "rejected"
)
