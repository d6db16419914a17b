package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "nowplaying"

var (
	metricPackets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "packets_total",
		Help:      "Logical Ogg packets read from all streams.",
	})

	metricCommentHeaders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "comment_headers_total",
		Help:      "Vorbis comment header packets seen.",
	})

	metricDecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "comment_decode_failures_total",
		Help:      "Comment headers discarded because they were truncated.",
	})

	metricUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "track_updates_total",
		Help:      "Track updates dispatched to sinks.",
	})

	metricDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "track_updates_discarded_total",
		Help:      "Decoded comments dropped for carrying neither artist nor title.",
	})

	metricSinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "sink_errors_total",
		Help:      "Failed sink updates.",
	}, []string{"sink"})

	metricSinkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "sink_update_duration_seconds",
		Help:      "Time spent in a sink update.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"sink"})
)
