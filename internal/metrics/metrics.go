package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesCastTotal    prometheus.Counter
	broadcastsTotal   *prometheus.CounterVec
	droppedFrames     prometheus.Counter
	subscribers       prometheus.Gauge
	storeErrorsTotal  *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songvote",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the songvote API.",
		}, []string{"method", "path", "status"})
		votesCastTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "songvote",
			Name:      "votes_cast_total",
			Help:      "Accepted votes that changed a device's choice.",
		})
		broadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songvote",
			Name:      "broadcasts_total",
			Help:      "Events fanned out to subscribers.",
		}, []string{"event"})
		droppedFrames = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "songvote",
			Name:      "dropped_frames_total",
			Help:      "Frames dropped because a subscriber buffer was full.",
		})
		subscribers = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "songvote",
			Name:      "subscribers",
			Help:      "Currently connected broadcast subscribers.",
		})
		storeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songvote",
			Name:      "store_errors_total",
			Help:      "Durable state read or write failures.",
		}, []string{"document", "op"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVote() {
	if votesCastTotal == nil {
		return
	}
	votesCastTotal.Inc()
}

func IncBroadcast(event string) {
	if broadcastsTotal == nil {
		return
	}
	broadcastsTotal.WithLabelValues(event).Inc()
}

func IncDroppedFrame() {
	if droppedFrames == nil {
		return
	}
	droppedFrames.Inc()
}

func SetSubscribers(n int) {
	if subscribers == nil {
		return
	}
	subscribers.Set(float64(n))
}

func IncStoreError(document, op string) {
	if storeErrorsTotal == nil {
		return
	}
	storeErrorsTotal.WithLabelValues(document, op).Inc()
}
