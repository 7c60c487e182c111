package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry encapsulates all metrics and provides a clean interface
// for recording metrics without global state
type Registry struct {
	registry *prometheus.Registry

	// Producer metrics
	publishTotal     *prometheus.CounterVec
	publishDuration  *prometheus.HistogramVec
	publishBatchSize *prometheus.HistogramVec

	// Consumer metrics
	pullTotal          *prometheus.CounterVec
	pullDuration       *prometheus.HistogramVec
	messagesAcked      *prometheus.CounterVec
	ackTotal           *prometheus.CounterVec
	messagesProcessed  *prometheus.CounterVec
	pullCyclesInFlight prometheus.Gauge

	// Remote service metrics
	remoteOperationTotal    *prometheus.CounterVec
	remoteOperationDuration *prometheus.HistogramVec

	// System health metrics
	systemInfo *prometheus.GaugeVec
	startTime  prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()

	r := &Registry{
		registry: registry,

		// Producer metrics
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubcli_producer_publish_total",
				Help: "Total number of publish operations",
			},
			[]string{"topic", "status"}, // status: success, error
		),

		publishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubcli_producer_publish_duration_seconds",
				Help:    "Time spent publishing batches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),

		publishBatchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubcli_producer_batch_size",
				Help:    "Number of events in published batches",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"topic"},
		),

		// Consumer metrics
		pullTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubcli_consumer_pull_total",
				Help: "Total number of pull cycles",
			},
			[]string{"subscription", "status"}, // status: success, error, empty
		),

		pullDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "pubcli_consumer_pull_duration_seconds",
				Help: "Time spent in a pull cycle, long poll included",
				// long polls can hold the request open for tens of seconds
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 90},
			},
			[]string{"subscription"},
		),

		messagesAcked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubcli_consumer_messages_acked_total",
				Help: "Total number of messages acknowledged",
			},
			[]string{"subscription"},
		),

		ackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubcli_consumer_ack_total",
				Help: "Total number of acknowledgment requests",
			},
			[]string{"subscription", "status"}, // status: success, error
		),

		messagesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubcli_consumer_messages_processed_total",
				Help: "Total number of messages handed to the message handler",
			},
			[]string{"status"}, // status: success, error
		),

		pullCyclesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pubcli_consumer_pull_in_flight",
				Help: "Number of pull cycles currently running",
			},
		),

		// Remote service metrics
		remoteOperationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubcli_remote_operation_total",
				Help: "Total number of remote Pub/Sub calls",
			},
			[]string{"operation", "status"}, // operation: pull, acknowledge, publish, create_topic, etc.
		),

		remoteOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pubcli_remote_operation_duration_seconds",
				Help:    "Time spent on remote Pub/Sub calls",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 30, 90},
			},
			[]string{"operation"},
		),

		// System health metrics
		systemInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pubcli_system_info",
				Help: "System information (value is always 1, labels contain info)",
			},
			[]string{"version", "build_time"},
		),

		startTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pubcli_start_time_seconds",
				Help: "Unix timestamp when the application started",
			},
		),
	}

	// add default Go metrics (memory, GC, goroutines, etc.)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Register application metrics
	registry.MustRegister(
		r.publishTotal,
		r.publishDuration,
		r.publishBatchSize,
		r.pullTotal,
		r.pullDuration,
		r.messagesAcked,
		r.ackTotal,
		r.messagesProcessed,
		r.pullCyclesInFlight,
		r.remoteOperationTotal,
		r.remoteOperationDuration,
		r.systemInfo,
		r.startTime,
	)

	// Set start time
	r.startTime.SetToCurrentTime()

	return r
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          r.registry,
	})
}

// RecordProducerPublish records a producer publish operation
func (r *Registry) RecordProducerPublish(topic string, batchSize int, duration time.Duration, err error) {
	r.publishTotal.WithLabelValues(topic, status(err)).Inc()
	r.publishDuration.WithLabelValues(topic).Observe(duration.Seconds())
	if err == nil {
		r.publishBatchSize.WithLabelValues(topic).Observe(float64(batchSize))
	}
}

// RecordConsumerPull records a completed pull cycle
func (r *Registry) RecordConsumerPull(subscription string, acked int, duration time.Duration, err error) {
	s := status(err)
	if err == nil && acked == 0 {
		s = "empty"
	}

	r.pullTotal.WithLabelValues(subscription, s).Inc()
	r.pullDuration.WithLabelValues(subscription).Observe(duration.Seconds())
	if acked > 0 {
		r.messagesAcked.WithLabelValues(subscription).Add(float64(acked))
	}
}

// PullStarted marks the start of a pull cycle. The returned func marks its end.
func (r *Registry) PullStarted() func() {
	r.pullCyclesInFlight.Inc()
	return r.pullCyclesInFlight.Dec
}

// RecordAck records an acknowledgment request
func (r *Registry) RecordAck(subscription string, err error) {
	r.ackTotal.WithLabelValues(subscription, status(err)).Inc()
}

// RecordMessageProcessed records the outcome of handling one message
func (r *Registry) RecordMessageProcessed(err error) {
	r.messagesProcessed.WithLabelValues(status(err)).Inc()
}

// RecordRemoteOperation records a remote service call
func (r *Registry) RecordRemoteOperation(operation string, duration time.Duration, err error) {
	r.remoteOperationTotal.WithLabelValues(operation, status(err)).Inc()
	r.remoteOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetSystemInfo sets system information metrics
func (r *Registry) SetSystemInfo(version, buildTime string) {
	r.systemInfo.WithLabelValues(version, buildTime).Set(1)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
