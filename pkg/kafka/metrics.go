package kafka

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerMsgs    *prometheus.CounterVec
	producerBytes   *prometheus.CounterVec
	producerLatency *prometheus.HistogramVec
	producerOnce    sync.Once

	consumerHandled *prometheus.CounterVec
	consumerLatency *prometheus.HistogramVec
	consumerDepth   *prometheus.GaugeVec
	consumerOnce    sync.Once
)

func initProducerMetrics() {
	producerOnce.Do(func() {
		producerMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscan_kafka_producer_messages_total",
			Help: "Messages written to Kafka",
		}, []string{"topic", "compression", "result"})
		producerBytes = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscan_kafka_producer_bytes_total",
			Help: "Payload bytes written to Kafka",
		}, []string{"topic"})
		producerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalscan_kafka_producer_write_seconds",
			Help:    "Write latency per batch",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})
	})
}

func initConsumerMetrics() {
	consumerOnce.Do(func() {
		consumerHandled = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalscan_kafka_consumer_messages_total",
			Help: "Messages handled by the consumer",
		}, []string{"topic", "result"})
		consumerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalscan_kafka_consumer_handle_seconds",
			Help:    "Handling time per message",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})
		consumerDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalscan_kafka_consumer_queue_depth",
			Help: "Messages waiting for a worker",
		}, []string{"topic"})
	})
}

func observeProduce(topic, comp string, bytes int64, count int, dur time.Duration, err error) {
	if producerMsgs == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMsgs.WithLabelValues(topic, comp, result).Add(float64(count))
	producerBytes.WithLabelValues(topic).Add(float64(bytes))
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}

func observeHandle(topic string, dur time.Duration, err error) {
	if consumerHandled == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	consumerHandled.WithLabelValues(topic, result).Inc()
	consumerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
