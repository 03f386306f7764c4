package repository

import (
	"context"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	pkgkafka "SignalScan/pkg/kafka"
)

// Topics names the Kafka topics of the event stream.
type Topics struct {
	Signals     string
	Alerts      string
	Validations string
}

// KafkaSink publishes signals, alerts and observations as JSON keyed by
// symbol. Snapshots are not streamed.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topics   Topics
}

var _ drepo.SignalSink = (*KafkaSink)(nil)

func NewKafkaSink(producer *pkgkafka.Producer, topics Topics) *KafkaSink {
	return &KafkaSink{producer: producer, topics: topics}
}

func (k *KafkaSink) PublishSignals(ctx context.Context, signals []models.SignalRecord) error {
	msgs := make([]pkgkafka.Message, len(signals))
	for i, s := range signals {
		msgs[i] = pkgkafka.Message{Key: s.Symbol, Value: s}
	}
	return k.producer.PublishBatch(ctx, k.topics.Signals, msgs)
}

func (k *KafkaSink) PublishAlerts(ctx context.Context, alerts []models.PumpDumpAlert) error {
	msgs := make([]pkgkafka.Message, len(alerts))
	for i, a := range alerts {
		msgs[i] = pkgkafka.Message{Key: a.Symbol, Value: a}
	}
	return k.producer.PublishBatch(ctx, k.topics.Alerts, msgs)
}

func (k *KafkaSink) PublishSnapshot(context.Context, *models.Snapshot) error {
	return nil
}

func (k *KafkaSink) PublishObservations(ctx context.Context, obs []models.Observation) error {
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{Key: o.Symbol, Value: o}
	}
	return k.producer.PublishBatch(ctx, k.topics.Validations, msgs)
}
