package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	pkgkafka "SignalScan/pkg/kafka"
)

// ArchiveEvent selects which payload a KafkaArchiveHandler decodes.
type ArchiveEvent string

const (
	ArchiveSignals      ArchiveEvent = "signals"
	ArchiveAlerts       ArchiveEvent = "alerts"
	ArchiveObservations ArchiveEvent = "validations"
)

// KafkaArchiveHandler consumes published events and appends them to the
// archive.
type KafkaArchiveHandler struct {
	topic   string
	event   ArchiveEvent
	archive drepo.Archive
	metrics drepo.Metrics
}

func NewKafkaArchiveHandler(topic string, event ArchiveEvent, archive drepo.Archive, metrics drepo.Metrics) *KafkaArchiveHandler {
	return &KafkaArchiveHandler{topic: topic, event: event, archive: archive, metrics: metrics}
}

func (h *KafkaArchiveHandler) Topic() string { return h.topic }

func (h *KafkaArchiveHandler) Handle(ctx context.Context, b []byte) error {
	start := time.Now()
	var err error
	switch h.event {
	case ArchiveSignals:
		var rec models.SignalRecord
		if err = json.Unmarshal(b, &rec); err == nil {
			err = h.archive.ArchiveSignals(ctx, []models.SignalRecord{rec})
		}
	case ArchiveAlerts:
		var a models.PumpDumpAlert
		if err = json.Unmarshal(b, &a); err == nil {
			err = h.archive.ArchiveAlerts(ctx, []models.PumpDumpAlert{a})
		}
	case ArchiveObservations:
		var o models.Observation
		if err = json.Unmarshal(b, &o); err == nil {
			err = h.archive.ArchiveObservations(ctx, []models.Observation{o})
		}
	default:
		err = fmt.Errorf("unknown archive event: %s", h.event)
	}
	h.metrics.RecordLatency("archive_"+string(h.event), time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_archive")
		return fmt.Errorf("archive %s: %w", h.event, err)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaArchiveHandler)(nil)
