package repository

import (
	"context"
	"fmt"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	applogger "SignalScan/pkg/logger"
)

// NamedSink labels a sink for logs.
type NamedSink struct {
	Name string
	Sink drepo.SignalSink
}

// MultiSink forwards every call to all sinks. A failing sink is logged and
// does not stop delivery to the rest; the error reports how many failed.
type MultiSink struct {
	sinks []NamedSink
	l     *applogger.Logger
}

var _ drepo.SignalSink = (*MultiSink)(nil)

func NewMultiSink(l *applogger.Logger, sinks ...NamedSink) *MultiSink {
	kept := make([]NamedSink, 0, len(sinks))
	for _, s := range sinks {
		if s.Sink != nil {
			kept = append(kept, s)
		}
	}
	return &MultiSink{sinks: kept, l: l.With("sink")}
}

func (m *MultiSink) Len() int { return len(m.sinks) }

func (m *MultiSink) each(op string, fn func(drepo.SignalSink) error) error {
	failed := 0
	for _, s := range m.sinks {
		if err := fn(s.Sink); err != nil {
			failed++
			m.l.Warn("sink failed",
				applogger.String("sink", s.Name),
				applogger.String("op", op),
				applogger.Error(err),
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d sinks failed", op, failed, len(m.sinks))
	}
	return nil
}

func (m *MultiSink) PublishSignals(ctx context.Context, signals []models.SignalRecord) error {
	return m.each("signals", func(s drepo.SignalSink) error { return s.PublishSignals(ctx, signals) })
}

func (m *MultiSink) PublishAlerts(ctx context.Context, alerts []models.PumpDumpAlert) error {
	return m.each("alerts", func(s drepo.SignalSink) error { return s.PublishAlerts(ctx, alerts) })
}

func (m *MultiSink) PublishSnapshot(ctx context.Context, snap *models.Snapshot) error {
	return m.each("snapshot", func(s drepo.SignalSink) error { return s.PublishSnapshot(ctx, snap) })
}

func (m *MultiSink) PublishObservations(ctx context.Context, obs []models.Observation) error {
	return m.each("validations", func(s drepo.SignalSink) error { return s.PublishObservations(ctx, obs) })
}
