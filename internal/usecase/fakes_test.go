package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
)

type fakeMarket struct {
	mu          sync.Mutex
	instruments []models.Instrument
	listErr     error
	candles     map[string]models.Candles
	candleErr   map[string]error
	panicOn     string
	quotes      map[string]float64
	tickers     []models.Ticker
	fetched     []string
}

func (m *fakeMarket) ListInstruments(context.Context) ([]models.Instrument, error) {
	return m.instruments, m.listErr
}

func (m *fakeMarket) FetchCandles(_ context.Context, symbol string, _ drepo.Timeframe, _ int) (models.Candles, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, symbol)
	m.mu.Unlock()
	if symbol == m.panicOn {
		panic("boom")
	}
	if err := m.candleErr[symbol]; err != nil {
		return nil, err
	}
	return m.candles[symbol], nil
}

func (m *fakeMarket) FetchQuote(_ context.Context, symbol string) (models.Quote, error) {
	p, ok := m.quotes[symbol]
	if !ok {
		return models.Quote{}, errors.New("no ticker")
	}
	return models.Quote{Symbol: symbol, Price: p}, nil
}

func (m *fakeMarket) FetchTickers(context.Context) ([]models.Ticker, error) {
	return m.tickers, nil
}

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	signals map[int64]*models.SignalRecord
	alerts  []models.PumpDumpAlert
	obs     []models.Observation
}

func newFakeStore() *fakeStore {
	return &fakeStore{signals: map[int64]*models.SignalRecord{}}
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) PersistSignal(_ context.Context, sig models.Signal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := models.NewSignalRecord(sig)
	rec.ID = s.nextID
	s.signals[rec.ID] = &rec
	return rec.ID, nil
}

func (s *fakeStore) add(rec models.SignalRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	rec.Validation.Status = models.StatusActive
	s.signals[rec.ID] = &rec
	return rec.ID
}

func (s *fakeStore) PersistAlert(_ context.Context, a models.PumpDumpAlert) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return int64(len(s.alerts)), nil
}

func (s *fakeStore) RecordValidation(_ context.Context, obs models.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.signals[obs.SignalID]
	if !ok {
		return drepo.ErrNotFound
	}
	if rec.Validation.Status != models.StatusActive {
		return drepo.ErrSignalClosed
	}
	s.obs = append(s.obs, obs)
	if obs.Status.IsTerminal() {
		at := obs.CheckedAt
		price, change := obs.Price, obs.ChangePct
		rec.Validation = models.ValidationState{
			Status:     models.StatusClosed,
			Outcome:    obs.Status,
			FinalPrice: &price,
			ProfitLoss: &change,
			ClosedAt:   &at,
		}
	}
	return nil
}

func (s *fakeStore) ActiveSignals(_ context.Context, limit int) ([]models.SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SignalRecord
	for _, r := range s.signals {
		if r.Validation.Status == models.StatusActive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return head(out, limit), nil
}

func (s *fakeStore) SignalHistory(context.Context, time.Time, int) ([]models.SignalRecord, error) {
	return nil, nil
}

func (s *fakeStore) GetSignal(_ context.Context, id int64) (models.SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.signals[id]
	if !ok {
		return models.SignalRecord{}, drepo.ErrNotFound
	}
	return *r, nil
}

func (s *fakeStore) Observations(context.Context, int64) ([]models.Observation, error) {
	return nil, nil
}

func (s *fakeStore) AlertHistory(context.Context, time.Time, int) ([]models.PumpDumpAlert, error) {
	return s.alerts, nil
}

func (s *fakeStore) Statistics(context.Context, time.Time) (models.Statistics, error) {
	return models.Statistics{}, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakeSink struct {
	mu        sync.Mutex
	signals   int
	alerts    int
	snapshots int
	obs       int
}

func (f *fakeSink) PublishSignals(_ context.Context, s []models.SignalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals += len(s)
	return nil
}

func (f *fakeSink) PublishAlerts(_ context.Context, a []models.PumpDumpAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts += len(a)
	return nil
}

func (f *fakeSink) PublishSnapshot(context.Context, *models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	return nil
}

func (f *fakeSink) PublishObservations(_ context.Context, o []models.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs += len(o)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordScan(float64)            {}
func (nopMetrics) RecordInstrument(string)       {}
func (nopMetrics) RecordSignal(string, string)   {}
func (nopMetrics) RecordAlert(string)            {}
func (nopMetrics) RecordValidation(string)       {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
func (nopMetrics) SetSnapshotVersion(uint64)     {}

type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (func(), error) {
	return nil, errors.New("lock held")
}
