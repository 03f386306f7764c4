package models

import "time"

type ValidationStatus string

const (
	StatusActive  ValidationStatus = "ACTIVE"
	StatusSuccess ValidationStatus = "SUCCESS"
	StatusFailed  ValidationStatus = "FAILED"
	StatusStopped ValidationStatus = "STOPPED"
	StatusClosed  ValidationStatus = "CLOSED"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s ValidationStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusStopped, StatusClosed:
		return true
	}
	return false
}

// ValidationState is the lifecycle of a persisted signal. Status is
// ACTIVE until the first terminal outcome, then CLOSED with Outcome set.
type ValidationState struct {
	Status     ValidationStatus `json:"status"`
	Outcome    ValidationStatus `json:"validation_result,omitempty"`
	FinalPrice *float64         `json:"final_price,omitempty"`
	ProfitLoss *float64         `json:"profit_loss,omitempty"`
	ClosedAt   *time.Time       `json:"closed_at,omitempty"`
}

// SignalRecord is a signal as kept in the store.
type SignalRecord struct {
	ID int64 `json:"id"`
	SignalBase
	Detector   Detector           `json:"detector"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Validation ValidationState    `json:"validation"`
	// CreatedAt is when the signal was stored; DetectedAt is its bar time.
	CreatedAt time.Time `json:"created_at"`
}

// NewSignalRecord flattens a detected signal into its ACTIVE record.
func NewSignalRecord(s Signal) SignalRecord {
	b := *s.Base()
	return SignalRecord{
		SignalBase: b,
		Detector:   b.Kind.Detector(),
		Indicators: s.Indicators(),
		Validation: ValidationState{Status: StatusActive},
	}
}

// Observation is one validation check of a signal against a live price.
type Observation struct {
	ID         int64            `json:"id,omitempty"`
	SignalID   int64            `json:"signal_id"`
	Symbol     string           `json:"symbol"`
	Direction  Direction        `json:"signal"`
	EntryPrice float64          `json:"entry_price"`
	Price      float64          `json:"current_price"`
	ChangePct  float64          `json:"price_change_pct"`
	Status     ValidationStatus `json:"status"`
	Note       string           `json:"notes"`
	CheckedAt  time.Time        `json:"checked_at"`
}

// Outcome is the result of evaluating one active signal.
type Outcome struct {
	Status    ValidationStatus `json:"status"`
	Price     float64          `json:"price"`
	ChangePct float64          `json:"change_pct"`
	Note      string           `json:"note"`
}
