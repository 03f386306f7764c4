package models

import "time"

type AlertKind string

const (
	AlertPump AlertKind = "PUMP"
	AlertDump AlertKind = "DUMP"
)

// PumpDumpAlert flags an abrupt price move backed by volume. Alerts are
// informational and never validated.
type PumpDumpAlert struct {
	ID              int64     `json:"id,omitempty"`
	Symbol          string    `json:"symbol"`
	Kind            AlertKind `json:"alert_type"`
	Direction       Direction `json:"signal"`
	Price           float64   `json:"price"`
	PriceChangePct  float64   `json:"price_change"`
	VolumeChangePct float64   `json:"volume_change"`
	Strength        int       `json:"strength"`
	Reason          string    `json:"reason"`
	DetectedAt      time.Time `json:"detected_at"`
	CreatedAt       time.Time `json:"created_at"`
}
