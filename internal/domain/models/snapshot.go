package models

import "time"

// Snapshot is the published result of the latest completed scan tick.
// It is replaced whole and never mutated after publication.
type Snapshot struct {
	Version     uint64          `json:"version"`
	TickID      string          `json:"tick_id"`
	Signals     []Signal        `json:"signals"`
	Alerts      []PumpDumpAlert `json:"pump_dump"`
	Movers      Movers          `json:"movers"`
	Instruments int             `json:"instruments"`
	Failed      int             `json:"failed"`
	UpdatedAt   time.Time       `json:"last_update"`
}

// Statistics aggregates closed validation outcomes.
type Statistics struct {
	Total        int64    `json:"total_signals"`
	Active       int64    `json:"active_signals"`
	Wins         int64    `json:"wins"`
	Losses       int64    `json:"losses"`
	Stopped      int64    `json:"stopped"`
	WinRate      float64  `json:"win_rate"`
	AvgProfit    *float64 `json:"avg_profit"`
	TodaySignals int64    `json:"today_signals"`
}
