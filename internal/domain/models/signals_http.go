package models

// Request shapes for the HTTP API. Fields are bound from path and query,
// then defaulted and validated.

type LatestSignalsRequest struct {
	Limit int `query:"limit" default:"50" validate:"gte=1,lte=100"`
}

type SignalHistoryRequest struct {
	Days  int `query:"days" default:"7" validate:"gte=1,lte=90"`
	Limit int `query:"limit" default:"500" validate:"gte=1,lte=5000"`
}

type ActiveSignalsRequest struct {
	Limit int `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type SignalDetailRequest struct {
	ID int64 `param:"id" validate:"required,gte=1"`
}

type AlertHistoryRequest struct {
	Hours int `query:"hours" default:"24" validate:"gte=1,lte=720"`
	Limit int `query:"limit" default:"200" validate:"gte=1,lte=1000"`
}

type MoversRequest struct {
	Limit int `query:"limit" default:"10" validate:"gte=1,lte=50"`
}

type AnalyzeRequest struct {
	Symbol    string `param:"symbol" validate:"required,min=2,max=32"`
	Timeframe string `query:"timeframe" default:"15m" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 12h 1d 1w"`
	Limit     int    `query:"limit" default:"200" validate:"gte=50,lte=1000"`
}
