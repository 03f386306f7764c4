package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/internal/service/exchange"
	"SignalScan/internal/usecase"
	xhttp "SignalScan/pkg/http"
	"SignalScan/pkg/http/middleware"
	xlogger "SignalScan/pkg/logger"
)

// Queries is the read side the API serves from.
type Queries interface {
	LatestSignals(limit int) []models.Signal
	Alerts() []models.PumpDumpAlert
	Movers(limit int) models.Movers
	SnapshotInfo() usecase.SnapshotInfo
	SignalHistory(ctx context.Context, days, limit int) ([]models.SignalRecord, error)
	ActiveSignals(ctx context.Context, limit int) ([]models.SignalRecord, error)
	SignalDetail(ctx context.Context, id int64) (*usecase.SignalDetail, error)
	AlertHistory(ctx context.Context, hours, limit int) ([]models.PumpDumpAlert, error)
	Stats(ctx context.Context) (models.Statistics, error)
	Symbols(ctx context.Context) (*usecase.SymbolsResult, error)
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error)
	Health(ctx context.Context) error
}

// Streamer upgrades a request into a push connection.
type Streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// SignalsHandler serves the REST API and the websocket endpoint.
type SignalsHandler struct {
	logger  *xlogger.Logger
	queries Queries
	stream  Streamer
	limiter middleware.Allower
}

// NewSignalsHandler wires the routes. A nil limiter leaves analyze
// unthrottled and a nil stream disables /ws.
func NewSignalsHandler(logger *xlogger.Logger, queries Queries, stream Streamer, limiter middleware.Allower) *SignalsHandler {
	return &SignalsHandler{logger: logger.With("api"), queries: queries, stream: stream, limiter: limiter}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	if h.stream != nil {
		e.GET("/ws", h.Stream)
	}

	g := e.Group("/api")
	g.GET("/signals", h.LatestSignals)
	g.GET("/signals/history", h.SignalHistory)
	g.GET("/signals/active", h.ActiveSignals)
	g.GET("/signals/:id", h.SignalDetail)
	g.GET("/pump-dump", h.Alerts)
	g.GET("/pump-dump/history", h.AlertHistory)
	g.GET("/movers", h.Movers)
	g.GET("/stats", h.Stats)
	g.GET("/symbols", h.Symbols)
	g.GET("/snapshot", h.Snapshot)

	var mw []echo.MiddlewareFunc
	if h.limiter != nil {
		mw = append(mw, middleware.RateLimit(h.limiter))
	}
	g.GET("/analyze/:symbol", h.Analyze, mw...)
}

func (h *SignalsHandler) LatestSignals(c echo.Context) error {
	req := &models.LatestSignalsRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	rows := h.queries.LatestSignals(req.Limit)
	return xhttp.ListResponse(c, rows, len(rows))
}

func (h *SignalsHandler) SignalHistory(c echo.Context) error {
	req := &models.SignalHistoryRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	rows, err := h.queries.SignalHistory(c.Request().Context(), req.Days, req.Limit)
	if err != nil {
		return h.fail(c, "signal history", err)
	}
	return xhttp.ListResponse(c, rows, len(rows))
}

func (h *SignalsHandler) ActiveSignals(c echo.Context) error {
	req := &models.ActiveSignalsRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	rows, err := h.queries.ActiveSignals(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "active signals", err)
	}
	return xhttp.ListResponse(c, rows, len(rows))
}

func (h *SignalsHandler) SignalDetail(c echo.Context) error {
	req := &models.SignalDetailRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	res, err := h.queries.SignalDetail(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "signal detail", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Alerts(c echo.Context) error {
	rows := h.queries.Alerts()
	return xhttp.ListResponse(c, rows, len(rows))
}

func (h *SignalsHandler) AlertHistory(c echo.Context) error {
	req := &models.AlertHistoryRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	rows, err := h.queries.AlertHistory(c.Request().Context(), req.Hours, req.Limit)
	if err != nil {
		return h.fail(c, "alert history", err)
	}
	return xhttp.ListResponse(c, rows, len(rows))
}

func (h *SignalsHandler) Stats(c echo.Context) error {
	st, err := h.queries.Stats(c.Request().Context())
	if err != nil {
		return h.fail(c, "stats", err)
	}
	return xhttp.SuccessResponse(c, st)
}

// fail logs err and renders it with the status its cause maps to.
func (h *SignalsHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, drepo.ErrNotFound):
		return xhttp.NotFoundErrorf("signal not found").WithError(err)
	case errors.Is(err, usecase.ErrNoCandles), errors.Is(err, exchange.ErrNoData):
		return xhttp.NotFoundErrorf("no market data for symbol").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("request timed out").WithError(err)
	}
	var apiErr *exchange.APIError
	var statusErr *xhttp.StatusError
	if errors.As(err, &apiErr) || errors.As(err, &statusErr) {
		return xhttp.BadGatewayErrorf("exchange request failed").WithError(err)
	}
	return xhttp.InternalError("Something went wrong").WithError(err)
}
