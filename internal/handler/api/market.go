package api

import (
	"github.com/labstack/echo/v4"

	"SignalScan/internal/domain/models"
	xhttp "SignalScan/pkg/http"
	xlogger "SignalScan/pkg/logger"
)

func (h *SignalsHandler) Movers(c echo.Context) error {
	req := &models.MoversRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, h.queries.Movers(req.Limit))
}

func (h *SignalsHandler) Symbols(c echo.Context) error {
	res, err := h.queries.Symbols(c.Request().Context())
	if err != nil {
		return h.fail(c, "symbols", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Analyze runs the engine on live candles for one symbol.
func (h *SignalsHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	res, err := h.queries.Analyze(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "analyze "+req.Symbol, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Snapshot(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.queries.SnapshotInfo())
}

func (h *SignalsHandler) Health(c echo.Context) error {
	info := h.queries.SnapshotInfo()
	if err := h.queries.Health(c.Request().Context()); err != nil {
		h.logger.Warn("store health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("store unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":      "ok",
		"version":     info.Version,
		"last_update": info.UpdatedAt,
	})
}

// Stream hands the connection to the push hub.
func (h *SignalsHandler) Stream(c echo.Context) error {
	if err := h.stream.ServeWS(c.Response(), c.Request()); err != nil {
		h.logger.Debug("websocket upgrade failed", xlogger.Error(err))
	}
	return nil
}
