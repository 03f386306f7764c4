package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"SignalScan/pkg/logger"
)

// RequestLogging logs one line per request. Server errors are logged at
// error level, everything else at debug.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.String("remote", c.RealIP()),
				logger.Int("status", status),
				logger.Duration("latency", time.Since(start)),
			}
			if status >= 500 {
				if err != nil {
					fields = append(fields, logger.Error(err))
				}
				log.Error("request failed", fields...)
			} else {
				log.Debug("request", fields...)
			}
			return nil
		}
	}
}
