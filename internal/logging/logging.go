// Package logging builds the process-wide zerolog logger and the Echo
// request-logging middleware that feeds it.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// New returns a JSON logger in production and a console logger otherwise.
func New(env string) zerolog.Logger {
	var w io.Writer = os.Stdout
	level := zerolog.DebugLevel
	if env == "production" {
		level = zerolog.InfoLevel
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// RequestLogger logs one line per request with status, latency and the
// authenticated user when one is present.
func RequestLogger(logger *zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Status >= 500 || (v.Error != nil && v.Status == 0) {
				ev = logger.Error().Err(v.Error)
			} else if v.Status >= 400 {
				ev = logger.Warn()
			}
			if uid, ok := c.Get("user_id").(string); ok && uid != "" {
				ev = ev.Str("user_id", uid)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
