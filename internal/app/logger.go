package app

import (
	"io"
	"os"
	"time"

	"TodoAPI/internal/auth"
	"TodoAPI/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. The level and output format follow env.
func NewLogger(env string) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	w := io.Writer(os.Stdout)
	level := zerolog.InfoLevel
	switch env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if userID := auth.UserIDFromContext(c); userID != "" {
			event = event.Str("user_id", userID)
		}
		event.Msg("http request")
	}
}
