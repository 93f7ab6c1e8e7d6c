package main

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Standard log field names
const (
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldClientIP = "client_ip"
	FieldUserID   = "user_id"
	FieldCacheKey = "cache_key"
	FieldAttempt  = "attempt"
)

// newLogger builds the JSON logger. An unknown level falls back to info.
func newLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

// requestLogger logs one line per request once the handler chain has finished.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			FieldMethod:   c.Request.Method,
			FieldPath:     c.FullPath(),
			FieldStatus:   c.Writer.Status(),
			FieldDuration: time.Since(start).Milliseconds(),
			FieldClientIP: c.ClientIP(),
		})
		if userID := c.Param("user_id"); userID != "" {
			entry = entry.WithField(FieldUserID, userID)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last().Err)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}
