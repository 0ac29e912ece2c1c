package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request after the handler chain returns.
func RequestLogger() drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"duration": time.Since(start).String(),
		}
		if uid := GetUserID(c); uid != uuid.Nil {
			fields["user_id"] = uid
		}
		log.WithFields(fields).Debug("Request handled")
	}
}
