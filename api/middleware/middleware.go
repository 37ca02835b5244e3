// Package middleware holds the gin middleware shared by the HTTP servers.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kilianp07/taxifare/core/logger"
	"github.com/kilianp07/taxifare/core/monitoring"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// TimestampLayout is local time without zone, microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Timestamp formats t for JSON responses.
func Timestamp(t time.Time) string { return t.Format(TimestampLayout) }

// RequestID echoes the incoming X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, if any.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// CORS answers preflight requests and sets the allow headers for origins in
// allowed. "*" allows everything.
func CORS(allowed []string) gin.HandlerFunc {
	wildcard := false
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[o] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := set[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Logging writes one structured line per request.
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
			"request_id": GetRequestID(c),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			fields["errors"] = c.Errors.String()
		}
		log.Infow("http request", fields)
	}
}

// Recovery turns a panic into a 500 JSON response and reports it.
func Recovery(log logger.Logger, mon monitoring.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				log.Errorf("recovered %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				mon.CaptureException(err, map[string]string{
					"path":       c.Request.URL.Path,
					"request_id": GetRequestID(c),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"status":    "error",
					"message":   "Internal server error",
					"timestamp": Timestamp(time.Now()),
				})
			}
		}()
		c.Next()
	}
}
