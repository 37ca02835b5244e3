package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/logger"
)

type captureMonitor struct {
	errs []error
	tags []map[string]string
}

func (m *captureMonitor) CaptureException(err error, tags map[string]string) {
	m.errs = append(m.errs, err)
	m.tags = append(m.tags, tags)
}

func (m *captureMonitor) Flush(time.Duration) {}

type recordLogger struct {
	logger.Nop
	lines []map[string]any
}

func (l *recordLogger) Infow(_ string, fields map[string]any) {
	l.lines = append(l.lines, fields)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })
	return r
}

func TestRequestID_Generated(t *testing.T) {
	r := newEngine(RequestID())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))

	id := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, rr.Body.String())
}

func TestRequestID_Echoed(t *testing.T) {
	r := newEngine(RequestID())
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestCORS_Wildcard(t *testing.T) {
	r := newEngine(CORS([]string{"*"}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(CORS([]string{"*"}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCORS_AllowList(t *testing.T) {
	r := newEngine(CORS([]string{"http://localhost:8000"}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://localhost:8000")
	r.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:8000", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	mon := &captureMonitor{}
	r := newEngine(RequestID(), Recovery(logger.Nop{}, mon))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Internal server error", body["message"])
	_, err := time.ParseInLocation(TimestampLayout, body["timestamp"].(string), time.Local)
	assert.NoError(t, err)

	require.Len(t, mon.errs, 1)
	assert.Contains(t, mon.errs[0].Error(), "kaboom")
	assert.Equal(t, "/panic", mon.tags[0]["path"])
	assert.NotEmpty(t, mon.tags[0]["request_id"])
}

func TestLogging(t *testing.T) {
	log := &recordLogger{}
	r := newEngine(RequestID(), Logging(log))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Len(t, log.lines, 1)
	assert.Equal(t, http.MethodGet, log.lines[0]["method"])
	assert.Equal(t, "/ok", log.lines[0]["path"])
	assert.Equal(t, http.StatusOK, log.lines[0]["status"])
	assert.Equal(t, rr.Header().Get(RequestIDHeader), log.lines[0]["request_id"])
}
