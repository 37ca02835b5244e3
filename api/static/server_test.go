package static

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/logger"
)

func frontendDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>fares</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taxi_zones.json"), []byte(`{"total_zones":0}`), 0o644))
	return dir
}

func TestRouter_ServesFilesWithCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(frontendDir(t), logger.Nop{})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/taxi_zones.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total_zones":0}`, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fares")
}

func TestRouter_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(frontendDir(t), nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/index.html", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(frontendDir(t), nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewRouter_BadDir(t *testing.T) {
	_, err := NewRouter(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewRouter(file, nil)
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	dir := frontendDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr, dir, logger.Nop{}) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/index.html")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
