package apicheck

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	farehttp "github.com/kilianp07/taxifare/api/fare"
	"github.com/kilianp07/taxifare/core/fare"
	"github.com/kilianp07/taxifare/core/model"
	"github.com/kilianp07/taxifare/core/prediction"
)

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	art, err := model.Load(model.LoadOptions{
		WeightsPath:     filepath.Join(dir, "w.json"),
		ScalerPath:      filepath.Join(dir, "s.json"),
		FeatureNames:    fare.Names(),
		Seed:            1,
		SyntheticSample: fare.SyntheticSample(),
	})
	require.NoError(t, err)
	svc, err := prediction.NewService(art)
	require.NoError(t, err)
	srv := httptest.NewServer(farehttp.NewRouter(farehttp.NewHandler(svc, farehttp.Options{}), farehttp.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Full(t *testing.T) {
	srv := apiServer(t)
	results := Run(context.Background(), NewClient(srv.URL+"/"), true)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %v", r.Name, r.Err)
	}
	assert.True(t, Passed(results))
	assert.Contains(t, results[2].Detail, "2/2 successful")

	var buf bytes.Buffer
	WriteSummary(&buf, results)
	assert.Contains(t, buf.String(), "Batch Prediction: PASS")
	assert.Contains(t, buf.String(), "Total: 4/4 checks passed")
}

func TestRun_Quick(t *testing.T) {
	srv := apiServer(t)
	results := Run(context.Background(), NewClient(srv.URL), false)
	require.Len(t, results, 2)
	assert.True(t, Passed(results))
	assert.True(t, strings.HasPrefix(results[1].Detail, "predicted fare $"))
}

func TestRun_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"success","message":"up","model_loaded":true,"scaler_loaded":true}`))
			return
		}
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	results := Run(context.Background(), NewClient(srv.URL), true)
	require.Len(t, results, 4)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.False(t, Passed(results))

	var buf bytes.Buffer
	WriteSummary(&buf, results)
	assert.Contains(t, buf.String(), "Single Prediction: FAIL (status 500")
	assert.Contains(t, buf.String(), "Total: 1/4 checks passed")
}

func TestRun_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	results := Run(context.Background(), NewClient(url), false)
	for _, r := range results {
		assert.False(t, r.Passed)
		assert.Error(t, r.Err)
	}
}
