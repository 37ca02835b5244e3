package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	farehttp "github.com/kilianp07/taxifare/api/fare"
	"github.com/kilianp07/taxifare/config"
	"github.com/kilianp07/taxifare/core/fare"
	coremetrics "github.com/kilianp07/taxifare/core/metrics"
	"github.com/kilianp07/taxifare/core/model"
	coremon "github.com/kilianp07/taxifare/core/monitoring"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/infra/logger"
	"github.com/kilianp07/taxifare/infra/metrics"
	"github.com/kilianp07/taxifare/infra/monitoring"
)

const shutdownTimeout = 10 * time.Second

// Service wires the prediction service, the HTTP API and the metrics server.
type Service struct {
	Predictor *prediction.Service
	cfg       *config.Config
	router    *gin.Engine
	registry  *prometheus.Registry
	sink      coremetrics.MetricsSink
	monitor   coremon.Monitor
	log       logger.Logger
}

// New creates a Service from the configuration. Missing model artifacts
// degrade to stand-ins; corrupt ones abort.
func New(cfg *config.Config) (*Service, error) {
	_, err := logger.Configure(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewSink(cfg.Metrics, reg)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	art, err := model.Load(model.LoadOptions{
		WeightsPath:     cfg.Model.WeightsPath,
		ScalerPath:      cfg.Model.ScalerPath,
		FeatureNames:    fare.Names(),
		HiddenSizes:     cfg.Model.HiddenSizes,
		Seed:            cfg.Model.Seed,
		SyntheticSample: fare.SyntheticSample(),
		Log:             logger.New("model"),
	})
	if err != nil {
		metrics.CloseSink(sink)
		_ = logger.Close()
		return nil, fmt.Errorf("load model: %w", err)
	}
	pred, err := prediction.NewService(art)
	if err != nil {
		metrics.CloseSink(sink)
		_ = logger.Close()
		return nil, err
	}
	st := pred.Status()
	logg.Infow("model ready", map[string]any{
		"model_source":  st.ModelSource,
		"scaler_source": st.ScalerSource,
		"hidden_sizes":  art.Network.HiddenSizes(),
	})
	if st.ModelSource != string(model.SourceFile) {
		logg.Warnf("serving an untrained model, predictions are not meaningful")
	}

	if strings.ToLower(os.Getenv("APP_ENV")) != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := farehttp.NewHandler(pred, farehttp.Options{
		Sink:         sink,
		Monitor:      mon,
		Log:          logger.New("api"),
		MaxBatchSize: cfg.Server.MaxBatchSize,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	router := farehttp.NewRouter(h, farehttp.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins})

	return &Service{
		Predictor: pred,
		cfg:       cfg,
		router:    router,
		registry:  reg,
		sink:      sink,
		monitor:   mon,
		log:       logg,
	}, nil
}

// Handler returns the API handler.
func (s *Service) Handler() http.Handler { return s.router }

// Run serves the API, and the metrics endpoint when enabled, until ctx is
// canceled. In-flight requests are drained before it returns.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.registry); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout(),
		ReadTimeout:       s.cfg.Server.ReadTimeout(),
		WriteTimeout:      s.cfg.Server.WriteTimeout(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("taxi fare prediction API listening on %s", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	s.log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close flushes the error monitor, then releases the metrics sink and the
// log file.
func (s *Service) Close() error {
	s.monitor.Flush(2 * time.Second)
	metrics.CloseSink(s.sink)
	return logger.Close()
}

// Gatherer exposes the registry holding the service metrics.
func (s *Service) Gatherer() prometheus.Gatherer { return s.registry }
