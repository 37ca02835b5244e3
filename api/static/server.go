// Package static serves the browser frontend.
package static

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/taxifare/api/middleware"
	"github.com/kilianp07/taxifare/core/logger"
)

// corsHeaders are added to every response so the pages can call the API
// from another port.
func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// NewRouter serves the files under dir, with directory listings.
func NewRouter(dir string, log logger.Logger) (*gin.Engine, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("frontend dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frontend dir: %s is not a directory", dir)
	}
	if log == nil {
		log = logger.Nop{}
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(log), gin.Recovery(), corsHeaders())
	r.StaticFS("/", gin.Dir(dir, true))
	return r, nil
}

// Serve runs the frontend server on addr until ctx is canceled.
func Serve(ctx context.Context, addr, dir string, log logger.Logger) error {
	r, err := NewRouter(dir, log)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if log != nil {
		log.Infof("serving %s on %s", dir, addr)
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
