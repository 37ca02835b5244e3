package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/taxifare/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// Options controls the shared log output.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// Format is "json" or "console". APP_ENV=dev forces console.
	Format string
	// File enables rotation through lumberjack; empty writes to stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	level            = zerolog.InfoLevel
	closer io.Closer
)

// Configure sets the output used by every logger created afterwards. The
// returned closer releases the rotating file, if any.
func Configure(opts Options) (io.Closer, error) {
	lvl := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	var w io.Writer = os.Stdout
	var c io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		w, c = lj, lj
	}
	if opts.Format == "console" || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opts.File != ""}
	}

	mu.Lock()
	output, level, closer = w, lvl, c
	mu.Unlock()
	return c, nil
}

// New returns a Logger tagged with the given component.
func New(component string) Logger {
	mu.RLock()
	w, lvl := output, level
	mu.RUnlock()
	return NewWithWriter(component, w, lvl)
}

// NewWithWriter builds a logger on an explicit writer, mostly for tests.
func NewWithWriter(component string, w io.Writer, lvl zerolog.Level) Logger {
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

// Close releases the configured output.
func Close() error {
	mu.Lock()
	c := closer
	closer = nil
	output = os.Stdout
	mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
