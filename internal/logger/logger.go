package logger

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current atomic.Pointer[zap.Logger]
	initMu  sync.Mutex
)

// Init builds the global logger for the given environment.
// "production" logs JSON to stdout, anything else uses the colored console encoder.
func Init(env string) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	built, err := cfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	current.Store(built.With(zap.String("service", "vivapay")))
}

// L returns the global logger, initializing it from APP_ENV on first use.
// Safe for concurrent use.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}

	initMu.Lock()
	defer initMu.Unlock()
	if l := current.Load(); l == nil {
		Init(os.Getenv("APP_ENV"))
	}
	return current.Load()
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

// Sync flushes logs.
func Sync() {
	if l := current.Load(); l != nil {
		_ = l.Sync()
	}
}
