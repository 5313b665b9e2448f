package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/instill-ai/hashcash-client/internal/config"
)

var once sync.Once
var logger *zap.Logger
var loggerErr error

// GetZapLogger returns the process-wide zap logger, built once from the
// environment configuration
func GetZapLogger() (*zap.Logger, error) {
	once.Do(func() {
		logger, loggerErr = build(config.FromEnv().Log)
	})
	return logger, loggerErr
}

func build(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	if cfg.Debug && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
