// Package logger builds the zap logger shared by every component.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/menfistoo/purobeach/internal/config"
)

// ParseLevel maps debug, info, warn and error to a zap level.  Anything
// else is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a JSON logger writing to stdout, or a development console
// logger when cfg.Format is "console".  The service name and host name
// are attached to every entry.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.OutputPaths = []string{"stdout"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}
	zc.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Service != "" {
		log = log.With(zap.String("service_name", cfg.Service))
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.With(zap.String("hostname", host))
	}
	return log, nil
}
