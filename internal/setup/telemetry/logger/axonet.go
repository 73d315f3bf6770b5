package logger

import (
	axonetLogger "github.com/jaxron/axonet/pkg/client/logger"
	"go.uber.org/zap"
)

// Axonet adapts zap.Logger to the axonet logger.Logger interface so the HTTP
// client and its middlewares log through the application logger.
type Axonet struct {
	zap *zap.Logger
}

// NewAxonet wraps a zap logger for use by the HTTP client.
func NewAxonet(zapLogger *zap.Logger) axonetLogger.Logger {
	return &Axonet{zap: zapLogger}
}

func (l *Axonet) Debug(msg string)                  { l.zap.Debug(msg) }
func (l *Axonet) Info(msg string)                   { l.zap.Info(msg) }
func (l *Axonet) Warn(msg string)                   { l.zap.Warn(msg) }
func (l *Axonet) Error(msg string)                  { l.zap.Error(msg) }
func (l *Axonet) Debugf(format string, args ...any) { l.zap.Sugar().Debugf(format, args...) }
func (l *Axonet) Infof(format string, args ...any)  { l.zap.Sugar().Infof(format, args...) }
func (l *Axonet) Warnf(format string, args ...any)  { l.zap.Sugar().Warnf(format, args...) }
func (l *Axonet) Errorf(format string, args ...any) { l.zap.Sugar().Errorf(format, args...) }

// WithFields returns a logger carrying the given axonet fields as zap fields.
func (l *Axonet) WithFields(fields ...axonetLogger.Field) axonetLogger.Logger {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = zap.Any(f.Key, f.Value)
	}

	return &Axonet{zap: l.zap.With(zapFields...)}
}
