package telemetry

import (
	"context"

	"github.com/brainink/hub/internal/setup/config"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.uber.org/zap"
)

// ConfigureTracing installs the Uptrace span exporter when a DSN is set.
// The returned func flushes pending spans and is safe to call either way.
func ConfigureTracing(cfg *config.Telemetry, version string, logger *zap.Logger) func(context.Context) error {
	if cfg.UptraceDSN == "" {
		logger.Debug("Trace export disabled")
		return func(context.Context) error { return nil }
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(version),
	)

	logger.Info("Trace export enabled", zap.String("service", cfg.ServiceName))

	return uptrace.Shutdown
}
