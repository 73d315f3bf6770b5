package fetcher

import (
	"github.com/brainink/hub/internal/brainink/types"
	"go.uber.org/zap"
)

// logSkipped warns when a list response carried entries that could not be decoded.
func logSkipped(logger *zap.Logger, list string, env types.Envelope) {
	if n := env.Skipped(); n > 0 {
		logger.Warn("Dropped malformed list entries",
			zap.String("list", list),
			zap.Int("count", n))
	}
}
