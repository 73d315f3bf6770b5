package client

import (
	"time"

	"github.com/brainink/hub/internal/session"
	"github.com/brainink/hub/internal/setup/client/interceptor/auth"
	"github.com/brainink/hub/internal/setup/config"
	"github.com/brainink/hub/internal/setup/telemetry/logger"
	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/middleware/circuitbreaker"
	"github.com/jaxron/axonet/middleware/retry"
	"github.com/jaxron/axonet/middleware/singleflight"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/jaxron/axonet/pkg/client/middleware"
	"go.uber.org/zap"
)

// Middlewares contains the middleware instances used in the client.
type Middlewares struct {
	Auth *auth.Middleware
}

// New constructs the HTTP client used for every backend call. The chain is
// built from config: circuit breaker and retry are only added when enabled,
// and the auth middleware always runs last so retried attempts carry the
// current credential.
func New(cfg *config.Config, store session.Store, zapLogger *zap.Logger) (*client.Client, *Middlewares) {
	authMiddleware := auth.New(store)

	// Build middleware chain - order matters!
	var middlewares []middleware.Middleware

	if cfg.CircuitBreaker.MaxRequests > 0 {
		middlewares = append(middlewares, circuitbreaker.New(
			cfg.CircuitBreaker.MaxRequests,
			time.Duration(cfg.CircuitBreaker.Interval)*time.Millisecond,
			time.Duration(cfg.CircuitBreaker.Timeout)*time.Millisecond,
		))
	}

	if cfg.Retry.MaxRetries > 0 {
		middlewares = append(middlewares, retry.New(
			cfg.Retry.MaxRetries,
			time.Duration(cfg.Retry.Delay)*time.Millisecond,
			time.Duration(cfg.Retry.MaxDelay)*time.Millisecond,
		))
	}

	if cfg.Transport.Singleflight {
		middlewares = append(middlewares, singleflight.New())
	}

	middlewares = append(middlewares, authMiddleware)

	return client.NewClient(
		client.WithMarshalFunc(sonic.Marshal),
		client.WithUnmarshalFunc(sonic.Unmarshal),
		client.WithLogger(logger.NewAxonet(zapLogger.Named("http"))),
		client.WithTimeout(time.Duration(cfg.Transport.RequestTimeout)*time.Millisecond),
		client.WithMiddleware(middlewares...),
	), &Middlewares{Auth: authMiddleware}
}
