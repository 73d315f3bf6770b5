// Package auth provides the axonet middleware that attaches the bearer
// credential to every outgoing request and drops it when the backend
// answers 401.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/session"
	"github.com/jaxron/axonet/pkg/client/logger"
	"github.com/jaxron/axonet/pkg/client/middleware"
)

// Middleware injects authentication and JSON headers.
type Middleware struct {
	store  session.Store
	logger logger.Logger
}

// New creates a new Middleware reading the credential from store.
func New(store session.Store) *Middleware {
	return &Middleware{
		store:  store,
		logger: &logger.NoOpLogger{},
	}
}

// Process sets the request headers and forwards the request. On HTTP 401 it
// clears the stored credential and returns the response with api.ErrSessionExpired.
func (m *Middleware) Process(
	ctx context.Context, httpClient *http.Client, req *http.Request, next middleware.NextFunc,
) (*http.Response, error) {
	token, err := m.store.Token(ctx)
	if err != nil && !errors.Is(err, session.ErrNoCredential) {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := next(ctx, httpClient, req)
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		m.logger.WithFields(
			logger.String("url", req.URL.String()),
		).Warn("Session expired, clearing stored credential")

		if clearErr := m.store.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			m.logger.WithFields(
				logger.String("error", clearErr.Error()),
			).Error("Failed to clear stored credential")
		}

		if err == nil {
			err = api.ErrSessionExpired
		}
	}

	return resp, err
}

// SetLogger sets the logger for the middleware.
func (m *Middleware) SetLogger(l logger.Logger) {
	m.logger = l
}
