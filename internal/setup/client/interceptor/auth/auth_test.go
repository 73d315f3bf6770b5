package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brainink/hub/internal/brainink/api"
	"github.com/brainink/hub/internal/session"
	"github.com/brainink/hub/internal/setup/client/interceptor/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forward(_ context.Context, httpClient *http.Client, req *http.Request) (*http.Response, error) {
	return httpClient.Do(req)
}

func TestMiddleware_SetsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken(t.Context(), "tok"))

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := auth.New(store).Process(t.Context(), srv.Client(), req, forward)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "no-cache", got.Get("Cache-Control"))
	assert.Equal(t, "no-cache", got.Get("Pragma"))
}

func TestMiddleware_ClearsOnUnauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantToken bool
		wantErr   error
	}{
		{name: "unauthorized clears", status: http.StatusUnauthorized, wantToken: false, wantErr: api.ErrSessionExpired},
		{name: "server error keeps", status: http.StatusInternalServerError, wantToken: true},
		{name: "ok keeps", status: http.StatusOK, wantToken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			store := session.NewMemoryStore()
			require.NoError(t, store.SetToken(t.Context(), "tok"))

			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
			require.NoError(t, err)

			resp, err := auth.New(store).Process(t.Context(), srv.Client(), req, forward)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, resp)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			_, err = store.Token(t.Context())
			if tt.wantToken {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, session.ErrNoCredential)
			}
		})
	}
}

func TestMiddleware_NoCredential(t *testing.T) {
	t.Parallel()

	var authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := auth.New(session.NewMemoryStore()).Process(t.Context(), srv.Client(), req, forward)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, authHeader)
}
