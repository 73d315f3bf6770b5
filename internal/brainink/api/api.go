// Package api performs JSON requests against the BrainInk services and maps
// failures to RemoteFetchError.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/brainink/hub/internal/brainink/types"
	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/pkg/client"
)

// Request describes one remote call.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Body   any
}

// API sends requests through the configured HTTP client.
type API struct {
	client *client.Client
}

// New creates an API using httpClient.
func New(httpClient *client.Client) *API {
	return &API{client: httpClient}
}

// Do sends r and returns the raw response body of a 2xx response.
func (a *API) Do(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	builder := a.client.NewRequest().
		Method(method).
		URL(r.URL)

	for key, values := range r.Query {
		for _, value := range values {
			builder = builder.Query(key, value)
		}
	}

	if r.Body != nil {
		builder = builder.MarshalBody(r.Body)
	}

	resp, err := builder.Do(ctx)
	if resp != nil {
		defer resp.Body.Close()
	}

	if err != nil {
		fetchErr := &RemoteFetchError{Method: method, URL: r.URL, Err: err}

		switch {
		case resp != nil:
			fetchErr.StatusCode = resp.StatusCode
			fetchErr.Body = readSnippet(resp.Body)
		case errors.Is(err, ErrSessionExpired):
			fetchErr.StatusCode = http.StatusUnauthorized
		}

		return nil, fetchErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteFetchError{Method: method, URL: r.URL, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}

		return nil, &RemoteFetchError{
			Method:     method,
			URL:        r.URL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}

// GetJSON sends a GET to rawURL and decodes the body into v.
func (a *API) GetJSON(ctx context.Context, rawURL string, v any) error {
	return a.DoJSON(ctx, Request{Method: http.MethodGet, URL: rawURL}, v)
}

// PostJSON sends body as JSON to rawURL and decodes the response into v.
func (a *API) PostJSON(ctx context.Context, rawURL string, body, v any) error {
	return a.DoJSON(ctx, Request{Method: http.MethodPost, URL: rawURL, Body: body}, v)
}

// DoJSON sends r and decodes the response into v. A nil v discards the body.
func (a *API) DoJSON(ctx context.Context, r Request, v any) error {
	body, err := a.Do(ctx, r)
	if err != nil {
		return err
	}

	if v == nil {
		return nil
	}

	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", r.URL, err)
	}

	return nil
}

// GetEnvelope sends r and decodes the response through env.
func (a *API) GetEnvelope(ctx context.Context, r Request, env types.Envelope) error {
	body, err := a.Do(ctx, r)
	if err != nil {
		return err
	}

	if err := env.Decode(body); err != nil {
		return fmt.Errorf("failed to decode %s: %w", r.URL, err)
	}

	return nil
}

func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(body)
}
