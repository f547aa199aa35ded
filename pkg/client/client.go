/*
Copyright 2025-2026 the Bellhop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellhopqa/bellhop/pkg/config"
)

// TokenSource supplies auth tokens and accepts invalidation signals. The
// token lifecycle manager satisfies this; passing it by reference here keeps
// refresh coordination in one place however many clients share it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(token string)
}

// ResponseValidator checks a response against an API contract.
type ResponseValidator interface {
	ValidateResponse(req *http.Request, status int, header http.Header, body []byte) error
}

// Request describes a single API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is marshaled to JSON when non-nil.
	Body interface{}

	// Auth injects the current token and refreshes it once on 401/403.
	Auth bool

	// AcceptAuthFailure suppresses the refresh-and-retry when a 401/403
	// is the outcome the caller is testing for.
	AcceptAuthFailure bool
}

// Response is the raw result of a request, untouched by any assertion logic.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Duration time.Duration
	TraceID  string

	// request backs contract validation, which needs the route.
	request *http.Request
}

// Client is the framework's HTTP client for the booking API.
type Client struct {
	baseURL    string
	client     *http.Client
	tokens     TokenSource
	validator  ResponseValidator
	endpoints  *Endpoints
	maxRetries int
	retryBase  time.Duration

	logRequests  bool
	logResponses bool
	log          zerolog.Logger
}

// New creates a client from configuration. Token source and validator are
// optional collaborators attached with the setters below.
func New(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		endpoints:    NewEndpoints(),
		maxRetries:   defaultMaxRetries,
		retryBase:    defaultRetryBase,
		logRequests:  cfg.LogRequests,
		logResponses: cfg.LogResponses,
		log:          log.With().Str("component", "client").Logger(),
	}
}

// SetTokenSource attaches the token lifecycle manager.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// SetValidator attaches a contract validator consulted on every response.
func (c *Client) SetValidator(validator ResponseValidator) {
	c.validator = validator
}

// SetRetryPolicy overrides the transport retry bounds.
func (c *Client) SetRetryPolicy(maxRetries int, base time.Duration) {
	c.maxRetries = maxRetries
	c.retryBase = base
}

// Endpoints exposes the API path layout.
func (c *Client) Endpoints() *Endpoints {
	return c.endpoints
}

// generateTraceID creates a new W3C trace ID.
// we are using this to create a new trace ID for each request so if an error occurs we can find the request in the logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	traceID := generateTraceID()
	spanID := generateSpanID()

	return fmt.Sprintf("00-%s-%s-01", traceID, spanID)
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// Do executes a request, retrying transient transport failures with backoff
// and refreshing the auth token once when an authenticated call comes back
// 401 or 403.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	resp, token, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}

	if r.Auth && !r.AcceptAuthFailure && isAuthFailure(resp.Status) && c.tokens != nil {
		c.log.Debug().
			Int("status", resp.Status).
			Str("path", r.Path).
			Msg("auth failure, refreshing token and retrying once")

		c.tokens.Invalidate(token)

		resp, _, err = c.send(ctx, r)
		if err != nil {
			return nil, err
		}
	}

	if c.validator != nil {
		if verr := c.validator.ValidateResponse(resp.request, resp.Status, resp.Header, resp.Body); verr != nil {
			return nil, &ContractError{Method: r.Method, Path: r.Path, Err: verr}
		}
	}

	return resp, nil
}

// send runs the transport retry loop around attempt.
func (c *Client) send(ctx context.Context, r Request) (*Response, string, error) {
	var bodyBytes []byte

	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}

		bodyBytes = data
	}

	var (
		lastErr error
		token   string
	)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(c.retryBase, attempt)

			c.log.Debug().
				Str("method", r.Method).
				Str("path", r.Path).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("retrying request")

			if err := sleepContext(ctx, delay); err != nil {
				return nil, token, err
			}
		}

		resp, tok, err := c.attempt(ctx, r, bodyBytes)
		token = tok

		if err != nil {
			if ctx.Err() != nil {
				return nil, token, ctx.Err()
			}

			lastErr = err

			continue
		}

		if retryableStatus(resp.Status) {
			lastErr = fmt.Errorf("server error: status %d, body: %s", resp.Status, string(resp.Body))
			continue
		}

		return resp, token, nil
	}

	return nil, token, &TransportError{Attempts: c.maxRetries + 1, Err: lastErr}
}

// attempt performs one round trip and reads the body.
func (c *Client) attempt(ctx context.Context, r Request, body []byte) (*Response, string, error) {
	fullURL := c.baseURL + r.Path
	if len(r.Query) > 0 {
		fullURL += "?" + r.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, fullURL, reader)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=bellhop")

	// The API replies 418 to mutating requests that don't accept JSON.
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string

	if r.Auth && c.tokens != nil {
		token, err = c.tokens.Token(ctx)
		if err != nil {
			return nil, "", err
		}

		// The API honours the cookie on some endpoints and the bearer
		// header on others, so send both.
		req.Header.Set("Cookie", "token="+token)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.log.Error().
			Str("method", r.Method).
			Str("path", r.Path).
			Dur("duration", duration).
			Str("trace_id", extractTraceID(traceParent)).
			Err(err).
			Msg("http request failed")

		return nil, token, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error().
			Str("method", r.Method).
			Str("path", r.Path).
			Int("status", resp.StatusCode).
			Str("trace_id", extractTraceID(traceParent)).
			Err(err).
			Msg("reading response body")

		return nil, token, fmt.Errorf("reading response body: %w", err)
	}

	if c.logRequests {
		c.log.Info().
			Str("method", r.Method).
			Str("path", r.Path).
			Int("status", resp.StatusCode).
			Dur("duration", duration).
			Str("trace_id", extractTraceID(traceParent)).
			Msg("request")
	}

	if c.logResponses && len(respBody) > 0 {
		c.log.Info().
			Str("method", r.Method).
			Str("path", r.Path).
			RawJSON("body", jsonOrQuoted(respBody)).
			Msg("response body")
	}

	return &Response{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     respBody,
		Duration: duration,
		TraceID:  extractTraceID(traceParent),
		request:  req,
	}, token, nil
}

// jsonOrQuoted keeps structured response logging valid when the server
// replies with bare text such as "Forbidden".
func jsonOrQuoted(body []byte) []byte {
	if json.Valid(body) {
		return body
	}

	quoted, err := json.Marshal(string(body))
	if err != nil {
		return []byte(`""`)
	}

	return quoted
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
