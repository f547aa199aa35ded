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

package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bellhopqa/bellhop/pkg/client"
	"github.com/bellhopqa/bellhop/pkg/config"
)

// newClient builds a client against a test server with fast retries so the
// backoff loop doesn't slow the suite down.
func newClient(server *httptest.Server) *client.Client {
	cfg := &config.Config{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
	}

	c := client.New(cfg, zerolog.Nop())
	c.SetRetryPolicy(2, time.Millisecond)

	return c
}

// stubTokens hands out queued tokens, repeating the last one, and records
// invalidations.
type stubTokens struct {
	mu          sync.Mutex
	queue       []string
	invalidated []string
}

func (s *stubTokens) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.queue[0]
	if len(s.queue) > 1 {
		s.queue = s.queue[1:]
	}

	return token, nil
}

func (s *stubTokens) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidated = append(s.invalidated, token)
}

func (s *stubTokens) Invalidated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.invalidated...)
}

// stubValidator counts validations and returns a fixed verdict.
type stubValidator struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *stubValidator) ValidateResponse(*http.Request, int, http.Header, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	return s.err
}

func (s *stubValidator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

// TestDoRetriesTransientFailures ensures server errors are retried until the
// call succeeds.
func TestDoRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newClient(server)

	resp, err := c.Do(t.Context(), client.Request{Method: http.MethodGet, Path: "/ping"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.EqualValues(t, 3, requests.Load())
}

// TestDoTransportExhaustion ensures a persistently failing server surfaces as
// a transport error once the retry budget is spent.
func TestDoTransportExhaustion(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newClient(server)

	_, err := c.Do(t.Context(), client.Request{Method: http.MethodGet, Path: "/ping"})

	transportErr := &client.TransportError{}
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 3, transportErr.Attempts)
	require.EqualValues(t, 3, requests.Load())
}

// TestDoRefreshesTokenOnce ensures an authenticated call that comes back 403
// invalidates the token and retries exactly once with a fresh one.
func TestDoRefreshesTokenOnce(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("Forbidden"))

			return
		}

		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tokens := &stubTokens{queue: []string{"stale", "fresh"}}

	c := newClient(server)
	c.SetTokenSource(tokens)

	resp, err := c.Do(t.Context(), client.Request{Method: http.MethodPut, Path: "/booking/1", Auth: true})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.EqualValues(t, 2, requests.Load())
	require.Equal(t, []string{"stale"}, tokens.Invalidated())
}

// TestDoAcceptAuthFailure ensures the refresh-and-retry stays out of the way
// when a 403 is the response under test.
func TestDoAcceptAuthFailure(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Forbidden"))
	}))
	defer server.Close()

	tokens := &stubTokens{queue: []string{"tok"}}

	c := newClient(server)
	c.SetTokenSource(tokens)

	resp, err := c.Do(t.Context(), client.Request{
		Method:            http.MethodDelete,
		Path:              "/booking/1",
		Auth:              true,
		AcceptAuthFailure: true,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.Status)
	require.Equal(t, "Forbidden", string(resp.Body))
	require.EqualValues(t, 1, requests.Load())
	require.Empty(t, tokens.Invalidated())
}

// TestDoRequestHeaders ensures every request carries the headers the API is
// picky about.
func TestDoRequestHeaders(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		header http.Header
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		header = r.Header.Clone()
		mu.Unlock()

		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newClient(server)
	c.SetTokenSource(&stubTokens{queue: []string{"tok"}})

	resp, err := c.Do(t.Context(), client.Request{
		Method: http.MethodPost,
		Path:   "/booking",
		Body:   map[string]string{"firstname": "Hazel"},
		Auth:   true,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	// Test 1: JSON is advertised on every call, which clears the API's 418
	// check on mutating requests.
	require.Equal(t, "application/json", header.Get("Accept"))
	require.Equal(t, "application/json", header.Get("Content-Type"))

	// Test 2: the token rides both the cookie and the bearer header.
	require.Equal(t, "token=tok", header.Get("Cookie"))
	require.Equal(t, "Bearer tok", header.Get("Authorization"))

	// Test 3: W3C trace context is attached and its trace ID surfaced on
	// the response for log correlation.
	require.Regexp(t, `^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`, header.Get("Traceparent"))
	require.Equal(t, "test-automation=bellhop", header.Get("Tracestate"))
	require.Equal(t, strings.Split(header.Get("Traceparent"), "-")[1], resp.TraceID)
}

// TestDoContractValidation ensures responses pass through the attached
// validator and rejections surface as contract errors naming the route.
func TestDoContractValidation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	// Test 1: a passing validator leaves the response untouched.
	passing := &stubValidator{}

	c := newClient(server)
	c.SetValidator(passing)

	resp, err := c.Do(t.Context(), client.Request{Method: http.MethodGet, Path: "/ping"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 1, passing.Calls())

	// Test 2: a rejection becomes a contract error carrying the route.
	c.SetValidator(&stubValidator{err: errors.New("schema violation")})

	_, err = c.Do(t.Context(), client.Request{Method: http.MethodGet, Path: "/ping"})

	contractErr := &client.ContractError{}
	require.ErrorAs(t, err, &contractErr)
	require.Equal(t, http.MethodGet, contractErr.Method)
	require.Equal(t, "/ping", contractErr.Path)
}

// TestCreateToken ensures the auth endpoint's 200-with-reason quirk maps to a
// credential error rather than a parse failure.
func TestCreateToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string

		_ = json.NewDecoder(r.Body).Decode(&creds)

		if creds["password"] == "password123" {
			_, _ = w.Write([]byte(`{"token":"abc123"}`))

			return
		}

		_, _ = w.Write([]byte(`{"reason":"Bad credentials"}`))
	}))
	defer server.Close()

	c := newClient(server)

	// Test 1: good credentials yield a token.
	token, err := c.CreateToken(t.Context(), "admin", "password123")
	require.NoError(t, err)
	require.Equal(t, "abc123", token)

	// Test 2: bad credentials are reported as such.
	_, err = c.CreateToken(t.Context(), "admin", "wrong")
	require.ErrorIs(t, err, client.ErrBadCredentials)
}

// TestDeleteBookingIdempotent ensures cleanup can delete the same booking
// twice without error.
func TestDeleteBookingIdempotent(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("Created"))

			return
		}

		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
	}))
	defer server.Close()

	c := newClient(server)
	c.SetTokenSource(&stubTokens{queue: []string{"tok"}})

	// Test 1: the API acknowledges deletion with its odd 201.
	require.NoError(t, c.DeleteBooking(t.Context(), 42))

	// Test 2: deleting again hits 404, which is still a success so cleanup
	// stays idempotent.
	require.NoError(t, c.DeleteBooking(t.Context(), 42))
}
