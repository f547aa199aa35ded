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

package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// State describes where a token is in its lifecycle.
type State int32

const (
	StateUnauthenticated State = iota
	StateValid
	StateExpired
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// AuthError means a token could not be acquired even after the single retry.
// It is fatal for the scenario that hit it; the transport layer never retries
// it.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Authenticator acquires a fresh token from the API.
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

// expiryLeeway refreshes slightly before the wall-clock expiry so a token
// never dies mid-request.
const expiryLeeway = 30 * time.Second

// Manager owns a single token and serialises refreshes: concurrent callers
// during a refresh block until the one in-flight refresh completes, then
// share its result. Construct one and pass it by reference wherever a token
// is needed; it is not a package singleton.
type Manager struct {
	mu            sync.Mutex
	authenticator Authenticator
	ttl           time.Duration
	log           zerolog.Logger

	token  string
	expiry time.Time
	state  atomic.Int32
}

// NewManager creates a manager. ttl is the assumed lifetime for opaque
// tokens; JWTs carry their own expiry and override it.
func NewManager(authenticator Authenticator, ttl time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		authenticator: authenticator,
		ttl:           ttl,
		log:           log.With().Str("component", "auth").Logger(),
	}
}

// State reports the lifecycle state as of the last token operation. Expiry
// of an idle token is observed on the next Token call.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// Token returns a valid token, acquiring or refreshing one if needed. A
// refresh failure is retried exactly once; a second failure returns
// *AuthError.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && !m.expired() {
		return m.token, nil
	}

	if m.token != "" {
		m.setState(StateExpired)
		m.log.Debug().Msg("token expired")
	}

	m.setState(StateRefreshing)

	token, err := m.authenticate(ctx)
	if err != nil {
		m.token = ""
		m.setState(StateUnauthenticated)

		return "", &AuthError{Err: err}
	}

	m.token = token
	m.expiry = m.computeExpiry(token)
	m.setState(StateValid)

	m.log.Debug().Time("expiry", m.expiry).Msg("token refreshed")

	return token, nil
}

// Invalidate marks the token expired after a server-side rejection. The
// token argument guards against a stale rejection discarding a newer token:
// only the current token can be invalidated.
func (m *Manager) Invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == "" || token != m.token {
		return
	}

	m.expiry = time.Time{}
	m.setState(StateExpired)

	m.log.Debug().Msg("token invalidated")
}

// Prime seeds the manager with a token recovered from a previous session.
// Tokens at or past their expiry are ignored.
func (m *Manager) Prime(token string, expiry time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == "" || !time.Now().Before(expiry.Add(-expiryLeeway)) {
		return
	}

	m.token = token
	m.expiry = expiry
	m.setState(StateValid)
}

// Snapshot returns the current token and expiry for persistence, and whether
// they are worth persisting.
func (m *Manager) Snapshot() (string, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" || m.expired() {
		return "", time.Time{}, false
	}

	return m.token, m.expiry, true
}

// expired must be called with the lock held.
func (m *Manager) expired() bool {
	return !time.Now().Before(m.expiry.Add(-expiryLeeway))
}

// authenticate runs the authenticator with a single retry.
func (m *Manager) authenticate(ctx context.Context) (string, error) {
	token, err := m.authenticator.Authenticate(ctx)
	if err == nil {
		return token, nil
	}

	m.log.Warn().Err(err).Msg("authentication failed, retrying once")

	token, retryErr := m.authenticator.Authenticate(ctx)
	if retryErr == nil {
		return token, nil
	}

	return "", fmt.Errorf("after retry: %w", retryErr)
}

// computeExpiry prefers the token's own exp claim when it parses as a JWT,
// falling back to the configured TTL for opaque tokens.
func (m *Manager) computeExpiry(token string) time.Time {
	if exp, ok := jwtExpiry(token); ok {
		return exp
	}

	return time.Now().Add(m.ttl)
}

// jwtExpiry extracts the exp claim without verifying the signature; the
// client only needs a refresh hint, not trust.
func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
