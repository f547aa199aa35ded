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
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// defaultMaxRetries is the number of retries after the initial
	// attempt, so a request is tried at most four times.
	defaultMaxRetries = 3

	// defaultRetryBase seeds the exponential backoff: 1s, 2s, 4s.
	defaultRetryBase = time.Second
)

// TransportError reports a request that failed at the transport level after
// all retries were spent. Scenario outcomes distinguish it from assertion
// failures.
type TransportError struct {
	// Attempts is the total number of attempts made.
	Attempts int

	// Err is the failure from the last attempt.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ContractError reports a response that violated the API's OpenAPI document.
type ContractError struct {
	Method string
	Path   string
	Err    error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// retryableStatus reports whether a status code indicates a transient server
// failure worth retrying.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// backoff returns the delay before the given retry attempt (1-based),
// doubling each time.
func backoff(base time.Duration, attempt int) time.Duration {
	return base << (attempt - 1)
}

// sleepContext sleeps for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
