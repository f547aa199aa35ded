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

//nolint:err113 // dynamic errors carry trace IDs for debugging
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bellhopqa/bellhop/pkg/booking"
)

// ErrBadCredentials means the auth endpoint rejected the configured
// username/password pair.
var ErrBadCredentials = errors.New("authentication rejected: bad credentials")

// doExpect runs a request and enforces an expected status, producing an
// error that carries the trace ID for log correlation.
func (c *Client) doExpect(ctx context.Context, r Request, expectedStatus int) (*Response, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}

	if resp.Status != expectedStatus {
		return resp, fmt.Errorf("unexpected status code: expected %d, got %d, body: %s (trace ID: %s)",
			expectedStatus, resp.Status, string(resp.Body), resp.TraceID)
	}

	return resp, nil
}

// Ping checks API health. The service reports 201 when healthy.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doExpect(ctx, Request{Method: http.MethodGet, Path: c.endpoints.Ping()}, http.StatusCreated)
	if err != nil {
		return fmt.Errorf("pinging API: %w", err)
	}

	return nil
}

// CreateToken authenticates and returns a fresh token. The API replies 200
// with a reason field instead of an error status on bad credentials.
func (c *Client) CreateToken(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	resp, err := c.doExpect(ctx, Request{
		Method: http.MethodPost,
		Path:   c.endpoints.CreateToken(),
		Body:   body,
	}, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("creating token: %w", err)
	}

	var result struct {
		Token  string `json:"token"`
		Reason string `json:"reason"`
	}

	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("unmarshaling token response: %w", err)
	}

	if result.Token == "" {
		if result.Reason != "" {
			return "", fmt.Errorf("%w: %s", ErrBadCredentials, result.Reason)
		}

		return "", ErrBadCredentials
	}

	return result.Token, nil
}

// CreateBooking creates a booking and returns the ID-bearing envelope.
func (c *Client) CreateBooking(ctx context.Context, payload interface{}) (*booking.Created, error) {
	resp, err := c.doExpect(ctx, Request{
		Method: http.MethodPost,
		Path:   c.endpoints.CreateBooking(),
		Body:   payload,
	}, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	var created booking.Created
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return nil, fmt.Errorf("unmarshaling booking response: %w", err)
	}

	return &created, nil
}

// GetBooking retrieves a booking by ID. The response body is the flat
// booking without its ID.
func (c *Client) GetBooking(ctx context.Context, bookingID int) (*booking.Booking, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: c.endpoints.GetBooking(bookingID)})
	if err != nil {
		return nil, fmt.Errorf("getting booking: %w", err)
	}

	switch resp.Status {
	case http.StatusOK:
		var b booking.Booking
		if err := json.Unmarshal(resp.Body, &b); err != nil {
			return nil, fmt.Errorf("unmarshaling booking response: %w", err)
		}

		return &b, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("booking %d not found (status: %d)", bookingID, resp.Status)
	default:
		return nil, fmt.Errorf("unexpected status code: %d, body: %s (trace ID: %s)", resp.Status, string(resp.Body), resp.TraceID)
	}
}

// ListBookingIDs lists booking IDs, optionally filtered by name or stay
// dates via query parameters.
func (c *Client) ListBookingIDs(ctx context.Context, filter url.Values) ([]int, error) {
	resp, err := c.doExpect(ctx, Request{
		Method: http.MethodGet,
		Path:   c.endpoints.ListBookings(),
		Query:  filter,
	}, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}

	var entries []struct {
		BookingID int `json:"bookingid"`
	}

	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, fmt.Errorf("unmarshaling booking list: %w", err)
	}

	ids := make([]int, len(entries))
	for i, entry := range entries {
		ids[i] = entry.BookingID
	}

	return ids, nil
}

// UpdateBooking replaces a booking. Requires auth.
func (c *Client) UpdateBooking(ctx context.Context, bookingID int, payload interface{}) (*booking.Booking, error) {
	resp, err := c.doExpect(ctx, Request{
		Method: http.MethodPut,
		Path:   c.endpoints.UpdateBooking(bookingID),
		Body:   payload,
		Auth:   true,
	}, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("updating booking: %w", err)
	}

	var b booking.Booking
	if err := json.Unmarshal(resp.Body, &b); err != nil {
		return nil, fmt.Errorf("unmarshaling booking response: %w", err)
	}

	return &b, nil
}

// PartialUpdateBooking patches a subset of booking fields. Requires auth.
func (c *Client) PartialUpdateBooking(ctx context.Context, bookingID int, patch map[string]interface{}) (*booking.Booking, error) {
	resp, err := c.doExpect(ctx, Request{
		Method: http.MethodPatch,
		Path:   c.endpoints.PartialUpdateBooking(bookingID),
		Body:   patch,
		Auth:   true,
	}, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("partially updating booking: %w", err)
	}

	var b booking.Booking
	if err := json.Unmarshal(resp.Body, &b); err != nil {
		return nil, fmt.Errorf("unmarshaling booking response: %w", err)
	}

	return &b, nil
}

// DeleteBooking deletes a booking. The API acknowledges with 201; deleting a
// booking that is already gone is not an error so cleanup stays idempotent.
func (c *Client) DeleteBooking(ctx context.Context, bookingID int) error {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   c.endpoints.DeleteBooking(bookingID),
		Auth:   true,
	})
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}

	switch resp.Status {
	case http.StatusCreated, http.StatusNotFound, http.StatusMethodNotAllowed:
		return nil
	default:
		return fmt.Errorf("unexpected status code: %d, body: %s (trace ID: %s)", resp.Status, string(resp.Body), resp.TraceID)
	}
}
