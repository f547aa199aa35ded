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

package mockbooker

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bellhopqa/bellhop/pkg/booking"
)

// Handler implements the booking API surface, quirks included: success
// statuses of 201 with text bodies, authentication failures reported as 200,
// and bookings that read back without their ID.
type Handler struct {
	store  *Store
	tokens *tokenIssuer
	faults *faultState

	username string
	password string

	log zerolog.Logger
}

// faultState makes the next n requests fail with a fixed status, for
// exercising a client's retry path.
type faultState struct {
	mu        sync.Mutex
	remaining int
	status    int
}

func (f *faultState) arm(n, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.remaining = n
	f.status = status
}

// consume returns the armed status for this request, or zero.
func (f *faultState) consume() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.remaining == 0 {
		return 0
	}

	f.remaining--

	return f.status
}

// Routes mounts the booking API. Fault injection covers ping and bookings
// but not auth, so arming a fault cannot eat a token request by accident.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/auth", h.CreateToken)

	r.Group(func(r chi.Router) {
		r.Use(h.injectFaults)

		r.Get("/ping", h.Ping)

		r.Route("/booking", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetBooking)

				r.Group(func(r chi.Router) {
					r.Use(h.requireToken)
					r.Use(h.requireAccept)

					r.Put("/", h.UpdateBooking)
					r.Patch("/", h.PartialUpdateBooking)
				})

				r.With(h.requireToken).Delete("/", h.DeleteBooking)
			})
		})
	})
}

func (h *Handler) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status := h.faults.consume(); status != 0 {
			h.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("injecting fault")

			writeText(w, status, http.StatusText(status))

			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireToken accepts the session cookie or a bearer header, cookie first,
// the way the real service resolves them.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerOrCookie(r)

		if token == "" || !h.tokens.Verify(token) {
			writeText(w, http.StatusForbidden, "Forbidden")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAccept reproduces the teapot: updates that do not accept JSON get a
// 418 back.
func (h *Handler) requireAccept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")

		if !strings.Contains(accept, "application/json") && !strings.Contains(accept, "*/*") {
			writeText(w, http.StatusTeapot, "I'm a Teapot")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerOrCookie(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

// Ping handles GET /ping. Healthy means 201, not 200.
func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusCreated, "Created")
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateToken handles POST /auth. Bad credentials are a 200 with a reason
// field, never a 401.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req authRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username != h.username || req.Password != h.password {
		writeJSON(w, http.StatusOK, map[string]string{"reason": "Bad credentials"})

		return
	}

	token, err := h.tokens.Issue(req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("unable to issue token")

		writeText(w, http.StatusInternalServerError, "Internal Server Error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ListBookings handles GET /booking with optional name and date filters.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var checkin, checkout *time.Time

	for name, out := range map[string]**time.Time{"checkin": &checkin, "checkout": &checkout} {
		value := query.Get(name)
		if value == "" {
			continue
		}

		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			writeText(w, http.StatusInternalServerError, "Internal Server Error")

			return
		}

		*out = &parsed
	}

	filter := func(b booking.Booking) bool {
		if firstname := query.Get("firstname"); firstname != "" && b.Firstname != firstname {
			return false
		}

		if lastname := query.Get("lastname"); lastname != "" && b.Lastname != lastname {
			return false
		}

		if checkin != nil && b.BookingDates.Checkin.Before(*checkin) {
			return false
		}

		if checkout != nil && b.BookingDates.Checkout.Before(*checkout) {
			return false
		}

		return true
	}

	ids := h.store.List(filter)

	result := make([]map[string]int, 0, len(ids))

	for _, id := range ids {
		result = append(result, map[string]int{"bookingid": id})
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateBooking handles POST /booking, wrapping the stored booking in the
// bookingid envelope. Malformed payloads are a 500, matching the service it
// imitates.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var b booking.Booking

	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || !validBooking(&b) {
		writeText(w, http.StatusInternalServerError, "Internal Server Error")

		return
	}

	id := h.store.Create(b)

	writeJSON(w, http.StatusOK, booking.Created{
		BookingID: id,
		Booking:   b,
	})
}

// GetBooking handles GET /booking/{id}. The booking comes back flat, without
// its ID.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		writeText(w, http.StatusNotFound, "Not Found")

		return
	}

	b, ok := h.store.Get(id)
	if !ok {
		writeText(w, http.StatusNotFound, "Not Found")

		return
	}

	writeJSON(w, http.StatusOK, b)
}

// UpdateBooking handles PUT /booking/{id}. A missing booking is a 405, not a
// 404.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")

		return
	}

	var b booking.Booking

	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || !validBooking(&b) {
		writeText(w, http.StatusBadRequest, "Bad Request")

		return
	}

	if !h.store.Update(id, b) {
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")

		return
	}

	writeJSON(w, http.StatusOK, b)
}

// PartialUpdateBooking handles PATCH /booking/{id} with a shallow merge.
func (h *Handler) PartialUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")

		return
	}

	current, ok := h.store.Get(id)
	if !ok {
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")

		return
	}

	var patch map[string]json.RawMessage

	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeText(w, http.StatusBadRequest, "Bad Request")

		return
	}

	merged, err := mergeBooking(current, patch)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Bad Request")

		return
	}

	h.store.Update(id, merged)

	writeJSON(w, http.StatusOK, merged)
}

// DeleteBooking handles DELETE /booking/{id}. Success is a 201; a missing
// booking is a 404 here rather than the real service's 405.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		writeText(w, http.StatusNotFound, "Not Found")

		return
	}

	if !h.store.Delete(id) {
		writeText(w, http.StatusNotFound, "Not Found")

		return
	}

	writeText(w, http.StatusCreated, "Created")
}

func bookingID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))

	return id, err == nil
}

func validBooking(b *booking.Booking) bool {
	return b.Firstname != "" && b.Lastname != "" &&
		!b.BookingDates.Checkin.IsZero() && !b.BookingDates.Checkout.IsZero()
}

// mergeBooking applies a shallow JSON merge, the real service replaces whole
// top level fields rather than descending into bookingdates.
func mergeBooking(current booking.Booking, patch map[string]json.RawMessage) (booking.Booking, error) {
	data, err := json.Marshal(current)
	if err != nil {
		return booking.Booking{}, err
	}

	var base map[string]json.RawMessage

	if err := json.Unmarshal(data, &base); err != nil {
		return booking.Booking{}, err
	}

	for key, value := range patch {
		base[key] = value
	}

	merged, err := json.Marshal(base)
	if err != nil {
		return booking.Booking{}, err
	}

	var result booking.Booking

	if err := json.Unmarshal(merged, &result); err != nil {
		return booking.Booking{}, err
	}

	return result, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	_, _ = w.Write([]byte(body))
}
