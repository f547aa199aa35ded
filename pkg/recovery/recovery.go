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

// Package recovery persists enough run state that a successor run can clean
// up after a crash: booking IDs created but not yet deleted, and the auth
// token so the cleanup does not burn another login.
package recovery

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the on-disk record of a run in flight.
type State struct {
	// RunID identifies the run that wrote the state.
	RunID string `json:"runId"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"startedAt"`

	// Token and TokenExpiry snapshot the auth manager.
	Token       string    `json:"token,omitempty"`
	TokenExpiry time.Time `json:"tokenExpiry,omitempty"`

	// PendingBookings are booking IDs created but not yet cleaned up.
	PendingBookings []int `json:"pendingBookings,omitempty"`
}

// Store owns the state file. Mutations persist immediately so the file is
// accurate at the moment of a crash, which is the only moment it matters.
type Store struct {
	mu    sync.Mutex
	path  string
	state State
	log   zerolog.Logger
}

func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  log.With().Str("component", "recovery").Logger(),
	}
}

// Load returns the state a previous run left behind, or nil when there is
// none. A corrupt file is logged and discarded rather than surfaced: recovery
// must never stop a run from starting.
func (s *Store) Load() *State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Str("path", s.path).Err(err).Msg("unable to read recovery state")
		}

		return nil
	}

	state := &State{}

	if err := json.Unmarshal(data, state); err != nil {
		s.log.Warn().Str("path", s.path).Err(err).Msg("discarding corrupt recovery state")

		return nil
	}

	return state
}

// Begin resets the store for a new run and persists the empty record.
func (s *Store) Begin(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	}

	return s.save()
}

// TrackBooking records a created booking pending cleanup.
func (s *Store) TrackBooking(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PendingBookings = append(s.state.PendingBookings, id)

	return s.save()
}

// ForgetBooking drops a booking that has been cleaned up.
func (s *Store) ForgetBooking(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, pending := range s.state.PendingBookings {
		if pending != id {
			continue
		}

		s.state.PendingBookings = append(s.state.PendingBookings[:i], s.state.PendingBookings[i+1:]...)

		break
	}

	return s.save()
}

// SnapshotToken records the current auth token for reuse by a recovering run.
func (s *Store) SnapshotToken(token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Token = token
	s.state.TokenExpiry = expiry

	return s.save()
}

// Pending returns the bookings still awaiting cleanup.
func (s *Store) Pending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]int, len(s.state.PendingBookings))
	copy(pending, s.state.PendingBookings)

	return pending
}

// Clear removes the state file at the end of a clean run.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')

	// The file carries a live token, keep it owner-only.
	return os.WriteFile(s.path, data, 0o600)
}
