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

// Package mockbooker reimplements the hosted booking API in memory, faithful
// to its odd status codes, so scenario suites can run without the shared
// service and its scheduled data resets.
package mockbooker

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/bellhopqa/bellhop/pkg/config"
)

// Options are the mock server's configurable parameters.
type Options struct {
	// Addr is the listen address.
	Addr string

	// Username and Password are the credentials /auth accepts.
	Username string
	Password string

	// TokenTTL bounds how long an issued token verifies.
	TokenTTL time.Duration
}

// AddFlags registers the options with the flag set.
func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.Addr, "addr", ":3001", "Address to listen on.")
	f.StringVar(&o.Username, "username", config.DefaultUsername, "Username accepted by the auth endpoint.")
	f.StringVar(&o.Password, "password", config.DefaultPassword, "Password accepted by the auth endpoint.")
	f.DurationVar(&o.TokenTTL, "token-ttl", time.Hour, "Lifetime of issued tokens.")
}

// Server is a local stand in for the hosted booking API, seeded with sample
// bookings and serving the same endpoints with the same status quirks.
type Server struct {
	options *Options
	handler *Handler
	log     zerolog.Logger
}

// NewServer creates a seeded mock server.
func NewServer(options *Options, log zerolog.Logger) (*Server, error) {
	store := NewStore()
	store.Seed()

	tokens, err := newTokenIssuer(options.TokenTTL)
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		store:    store,
		tokens:   tokens,
		faults:   &faultState{},
		username: options.Username,
		password: options.Password,
		log:      log,
	}

	return &Server{
		options: options,
		handler: handler,
		log:     log,
	}, nil
}

// FailNext arms fault injection: the next n ping or booking requests answer
// with the given status.
func (s *Server) FailNext(n, status int) {
	s.handler.faults.arm(n, status)
}

// Router builds the HTTP handler, usable directly with httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.logRequests)

	s.handler.Routes(r)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", wrapped.Status()).Msg("request")
	})
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.options.Addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.options.Addr).Msg("mock booking API listening")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
