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

// Package runner executes loaded scenarios against the booking API through a
// bounded worker pool. Whatever happens to individual scenarios, every loaded
// scenario ends the run with exactly one outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spjmurray/go-util/pkg/set"

	"github.com/bellhopqa/bellhop/pkg/auth"
	"github.com/bellhopqa/bellhop/pkg/booking"
	"github.com/bellhopqa/bellhop/pkg/client"
	"github.com/bellhopqa/bellhop/pkg/healing"
	"github.com/bellhopqa/bellhop/pkg/recovery"
	"github.com/bellhopqa/bellhop/pkg/registry"
	"github.com/bellhopqa/bellhop/pkg/report"
)

// DefaultParallelism is the worker count when the caller does not choose one.
const DefaultParallelism = 4

const defaultTimeout = 10 * time.Minute

var ErrNotConfigured = errors.New("runner not fully configured")

// Options wires the collaborators a run needs. Client, Registry, Reporter and
// Engine are required, the rest are optional features.
type Options struct {
	Client   *client.Client
	Registry *registry.Registry
	Reporter report.Reporter
	Engine   *healing.Engine

	// Auth enables token snapshotting into the recovery state.
	Auth *auth.Manager

	// Store enables crash recovery and cleanup tracking.
	Store *recovery.Store

	// Parallel is the worker count.
	Parallel int

	// Timeout bounds the whole run.
	Timeout time.Duration

	// Cleanup deletes created bookings after the run.
	Cleanup bool
}

// Runner owns one run of the suite.
type Runner struct {
	client   *client.Client
	registry *registry.Registry
	reporter report.Reporter
	engine   *healing.Engine
	auth     *auth.Manager
	store    *recovery.Store

	parallel int
	timeout  time.Duration
	cleanup  bool

	log zerolog.Logger
}

func New(options *Options, log zerolog.Logger) (*Runner, error) {
	if options.Client == nil {
		return nil, fmt.Errorf("%w: missing client", ErrNotConfigured)
	}

	if options.Registry == nil {
		return nil, fmt.Errorf("%w: missing registry", ErrNotConfigured)
	}

	if options.Reporter == nil {
		return nil, fmt.Errorf("%w: missing reporter", ErrNotConfigured)
	}

	if options.Engine == nil {
		return nil, fmt.Errorf("%w: missing healing engine", ErrNotConfigured)
	}

	parallel := options.Parallel
	if parallel <= 0 {
		parallel = DefaultParallelism
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Runner{
		client:   options.Client,
		registry: options.Registry,
		reporter: options.Reporter,
		engine:   options.Engine,
		auth:     options.Auth,
		store:    options.Store,
		parallel: parallel,
		timeout:  timeout,
		cleanup:  options.Cleanup,
		log:      log.With().Str("component", "runner").Logger(),
	}, nil
}

// Run executes every registered scenario and finalizes the report.
func (r *Runner) Run(ctx context.Context) (report.Summary, error) {
	scenarios := r.registry.Scenarios()

	r.recoverPrevious(ctx)

	runID := booking.GenerateTestID()

	if r.store != nil {
		if err := r.store.Begin(runID); err != nil {
			return report.Summary{}, fmt.Errorf("unable to begin recovery state: %w", err)
		}
	}

	r.log.Info().Str("run", runID).Int("scenarios", len(scenarios)).Int("parallel", r.parallel).Msg("run starting")

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	jobs := make(chan *registry.Scenario, len(scenarios))
	results := make(chan healing.Outcome, len(scenarios))

	var wg sync.WaitGroup

	for i := 0; i < r.parallel; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			r.worker(runCtx, jobs, results)
		}()
	}

	for _, scenario := range scenarios {
		jobs <- scenario
	}

	close(jobs)

	// Results funnel through a single collector so the reporter and the
	// reported-name list never see concurrent writers.
	var reported []string

	done := make(chan struct{})

	go func() {
		defer close(done)

		for outcome := range results {
			r.reporter.Record(outcome)

			reported = append(reported, outcome.Scenario)
		}
	}()

	wg.Wait()
	close(results)
	<-done

	r.reconcile(scenarios, reported)

	r.snapshotToken()

	// Cleanup runs on the parent context: the suite deadline must not strand
	// test data.
	r.runCleanup(ctx)

	return r.reporter.Finalize()
}

// worker executes scenarios until the queue closes. Once the run context
// dies it keeps draining, failing the remainder without executing them.
func (r *Runner) worker(ctx context.Context, jobs <-chan *registry.Scenario, results chan<- healing.Outcome) {
	for scenario := range jobs {
		if ctx.Err() != nil {
			results <- healing.Outcome{
				Scenario: scenario.Name,
				Status:   healing.StatusFail,
				Detail:   "suite timeout before execution",
			}

			continue
		}

		results <- r.runScenario(ctx, scenario)
	}
}

// reconcile emits a failure for anything registered but never reported, so a
// lost result cannot silently shrink the run.
func (r *Runner) reconcile(scenarios []*registry.Scenario, reported []string) {
	names := make([]string, 0, len(scenarios))

	for _, scenario := range scenarios {
		names = append(names, scenario.Name)
	}

	missing := set.New[string](names...).Difference(set.New[string](reported...))

	for name := range missing.All() {
		r.log.Error().Str("scenario", name).Msg("scenario produced no outcome")

		r.reporter.Record(healing.Outcome{
			Scenario: name,
			Status:   healing.StatusFail,
			Detail:   "no outcome produced",
		})
	}
}

func (r *Runner) snapshotToken() {
	if r.store == nil || r.auth == nil {
		return
	}

	token, expiry, ok := r.auth.Snapshot()
	if !ok {
		return
	}

	if err := r.store.SnapshotToken(token, expiry); err != nil {
		r.log.Warn().Err(err).Msg("unable to snapshot token")
	}
}

// recoverPrevious deletes bookings a crashed run left behind and reuses its
// token when still fresh.
func (r *Runner) recoverPrevious(ctx context.Context) {
	if r.store == nil {
		return
	}

	state := r.store.Load()
	if state == nil {
		return
	}

	if r.auth != nil && state.Token != "" && time.Now().Before(state.TokenExpiry) {
		r.log.Info().Str("run", state.RunID).Msg("reusing token from previous run")

		r.auth.Prime(state.Token, state.TokenExpiry)
	}

	if len(state.PendingBookings) == 0 {
		return
	}

	r.log.Info().Str("run", state.RunID).Ints("bookings", state.PendingBookings).Msg("cleaning up after previous run")

	for _, id := range state.PendingBookings {
		if err := r.client.DeleteBooking(ctx, id); err != nil {
			r.log.Warn().Int("booking", id).Err(err).Msg("unable to clean up booking")
		}
	}
}

// runCleanup deletes tracked bookings, then drops the state file once nothing
// is left pending. Failed deletions stay tracked for the next run.
func (r *Runner) runCleanup(ctx context.Context) {
	if r.store == nil || !r.cleanup {
		return
	}

	for _, id := range r.store.Pending() {
		if err := r.client.DeleteBooking(ctx, id); err != nil {
			r.log.Warn().Int("booking", id).Err(err).Msg("unable to clean up booking, leaving it tracked")

			continue
		}

		if err := r.store.ForgetBooking(id); err != nil {
			r.log.Warn().Int("booking", id).Err(err).Msg("unable to untrack booking")
		}
	}

	if len(r.store.Pending()) == 0 {
		if err := r.store.Clear(); err != nil {
			r.log.Warn().Err(err).Msg("unable to clear recovery state")
		}
	}
}
