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

// Package report collects scenario outcomes and renders them for humans and
// for CI tooling.
package report

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellhopqa/bellhop/pkg/healing"
)

// Summary holds the headline numbers of a run. Healed is deliberately its own
// counter: a healed scenario succeeded, but folding it into passed would hide
// exactly the drift this tool exists to surface.
type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Healed   int           `json:"healed"`
	Failed   int           `json:"failed"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// Success reports whether the run is green, healed outcomes included.
func (s Summary) Success() bool {
	return s.Failed == 0
}

// Sink renders a finalized report somewhere.
type Sink interface {
	Write(summary Summary, outcomes []healing.Outcome) error
}

// Reporter collects outcomes and emits the run summary.
type Reporter interface {
	// Record stores one outcome. Safe for concurrent use.
	Record(outcome healing.Outcome)

	// Finalize writes all sinks and returns the summary. Calling it again
	// returns the same summary without rewriting anything.
	Finalize() (Summary, error)
}

type reporter struct {
	mu       sync.Mutex
	started  time.Time
	outcomes []healing.Outcome
	sinks    []Sink
	log      zerolog.Logger

	finalized bool
	summary   Summary
	err       error
}

// New returns a reporter that writes to the given sinks on Finalize.
func New(log zerolog.Logger, sinks ...Sink) Reporter {
	return &reporter{
		started: time.Now(),
		sinks:   sinks,
		log:     log.With().Str("component", "report").Logger(),
	}
}

func (r *reporter) Record(outcome healing.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outcomes = append(r.outcomes, outcome)
}

func (r *reporter) Finalize() (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return r.summary, r.err
	}

	r.finalized = true

	outcomes := make([]healing.Outcome, len(r.outcomes))
	copy(outcomes, r.outcomes)

	// Completion order is whatever the pool produced, sort for stable reports.
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Scenario < outcomes[j].Scenario
	})

	summary := Summary{
		Total:    len(outcomes),
		Started:  r.started,
		Duration: time.Since(r.started),
	}

	for _, outcome := range outcomes {
		switch outcome.Status {
		case healing.StatusPass:
			summary.Passed++
		case healing.StatusHealed:
			summary.Healed++
		case healing.StatusFail:
			summary.Failed++
		}
	}

	var errs []error

	for _, sink := range r.sinks {
		if err := sink.Write(summary, outcomes); err != nil {
			r.log.Error().Err(err).Msg("report sink failed")

			errs = append(errs, err)
		}
	}

	r.summary = summary
	r.err = errors.Join(errs...)

	r.log.Info().Int("total", summary.Total).Int("passed", summary.Passed).Int("healed", summary.Healed).Int("failed", summary.Failed).Dur("duration", summary.Duration).Msg("run complete")

	return r.summary, r.err
}

// writeReportFile creates the report directory on demand.
func writeReportFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
