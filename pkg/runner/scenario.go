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

package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bellhopqa/bellhop/pkg/client"
	"github.com/bellhopqa/bellhop/pkg/healing"
	"github.com/bellhopqa/bellhop/pkg/registry"
)

// bookingIDVar is the capture name the runner watches to track created
// bookings for cleanup.
const bookingIDVar = "bookingid"

// runScenario executes steps in order. The first failing step decides the
// scenario; a healed step marks the scenario healed unless a later one fails.
func (r *Runner) runScenario(ctx context.Context, scenario *registry.Scenario) healing.Outcome {
	start := time.Now()

	log := r.log.With().Str("scenario", scenario.Name).Logger()
	log.Debug().Int("steps", len(scenario.Steps)).Msg("scenario starting")

	captured := vars{}

	var healed *healing.Outcome

	for i := range scenario.Steps {
		outcome := r.runStep(ctx, scenario, scenario.Steps[i], captured)

		if outcome.Status == healing.StatusFail {
			outcome.Duration = time.Since(start)

			return outcome
		}

		if outcome.Status == healing.StatusHealed && healed == nil {
			healed = &outcome
		}
	}

	if healed != nil {
		outcome := *healed
		outcome.Duration = time.Since(start)

		return outcome
	}

	return healing.Outcome{
		Scenario: scenario.Name,
		Status:   healing.StatusPass,
		Duration: time.Since(start),
	}
}

func (r *Runner) runStep(ctx context.Context, scenario *registry.Scenario, step registry.Step, captured vars) healing.Outcome {
	name := stepName(step)

	fail := func(detail string) healing.Outcome {
		return healing.Outcome{
			Scenario: scenario.Name,
			Step:     name,
			Status:   healing.StatusFail,
			Detail:   detail,
		}
	}

	request, err := r.buildRequest(step, captured)
	if err != nil {
		return fail(err.Error())
	}

	resp, err := r.client.Do(ctx, *request)
	if err != nil {
		return fail(requestFailureDetail(err))
	}

	expect, err := expandExpectation(step.Expect, captured)
	if err != nil {
		return fail(err.Error())
	}

	outcome := r.engine.Assert(healing.Check{
		Scenario:   scenario.Name,
		Step:       name,
		Expect:     expect,
		Actual:     healing.Actual{Status: resp.Status, Body: resp.Body},
		Strategies: scenario.StrategiesFor(step),
	})

	outcome.Duration = resp.Duration

	if outcome.Status != healing.StatusFail {
		if err := r.capture(step, resp, captured); err != nil {
			return fail("capture: " + err.Error())
		}
	}

	return outcome
}

// stepName names a step for outcomes, falling back to the request line for
// anonymous steps.
func stepName(step registry.Step) string {
	if step.Name != "" {
		return step.Name
	}

	return step.Request.Method + " " + step.Request.Path
}

// requestFailureDetail distinguishes run cancellation from genuine request
// failures; everything else describes itself.
func requestFailureDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "suite timeout during execution"
	}

	if errors.Is(err, context.Canceled) {
		return "run cancelled during execution"
	}

	return err.Error()
}

func (r *Runner) buildRequest(step registry.Step, captured vars) (*client.Request, error) {
	path, err := captured.expandText(step.Request.Path)
	if err != nil {
		return nil, err
	}

	var query url.Values

	if len(step.Request.Query) > 0 {
		query = url.Values{}

		for key, value := range step.Request.Query {
			expanded, err := captured.expandText(value)
			if err != nil {
				return nil, err
			}

			query.Set(key, expanded)
		}
	}

	var body interface{}

	if step.Request.Body != nil {
		expanded, err := captured.expandBody(step.Request.Body)
		if err != nil {
			return nil, err
		}

		body = expanded
	}

	return &client.Request{
		Method:            step.Request.Method,
		Path:              path,
		Query:             query,
		Body:              body,
		Auth:              step.Request.Auth,
		AcceptAuthFailure: expectsAuthFailure(step.Expect),
	}, nil
}

// expectsAuthFailure suppresses the client's refresh-and-retry when a 401 or
// 403 is the asserted outcome rather than an accident.
func expectsAuthFailure(expect healing.Expectation) bool {
	return expect.Status == http.StatusUnauthorized || expect.Status == http.StatusForbidden
}

func expandExpectation(expect healing.Expectation, captured vars) (healing.Expectation, error) {
	if expect.Body == nil {
		return expect, nil
	}

	body, err := captured.expandBody(expect.Body)
	if err != nil {
		return healing.Expectation{}, err
	}

	expect.Body = body

	return expect, nil
}

func (r *Runner) capture(step registry.Step, resp *client.Response, captured vars) error {
	for name, target := range step.Capture {
		value, err := captureValue(resp, target)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		captured[name] = value

		if name == bookingIDVar {
			r.trackBooking(value)
		}
	}

	return nil
}

func captureValue(resp *client.Response, target string) (interface{}, error) {
	if target == "status" {
		return resp.Status, nil
	}

	var doc interface{}

	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("response body is not JSON: %w", err)
	}

	if target == "body" {
		return doc, nil
	}

	value := doc

	for _, segment := range strings.Split(strings.TrimPrefix(target, "body."), ".") {
		switch node := value.(type) {
		case map[string]interface{}:
			child, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("no field %q in response body", segment)
			}

			value = child
		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("bad array index %q in capture path", segment)
			}

			value = node[index]
		default:
			return nil, fmt.Errorf("cannot descend into %q, not an object or array", segment)
		}
	}

	return value, nil
}

func (r *Runner) trackBooking(value interface{}) {
	if r.store == nil || !r.cleanup {
		return
	}

	id, ok := toInt(value)
	if !ok {
		r.log.Warn().Interface("value", value).Msg("captured bookingid is not numeric, cannot track for cleanup")

		return
	}

	if err := r.store.TrackBooking(id); err != nil {
		r.log.Warn().Int("booking", id).Err(err).Msg("unable to record booking for cleanup")
	}
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		id, err := strconv.Atoi(v)

		return id, err == nil
	default:
		return 0, false
	}
}
