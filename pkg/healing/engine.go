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

package healing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Expectation is the declared shape of a response. Body is a subset pattern:
// declared fields must match, undeclared actual fields are ignored. The
// string "*" matches any present value, and strings prefixed "re:" match as
// regular expressions.
type Expectation struct {
	Status int         `yaml:"status,omitempty" json:"status,omitempty"`
	Body   interface{} `yaml:"body,omitempty" json:"body,omitempty"`
}

// Actual is a response as the server produced it.
type Actual struct {
	Status int
	Body   []byte
}

// Check is one assertion to run: an expectation, the actual response, and
// the ordered fallback strategies to try when the direct comparison fails.
type Check struct {
	Scenario   string
	Step       string
	Expect     Expectation
	Actual     Actual
	Strategies []Strategy
}

// Engine evaluates checks into outcomes.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates an assertion engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "healing").Logger(),
	}
}

// Assert compares expectation and actual. An exact match passes without
// consulting any strategy. Otherwise strategies apply one at a time in
// declaration order; the first that reconciles the comparison heals the
// check, recording which strategy did it. If none do, the check fails with
// the original mismatch.
func (e *Engine) Assert(c Check) Outcome {
	body := decodeBody(c.Actual.Body)

	mismatch := match(c.Expect, c.Actual.Status, body, matchOptions{})
	if mismatch == nil {
		return Outcome{Scenario: c.Scenario, Step: c.Step, Status: StatusPass}
	}

	for _, strategy := range c.Strategies {
		if strategy.Validate() != nil {
			continue
		}

		if match(c.Expect, c.Actual.Status, body, strategy.options()) == nil {
			e.log.Info().
				Str("scenario", c.Scenario).
				Str("strategy", strategy.Name()).
				Str("mismatch", mismatch.Error()).
				Msg("assertion healed")

			return Outcome{
				Scenario: c.Scenario,
				Step:     c.Step,
				Status:   StatusHealed,
				Strategy: strategy.Name(),
				Detail:   fmt.Sprintf("%v, healed by %s", mismatch, strategy.Name()),
			}
		}
	}

	return Outcome{
		Scenario: c.Scenario,
		Step:     c.Step,
		Status:   StatusFail,
		Detail:   mismatch.Error(),
	}
}

// matchOptions are the comparison relaxations a single strategy enables.
type matchOptions struct {
	aliases    map[string]string
	coerce     bool
	statusFrom int
	statusTo   int
	unwrap     string
}

func (s Strategy) options() matchOptions {
	switch s.Type {
	case StrategyFieldAlias:
		return matchOptions{aliases: map[string]string{s.From: s.To}}
	case StrategyStatusAlias:
		from, _ := strconv.Atoi(s.From)
		to, _ := strconv.Atoi(s.To)

		return matchOptions{statusFrom: from, statusTo: to}
	case StrategyUnwrap:
		return matchOptions{unwrap: s.Field}
	case StrategyCoerceTypes:
		return matchOptions{coerce: true}
	default:
		return matchOptions{}
	}
}

// match returns nil when the response satisfies the expectation under the
// given options, or the first mismatch found.
func match(exp Expectation, status int, body interface{}, opts matchOptions) error {
	if exp.Status != 0 && status != exp.Status {
		if !(exp.Status == opts.statusFrom && status == opts.statusTo) {
			return fmt.Errorf("status: expected %d, got %d", exp.Status, status)
		}
	}

	if exp.Body == nil {
		return nil
	}

	if opts.unwrap != "" {
		if m, ok := body.(map[string]interface{}); ok {
			if inner, exists := m[opts.unwrap]; exists {
				body = inner
			}
		}
	}

	return matchValue("body", exp.Body, body, opts)
}

//nolint:cyclop // the comparison is one switch over expected value kinds
func matchValue(path string, expected, actual interface{}, opts matchOptions) error {
	switch exp := expected.(type) {
	case map[string]interface{}:
		actualMap, ok := actual.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", path, typeName(actual))
		}

		// Sorted keys keep the first-mismatch report deterministic.
		keys := make([]string, 0, len(exp))
		for key := range exp {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			actVal, present := actualMap[key]
			if !present {
				if alias, aliased := opts.aliases[key]; aliased {
					actVal, present = actualMap[alias]
				}
			}

			if !present {
				return fmt.Errorf("%s.%s: expected %v, got missing", path, key, exp[key])
			}

			if err := matchValue(path+"."+key, exp[key], actVal, opts); err != nil {
				return err
			}
		}

		return nil
	case []interface{}:
		actualSlice, ok := actual.([]interface{})
		if !ok {
			return fmt.Errorf("%s: expected array, got %s", path, typeName(actual))
		}

		if len(actualSlice) != len(exp) {
			return fmt.Errorf("%s: expected %d elements, got %d", path, len(exp), len(actualSlice))
		}

		for i, expVal := range exp {
			if err := matchValue(fmt.Sprintf("%s[%d]", path, i), expVal, actualSlice[i], opts); err != nil {
				return err
			}
		}

		return nil
	case string:
		return matchString(path, exp, actual, opts)
	case bool:
		if act, ok := actual.(bool); ok && act == exp {
			return nil
		}

		return mismatchError(path, exp, actual, opts)
	case nil:
		if actual == nil {
			return nil
		}

		return fmt.Errorf("%s: expected null, got %v", path, actual)
	default:
		expNum, expOK := toFloat(expected)
		actNum, actOK := toFloat(actual)

		if expOK && actOK && expNum == actNum {
			return nil
		}

		return mismatchError(path, expected, actual, opts)
	}
}

func matchString(path, exp string, actual interface{}, opts matchOptions) error {
	// "*" asserts presence only; reaching here means the key exists.
	if exp == "*" {
		return nil
	}

	if pattern, ok := strings.CutPrefix(exp, "re:"); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %w", path, pattern, err)
		}

		if re.MatchString(fmt.Sprint(actual)) {
			return nil
		}

		return fmt.Errorf("%s: %q does not match pattern %q", path, fmt.Sprint(actual), pattern)
	}

	if act, ok := actual.(string); ok && act == exp {
		return nil
	}

	return mismatchError(path, exp, actual, opts)
}

// mismatchError is the failure path for scalars, giving type coercion its
// one chance when enabled.
func mismatchError(path string, expected, actual interface{}, opts matchOptions) error {
	if opts.coerce && fmt.Sprint(expected) == fmt.Sprint(actual) {
		return nil
	}

	return fmt.Errorf("%s: expected %v, got %v", path, expected, actual)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}

// decodeBody parses a response body as JSON; non-JSON bodies (the API says
// plain "Created" in places) compare as raw strings.
func decodeBody(body []byte) interface{} {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}

	return v
}
