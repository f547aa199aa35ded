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

package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bellhopqa/bellhop/pkg/healing"
	"github.com/bellhopqa/bellhop/pkg/registry"
)

func writeScenarios(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// TestLoadYAML ensures scenarios load from YAML in declaration order with
// their source recorded.
func TestLoadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenarios(t, dir, "suite.yaml", `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expect:
      status: 201
  - name: auth-issues-token
    request:
      method: POST
      path: /auth
      body:
        username: admin
        password: password123
    expect:
      status: 200
      body:
        token: "*"
`)

	r, err := registry.Load(zerolog.Nop(), path)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())
	require.Equal(t, []string{"ping-health", "auth-issues-token"}, r.Names())

	scenarios := r.Scenarios()
	require.Equal(t, path, scenarios[0].Source)
	require.Len(t, scenarios[0].Steps, 1)
	require.Equal(t, "GET", scenarios[0].Steps[0].Request.Method)
	require.Equal(t, 201, scenarios[0].Steps[0].Expect.Status)
}

// TestLoadJSON ensures the JSON form is accepted too.
func TestLoadJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenarios(t, dir, "suite.json", `{
  "scenarios": [
    {
      "name": "ping-health",
      "request": {"method": "GET", "path": "/ping"},
      "expect": {"status": 201}
    }
  ]
}`)

	r, err := registry.Load(zerolog.Nop(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"ping-health"}, r.Names())
}

// TestLoadDirectory ensures directories are scanned non-recursively in
// lexical order, skipping non-definition files.
func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeScenarios(t, dir, "b.yaml", `
scenarios:
  - name: second
    request:
      method: GET
      path: /ping
    expect:
      status: 201
`)
	writeScenarios(t, dir, "a.yaml", `
scenarios:
  - name: first
    request:
      method: GET
      path: /ping
    expect:
      status: 201
`)
	writeScenarios(t, dir, "notes.txt", "not a scenario file")

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeScenarios(t, filepath.Join(dir, "nested"), "c.yaml", `
scenarios:
  - name: hidden
    request:
      method: GET
      path: /ping
    expect:
      status: 201
`)

	r, err := registry.Load(zerolog.Nop(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, r.Names())
}

// TestLoadDuplicateNames ensures a name collision across files reports both
// files and stops the load.
func TestLoadDuplicateNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first := writeScenarios(t, dir, "a.yaml", `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expect:
      status: 201
`)
	second := writeScenarios(t, dir, "b.yaml", `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expect:
      status: 200
`)

	_, err := registry.Load(zerolog.Nop(), dir)
	require.Error(t, err)

	dup := &registry.DuplicateScenarioError{}
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "ping-health", dup.Name)
	require.Equal(t, second, dup.File)
	require.Equal(t, first, dup.OtherFile)
}

// TestLoadUnknownField ensures misspelled keys fail loading instead of
// silently dropping an expectation.
func TestLoadUnknownField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenarios(t, dir, "suite.yaml", `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expects:
      status: 201
`)

	_, err := registry.Load(zerolog.Nop(), path)
	require.Error(t, err)
	require.ErrorContains(t, err, "unable to parse scenario file")
}

// TestLoadValidation ensures malformed scenarios are rejected at load time.
func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		detail  string
	}{
		{
			name: "uppercase scenario name",
			content: `
scenarios:
  - name: Ping-Health
    request:
      method: GET
      path: /ping
    expect:
      status: 201
`,
			detail: "invalid scenario name",
		},
		{
			name: "unknown method",
			content: `
scenarios:
  - name: ping-health
    request:
      method: FETCH
      path: /ping
    expect:
      status: 201
`,
			detail: `unknown method "FETCH"`,
		},
		{
			name: "relative path",
			content: `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: ping
    expect:
      status: 201
`,
			detail: "must start with /",
		},
		{
			name: "empty expectation",
			content: `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expect: {}
`,
			detail: "expect needs a status or a body",
		},
		{
			name: "invalid strategy",
			content: `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expect:
      status: 201
    heal:
      - type: status-alias
        from: ok
        to: "201"
`,
			detail: "not a status code",
		},
		{
			name: "bad capture target",
			content: `
scenarios:
  - name: create-booking
    request:
      method: POST
      path: /booking
    expect:
      status: 200
    capture:
      bookingid: headers.location
`,
			detail: "want status or body.<path>",
		},
		{
			name: "steps and inline request together",
			content: `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    steps:
      - request:
          method: GET
          path: /ping
        expect:
          status: 201
`,
			detail: "not both",
		},
		{
			name: "inline expect without request",
			content: `
scenarios:
  - name: ping-health
    expect:
      status: 201
`,
			detail: "inline expect without a request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeScenarios(t, dir, "suite.yaml", tt.content)

			_, err := registry.Load(zerolog.Nop(), path)
			require.Error(t, err)
			require.ErrorContains(t, err, tt.detail)
		})
	}
}

// TestShorthandNormalization ensures an inline request becomes a single step
// with its capture attached.
func TestShorthandNormalization(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenarios(t, dir, "suite.yaml", `
scenarios:
  - name: create-booking
    request:
      method: POST
      path: /booking
      auth: true
    expect:
      status: 200
    capture:
      bookingid: body.bookingid
`)

	r, err := registry.Load(zerolog.Nop(), path)
	require.NoError(t, err)

	scenario := r.Scenarios()[0]
	require.Nil(t, scenario.Request)
	require.Nil(t, scenario.Expect)
	require.Nil(t, scenario.Capture)
	require.Len(t, scenario.Steps, 1)
	require.True(t, scenario.Steps[0].Request.Auth)
	require.Equal(t, map[string]string{"bookingid": "body.bookingid"}, scenario.Steps[0].Capture)
}

// TestFilter ensures filtering matches unanchored and keeps registration
// order.
func TestFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenarios(t, dir, "suite.yaml", `
scenarios:
  - name: ping-health
    request:
      method: GET
      path: /ping
    expect:
      status: 201
  - name: booking-lifecycle
    request:
      method: GET
      path: /booking
    expect:
      status: 200
  - name: booking-filter-by-name
    request:
      method: GET
      path: /booking
    expect:
      status: 200
`)

	r, err := registry.Load(zerolog.Nop(), path)
	require.NoError(t, err)

	// Test 1: substring match.
	filtered, err := r.Filter("booking")
	require.NoError(t, err)
	require.Equal(t, []string{"booking-lifecycle", "booking-filter-by-name"}, filtered.Names())

	// Test 2: full regular expressions work too.
	filtered, err = r.Filter("^ping-")
	require.NoError(t, err)
	require.Equal(t, []string{"ping-health"}, filtered.Names())

	// Test 3: no match leaves an empty registry.
	filtered, err = r.Filter("nonexistent")
	require.NoError(t, err)
	require.Equal(t, 0, filtered.Len())

	// Test 4: a broken pattern is an error.
	_, err = r.Filter("(unclosed")
	require.Error(t, err)
	require.ErrorContains(t, err, "invalid filter pattern")
}

// TestStrategiesFor ensures the step chain overrides the scenario chain,
// which overrides the built-in defaults.
func TestStrategiesFor(t *testing.T) {
	t.Parallel()

	scenarioChain := []healing.Strategy{{Type: healing.StrategyCoerceTypes}}
	stepChain := []healing.Strategy{{Type: healing.StrategyUnwrap, Field: "booking"}}

	scenario := &registry.Scenario{Heal: scenarioChain}

	require.Equal(t, stepChain, scenario.StrategiesFor(registry.Step{Heal: stepChain}))
	require.Equal(t, scenarioChain, scenario.StrategiesFor(registry.Step{}))

	bare := &registry.Scenario{}
	require.Equal(t, healing.DefaultStrategies(), bare.StrategiesFor(registry.Step{}))
}
