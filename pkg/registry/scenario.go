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

package registry

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bellhopqa/bellhop/pkg/healing"
)

// RequestSpec is the declarative request of a step.
type RequestSpec struct {
	Method string            `yaml:"method" json:"method"`
	Path   string            `yaml:"path" json:"path"`
	Query  map[string]string `yaml:"query,omitempty" json:"query,omitempty"`
	Body   interface{}       `yaml:"body,omitempty" json:"body,omitempty"`

	// Auth requests token injection for this step.
	Auth bool `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// Step is one request/expectation pair within a scenario. Captures make
// response values available to later steps as ${name} placeholders.
type Step struct {
	Name    string              `yaml:"name,omitempty" json:"name,omitempty"`
	Request RequestSpec         `yaml:"request" json:"request"`
	Expect  healing.Expectation `yaml:"expect" json:"expect"`
	Heal    []healing.Strategy  `yaml:"heal,omitempty" json:"heal,omitempty"`

	// Capture maps variable names to "status" or "body.<path>".
	Capture map[string]string `yaml:"capture,omitempty" json:"capture,omitempty"`
}

// Scenario is one named test case. Single-request scenarios may inline
// request/expect at the top level instead of declaring a steps list; loading
// normalizes that shorthand into a single step.
type Scenario struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`

	// Shorthand form.
	Request *RequestSpec         `yaml:"request,omitempty" json:"request,omitempty"`
	Expect  *healing.Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
	Capture map[string]string    `yaml:"capture,omitempty" json:"capture,omitempty"`

	// Heal is the scenario-wide fallback chain; steps may override it.
	// Scenarios that declare nothing get the designed default set.
	Heal []healing.Strategy `yaml:"heal,omitempty" json:"heal,omitempty"`

	// Source is the file the scenario was loaded from.
	Source string `yaml:"-" json:"-"`
}

// StrategiesFor resolves the fallback chain for a step: step overrides
// scenario overrides defaults.
func (s *Scenario) StrategiesFor(step Step) []healing.Strategy {
	if len(step.Heal) > 0 {
		return step.Heal
	}

	if len(s.Heal) > 0 {
		return s.Heal
	}

	return healing.DefaultStrategies()
}

// normalize folds the single-request shorthand into a one-step list.
func (s *Scenario) normalize() error {
	if s.Request == nil && s.Expect == nil && s.Capture == nil {
		return nil
	}

	if len(s.Steps) > 0 {
		return fmt.Errorf("scenario %q: declare steps or an inline request, not both", s.Name)
	}

	if s.Request == nil {
		return fmt.Errorf("scenario %q: inline expect without a request", s.Name)
	}

	step := Step{
		Request: *s.Request,
		Capture: s.Capture,
	}

	if s.Expect != nil {
		step.Expect = *s.Expect
	}

	s.Steps = []Step{step}
	s.Request = nil
	s.Expect = nil
	s.Capture = nil

	return nil
}

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// validate checks a normalized scenario is executable.
func (s *Scenario) validate() error {
	if err := validateName(s.Name); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q: no steps", s.Name)
	}

	for i := range s.Steps {
		if err := s.validateStep(i); err != nil {
			return err
		}
	}

	for _, strategy := range s.Heal {
		if err := strategy.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}

	return nil
}

func (s *Scenario) validateStep(i int) error {
	step := s.Steps[i]

	if !knownMethods[step.Request.Method] {
		return fmt.Errorf("scenario %q step %d: unknown method %q", s.Name, i+1, step.Request.Method)
	}

	if !strings.HasPrefix(step.Request.Path, "/") {
		return fmt.Errorf("scenario %q step %d: path %q must start with /", s.Name, i+1, step.Request.Path)
	}

	if step.Expect.Status == 0 && step.Expect.Body == nil {
		return fmt.Errorf("scenario %q step %d: expect needs a status or a body", s.Name, i+1)
	}

	for _, strategy := range step.Heal {
		if err := strategy.Validate(); err != nil {
			return fmt.Errorf("scenario %q step %d: %w", s.Name, i+1, err)
		}
	}

	for name, target := range step.Capture {
		if target != "status" && target != "body" && !strings.HasPrefix(target, "body.") {
			return fmt.Errorf("scenario %q step %d: capture %q targets %q, want status or body.<path>", s.Name, i+1, name, target)
		}
	}

	return nil
}
