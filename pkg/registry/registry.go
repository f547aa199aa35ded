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

// Package registry loads test scenarios from YAML and JSON definition files
// and hands them to the runner as a validated, duplicate-free collection.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DuplicateScenarioError reports two definition files claiming the same
// scenario name. Loading stops at the first collision so a typo cannot
// silently shadow an existing scenario.
type DuplicateScenarioError struct {
	Name      string
	File      string
	OtherFile string
}

func (e *DuplicateScenarioError) Error() string {
	return fmt.Sprintf("duplicate scenario %q: defined in %s and %s", e.Name, e.File, e.OtherFile)
}

// document is the top level layout of a definition file.
type document struct {
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}

// Registry holds the loaded scenarios keyed by name.
type Registry struct {
	scenarios map[string]*Scenario
	order     []string
	log       zerolog.Logger
}

// Load reads the given files and directories, directories being scanned
// non-recursively for *.yaml, *.yml and *.json entries in lexical order.
func Load(log zerolog.Logger, paths ...string) (*Registry, error) {
	r := &Registry{
		scenarios: map[string]*Scenario{},
		log:       log.With().Str("component", "registry").Logger(),
	}

	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if err := r.loadFile(file); err != nil {
			return nil, err
		}
	}

	r.log.Info().Int("scenarios", len(r.order)).Int("files", len(files)).Msg("registry loaded")

	return r, nil
}

func expandPaths(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read scenario path: %w", err)
		}

		if !info.IsDir() {
			files = append(files, path)

			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read scenario directory: %w", err)
		}

		var names []string

		for _, entry := range entries {
			if entry.IsDir() || !definitionFile(entry.Name()) {
				continue
			}

			names = append(names, entry.Name())
		}

		sort.Strings(names)

		for _, name := range names {
			files = append(files, filepath.Join(path, name))
		}
	}

	return files, nil
}

func definitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read scenario file: %w", err)
	}

	doc, err := decode(path, data)
	if err != nil {
		return err
	}

	for i := range doc.Scenarios {
		scenario := doc.Scenarios[i]
		scenario.Source = path

		if err := scenario.normalize(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if err := scenario.validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if existing, ok := r.scenarios[scenario.Name]; ok {
			return &DuplicateScenarioError{
				Name:      scenario.Name,
				File:      path,
				OtherFile: existing.Source,
			}
		}

		r.scenarios[scenario.Name] = &scenario
		r.order = append(r.order, scenario.Name)

		r.log.Debug().Str("scenario", scenario.Name).Str("file", path).Msg("scenario registered")
	}

	return nil
}

// decode unmarshals strictly so misspelled keys fail loading rather than
// silently producing a scenario with no expectations.
func decode(path string, data []byte) (*document, error) {
	doc := &document{}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(doc); err != nil {
			return nil, fmt.Errorf("%s: unable to parse scenario file: %w", path, err)
		}

		return doc, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("%s: unable to parse scenario file: %w", path, err)
	}

	return doc, nil
}

// Scenarios returns the scenarios in registration order.
func (r *Registry) Scenarios() []*Scenario {
	result := make([]*Scenario, 0, len(r.order))

	for _, name := range r.order {
		result = append(result, r.scenarios[name])
	}

	return result
}

// Names returns the scenario names in registration order.
func (r *Registry) Names() []string {
	result := make([]string, len(r.order))
	copy(result, r.order)

	return result
}

// Len returns the number of registered scenarios.
func (r *Registry) Len() int {
	return len(r.order)
}

// Filter returns a registry restricted to scenarios whose name matches the
// pattern. Matching is unanchored, so "booking" selects every scenario with
// booking anywhere in its name.
func (r *Registry) Filter(pattern string) (*Registry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern: %w", err)
	}

	filtered := &Registry{
		scenarios: map[string]*Scenario{},
		log:       r.log,
	}

	for _, name := range r.order {
		if !re.MatchString(name) {
			continue
		}

		filtered.scenarios[name] = r.scenarios[name]
		filtered.order = append(filtered.order, name)
	}

	return filtered, nil
}
