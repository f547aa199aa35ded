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
	"errors"
	"regexp"
)

var ErrInvalidScenarioName = errors.New("invalid scenario name: must consist of lower case alphanumeric characters, '-' or '_', and must start and end with an alphanumeric character")

var scenarioNameRegex = regexp.MustCompile("^[a-z0-9]([-a-z0-9_]{0,61}[a-z0-9])?$")

func validateName(name string) error {
	if !scenarioNameRegex.MatchString(name) {
		return ErrInvalidScenarioName
	}

	return nil
}
