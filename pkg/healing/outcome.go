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
	"time"
)

// Status is the final classification of a scenario. There are exactly three:
// healed is never folded into pass, because a healed scenario is a signal
// that the API drifted from its contract.
type Status string

const (
	StatusPass   Status = "pass"
	StatusHealed Status = "healed"
	StatusFail   Status = "fail"
)

// Outcome is the single result every scenario produces, exactly once,
// whatever happens to it.
type Outcome struct {
	// Scenario is the unique scenario name.
	Scenario string `json:"scenario"`

	// Step is the step that decided the outcome, for multi-step
	// scenarios.
	Step string `json:"step,omitempty"`

	Status Status `json:"status"`

	// Detail is human-readable: the mismatch for failures, the original
	// mismatch plus what reconciled it for healed outcomes.
	Detail string `json:"detail,omitempty"`

	// Strategy names the healing strategy that reconciled the mismatch,
	// set only when Status is healed.
	Strategy string `json:"strategy,omitempty"`

	Duration time.Duration `json:"duration"`
}
