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
	"errors"
	"fmt"
	"strconv"
)

// StrategyType enumerates the known healing transformations.
type StrategyType string

const (
	// StrategyFieldAlias accepts the actual field To wherever the
	// expectation names From. The canonical case is bookingid vs id.
	StrategyFieldAlias StrategyType = "field-alias"

	// StrategyStatusAlias accepts actual status To where the expectation
	// says From.
	StrategyStatusAlias StrategyType = "status-alias"

	// StrategyUnwrap compares the expectation against the object nested
	// under Field instead of the response root.
	StrategyUnwrap StrategyType = "unwrap"

	// StrategyCoerceTypes compares scalar values by their string
	// rendering, accepting "111" for 111.
	StrategyCoerceTypes StrategyType = "coerce-types"
)

// ErrInvalidStrategy marks a strategy document that cannot be applied.
var ErrInvalidStrategy = errors.New("invalid healing strategy")

// Strategy is one declarative fallback. Strategies are data, not code: they
// travel in scenario files and are applied in declaration order until one
// reconciles the comparison.
type Strategy struct {
	Type StrategyType `yaml:"type" json:"type"`

	// From/To parameterise field-alias and status-alias.
	From string `yaml:"from,omitempty" json:"from,omitempty"`
	To   string `yaml:"to,omitempty" json:"to,omitempty"`

	// Field parameterises unwrap.
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
}

// Name is the label recorded on healed outcomes.
func (s Strategy) Name() string {
	switch s.Type {
	case StrategyFieldAlias, StrategyStatusAlias:
		return fmt.Sprintf("%s(%s->%s)", s.Type, s.From, s.To)
	case StrategyUnwrap:
		return fmt.Sprintf("%s(%s)", s.Type, s.Field)
	default:
		return string(s.Type)
	}
}

// Validate checks the strategy is well formed. Called at scenario load so a
// bad strategy fails the run before anything executes.
func (s Strategy) Validate() error {
	switch s.Type {
	case StrategyFieldAlias:
		if s.From == "" || s.To == "" {
			return fmt.Errorf("%w: field-alias requires from and to", ErrInvalidStrategy)
		}
	case StrategyStatusAlias:
		if _, err := strconv.Atoi(s.From); err != nil {
			return fmt.Errorf("%w: status-alias from %q is not a status code", ErrInvalidStrategy, s.From)
		}

		if _, err := strconv.Atoi(s.To); err != nil {
			return fmt.Errorf("%w: status-alias to %q is not a status code", ErrInvalidStrategy, s.To)
		}
	case StrategyUnwrap:
		if s.Field == "" {
			return fmt.Errorf("%w: unwrap requires a field", ErrInvalidStrategy)
		}
	case StrategyCoerceTypes:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidStrategy, s.Type)
	}

	return nil
}

// DefaultStrategies is the designed built-in fallback set, attached to
// scenarios that declare none. Order matters: cheaper, more specific
// reconciliations come first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Type: StrategyFieldAlias, From: "bookingid", To: "id"},
		{Type: StrategyFieldAlias, From: "id", To: "bookingid"},
		{Type: StrategyUnwrap, Field: "booking"},
		{Type: StrategyStatusAlias, From: "200", To: "201"},
		{Type: StrategyCoerceTypes},
	}
}
