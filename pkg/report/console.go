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

package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bellhopqa/bellhop/pkg/healing"
)

// ConsoleSink prints one line per outcome plus the headline numbers.
type ConsoleSink struct {
	// Out defaults to stdout.
	Out io.Writer
}

func (s *ConsoleSink) Write(summary Summary, outcomes []healing.Outcome) error {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "\n=== Booking API Test Report ===\n")
	fmt.Fprintf(out, "Started: %s\n\n", summary.Started.Format(time.RFC3339))

	for _, outcome := range outcomes {
		fmt.Fprintf(out, "%s %s (%v)\n", mark(outcome.Status), displayName(outcome), outcome.Duration.Round(time.Millisecond))

		switch outcome.Status {
		case healing.StatusHealed:
			fmt.Fprintf(out, "    healed by %s\n", outcome.Strategy)
		case healing.StatusFail:
			fmt.Fprintf(out, "    %s\n", outcome.Detail)
		case healing.StatusPass:
		}
	}

	rate := 0.0
	if summary.Total > 0 {
		rate = float64(summary.Passed+summary.Healed) / float64(summary.Total) * 100
	}

	fmt.Fprintf(out, "\nSummary: %d passed, %d healed, %d failed of %d (%.1f%%) in %v\n",
		summary.Passed, summary.Healed, summary.Failed, summary.Total, rate, summary.Duration.Round(time.Millisecond))

	return nil
}

func mark(status healing.Status) string {
	switch status {
	case healing.StatusPass:
		return "✓ PASS"
	case healing.StatusHealed:
		return "~ HEAL"
	case healing.StatusFail:
		return "✗ FAIL"
	default:
		return "? " + strings.ToUpper(string(status))
	}
}

// displayName qualifies the scenario with the deciding step when the two
// differ, so multi-step failures point at the right request.
func displayName(outcome healing.Outcome) string {
	if outcome.Step != "" && outcome.Step != outcome.Scenario {
		return outcome.Scenario + "/" + outcome.Step
	}

	return outcome.Scenario
}
