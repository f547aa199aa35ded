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
	"encoding/json"
	"fmt"

	"github.com/bellhopqa/bellhop/pkg/healing"
)

// JSONSink writes the summary and the full outcome list as indented JSON.
type JSONSink struct {
	Path string
}

type jsonReport struct {
	Summary  Summary           `json:"summary"`
	Outcomes []healing.Outcome `json:"outcomes"`
}

func (s *JSONSink) Write(summary Summary, outcomes []healing.Outcome) error {
	report := jsonReport{
		Summary:  summary,
		Outcomes: outcomes,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal JSON report: %w", err)
	}

	data = append(data, '\n')

	if err := writeReportFile(s.Path, data); err != nil {
		return fmt.Errorf("unable to write JSON report: %w", err)
	}

	return nil
}
