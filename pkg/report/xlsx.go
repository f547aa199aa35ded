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
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bellhopqa/bellhop/pkg/healing"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"

	// The classic conditional-formatting palette, familiar from Excel itself.
	passFill   = "C6EFCE"
	healedFill = "FFEB9C"
	failFill   = "FFC7CE"
)

var xlsxHeaders = []string{"Scenario", "Step", "Status", "Strategy", "Detail", "Duration"}

// XLSXSink writes a spreadsheet with per-status row fills, for the people who
// triage runs in a spreadsheet rather than in CI logs.
type XLSXSink struct {
	Path string
}

type statusStyles struct {
	pass   int
	healed int
	fail   int
}

func newStatusStyles(f *excelize.File) (*statusStyles, error) {
	styles := &statusStyles{}

	for _, binding := range []struct {
		color string
		out   *int
	}{
		{passFill, &styles.pass},
		{healedFill, &styles.healed},
		{failFill, &styles.fail},
	} {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{binding.color},
			},
		})
		if err != nil {
			return nil, err
		}

		*binding.out = id
	}

	return styles, nil
}

func (s *statusStyles) forStatus(status healing.Status) int {
	switch status {
	case healing.StatusPass:
		return s.pass
	case healing.StatusHealed:
		return s.healed
	case healing.StatusFail:
		return s.fail
	default:
		return s.fail
	}
}

func (s *XLSXSink) Write(summary Summary, outcomes []healing.Outcome) error {
	f := excelize.NewFile()

	defer f.Close()

	if err := s.writeResults(f, outcomes); err != nil {
		return fmt.Errorf("unable to build XLSX report: %w", err)
	}

	if err := s.writeSummary(f, summary); err != nil {
		return fmt.Errorf("unable to build XLSX summary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("unable to write XLSX report: %w", err)
	}

	return nil
}

func (s *XLSXSink) writeResults(f *excelize.File, outcomes []healing.Outcome) error {
	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}

	for _, width := range []struct {
		from  string
		to    string
		width float64
	}{
		{"A", "B", 24},
		{"C", "D", 18},
		{"E", "E", 48},
		{"F", "F", 12},
	} {
		if err := f.SetColWidth(resultsSheet, width.from, width.to, width.width); err != nil {
			return err
		}
	}

	for i, header := range xlsxHeaders {
		if err := f.SetCellValue(resultsSheet, fmt.Sprintf("%c1", 'A'+i), header); err != nil {
			return err
		}
	}

	styles, err := newStatusStyles(f)
	if err != nil {
		return err
	}

	for i, outcome := range outcomes {
		row := i + 2

		cells := []interface{}{
			outcome.Scenario,
			outcome.Step,
			string(outcome.Status),
			outcome.Strategy,
			outcome.Detail,
			outcome.Duration.Round(time.Millisecond).String(),
		}

		for j, cell := range cells {
			if err := f.SetCellValue(resultsSheet, fmt.Sprintf("%c%d", 'A'+j, row), cell); err != nil {
				return err
			}
		}

		first := fmt.Sprintf("A%d", row)
		last := fmt.Sprintf("%c%d", 'A'+len(cells)-1, row)

		if err := f.SetCellStyle(resultsSheet, first, last, styles.forStatus(outcome.Status)); err != nil {
			return err
		}
	}

	return nil
}

func (s *XLSXSink) writeSummary(f *excelize.File, summary Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := []struct {
		label string
		value interface{}
	}{
		{"Started", summary.Started.Format(time.RFC3339)},
		{"Duration", summary.Duration.Round(time.Millisecond).String()},
		{"Total", summary.Total},
		{"Passed", summary.Passed},
		{"Healed", summary.Healed},
		{"Failed", summary.Failed},
	}

	for i, row := range rows {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row.label); err != nil {
			return err
		}

		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row.value); err != nil {
			return err
		}
	}

	index, err := f.GetSheetIndex(resultsSheet)
	if err != nil {
		return err
	}

	f.SetActiveSheet(index)

	return nil
}
