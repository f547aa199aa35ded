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
	"encoding/xml"
	"fmt"
	"time"

	"github.com/bellhopqa/bellhop/pkg/healing"
)

// JUnitSink writes a JUnit XML file for CI result ingestion. Healed scenarios
// count as passes, the healing note lands in system-out so it survives into
// the CI UI without failing the build.
type JUnitSink struct {
	Path string
}

type junitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

func (s *JUnitSink) Write(summary Summary, outcomes []healing.Outcome) error {
	suite := junitTestSuite{
		Name:      "bellhop",
		Tests:     summary.Total,
		Failures:  summary.Failed,
		Time:      fmt.Sprintf("%.3f", summary.Duration.Seconds()),
		Timestamp: summary.Started.Format(time.RFC3339),
	}

	for _, outcome := range outcomes {
		testCase := junitTestCase{
			Name:      outcome.Scenario,
			Classname: "scenario",
			Time:      fmt.Sprintf("%.3f", outcome.Duration.Seconds()),
		}

		switch outcome.Status {
		case healing.StatusHealed:
			testCase.SystemOut = "healed by " + outcome.Strategy
		case healing.StatusFail:
			testCase.Failure = &junitFailure{
				Message: outcome.Detail,
				Content: "step: " + outcome.Step,
			}
		case healing.StatusPass:
		}

		suite.Cases = append(suite.Cases, testCase)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal JUnit report: %w", err)
	}

	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := writeReportFile(s.Path, data); err != nil {
		return fmt.Errorf("unable to write JUnit report: %w", err)
	}

	return nil
}
