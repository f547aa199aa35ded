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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/bellhopqa/bellhop/pkg/auth"
	"github.com/bellhopqa/bellhop/pkg/client"
	"github.com/bellhopqa/bellhop/pkg/config"
	"github.com/bellhopqa/bellhop/pkg/contract"
	"github.com/bellhopqa/bellhop/pkg/healing"
	"github.com/bellhopqa/bellhop/pkg/recovery"
	"github.com/bellhopqa/bellhop/pkg/registry"
	"github.com/bellhopqa/bellhop/pkg/report"
	"github.com/bellhopqa/bellhop/pkg/runner"
)

// runOptions layers command line flags over the environment configuration.
// Flag defaults come from the loaded config, so a flag given on the command
// line always wins.
type runOptions struct {
	config *config.Config

	// scenarios are files or directories holding scenario definitions.
	scenarios []string

	// filter selects scenarios by name with an unanchored regular
	// expression.
	filter string

	// parallel is the worker count.
	parallel int
}

func (o *runOptions) AddFlags(f *pflag.FlagSet) {
	f.StringArrayVar(&o.scenarios, "scenarios", []string{"scenarios"}, "Scenario file or directory, repeatable.")
	f.StringVar(&o.filter, "filter", "", "Regular expression selecting scenarios by name.")
	f.IntVar(&o.parallel, "parallel", runner.DefaultParallelism, "Number of scenarios to run concurrently.")
	f.StringVar(&o.config.BaseURL, "base-url", o.config.BaseURL, "Base URL of the booking API under test.")
	f.StringVar(&o.config.ReportDir, "report-dir", o.config.ReportDir, "Directory for JSON, JUnit and XLSX reports.")
	f.DurationVar(&o.config.SuiteTimeout, "timeout", o.config.SuiteTimeout, "Overall suite deadline.")
	f.BoolVar(&o.config.Cleanup, "cleanup", o.config.Cleanup, "Delete bookings created during the run.")
	f.BoolVar(&o.config.ValidateContract, "validate-contract", o.config.ValidateContract, "Validate responses against the bundled OpenAPI document.")
	f.BoolVar(&o.config.DebugLogging, "debug", o.config.DebugLogging, "Enable debug logging.")
}

func cmdRun(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 2
	}

	o := &runOptions{config: cfg}

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	o.AddFlags(flags)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 2
	}

	log := newLogger(cfg.DebugLogging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := run(ctx, o, log)
	if err != nil {
		log.Error().Stack().Err(errors.WithStack(err)).Msg("run failed")

		return 2
	}

	if !summary.Success() {
		return 1
	}

	return 0
}

// run wires the framework together and executes the suite.
func run(ctx context.Context, o *runOptions, log zerolog.Logger) (report.Summary, error) {
	cfg := o.config

	c := client.New(cfg, log)

	tokens := auth.NewManager(auth.NewBookerAuthenticator(c, cfg.Username, cfg.Password), cfg.TokenTTL, log)
	c.SetTokenSource(tokens)

	if cfg.ValidateContract {
		validator, err := contract.NewValidator(log)
		if err != nil {
			return report.Summary{}, err
		}

		c.SetValidator(validator)
	}

	reg, err := registry.Load(log, o.scenarios...)
	if err != nil {
		return report.Summary{}, err
	}

	if o.filter != "" {
		reg, err = reg.Filter(o.filter)
		if err != nil {
			return report.Summary{}, err
		}
	}

	if reg.Len() == 0 {
		log.Warn().Str("filter", o.filter).Msg("no scenarios selected")
	}

	sinks := []report.Sink{&report.ConsoleSink{}}

	if cfg.ReportDir != "" {
		sinks = append(sinks,
			&report.JSONSink{Path: filepath.Join(cfg.ReportDir, "report.json")},
			&report.JUnitSink{Path: filepath.Join(cfg.ReportDir, "junit.xml")},
			&report.XLSXSink{Path: filepath.Join(cfg.ReportDir, "report.xlsx")},
		)
	}

	r, err := runner.New(&runner.Options{
		Client:   c,
		Registry: reg,
		Reporter: report.New(log, sinks...),
		Engine:   healing.NewEngine(log),
		Auth:     tokens,
		Store:    recovery.NewStore(cfg.StateFile, log),
		Parallel: o.parallel,
		Timeout:  cfg.SuiteTimeout,
		Cleanup:  cfg.Cleanup,
	}, log)
	if err != nil {
		return report.Summary{}, err
	}

	return r.Run(ctx)
}
