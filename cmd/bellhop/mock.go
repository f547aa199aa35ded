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
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/bellhopqa/bellhop/pkg/mockbooker"
)

func cmdMock(args []string) int {
	options := &mockbooker.Options{}

	flags := pflag.NewFlagSet("mock", pflag.ContinueOnError)
	options.AddFlags(flags)
	debug := flags.Bool("debug", false, "Enable debug logging.")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 2
	}

	log := newLogger(*debug)

	server, err := mockbooker.NewServer(options, log)
	if err != nil {
		log.Error().Stack().Err(errors.WithStack(err)).Msg("unable to create mock server")

		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Error().Stack().Err(errors.WithStack(err)).Msg("mock server failed")

		return 2
	}

	return 0
}
