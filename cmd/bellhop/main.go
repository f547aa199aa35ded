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

// bellhop runs self-healing scenario suites against a booking API.
//
// Usage:
//
//	bellhop run [flags]     Run scenario suites against the booking API
//	bellhop mock [flags]    Serve a local mock booking API
//	bellhop version         Print version information
//
// Exit codes: 0 when every scenario passed or healed, 1 when any scenario
// failed, 2 on configuration and load errors.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/bellhopqa/bellhop/pkg/constants"
)

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var code int

	switch args[0] {
	case "run":
		code = cmdRun(args[1:])
	case "mock":
		code = cmdMock(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("%s %s (revision %s)\n", constants.Application, constants.Version, constants.Revision)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n\n", constants.Application, args[0])
		usage()

		code = 2
	}

	os.Exit(code)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:

  %[1]s run [flags]     Run scenario suites against the booking API
  %[1]s mock [flags]    Serve a local mock booking API
  %[1]s version         Print version information

Run '%[1]s <command> --help' for flags.
`, constants.Application)
}

// newLogger builds the process logger. Reports go to stdout, logs to stderr,
// so piping one does not garble the other.
func newLogger(debug bool) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("application", constants.Application).Logger()
}
