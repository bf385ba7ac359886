// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v3"

	"go.opentelemetry.io/stackprof/internal/controller"
	"go.opentelemetry.io/stackprof/reporter"
)

const (
	// Default values for CLI flags
	defaultArgSamplesPerSecond   = 100
	defaultArgShowLineNumbers    = true
	defaultArgFrameCacheElements = 4096
	defaultArgMonitorInterval    = 5.0 * time.Second
	defaultArgOutput             = "profile.pb"

	envVarPrefix = "STACKPROF"
)

// Help strings for command line arguments
var (
	inputHelp = fmt.Sprintf("File to read JSON-lines stack traces from, %q for stdin.",
		controller.StdinPath)
	outputHelp = fmt.Sprintf("File to write the pprof profile to, %q for stdout.",
		reporter.StdoutPath)
	samplesPerSecondHelp = "Sampling frequency (in Hz) the stack traces were collected with. " +
		"Determines the profile period."
	showLineNumbersHelp = "Keep source line numbers. If disabled, frames of the same " +
		"function collapse into a single location."
	gzipHelp               = "Gzip-compress the written profile."
	frameCacheElementsHelp = "Number of resolved frames to cache. Zero disables the cache."
	demangleHelp           = "Demangle C++ and Rust symbol names."
	monitorIntervalHelp    = "Set the monitor interval for aggregation statistics."
	verboseModeHelp        = "Enable verbose logging and debugging capabilities."
	versionHelp            = "Show version."
	configHelp             = "Path to a configuration file with one 'flag value' pair per line."
)

func parseArgs(argv []string) (*controller.Config, error) {
	var args controller.Config

	fs := flag.NewFlagSet("stackprof", flag.ExitOnError)

	// Please keep the parameters ordered alphabetically in the source-code.
	fs.String("config", "", configHelp)

	fs.BoolVar(&args.Demangle, "demangle", false, demangleHelp)

	fs.UintVar(&args.FrameCacheElements, "frame-cache-elements",
		defaultArgFrameCacheElements, frameCacheElementsHelp)

	fs.BoolVar(&args.Compress, "gzip", false, gzipHelp)

	fs.StringVar(&args.InputPath, "input", controller.StdinPath, inputHelp)

	fs.DurationVar(&args.MonitorInterval, "monitor-interval", defaultArgMonitorInterval,
		monitorIntervalHelp)

	fs.StringVar(&args.OutputPath, "output", defaultArgOutput, outputHelp)

	fs.IntVar(&args.SamplesPerSecond, "samples-per-second", defaultArgSamplesPerSecond,
		samplesPerSecondHelp)

	fs.BoolVar(&args.ShowLineNumbers, "show-line-numbers", defaultArgShowLineNumbers,
		showLineNumbersHelp)

	fs.BoolVar(&args.VerboseMode, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&args.VerboseMode, "verbose", false, verboseModeHelp)
	fs.BoolVar(&args.Version, "version", false, versionHelp)

	fs.Usage = func() {
		fs.PrintDefaults()
	}

	args.Fs = fs

	return &args, ff.Parse(fs, argv,
		ff.WithEnvVarPrefix(envVarPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		// Unknown options in the configuration file (only) are ignored.
		ff.WithIgnoreUndefined(true),
		ff.WithAllowMissingConfigFile(true),
	)
}
