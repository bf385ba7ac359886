// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package controller // import "go.opentelemetry.io/stackprof/internal/controller"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/stackprof/pprof"
	"go.opentelemetry.io/stackprof/reporter"
	"go.opentelemetry.io/stackprof/stackreader"
	"go.opentelemetry.io/stackprof/tracehandler"
)

const (
	// traceQueueSize is the capacity of the channel between reader and handler.
	traceQueueSize = 1024

	// StdinPath selects standard input as source.
	StdinPath = "-"

	// exitParseError matches the exit code of the flag package on bad arguments.
	exitParseError = 2
)

// Controller is an instance that runs a single aggregation session.
type Controller struct {
	config   *Config
	reporter reporter.Reporter
}

// intervals adapts the configured monitor interval to tracehandler.Times.
type intervals time.Duration

func (i intervals) MonitorInterval() time.Duration { return time.Duration(i) }

// New creates a new controller
func New(cfg *Config) *Controller {
	rep := cfg.Reporter
	if rep == nil {
		rep = reporter.NewFile(&reporter.Config{
			OutputPath: cfg.OutputPath,
			Compress:   cfg.Compress,
		})
	}

	return &Controller{
		config:   cfg,
		reporter: rep,
	}
}

// Run reads stack traces until the input is exhausted, aggregates them into a
// profile and reports it. Cancelling ctx stops reading early; everything
// recorded up to that point is still reported.
func (c *Controller) Run(ctx context.Context) error {
	prof, err := pprof.New(c.config.profileConfig())
	if err != nil {
		return NewErrorWithExitCode(fmt.Errorf("failed to create profile: %w", err),
			exitParseError)
	}

	input, err := c.openInput()
	if err != nil {
		return err
	}
	defer input.Close()

	// Closing the input unblocks a reader waiting on a pipe or terminal.
	stopClose := context.AfterFunc(ctx, func() { _ = input.Close() })
	defer stopClose()

	startTime := time.Now()
	traceCh := make(chan *pprof.StackTrace, traceQueueSize)
	reader := stackreader.New(input, stackreader.Options{Demangle: c.config.Demangle})

	// The handler must keep draining after ctx is cancelled, so it only stops
	// once the reader closed the channel.
	handlerExited := tracehandler.Start(context.WithoutCancel(ctx), prof, traceCh,
		intervals(c.config.MonitorInterval))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(traceCh)
		err := reader.Run(gctx, traceCh)
		if err != nil && ctx.Err() != nil &&
			(errors.Is(err, context.Canceled) || errors.Is(err, os.ErrClosed)) {
			log.Info("Stopped reading stack traces")
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-handlerExited
		return nil
	})
	if err = g.Wait(); err != nil {
		return fmt.Errorf("failed to read stack traces: %w", err)
	}

	log.Infof("Aggregated %d samples into %d locations and %d functions in %v "+
		"(%d input lines skipped)", len(prof.Samples()), len(prof.Locations()),
		len(prof.Functions()), time.Since(startTime), reader.Skipped())

	if err = c.reporter.Report(prof); err != nil {
		return fmt.Errorf("failed to report profile: %w", err)
	}
	return nil
}

// openInput returns the configured input. The returned closer is safe to
// call more than once.
func (c *Controller) openInput() (io.ReadCloser, error) {
	if c.config.Input != nil {
		return io.NopCloser(c.config.Input), nil
	}
	if c.config.InputPath == StdinPath {
		return os.Stdin, nil
	}

	f, err := os.Open(c.config.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}
