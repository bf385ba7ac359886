// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracehandler receives stack traces from the sampler and records
// them into a profile from a single goroutine.
package tracehandler // import "go.opentelemetry.io/stackprof/tracehandler"

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/stackprof/libpf"
	"go.opentelemetry.io/stackprof/pprof"
)

// Compile time check to make sure pprof.Profile satisfies the interfaces.
var _ Recorder = (*pprof.Profile)(nil)

// Times is a subset of the controller configuration.
type Times interface {
	MonitorInterval() time.Duration
}

// Recorder aggregates stack traces. Record is only ever called from the
// handler goroutine, so implementations need no locking of their own.
type Recorder interface {
	Record(trace *pprof.StackTrace) error
}

// traceHandler forwards traces to the recorder and keeps track of how many
// it has seen.
type traceHandler struct {
	// Metrics, reset on every monitor interval.
	traces       uint64
	frames       uint64
	recordErrors uint64

	// Totals for the whole session.
	totalTraces uint64

	recorder Recorder
}

func (m *traceHandler) HandleTrace(trace *pprof.StackTrace) {
	m.traces++
	m.totalTraces++
	m.frames += uint64(len(trace.Frames))

	if err := m.recorder.Record(trace); err != nil {
		m.recordErrors++
		log.Errorf("Failed to record trace of TID %d: %v", trace.TID, err)
	}
}

// Start starts a goroutine that receives stack traces over the given channel
// and records them. The worker exits once traceInChan is closed and drained,
// or when ctx is cancelled. The returned channel is closed after the worker
// exited; only then may the recorder be read.
func Start(ctx context.Context, rec Recorder, traceInChan <-chan *pprof.StackTrace,
	intervals Times) (workerExited <-chan libpf.Void) {
	handler := &traceHandler{recorder: rec}
	exitChan := make(chan libpf.Void)

	go func() {
		defer close(exitChan)

		metricsTicker := time.NewTicker(intervals.MonitorInterval())
		defer metricsTicker.Stop()

		for {
			select {
			case trace, ok := <-traceInChan:
				if !ok {
					handler.collectMetrics()
					log.Debugf("Trace channel closed after %d traces", handler.totalTraces)
					return
				}
				if trace != nil {
					handler.HandleTrace(trace)
				}
			case <-metricsTicker.C:
				handler.collectMetrics()
			case <-ctx.Done():
				log.Debugf("Trace handler cancelled after %d traces", handler.totalTraces)
				return
			}
		}
	}()

	return exitChan
}
