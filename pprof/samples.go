// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof // import "go.opentelemetry.io/stackprof/pprof"

import (
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"go.opentelemetry.io/stackprof/internal/orderedset"
	"go.opentelemetry.io/stackprof/libpf"
)

// Label keys attached to every sample.
const (
	LabelThreadName = "thread_name"
	LabelThreadID   = "thread_id"
	LabelPID        = "pid"
)

// sampleKey identifies a sample: the same stack seen on two threads yields
// two samples.
type sampleKey struct {
	tid libpf.TID
	// stack is the varint encoded location ID sequence.
	stack string
}

// sampleAggregator deduplicates resolved stacks per thread and counts hits.
type sampleAggregator struct {
	strings *stringTable
	samples *orderedset.Table[sampleKey, Sample]

	// keyBuf is scratch space for building stack keys.
	keyBuf []byte
}

func newSampleAggregator(strings *stringTable) *sampleAggregator {
	return &sampleAggregator{
		strings: strings,
		samples: orderedset.New[sampleKey, Sample](0, 64),
	}
}

// add counts one hit of the stack locationIDs observed in trace. Labels are
// taken from trace only when the sample is created.
func (a *sampleAggregator) add(trace *StackTrace, locationIDs []uint64) {
	a.keyBuf = a.keyBuf[:0]
	for _, id := range locationIDs {
		a.keyBuf = protowire.AppendVarint(a.keyBuf, id)
	}

	key := sampleKey{tid: trace.TID, stack: string(a.keyBuf)}
	idx, _ := a.samples.GetOrCreate(key, func(uint64) Sample {
		return Sample{
			LocationIDs: slices.Clone(locationIDs),
			Values:      []int64{0},
			Labels:      a.labels(trace),
		}
	})
	a.samples.At(idx).Values[0]++
}

// values returns all samples in creation order.
func (a *sampleAggregator) values() []Sample {
	return a.samples.Values()
}

// labels builds the label set of a new sample.
func (a *sampleAggregator) labels(trace *StackTrace) []Label {
	labels := make([]Label, 0, 3)
	if trace.ThreadName != "" {
		labels = append(labels, Label{
			Key: a.strings.intern(LabelThreadName),
			Str: a.strings.intern(trace.ThreadName),
		})
	}
	labels = append(labels,
		Label{
			Key: a.strings.intern(LabelThreadID),
			Num: int64(trace.TID),
		},
		Label{
			Key: a.strings.intern(LabelPID),
			Num: int64(trace.PID),
		})
	return labels
}
