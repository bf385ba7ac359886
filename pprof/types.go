// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof // import "go.opentelemetry.io/stackprof/pprof"

import "go.opentelemetry.io/stackprof/libpf"

// Frame is a single call-stack entry as reported by the stack sampler.
type Frame struct {
	Name     string
	Filename string
	Line     uint32
}

// StackTrace is one observed sample: the frames in the order the sampler
// produced them plus the originating thread and process.
type StackTrace struct {
	Frames []Frame
	TID    libpf.TID
	// ThreadName is empty if the sampler could not determine the name.
	ThreadName string
	PID        libpf.PID
}

// The types below mirror the messages of perftools.profiles.Profile. Fields
// holding a string refer to an index in the profile string table.

// ValueType describes the semantics and measurement units of a value.
type ValueType struct {
	Type int64
	Unit int64
}

// Function is a deduplicated function identity.
type Function struct {
	ID         uint64
	Name       int64
	SystemName int64
	Filename   int64
	StartLine  int64
}

// Line ties a location to a function and source line.
type Line struct {
	FunctionID uint64
	Line       int64
	Column     int64
}

// Location is a deduplicated call site.
type Location struct {
	ID        uint64
	MappingID uint64
	Address   uint64
	Lines     []Line
	IsFolded  bool
}

// Label annotates a sample. Exactly one of Str or Num is meaningful.
type Label struct {
	Key     int64
	Str     int64
	Num     int64
	NumUnit int64
}

// Sample is one aggregated call stack of one thread.
type Sample struct {
	LocationIDs []uint64
	Values      []int64
	Labels      []Label
}
