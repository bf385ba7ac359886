// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package pprof aggregates sampled call stacks into a deduplicated profile in
// the pprof (perftools.profiles) format.
//
// Strings, functions, locations and samples are interned the first time they
// are seen and referenced by stable IDs afterwards. All tables are append-only
// for the lifetime of a Profile.
//
// A Profile is not safe for concurrent use. Record must be called from a
// single goroutine, and Write only after the last Record returned.
package pprof // import "go.opentelemetry.io/stackprof/pprof"

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Profile is the growing profile of one sampling session.
type Profile struct {
	strings  *stringTable
	resolver *frameResolver
	samples  *sampleAggregator

	sampleType ValueType
	periodType ValueType
	period     int64

	// locationIDs is scratch space reused across Record calls.
	locationIDs []uint64
}

// New creates an empty profile for cfg.
func New(cfg *Config) (*Profile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strings := newStringTable()
	// Fixed strings go first so their indices do not depend on the input.
	p := &Profile{
		strings: strings,
		sampleType: ValueType{
			Type: strings.intern("count"),
			Unit: strings.intern("times"),
		},
		periodType: ValueType{
			Type: strings.intern("cpu"),
			Unit: strings.intern("nanoseconds"),
		},
		period: 1_000_000_000 / int64(cfg.SamplesPerSecond),
	}

	resolver, err := newFrameResolver(strings, cfg.ShowLineNumbers, cfg.FrameCacheElements)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame cache: %w", err)
	}
	p.resolver = resolver
	p.samples = newSampleAggregator(strings)

	return p, nil
}

// Record adds one observed stack trace to the profile. Frames are kept in
// the order given. The returned error is always nil.
func (p *Profile) Record(trace *StackTrace) error {
	ids := p.locationIDs[:0]
	for _, frame := range trace.Frames {
		ids = append(ids, p.resolver.resolve(frame))
	}
	p.locationIDs = ids

	p.samples.add(trace, ids)
	return nil
}

// Write encodes the profile and writes it to w in a single call. Write does
// not modify the profile, so it can be retried after a failed write.
func (p *Profile) Write(w io.Writer) error {
	data := p.encode(nil)
	log.Debugf("Encoded profile with %d samples, %d locations, %d functions, "+
		"%d strings (%d bytes)", p.samples.samples.Len(), p.resolver.locations.Len(),
		p.resolver.functions.Len(), p.strings.table.Len(), len(data))
	if p.resolver.cache != nil {
		stats := p.resolver.cache.Statistics()
		log.Debugf("Frame cache entries: %d hits: %d misses: %d evictions: %d",
			p.resolver.cache.Len(), stats.Hit, stats.Miss, stats.Evicted)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// MarshalBinary returns the encoded profile.
func (p *Profile) MarshalBinary() ([]byte, error) {
	return p.encode(nil), nil
}

// StringTable returns the string table. Callers must not modify it.
func (p *Profile) StringTable() []string {
	return p.strings.values()
}

// String returns the string stored at index idx of the string table.
func (p *Profile) String(idx int64) string {
	return p.strings.at(idx)
}

// Functions returns all functions ordered by ID. Callers must not modify it.
func (p *Profile) Functions() []Function {
	return p.resolver.functions.Values()
}

// Locations returns all locations ordered by ID. Callers must not modify it.
func (p *Profile) Locations() []Location {
	return p.resolver.locations.Values()
}

// Samples returns all samples in creation order. Callers must not modify it.
func (p *Profile) Samples() []Sample {
	return p.samples.values()
}

// SampleTypes returns the sample value types.
func (p *Profile) SampleTypes() []ValueType {
	return []ValueType{p.sampleType}
}

// PeriodType returns the kind of events between sampled occurrences.
func (p *Profile) PeriodType() ValueType {
	return p.periodType
}

// Period returns the number of nanoseconds between samples.
func (p *Profile) Period() int64 {
	return p.period
}
