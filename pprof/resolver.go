// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof // import "go.opentelemetry.io/stackprof/pprof"

import (
	"go.opentelemetry.io/stackprof/internal/orderedset"
	"go.opentelemetry.io/stackprof/libpf/freelru"
)

// functionKey identifies a function by its interned name and file.
type functionKey struct {
	name     int64
	filename int64
}

// locationKey identifies a call site. line is the line that gets stored in
// the location, so frames that only differ by line share a location when line
// numbers are hidden.
type locationKey struct {
	functionID uint64
	line       int64
}

// frameResolver turns frames into location IDs, interning strings, functions
// and locations on the way.
type frameResolver struct {
	strings   *stringTable
	functions *orderedset.Table[functionKey, Function]
	locations *orderedset.Table[locationKey, Location]

	showLineNumbers bool

	// cache short-circuits the three table lookups for recently seen frames.
	// IDs are never reassigned, so a cached ID stays valid after eviction of
	// unrelated entries. nil if disabled.
	cache *freelru.LRU[Frame, uint64]
}

// hashFrame is the LRU hash callback for frames.
func hashFrame(f Frame) uint32 {
	return freelru.HashStrings(f.Name, f.Filename) ^ f.Line
}

func newFrameResolver(strings *stringTable, showLineNumbers bool,
	cacheElements uint32) (*frameResolver, error) {
	r := &frameResolver{
		strings:         strings,
		functions:       orderedset.New[functionKey, Function](1, 64),
		locations:       orderedset.New[locationKey, Location](1, 64),
		showLineNumbers: showLineNumbers,
	}
	if cacheElements > 0 {
		cache, err := freelru.New[Frame, uint64](cacheElements, hashFrame)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	return r, nil
}

// resolve returns the location ID for frame. Resolving the same frame again
// returns the same ID and does not grow any table.
func (r *frameResolver) resolve(frame Frame) uint64 {
	if r.cache != nil {
		if id, ok := r.cache.Get(frame); ok {
			return id
		}
	}

	name := r.strings.intern(frame.Name)
	filename := r.strings.intern(frame.Filename)

	functionID, _ := r.functions.GetOrCreate(functionKey{name: name, filename: filename},
		func(id uint64) Function {
			return Function{
				ID:         id,
				Name:       name,
				SystemName: name,
				Filename:   filename,
				// The line of the function definition is not known.
				StartLine: 0,
			}
		})

	storedLine := int64(frame.Line)
	if !r.showLineNumbers {
		storedLine = 0
	}
	locationID, _ := r.locations.GetOrCreate(locationKey{functionID: functionID, line: storedLine},
		func(id uint64) Location {
			return Location{
				ID:    id,
				Lines: []Line{{FunctionID: functionID, Line: storedLine}},
			}
		})

	if r.cache != nil {
		r.cache.Add(frame, locationID)
	}
	return locationID
}
