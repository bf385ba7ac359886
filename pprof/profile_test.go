// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/stackprof/libpf"
)

func newTestProfile(t *testing.T, showLineNumbers bool, cacheElements uint32) *Profile {
	t.Helper()
	p, err := New(&Config{
		SamplesPerSecond:   100,
		ShowLineNumbers:    showLineNumbers,
		FrameCacheElements: cacheElements,
	})
	require.NoError(t, err)
	return p
}

func mainTrace() *StackTrace {
	return &StackTrace{
		TID:        5,
		PID:        100,
		ThreadName: "main",
		Frames: []Frame{
			{Name: "foo", Filename: "a.py", Line: 10},
			{Name: "bar", Filename: "a.py", Line: 20},
		},
	}
}

func TestNewRejectsInvalidSamplingRate(t *testing.T) {
	for _, rate := range []int{0, -1} {
		_, err := New(&Config{SamplesPerSecond: rate})
		require.ErrorIs(t, err, ErrInvalidSamplingRate)
	}
}

func TestPeriod(t *testing.T) {
	for _, tt := range []struct {
		rate       int
		wantPeriod int64
	}{
		{rate: 100, wantPeriod: 10_000_000},
		{rate: 1, wantPeriod: 1_000_000_000},
		{rate: 3, wantPeriod: 333_333_333},
	} {
		p, err := New(&Config{SamplesPerSecond: tt.rate})
		require.NoError(t, err)
		assert.Equal(t, tt.wantPeriod, p.Period(), "rate %d", tt.rate)
	}
}

func TestFixedStrings(t *testing.T) {
	p := newTestProfile(t, true, 0)

	assert.Equal(t, []string{"", "count", "times", "cpu", "nanoseconds"}, p.StringTable())
	require.Len(t, p.SampleTypes(), 1)
	assert.Equal(t, "count", p.String(p.SampleTypes()[0].Type))
	assert.Equal(t, "times", p.String(p.SampleTypes()[0].Unit))
	assert.Equal(t, "cpu", p.String(p.PeriodType().Type))
	assert.Equal(t, "nanoseconds", p.String(p.PeriodType().Unit))
}

func TestEndToEnd(t *testing.T) {
	for _, cacheElements := range []uint32{0, 16} {
		p := newTestProfile(t, true, cacheElements)
		for range 3 {
			require.NoError(t, p.Record(mainTrace()))
		}

		require.Len(t, p.Samples(), 1)
		sample := p.Samples()[0]
		assert.Equal(t, []int64{3}, sample.Values)
		assert.Equal(t, []uint64{1, 2}, sample.LocationIDs)

		assert.Equal(t, []Function{
			{ID: 1, Name: 5, SystemName: 5, Filename: 6},
			{ID: 2, Name: 7, SystemName: 7, Filename: 6},
		}, p.Functions())
		assert.Equal(t, []Location{
			{ID: 1, Lines: []Line{{FunctionID: 1, Line: 10}}},
			{ID: 2, Lines: []Line{{FunctionID: 2, Line: 20}}},
		}, p.Locations())

		assert.Equal(t, []string{"", "count", "times", "cpu", "nanoseconds",
			"foo", "a.py", "bar"}, p.StringTable()[:8])

		labels := map[string]any{}
		for _, l := range sample.Labels {
			if l.Str != 0 {
				labels[p.String(l.Key)] = p.String(l.Str)
			} else {
				labels[p.String(l.Key)] = l.Num
			}
		}
		assert.Equal(t, map[string]any{
			LabelThreadName: "main",
			LabelThreadID:   int64(5),
			LabelPID:        int64(100),
		}, labels)
	}
}

func TestDedupIdempotence(t *testing.T) {
	p := newTestProfile(t, true, 0)
	require.NoError(t, p.Record(mainTrace()))

	nStrings, nFuncs, nLocs := len(p.StringTable()), len(p.Functions()), len(p.Locations())
	for range 99 {
		require.NoError(t, p.Record(mainTrace()))
	}

	require.Len(t, p.Samples(), 1)
	assert.Equal(t, int64(100), p.Samples()[0].Values[0])
	assert.Len(t, p.StringTable(), nStrings)
	assert.Len(t, p.Functions(), nFuncs)
	assert.Len(t, p.Locations(), nLocs)
}

func TestStringInterningUniqueness(t *testing.T) {
	st := newStringTable()
	words := []string{"a", "b", "", "a", "c", "b", "count"}
	seen := map[string]int64{}
	for _, w := range words {
		idx := st.intern(w)
		if prev, ok := seen[w]; ok {
			assert.Equal(t, prev, idx, "string %q", w)
		}
		seen[w] = idx
	}

	indices := map[int64]string{}
	for s, idx := range seen {
		other, dup := indices[idx]
		assert.False(t, dup, "%q and %q share index %d", s, other, idx)
		indices[idx] = s
		assert.Equal(t, s, st.at(idx))
	}
	assert.Equal(t, "", st.at(0))
}

func TestFunctionKeyIgnoresLine(t *testing.T) {
	p := newTestProfile(t, true, 0)
	require.NoError(t, p.Record(&StackTrace{
		TID: 1,
		Frames: []Frame{
			{Name: "foo", Filename: "a.py", Line: 10},
			{Name: "foo", Filename: "a.py", Line: 11},
		},
	}))

	require.Len(t, p.Functions(), 1)
	require.Len(t, p.Locations(), 2)
	assert.Equal(t, []uint64{1, 2}, p.Samples()[0].LocationIDs)
	for _, loc := range p.Locations() {
		assert.Equal(t, uint64(1), loc.Lines[0].FunctionID)
	}
}

func TestSameNameDifferentFile(t *testing.T) {
	p := newTestProfile(t, true, 0)
	require.NoError(t, p.Record(&StackTrace{
		TID: 1,
		Frames: []Frame{
			{Name: "run", Filename: "a.py", Line: 1},
			{Name: "run", Filename: "b.py", Line: 1},
		},
	}))

	assert.Len(t, p.Functions(), 2)
	assert.Len(t, p.Locations(), 2)
}

func TestLineDisplayToggle(t *testing.T) {
	frames := []Frame{
		{Name: "foo", Filename: "a.py", Line: 10},
		{Name: "foo", Filename: "a.py", Line: 20},
	}

	for _, tt := range []struct {
		name            string
		showLineNumbers bool
		wantLocations   []Location
		wantStack       []uint64
	}{
		{
			name:            "line numbers shown",
			showLineNumbers: true,
			wantLocations: []Location{
				{ID: 1, Lines: []Line{{FunctionID: 1, Line: 10}}},
				{ID: 2, Lines: []Line{{FunctionID: 1, Line: 20}}},
			},
			wantStack: []uint64{1, 2},
		},
		{
			name:            "line numbers hidden",
			showLineNumbers: false,
			wantLocations: []Location{
				{ID: 1, Lines: []Line{{FunctionID: 1, Line: 0}}},
			},
			wantStack: []uint64{1, 1},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile(t, tt.showLineNumbers, 0)
			require.NoError(t, p.Record(&StackTrace{TID: 1, Frames: frames}))

			assert.Equal(t, tt.wantLocations, p.Locations())
			assert.Len(t, p.Functions(), 1)
			assert.Equal(t, tt.wantStack, p.Samples()[0].LocationIDs)
		})
	}
}

func TestPerThreadIsolation(t *testing.T) {
	p := newTestProfile(t, true, 0)
	for _, tid := range []libpf.TID{1, 2, 1} {
		trace := mainTrace()
		trace.TID = tid
		require.NoError(t, p.Record(trace))
	}

	require.Len(t, p.Samples(), 2)
	assert.Equal(t, p.Samples()[0].LocationIDs, p.Samples()[1].LocationIDs)
	assert.Equal(t, int64(2), p.Samples()[0].Values[0])
	assert.Equal(t, int64(1), p.Samples()[1].Values[0])

	threadID := func(s Sample) int64 {
		for _, l := range s.Labels {
			if p.String(l.Key) == LabelThreadID {
				return l.Num
			}
		}
		return -1
	}
	assert.Equal(t, int64(1), threadID(p.Samples()[0]))
	assert.Equal(t, int64(2), threadID(p.Samples()[1]))
}

func TestLabelsAreWrittenOnce(t *testing.T) {
	p := newTestProfile(t, true, 0)

	unnamed := mainTrace()
	unnamed.ThreadName = ""
	require.NoError(t, p.Record(unnamed))

	require.Len(t, p.Samples(), 1)
	before := append([]Label(nil), p.Samples()[0].Labels...)
	require.Len(t, before, 2)

	named := mainTrace()
	named.PID = 4242
	require.NoError(t, p.Record(named))

	require.Len(t, p.Samples(), 1)
	assert.Equal(t, before, p.Samples()[0].Labels)
	assert.Equal(t, int64(2), p.Samples()[0].Values[0])
	assert.NotContains(t, p.StringTable(), "main")
}

func TestFrameOrderIsKept(t *testing.T) {
	p := newTestProfile(t, true, 0)
	trace := mainTrace()
	require.NoError(t, p.Record(trace))

	reversed := mainTrace()
	reversed.Frames[0], reversed.Frames[1] = reversed.Frames[1], reversed.Frames[0]
	require.NoError(t, p.Record(reversed))

	require.Len(t, p.Samples(), 2)
	assert.Equal(t, []uint64{1, 2}, p.Samples()[0].LocationIDs)
	assert.Equal(t, []uint64{2, 1}, p.Samples()[1].LocationIDs)
}

func TestEmptyStack(t *testing.T) {
	p := newTestProfile(t, true, 0)
	require.NoError(t, p.Record(&StackTrace{TID: 3}))
	require.NoError(t, p.Record(&StackTrace{TID: 3}))

	require.Len(t, p.Samples(), 1)
	assert.Empty(t, p.Samples()[0].LocationIDs)
	assert.Equal(t, int64(2), p.Samples()[0].Values[0])
}

func TestFrameCacheMatchesTables(t *testing.T) {
	cached := newTestProfile(t, true, 2)
	uncached := newTestProfile(t, true, 0)

	frames := []Frame{
		{Name: "a", Filename: "x.py", Line: 1},
		{Name: "b", Filename: "x.py", Line: 2},
		{Name: "c", Filename: "y.py", Line: 3},
		{Name: "a", Filename: "x.py", Line: 1},
		{Name: "a", Filename: "x.py", Line: 4},
		{Name: "c", Filename: "y.py", Line: 3},
	}
	for i := range frames {
		trace := &StackTrace{TID: libpf.TID(i % 2), Frames: frames[:i+1]}
		require.NoError(t, cached.Record(trace))
		require.NoError(t, uncached.Record(trace))
	}

	assert.Equal(t, uncached.StringTable(), cached.StringTable())
	assert.Equal(t, uncached.Functions(), cached.Functions())
	assert.Equal(t, uncached.Locations(), cached.Locations())
	assert.Equal(t, uncached.Samples(), cached.Samples())
	assert.NotZero(t, cached.resolver.cache.Statistics().Hit)
}
