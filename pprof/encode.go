// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof // import "go.opentelemetry.io/stackprof/pprof"

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers of perftools.profiles (profile.proto).
const (
	// message Profile
	tagProfileSampleType        = 1  // repeated ValueType
	tagProfileSample            = 2  // repeated Sample
	tagProfileMapping           = 3  // repeated Mapping
	tagProfileLocation          = 4  // repeated Location
	tagProfileFunction          = 5  // repeated Function
	tagProfileStringTable       = 6  // repeated string
	tagProfileDropFrames        = 7  // int64 (string table index)
	tagProfileKeepFrames        = 8  // int64 (string table index)
	tagProfileTimeNanos         = 9  // int64
	tagProfileDurationNanos     = 10 // int64
	tagProfilePeriodType        = 11 // ValueType
	tagProfilePeriod            = 12 // int64
	tagProfileComment           = 13 // repeated int64
	tagProfileDefaultSampleType = 14 // int64

	// message ValueType
	tagValueTypeType = 1 // int64 (string table index)
	tagValueTypeUnit = 2 // int64 (string table index)

	// message Sample
	tagSampleLocationID = 1 // repeated uint64
	tagSampleValue      = 2 // repeated int64
	tagSampleLabel      = 3 // repeated Label

	// message Label
	tagLabelKey     = 1 // int64 (string table index)
	tagLabelStr     = 2 // int64 (string table index)
	tagLabelNum     = 3 // int64
	tagLabelNumUnit = 4 // int64 (string table index)

	// message Location
	tagLocationID        = 1 // uint64
	tagLocationMappingID = 2 // uint64
	tagLocationAddress   = 3 // uint64
	tagLocationLine      = 4 // repeated Line
	tagLocationIsFolded  = 5 // bool

	// message Line
	tagLineFunctionID = 1 // uint64
	tagLineLine       = 2 // int64
	tagLineColumn     = 3 // int64

	// message Function
	tagFunctionID         = 1 // uint64
	tagFunctionName       = 2 // int64 (string table index)
	tagFunctionSystemName = 3 // int64 (string table index)
	tagFunctionFilename   = 4 // int64 (string table index)
	tagFunctionStartLine  = 5 // int64
)

// encode appends the wire representation of the profile to b. Mapping,
// drop_frames, keep_frames, time_nanos, duration_nanos, comment and
// default_sample_type are never set and therefore omitted.
func (p *Profile) encode(b []byte) []byte {
	for _, st := range p.SampleTypes() {
		b = appendMessage(b, tagProfileSampleType, st.encode)
	}
	samples := p.samples.values()
	for i := range samples {
		b = appendMessage(b, tagProfileSample, samples[i].encode)
	}
	for _, loc := range p.Locations() {
		b = appendMessage(b, tagProfileLocation, loc.encode)
	}
	for _, fn := range p.Functions() {
		b = appendMessage(b, tagProfileFunction, fn.encode)
	}
	for _, s := range p.StringTable() {
		// Empty strings must be kept: indices are positional.
		b = protowire.AppendTag(b, tagProfileStringTable, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	b = appendMessage(b, tagProfilePeriodType, p.periodType.encode)
	b = appendInt64(b, tagProfilePeriod, p.period)
	return b
}

func (vt ValueType) encode(b []byte) []byte {
	b = appendInt64(b, tagValueTypeType, vt.Type)
	b = appendInt64(b, tagValueTypeUnit, vt.Unit)
	return b
}

func (s *Sample) encode(b []byte) []byte {
	b = appendPackedUint64(b, tagSampleLocationID, s.LocationIDs)
	b = appendPackedInt64(b, tagSampleValue, s.Values)
	for _, l := range s.Labels {
		b = appendMessage(b, tagSampleLabel, l.encode)
	}
	return b
}

func (l Label) encode(b []byte) []byte {
	b = appendInt64(b, tagLabelKey, l.Key)
	b = appendInt64(b, tagLabelStr, l.Str)
	b = appendInt64(b, tagLabelNum, l.Num)
	b = appendInt64(b, tagLabelNumUnit, l.NumUnit)
	return b
}

func (loc Location) encode(b []byte) []byte {
	b = appendUint64(b, tagLocationID, loc.ID)
	b = appendUint64(b, tagLocationMappingID, loc.MappingID)
	b = appendUint64(b, tagLocationAddress, loc.Address)
	for _, ln := range loc.Lines {
		b = appendMessage(b, tagLocationLine, ln.encode)
	}
	if loc.IsFolded {
		b = appendUint64(b, tagLocationIsFolded, 1)
	}
	return b
}

func (ln Line) encode(b []byte) []byte {
	b = appendUint64(b, tagLineFunctionID, ln.FunctionID)
	b = appendInt64(b, tagLineLine, ln.Line)
	b = appendInt64(b, tagLineColumn, ln.Column)
	return b
}

func (fn Function) encode(b []byte) []byte {
	b = appendUint64(b, tagFunctionID, fn.ID)
	b = appendInt64(b, tagFunctionName, fn.Name)
	b = appendInt64(b, tagFunctionSystemName, fn.SystemName)
	b = appendInt64(b, tagFunctionFilename, fn.Filename)
	b = appendInt64(b, tagFunctionStartLine, fn.StartLine)
	return b
}

// appendUint64 appends a varint field, omitting the proto3 default.
func appendUint64(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendUint64(b, num, uint64(v))
}

func appendPackedUint64(b []byte, num protowire.Number, vs []uint64) []byte {
	if len(vs) == 0 {
		return b
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(v)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	for _, v := range vs {
		b = protowire.AppendVarint(b, v)
	}
	return b
}

func appendPackedInt64(b []byte, num protowire.Number, vs []int64) []byte {
	if len(vs) == 0 {
		return b
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}

// appendMessage appends the length-delimited message produced by enc.
func appendMessage(b []byte, num protowire.Number, enc func([]byte) []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, enc(nil))
}
