// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof // import "go.opentelemetry.io/stackprof/pprof"

import "go.opentelemetry.io/stackprof/internal/orderedset"

// stringTable interns strings into the profile string table. Index 0 is
// always the empty string.
type stringTable struct {
	table *orderedset.Table[string, string]
}

func newStringTable() *stringTable {
	st := &stringTable{table: orderedset.New[string, string](0, 256)}
	st.intern("")
	return st
}

// intern returns the string table index of s, adding s if needed.
func (st *stringTable) intern(s string) int64 {
	idx, _ := st.table.GetOrCreate(s, func(uint64) string { return s })
	return int64(idx)
}

// at returns the string stored at idx.
func (st *stringTable) at(idx int64) string {
	return *st.table.At(uint64(idx))
}

func (st *stringTable) values() []string {
	return st.table.Values()
}
