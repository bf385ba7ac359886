// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package vc provides buildtime information.
package vc // import "go.opentelemetry.io/stackprof/vc"

import "runtime/debug"

var (
	// The following variables are set at link time using ldflags, e.g.
	// -X go.opentelemetry.io/stackprof/vc.version=v0.1.0

	// revision of the binary
	revision = ""
	// buildTimestamp, timestamp of the build
	buildTimestamp = ""
	// version in vX.Y.Z{-N-abbrev} format (via git-describe --tags)
	version = ""
)

// unknown is reported for values that were neither linked in nor recorded
// by the go toolchain.
const unknown = "unknown"

// Revision of the binary. Falls back to the VCS revision recorded by the go
// toolchain.
func Revision() string {
	if revision != "" {
		return revision
	}
	return buildSetting("vcs.revision")
}

// BuildTimestamp returns the timestamp of the build, or the commit time
// recorded by the go toolchain.
func BuildTimestamp() string {
	if buildTimestamp != "" {
		return buildTimestamp
	}
	return buildSetting("vcs.time")
}

// Version in vX.Y.Z{-N-abbrev} format. Falls back to the main module version.
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return unknown
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknown
	}
	for _, s := range info.Settings {
		if s.Key == key && s.Value != "" {
			return s.Value
		}
	}
	return unknown
}
