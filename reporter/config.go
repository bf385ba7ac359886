// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package reporter // import "go.opentelemetry.io/stackprof/reporter"

// StdoutPath selects standard output as destination.
const StdoutPath = "-"

type Config struct {
	// OutputPath is the destination file of the profile, or StdoutPath.
	OutputPath string

	// Compress enables gzip compression of the written profile, as expected by
	// most pprof tooling for files on disk.
	Compress bool
}
