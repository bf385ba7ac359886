// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package reporter // import "go.opentelemetry.io/stackprof/reporter"

import (
	"io"

	"go.opentelemetry.io/stackprof/pprof"
)

// Compile time check to make sure pprof.Profile satisfies the interfaces.
var _ ProfileWriter = (*pprof.Profile)(nil)

// ProfileWriter is a finished profile that can serialize itself.
type ProfileWriter interface {
	// Write encodes the profile and writes it to w. It must not modify the
	// profile, so that a failed write can be retried.
	Write(w io.Writer) error
}

// Reporter is the top-level interface implemented by a full reporter.
type Reporter interface {
	// Report writes out a finished profile. It is called once at the end of
	// a session.
	Report(p ProfileWriter) error
}
