// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package pprof // import "go.opentelemetry.io/stackprof/pprof"

import (
	"errors"
	"fmt"
)

// ErrInvalidSamplingRate is returned for a non-positive sampling rate.
var ErrInvalidSamplingRate = errors.New("samples per second must be greater than zero")

type Config struct {
	// SamplesPerSecond is the sampling frequency used to derive the profile period.
	SamplesPerSecond int
	// ShowLineNumbers controls whether locations keep their source line. When
	// false every location stores line 0 and frames of the same function
	// collapse into a single location.
	ShowLineNumbers bool
	// FrameCacheElements defines the item capacity of the frame cache. Zero
	// disables the cache.
	FrameCacheElements uint32
}

// Validate returns an error if the configuration can not be used to build a
// profile.
func (cfg *Config) Validate() error {
	if cfg.SamplesPerSecond <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSamplingRate, cfg.SamplesPerSecond)
	}
	return nil
}
