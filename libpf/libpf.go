// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package libpf holds small types shared across the packages of this module.
package libpf // import "go.opentelemetry.io/stackprof/libpf"

// Void is the zero-size value type of a map used as a set.
type Void struct{}
