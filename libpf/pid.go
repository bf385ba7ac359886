// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package libpf // import "go.opentelemetry.io/stackprof/libpf"

// PID represent Unix Process ID (pid_t)
type PID uint32

// TID represents a Unix thread ID. Thread IDs are unique system-wide for the
// duration of a sampling session.
type TID uint32
