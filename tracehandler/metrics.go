// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package tracehandler // import "go.opentelemetry.io/stackprof/tracehandler"

import log "github.com/sirupsen/logrus"

func (m *traceHandler) collectMetrics() {
	if m.traces > 0 || m.recordErrors > 0 {
		log.WithFields(log.Fields{
			"traces":        m.traces,
			"frames":        m.frames,
			"record_errors": m.recordErrors,
		}).Debug("Recorded traces")
	}

	m.traces = 0
	m.frames = 0
	m.recordErrors = 0
}
