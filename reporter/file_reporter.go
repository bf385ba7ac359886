// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package reporter // import "go.opentelemetry.io/stackprof/reporter"

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

// outputMode is the permission of written profile files. Temporary files
// start out as 0600.
const outputMode = 0o644

// Compile time check to make sure FileReporter satisfies the interfaces.
var _ Reporter = (*FileReporter)(nil)

// FileReporter writes profiles to a file or to stdout.
type FileReporter struct {
	cfg *Config

	// stdout is the destination for StdoutPath.
	stdout io.Writer
}

// NewFile returns a reporter writing to the destination in cfg.
func NewFile(cfg *Config) *FileReporter {
	return &FileReporter{
		cfg:    cfg,
		stdout: os.Stdout,
	}
}

// Report writes p to the configured destination. Files are written to a
// temporary file in the same directory first and renamed on success, so an
// existing profile is never left half-written.
func (r *FileReporter) Report(p ProfileWriter) error {
	if r.cfg.OutputPath == StdoutPath {
		return writeProfile(r.stdout, p, r.cfg.Compress)
	}

	dir, base := filepath.Split(r.cfg.OutputPath)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create profile file: %w", err)
	}
	tmpName := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = writeProfile(f, p, r.cfg.Compress); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Chmod(outputMode); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to set profile file mode: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close profile file: %w", err)
	}
	if err = os.Rename(tmpName, r.cfg.OutputPath); err != nil {
		return fmt.Errorf("failed to move profile into place: %w", err)
	}

	log.Infof("Wrote profile to %s", r.cfg.OutputPath)
	return nil
}

// writeProfile writes p to w, gzip compressed if compress is set.
func writeProfile(w io.Writer, p ProfileWriter, compress bool) error {
	if !compress {
		return p.Write(w)
	}

	zw := gzip.NewWriter(w)
	if err := p.Write(zw); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush compressed profile: %w", err)
	}
	return nil
}
