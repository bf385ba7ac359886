// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package controller // import "go.opentelemetry.io/stackprof/internal/controller"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/stackprof/pprof"
	"go.opentelemetry.io/stackprof/reporter"
)

type Config struct {
	InputPath          string
	OutputPath         string
	SamplesPerSecond   int
	ShowLineNumbers    bool
	Compress           bool
	Demangle           bool
	FrameCacheElements uint
	MonitorInterval    time.Duration
	VerboseMode        bool
	Version            bool

	// Input overrides InputPath if set.
	Input io.Reader
	// Reporter overrides the file reporter for OutputPath if set.
	Reporter reporter.Reporter

	Fs *flag.FlagSet
}

// Dump visits all flag sets, and dumps them all to debug
// Used for verbose mode logging.
func (cfg *Config) Dump() {
	log.Debug("Config:")
	cfg.Fs.VisitAll(func(f *flag.Flag) {
		log.Debug(fmt.Sprintf("%s: %v", f.Name, f.Value))
	})
}

// Validate runs validations on the provided configuration, and returns errors
// if invalid values were provided.
func (cfg *Config) Validate() error {
	if err := cfg.profileConfig().Validate(); err != nil {
		return err
	}

	if cfg.Input == nil && cfg.InputPath == "" {
		return errors.New("no input given")
	}

	if cfg.Reporter == nil && cfg.OutputPath == "" {
		return errors.New("no output given")
	}

	if cfg.FrameCacheElements > math.MaxUint32 {
		return fmt.Errorf("frame cache size %d exceeds limit (max: %d)",
			cfg.FrameCacheElements, uint32(math.MaxUint32))
	}

	if cfg.MonitorInterval <= 0 {
		return fmt.Errorf("invalid monitor interval %v", cfg.MonitorInterval)
	}

	return nil
}

func (cfg *Config) profileConfig() *pprof.Config {
	return &pprof.Config{
		SamplesPerSecond:   cfg.SamplesPerSecond,
		ShowLineNumbers:    cfg.ShowLineNumbers,
		FrameCacheElements: uint32(cfg.FrameCacheElements),
	}
}
