// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package stackreader decodes stack traces written by a stack sampler, one
// JSON object per line:
//
//	{"tid":5,"pid":100,"thread_name":"main","frames":[{"name":"foo","filename":"a.py","line":10}]}
//
// thread_name is optional.
package stackreader // import "go.opentelemetry.io/stackprof/stackreader"

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ianlancetaylor/demangle"
	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/stackprof/libpf"
	"go.opentelemetry.io/stackprof/pprof"
)

// ErrNoFrames is returned for a trace without frames.
var ErrNoFrames = errors.New("stack trace has no frames")

// maxLineSize bounds the length of a single input line, including the
// newline.
const maxLineSize = 16 << 20

type frameJSON struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Line     uint32 `json:"line"`
}

type traceJSON struct {
	TID        uint32      `json:"tid"`
	PID        uint32      `json:"pid"`
	ThreadName string      `json:"thread_name"`
	Frames     []frameJSON `json:"frames"`
}

// Options controls how frames are normalized while decoding.
type Options struct {
	// Demangle rewrites C++ and Rust symbol names into their readable form.
	Demangle bool
}

// Reader reads stack traces line by line.
type Reader struct {
	reader *bufio.Reader
	opts   Options

	// maxLineSize is the longest line that is decoded. Longer lines are
	// skipped.
	maxLineSize int
	// line holds the line being read.
	line []byte
	// lineNo is the number of the line read last.
	lineNo int
	// skipped counts lines that could not be decoded.
	skipped uint64
}

// New returns a Reader that reads traces from r.
func New(r io.Reader, opts Options) *Reader {
	return &Reader{
		reader:      bufio.NewReaderSize(r, 64*1024),
		opts:        opts,
		maxLineSize: maxLineSize,
	}
}

// Decode decodes a single trace.
func Decode(data []byte, opts Options) (*pprof.StackTrace, error) {
	var raw traceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode stack trace: %w", err)
	}
	if len(raw.Frames) == 0 {
		return nil, ErrNoFrames
	}

	trace := &pprof.StackTrace{
		TID:        libpf.TID(raw.TID),
		PID:        libpf.PID(raw.PID),
		ThreadName: raw.ThreadName,
		Frames:     make([]pprof.Frame, len(raw.Frames)),
	}
	for i, f := range raw.Frames {
		name := f.Name
		if opts.Demangle {
			name = demangle.Filter(name)
		}
		trace.Frames[i] = pprof.Frame{
			Name:     name,
			Filename: f.Filename,
			Line:     f.Line,
		}
	}
	return trace, nil
}

// Next returns the next trace. Lines that can not be decoded or exceed the
// maximum line size are logged and skipped. At the end of the input Next
// returns io.EOF.
func (r *Reader) Next() (*pprof.StackTrace, error) {
	for {
		line, tooLong, err := r.readLine()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", r.lineNo+1, err)
		}
		r.lineNo++

		if tooLong {
			r.skipped++
			log.Warnf("Skipping line %d: longer than %d bytes", r.lineNo, r.maxLineSize)
			continue
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		trace, err := Decode(line, r.opts)
		if err != nil {
			r.skipped++
			log.Warnf("Skipping line %d: %v", r.lineNo, err)
			continue
		}
		return trace, nil
	}
}

// readLine reads up to and including the next newline. A line longer than
// maxLineSize is consumed but not returned, tooLong is set instead. The last
// line does not need a trailing newline. io.EOF is only returned once no
// bytes are left.
func (r *Reader) readLine() (line []byte, tooLong bool, err error) {
	r.line = r.line[:0]
	read := 0
	for {
		chunk, readErr := r.reader.ReadSlice('\n')
		read += len(chunk)
		if !tooLong {
			if len(r.line)+len(chunk) > r.maxLineSize {
				tooLong = true
				r.line = r.line[:0]
			} else {
				r.line = append(r.line, chunk...)
			}
		}

		switch {
		case readErr == nil:
			return r.line, tooLong, nil
		case errors.Is(readErr, bufio.ErrBufferFull):
			continue
		case errors.Is(readErr, io.EOF) && read > 0:
			return r.line, tooLong, nil
		default:
			return nil, false, readErr
		}
	}
}

// Skipped returns the number of lines that were skipped so far.
func (r *Reader) Skipped() uint64 {
	return r.skipped
}

// Run sends all traces to out until the input is exhausted or ctx is
// cancelled. It does not close out.
func (r *Reader) Run(ctx context.Context, out chan<- *pprof.StackTrace) error {
	for {
		trace, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case out <- trace:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
