// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"context"
	"io"
	"strings"

	"github.com/vmware/stomp-transport-go/streamio"
)

// WriterOption configures a Writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	initialCapacity int
	maxCapacity     int
}

// WithBufferCapacity sets the initial and maximum size of the write buffer.
func WithBufferCapacity(initial, max int) WriterOption {
	return func(c *writerConfig) {
		c.initialCapacity = initial
		c.maxCapacity = max
	}
}

// Writer writes STOMP 1.2 frames. It is not safe for concurrent use.
type Writer struct {
	out *streamio.Writer
}

// NewWriter creates a Writer on top of w. It fails when the buffer capacity options
// are invalid.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{
		initialCapacity: streamio.DefaultInitialCapacity,
		maxCapacity:     streamio.DefaultMaxCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	out, err := streamio.NewWriter(w, cfg.initialCapacity, cfg.maxCapacity)
	if err != nil {
		return nil, err
	}
	return &Writer{out: out}, nil
}

// Write serializes f and flushes it. A heart-beat is written as a single end of line.
// CONNECT and STOMP headers are written verbatim and rejected with a *MalformedError,
// before anything is written, when they cannot be represented that way. A frame is
// written whole: once part of it reached the underlying writer, cancelling ctx no
// longer interrupts it.
func (w *Writer) Write(ctx context.Context, f *Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.IsHeartBeat() {
		return w.finish(ctx, w.out.WriteByte(ctx, '\n'))
	}

	escape := escapesHeaders(f.Command)
	if !escape {
		if err := validateRawHeaders(f.Header); err != nil {
			return err
		}
	}
	return w.finish(ctx, w.writeFrame(ctx, f, escape))
}

func (w *Writer) writeFrame(ctx context.Context, f *Frame, escape bool) error {
	if err := w.out.WriteString(ctx, f.Command); err != nil {
		return err
	}
	if err := w.out.WriteByte(ctx, '\n'); err != nil {
		return err
	}
	for i := 0; i < f.Header.Len(); i++ {
		key, value := f.Header.GetAt(i)
		if escape {
			key, value = escapeHeader(key), escapeHeader(value)
		}
		if err := w.out.WriteString(ctx, key); err != nil {
			return err
		}
		if err := w.out.WriteByte(ctx, ':'); err != nil {
			return err
		}
		if err := w.out.WriteString(ctx, value); err != nil {
			return err
		}
		if err := w.out.WriteByte(ctx, '\n'); err != nil {
			return err
		}
	}
	if err := w.out.WriteByte(ctx, '\n'); err != nil {
		return err
	}
	if len(f.Body) > 0 {
		if err := w.out.Write(ctx, f.Body); err != nil {
			return err
		}
	}
	return w.out.WriteByte(ctx, 0)
}

// finish flushes the frame, or drops what was buffered of it when writing failed.
func (w *Writer) finish(ctx context.Context, err error) error {
	if err == nil {
		err = w.out.Flush(ctx)
	}
	if err != nil {
		w.out.Reset()
	}
	return err
}

func validateRawHeaders(header *Header) error {
	for i := 0; i < header.Len(); i++ {
		key, value := header.GetAt(i)
		if strings.ContainsAny(key, "\n:") {
			return malformed("CONNECT header names must not contain LF or ':'")
		}
		if strings.ContainsRune(value, '\n') {
			return malformed("CONNECT header values must not contain LF")
		}
	}
	return nil
}
