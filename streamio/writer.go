// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package streamio

import (
	"context"
	"io"
)

const (
	DefaultInitialCapacity = 1 << 10
	DefaultMaxCapacity     = 1 << 20
	MinCapacity            = 4
)

type flusher interface {
	Flush() error
}

// Writer accumulates bytes in a growable buffer and hands them to the underlying
// writer on Flush. The buffer doubles up to its maximum capacity; a write that does
// not fit drains the buffer first, and a write larger than the maximum goes straight
// through. Early drains do not flush the underlying writer, only Flush does.
//
// The bytes written between two Flush calls form a unit that is either withheld or
// written whole: once part of it reached the underlying writer, ctx is no longer
// checked until Flush completes.
//
// Writer is not safe for concurrent use.
type Writer struct {
	dst     io.Writer
	buf     []byte
	maxCap  int
	partial bool
}

// NewWriter creates a Writer. An initial capacity larger than maxCapacity raises the
// maximum to the initial capacity.
func NewWriter(dst io.Writer, initialCapacity, maxCapacity int) (*Writer, error) {
	if initialCapacity < MinCapacity {
		return nil, ErrInvalidCapacity
	}
	if initialCapacity > maxCapacity {
		maxCapacity = initialCapacity
	}
	return &Writer{
		dst:    dst,
		buf:    make([]byte, 0, initialCapacity),
		maxCap: maxCapacity,
	}, nil
}

// Buffered returns the number of bytes waiting for Flush.
func (w *Writer) Buffered() int {
	return len(w.buf)
}

// Capacity returns the current buffer capacity.
func (w *Writer) Capacity() int {
	return cap(w.buf)
}

// prepare makes room for size more bytes. It reports false when the payload can never
// fit in the buffer and has to be written directly.
func (w *Writer) prepare(ctx context.Context, size int) (bool, error) {
	needed := len(w.buf) + size
	if needed <= cap(w.buf) {
		return true, nil
	}
	if needed <= w.maxCap {
		newCap := cap(w.buf) * 2
		for newCap < needed && newCap < w.maxCap {
			newCap *= 2
		}
		if newCap > w.maxCap {
			newCap = w.maxCap
		}
		grown := make([]byte, len(w.buf), newCap)
		copy(grown, w.buf)
		w.buf = grown
		return true, nil
	}
	if err := w.drain(ctx); err != nil {
		return false, err
	}
	if size <= w.maxCap {
		return w.prepare(ctx, size)
	}
	return false, nil
}

// WriteByte buffers a single byte.
func (w *Writer) WriteByte(ctx context.Context, b byte) error {
	ok, err := w.prepare(ctx, 1)
	if err != nil {
		return err
	}
	if !ok {
		w.partial = true
		_, err = w.dst.Write([]byte{b})
		return err
	}
	w.buf = append(w.buf, b)
	return nil
}

// Write buffers p.
func (w *Writer) Write(ctx context.Context, p []byte) error {
	ok, err := w.prepare(ctx, len(p))
	if err != nil {
		return err
	}
	if !ok {
		if err = w.checkContext(ctx); err != nil {
			return err
		}
		w.partial = true
		_, err = w.dst.Write(p)
		return err
	}
	w.buf = append(w.buf, p...)
	return nil
}

// WriteString buffers the UTF-8 bytes of s.
func (w *Writer) WriteString(ctx context.Context, s string) error {
	ok, err := w.prepare(ctx, len(s))
	if err != nil {
		return err
	}
	if !ok {
		if err = w.checkContext(ctx); err != nil {
			return err
		}
		w.partial = true
		_, err = io.WriteString(w.dst, s)
		return err
	}
	w.buf = append(w.buf, s...)
	return nil
}

// Flush writes the buffered bytes to the underlying writer, and flushes it as well
// when it buffers on its own. Once bytes reach the underlying writer they are not
// recalled, ctx is only checked before the first of them.
func (w *Writer) Flush(ctx context.Context) error {
	if err := w.drain(ctx); err != nil {
		return err
	}
	w.partial = false
	if f, ok := w.dst.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// drain hands the buffered bytes to the underlying writer without flushing it.
func (w *Writer) drain(ctx context.Context) error {
	if err := w.checkContext(ctx); err != nil {
		return err
	}
	if len(w.buf) == 0 {
		return nil
	}
	w.partial = true
	_, err := w.dst.Write(w.buf)
	w.buf = w.buf[:0]
	return err
}

// checkContext ignores ctx while a unit is partly written.
func (w *Writer) checkContext(ctx context.Context) error {
	if w.partial {
		return nil
	}
	return ctx.Err()
}

// Reset drops buffered bytes without writing them.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.partial = false
}
