// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package streamio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"
)

// DefaultChunkSize is the size of a single read issued against the underlying stream.
const DefaultChunkSize = 4096

type chunk struct {
	data []byte
	err  error
}

// Reader is a buffered reader whose every primitive can be cancelled with a context.
//
// Bytes are moved from the underlying io.Reader by a single pump goroutine, so a read
// blocked on the stream can be abandoned through its context. A primitive consumes
// nothing until it can return its whole result, so after a cancelled call the bytes
// it had seen, and anything arriving later, are returned by the next call.
// Reader is not safe for concurrent use.
type Reader struct {
	src       io.Reader
	chunkSize int
	chunks    chan chunk
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	buf []byte
	off int
	err error
}

// NewReader creates a Reader over src. A chunkSize <= 0 selects DefaultChunkSize.
func NewReader(src io.Reader, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{
		src:       src,
		chunkSize: chunkSize,
		chunks:    make(chan chunk, 1),
		done:      make(chan struct{}),
	}
}

// Buffered returns the number of bytes that can be read without touching the stream.
func (r *Reader) Buffered() int {
	return len(r.buf) - r.off
}

// Close stops the pump goroutine once its pending read returns. It does not close
// the underlying stream, which stays owned by the caller.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	return nil
}

func (r *Reader) pump() {
	defer close(r.chunks)
	for {
		b := make([]byte, r.chunkSize)
		n, err := r.src.Read(b)
		if n > 0 {
			select {
			case r.chunks <- chunk{data: b[:n]}:
			case <-r.done:
				return
			}
		}
		if err != nil {
			select {
			case r.chunks <- chunk{err: err}:
			case <-r.done:
			}
			return
		}
	}
}

// fill blocks until at least one more byte is buffered, the stream fails or ctx is done.
func (r *Reader) fill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.err != nil {
		return r.err
	}
	r.startOnce.Do(func() {
		go r.pump()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		r.err = ErrClosed
		return r.err
	case c, ok := <-r.chunks:
		if !ok {
			r.err = ErrClosed
			return r.err
		}
		if c.err != nil {
			r.err = translateReadError(c.err)
			// a cancelled caller and a dead stream look the same from here,
			// the caller's cancellation wins.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return r.err
		}
		if r.off >= len(r.buf) {
			r.buf = c.data
		} else {
			r.buf = append(r.buf[r.off:], c.data...)
		}
		r.off = 0
		return nil
	}
}

func translateReadError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrStreamEnded
	}
	return fmt.Errorf("streamio: read failed: %w", err)
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte(ctx context.Context) (byte, error) {
	for r.off >= len(r.buf) {
		if err := r.fill(ctx); err != nil {
			return 0, err
		}
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// ReadRune decodes a single UTF-8 encoded character. Invalid encodings decode to
// utf8.RuneError consuming one byte, like utf8.DecodeRune.
func (r *Reader) ReadRune(ctx context.Context) (rune, error) {
	for {
		avail := r.buf[r.off:]
		if len(avail) > 0 && (avail[0] < utf8.RuneSelf || utf8.FullRune(avail)) {
			ru, size := utf8.DecodeRune(avail)
			r.off += size
			return ru, nil
		}
		if err := r.fill(ctx); err != nil {
			return 0, err
		}
	}
}

// ReadFull reads exactly len(p) bytes.
func (r *Reader) ReadFull(ctx context.Context, p []byte) error {
	for r.Buffered() < len(p) {
		if err := r.fill(ctx); err != nil {
			return err
		}
	}
	r.off += copy(p, r.buf[r.off:])
	return nil
}

// ReadBytesUntil reads up to the first occurrence of delim. The delimiter is consumed
// but not included in the result.
func (r *Reader) ReadBytesUntil(ctx context.Context, delim byte) ([]byte, error) {
	scanned := 0
	for {
		avail := r.buf[r.off:]
		if i := bytes.IndexByte(avail[scanned:], delim); i >= 0 {
			end := scanned + i
			out := make([]byte, end)
			copy(out, avail[:end])
			r.off += end + 1
			return out, nil
		}
		scanned = len(avail)
		if err := r.fill(ctx); err != nil {
			return nil, err
		}
	}
}

// ReadStringUntil reads up to the first byte contained in delims and returns the text
// before it together with the delimiter that ended it.
func (r *Reader) ReadStringUntil(ctx context.Context, delims ...byte) (string, byte, error) {
	scanned := 0
	for {
		avail := r.buf[r.off:]
		for end := scanned; end < len(avail); end++ {
			if bytes.IndexByte(delims, avail[end]) >= 0 {
				r.off += end + 1
				return string(avail[:end]), avail[end], nil
			}
		}
		scanned = len(avail)
		if err := r.fill(ctx); err != nil {
			return "", 0, err
		}
	}
}

// ReadLine reads a line terminated by '\n'. A single trailing '\r' is removed.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	line, err := r.ReadBytesUntil(ctx, '\n')
	if err != nil {
		return "", err
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}
