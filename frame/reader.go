// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/vmware/stomp-transport-go/streamio"
)

// ReaderOption configures a Reader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	chunkSize int
}

// WithChunkSize sets the size of a single read from the underlying stream.
func WithChunkSize(size int) ReaderOption {
	return func(c *readerConfig) {
		c.chunkSize = size
	}
}

// Reader reads STOMP 1.2 frames sent by a server. It is not safe for concurrent use.
type Reader struct {
	in *streamio.Reader
}

// NewReader creates a Reader on top of r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	cfg := readerConfig{chunkSize: streamio.DefaultChunkSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reader{in: streamio.NewReader(r, cfg.chunkSize)}
}

// Close stops reading from the underlying stream. The stream itself is not closed.
func (r *Reader) Close() error {
	return r.in.Close()
}

// Read reads the next frame. An empty line is returned as HeartBeat.
//
// Read fails with ErrStreamEnded when the stream ends before a frame is complete, with
// ctx.Err() when ctx is done first, and with a *MalformedError for invalid bytes.
func (r *Reader) Read(ctx context.Context) (*Frame, error) {
	command, err := r.in.ReadLine(ctx)
	if err != nil {
		return nil, err
	}
	if command == "" {
		return HeartBeat, nil
	}
	if !IsServerCommand(command) {
		return nil, malformed("'" + command + "' is not a valid STOMP server command")
	}

	var header *Header
	if escapesHeaders(command) {
		header, err = r.readHeaders(ctx)
	} else {
		header, err = r.readRawHeaders(ctx)
	}
	if err != nil {
		return nil, err
	}

	body, err := r.readBody(ctx, header)
	if err != nil {
		return nil, err
	}
	return &Frame{Command: command, Header: header, Body: body}, nil
}

// ReadServerFrame reads the next frame and interprets it.
func (r *Reader) ReadServerFrame(ctx context.Context) (ServerFrame, error) {
	f, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	return Interpret(f)
}

// readRawHeaders reads the verbatim "name:value" lines of a CONNECTED frame.
func (r *Reader) readRawHeaders(ctx context.Context) (*Header, error) {
	header := &Header{}
	for {
		name, delim, err := r.in.ReadStringUntil(ctx, ':', '\n')
		if err != nil {
			return nil, err
		}
		if delim == '\n' {
			switch name {
			case "":
				return header, nil
			case "\r":
				return nil, malformed("CONNECTED header line containing only a carriage return")
			default:
				return nil, malformed("CONNECTED header name without value")
			}
		}
		if name == "" {
			return nil, malformed("header names must have one character at least")
		}
		value, err := r.in.ReadBytesUntil(ctx, '\n')
		if err != nil {
			return nil, err
		}
		header.Add(name, string(value))
	}
}

// readHeaders reads escaped header lines, each ended by "\n" or "\r\n".
func (r *Reader) readHeaders(ctx context.Context) (*Header, error) {
	header := &Header{}
	var sb strings.Builder
	for {
		ch, err := r.in.ReadRune(ctx)
		if err != nil {
			return nil, err
		}
		if ch == '\n' {
			return header, nil
		}
		if ch == '\r' {
			if err := r.expectLineFeed(ctx); err != nil {
				return nil, err
			}
			return header, nil
		}

		sb.Reset()
		for ch != ':' {
			switch ch {
			case '\n', '\r':
				return nil, malformed("header names must not contain CR or LF")
			case '\\':
				if ch, err = r.readEscaped(ctx); err != nil {
					return nil, err
				}
			}
			sb.WriteRune(ch)
			if ch, err = r.in.ReadRune(ctx); err != nil {
				return nil, err
			}
		}
		name := sb.String()
		if name == "" {
			return nil, malformed("header names must have one character at least")
		}

		sb.Reset()
		for {
			if ch, err = r.in.ReadRune(ctx); err != nil {
				return nil, err
			}
			if ch == '\n' {
				break
			}
			if ch == '\r' {
				if err := r.expectLineFeed(ctx); err != nil {
					return nil, err
				}
				break
			}
			switch ch {
			case ':':
				return nil, malformed("header values must not contain an unescaped ':'")
			case '\\':
				if ch, err = r.readEscaped(ctx); err != nil {
					return nil, err
				}
			}
			sb.WriteRune(ch)
		}
		header.Add(name, sb.String())
	}
}

func (r *Reader) readEscaped(ctx context.Context) (rune, error) {
	ch, err := r.in.ReadRune(ctx)
	if err != nil {
		return 0, err
	}
	return unescapeOctet(ch)
}

func (r *Reader) expectLineFeed(ctx context.Context) error {
	ch, err := r.in.ReadRune(ctx)
	if err != nil {
		return err
	}
	if ch != '\n' {
		return malformed("carriage return not followed by a line feed")
	}
	return nil
}

func (r *Reader) readBody(ctx context.Context, header *Header) ([]byte, error) {
	value, ok := header.Contains(HeaderContentLength)
	if !ok {
		return r.in.ReadBytesUntil(ctx, 0)
	}
	length, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || length < 0 {
		return nil, malformed("content-length must be a non-negative integer")
	}
	body := make([]byte, length)
	if err := r.in.ReadFull(ctx, body); err != nil {
		return nil, err
	}
	b, err := r.in.ReadByte(ctx)
	if err != nil {
		return nil, err
	}
	if b != 0 {
		return nil, malformed("body is not NUL terminated")
	}
	return body, nil
}
