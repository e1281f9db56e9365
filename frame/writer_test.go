// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, f *Frame, opts ...WriterOption) (string, error) {
	var out bytes.Buffer
	w, err := NewWriter(&out, opts...)
	require.NoError(t, err)
	err = w.Write(context.Background(), f)
	return out.String(), err
}

func TestWriter_HeartBeat(t *testing.T) {
	out, err := writeFrame(t, HeartBeat)
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}

func TestWriter_EscapesHeaders(t *testing.T) {
	f := New(SEND, "a:b", "c\\d\r\ne", HeaderDestination, "/queue/x")
	f.Body = []byte("payload")
	out, err := writeFrame(t, f)
	require.NoError(t, err)
	assert.Equal(t, "SEND\na\\cb:c\\\\d\\r\\ne\ndestination:/queue/x\n\npayload\x00", out)
}

func TestWriter_ConnectHeadersAreVerbatim(t *testing.T) {
	f := New(CONNECT, HeaderAcceptVersion, "1.2", HeaderHost, "a\\b:c")
	out, err := writeFrame(t, f)
	require.NoError(t, err)
	assert.Equal(t, "CONNECT\naccept-version:1.2\nhost:a\\b:c\n\n\x00", out)
}

func TestWriter_RejectsInvalidConnectHeaders(t *testing.T) {
	for _, f := range []*Frame{
		New(CONNECT, "na\nme", "value"),
		New(CONNECT, "na:me", "value"),
		New(STOMP, "name", "val\nue"),
	} {
		out, err := writeFrame(t, f)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Empty(t, out)
	}
}

func TestWriter_EmptyHeaderValueIsWritten(t *testing.T) {
	out, err := writeFrame(t, New(SEND, HeaderDestination, "/d", "empty", ""))
	require.NoError(t, err)
	assert.Equal(t, "SEND\ndestination:/d\nempty:\n\n\x00", out)
}

func TestWriter_LargeBody(t *testing.T) {
	f := New(SEND, HeaderDestination, "/d")
	f.Body = []byte(strings.Repeat("z", 200))
	out, err := writeFrame(t, f, WithBufferCapacity(16, 64))
	require.NoError(t, err)
	assert.Equal(t, "SEND\ndestination:/d\n\n"+strings.Repeat("z", 200)+"\x00", out)
}

func TestWriter_InvalidCapacity(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, WithBufferCapacity(1, 64))
	assert.Error(t, err)
}

func TestWriter_CancelledBeforeWrite(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, New(DISCONNECT)), context.Canceled)
	assert.Empty(t, out.String())

	require.NoError(t, w.Write(context.Background(), New(DISCONNECT)))
	assert.Equal(t, "DISCONNECT\n\n\x00", out.String())
}

// cancelOnWrite cancels a context the first time bytes reach it.
type cancelOnWrite struct {
	bytes.Buffer
	cancel context.CancelFunc
}

func (c *cancelOnWrite) Write(p []byte) (int, error) {
	c.cancel()
	return c.Buffer.Write(p)
}

func TestWriter_CancelledMidFrameWritesWholeFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &cancelOnWrite{cancel: cancel}
	w, err := NewWriter(out, WithBufferCapacity(16, 16))
	require.NoError(t, err)

	big := New(SEND, HeaderDestination, "/queue/a")
	big.Body = []byte(strings.Repeat("x", 64))
	require.NoError(t, w.Write(ctx, big))
	require.Error(t, ctx.Err())

	assert.ErrorIs(t, w.Write(ctx, New(SEND, HeaderDestination, "/queue/b")), context.Canceled)
	require.NoError(t, w.Write(context.Background(), New(SEND, HeaderDestination, "/queue/b")))
	assert.Equal(t, "SEND\ndestination:/queue/a\n\n"+strings.Repeat("x", 64)+"\x00"+
		"SEND\ndestination:/queue/b\n\n\x00", out.String())
}

func TestWriterReader_HeaderRoundTrip(t *testing.T) {
	alphabet := []string{"", "plain", ":", "\\", "\n", "\r", "\r\n", "a:b\\c\nd\re", "€uro:\\"}
	for _, value := range alphabet {
		name := "k" + value
		f := New(MESSAGE, name, value, HeaderDestination, "/queue/x")

		var buf bytes.Buffer
		w, err := NewWriter(&buf)
		require.NoError(t, err)
		require.NoError(t, w.Write(context.Background(), f))

		r := NewReader(&buf)
		got, err := r.Read(context.Background())
		require.NoError(t, err, "%q", value)
		r.Close()

		v, ok := got.Header.Contains(name)
		assert.True(t, ok, "%q", value)
		assert.Equal(t, value, v)
		assert.Equal(t, "/queue/x", got.Header.Get(HeaderDestination))
	}
}
