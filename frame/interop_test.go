// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"bytes"
	"context"
	"testing"

	stompframe "github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterop_ReadsGoStompFrames(t *testing.T) {
	var buf bytes.Buffer
	w := stompframe.NewWriter(&buf)

	msg := stompframe.New(stompframe.MESSAGE,
		stompframe.Destination, "/topic/prices",
		stompframe.MessageId, "m-7",
		stompframe.Subscription, "sub-1",
		stompframe.ContentLength, "5")
	msg.Body = []byte("a\x00b\nc")
	require.NoError(t, w.Write(msg))
	require.NoError(t, w.Write(nil))
	require.NoError(t, w.Write(stompframe.New(stompframe.RECEIPT, stompframe.ReceiptId, "rcpt-3")))

	r := NewReader(&buf, WithChunkSize(3))
	defer r.Close()
	ctx := context.Background()

	sf, err := r.ReadServerFrame(ctx)
	require.NoError(t, err)
	m := sf.(*Message)
	assert.Equal(t, "/topic/prices", m.Destination)
	assert.Equal(t, "m-7", m.MessageID)
	assert.Equal(t, "sub-1", m.Subscription)
	assert.Equal(t, []byte("a\x00b\nc"), m.Body())

	f, err := r.Read(ctx)
	require.NoError(t, err)
	assert.True(t, f.IsHeartBeat())

	sf, err = r.ReadServerFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rcpt-3", sf.(*Receipt).ReceiptID)
}

func TestInterop_GoStompReadsWrittenFrames(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	ctx := context.Background()

	connect, err := NewConnect("localhost", "user", "secret", NoHeartBeat)
	require.NoError(t, err)
	send, err := NewSend("/queue/orders", []byte("{\"id\":1}"), "application/json", "rcpt-1", Absent)
	require.NoError(t, err)
	require.NoError(t, w.Write(ctx, connect))
	require.NoError(t, w.Write(ctx, send))
	require.NoError(t, w.Write(ctx, HeartBeat))
	require.NoError(t, w.Write(ctx, NewDisconnect("rcpt-2")))

	r := stompframe.NewReader(&buf)

	f, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, stompframe.CONNECT, f.Command)
	assert.Equal(t, "1.2", f.Header.Get(stompframe.AcceptVersion))
	assert.Equal(t, "localhost", f.Header.Get(stompframe.Host))
	assert.Equal(t, "0,0", f.Header.Get(stompframe.HeartBeat))

	f, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, stompframe.SEND, f.Command)
	assert.Equal(t, "/queue/orders", f.Header.Get(stompframe.Destination))
	assert.Equal(t, "rcpt-1", f.Header.Get(stompframe.Receipt))
	assert.Equal(t, "{\"id\":1}", string(f.Body))

	f, err = r.Read()
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, stompframe.DISCONNECT, f.Command)
	assert.Equal(t, "rcpt-2", f.Header.Get(stompframe.Receipt))
}
