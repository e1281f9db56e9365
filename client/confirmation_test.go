// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmware/stomp-transport-go/frame"
)

func newConfirmationFixture(t *testing.T, retry time.Duration) (*mockFrameReader, *FrameObservable, *recordingWriter, *ConfirmationWriter) {
	reader := newMockFrameReader()
	o := NewFrameObservable(reader, nil)
	writer := newRecordingWriter()
	cw := NewConfirmationWriter(writer, o, retry, nil)
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(func() { o.Stop(nil) })
	return reader, o, writer, cw
}

func TestConfirmationWriter_WithoutReceipt(t *testing.T) {
	_, _, writer, cw := newConfirmationFixture(t, time.Minute)

	f, err := frame.NewSendText("/queue/a", "hello", frame.Absent, frame.Absent)
	require.NoError(t, err)
	require.NoError(t, cw.Write(context.Background(), f))
	require.NoError(t, cw.Write(context.Background(), frame.HeartBeat))

	wire := writer.wire()
	require.Len(t, wire, 2)
	assert.Equal(t, "\n", string(wire[1]))
	assert.Equal(t, 0, cw.Pending())
}

func TestConfirmationWriter_ReceiptResolves(t *testing.T) {
	reader, _, writer, cw := newConfirmationFixture(t, time.Minute)

	f, err := frame.NewSendText("/queue/a", "hello", "rcpt-1", frame.Absent)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() { result <- cw.Write(context.Background(), f) }()

	<-writer.written
	assert.Equal(t, 1, cw.Pending())
	reader.frames <- frame.New(frame.RECEIPT, frame.HeaderReceiptID, "rcpt-other")
	reader.frames <- frame.New(frame.RECEIPT, frame.HeaderReceiptID, "rcpt-1")

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("write was not confirmed")
	}
	assert.Equal(t, 0, cw.Pending())
	assert.Len(t, writer.wire(), 1)
}

func TestConfirmationWriter_ConnectResolvedByConnected(t *testing.T) {
	reader, _, writer, cw := newConfirmationFixture(t, time.Minute)

	connect, err := frame.NewConnect("/", "guest", "guest", frame.NoHeartBeat)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() { result <- cw.Write(context.Background(), connect) }()

	<-writer.written
	reader.frames <- frame.New(frame.CONNECTED, frame.HeaderVersion, frame.Version)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("CONNECT was not confirmed")
	}
}

func TestConfirmationWriter_ResendsUntilDeadline(t *testing.T) {
	_, _, writer, cw := newConfirmationFixture(t, 100*time.Millisecond)

	f, err := frame.NewSendText("/queue/a", "hello", "rcpt-7", frame.Absent)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	err = cw.Write(ctx, f)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	wire := writer.wire()
	require.Len(t, wire, 3)
	assert.Equal(t, wire[0], wire[1])
	assert.Equal(t, wire[0], wire[2])
	assert.Equal(t, 0, cw.Pending())
}

func TestConfirmationWriter_CancelOnlyRemovesOwnWaiter(t *testing.T) {
	reader, _, writer, cw := newConfirmationFixture(t, time.Minute)

	first, err := frame.NewSendText("/queue/a", "one", "rcpt-1", frame.Absent)
	require.NoError(t, err)
	second, err := frame.NewSendText("/queue/a", "two", "rcpt-2", frame.Absent)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() { cancelled <- cw.Write(ctx, first) }()
	<-writer.written
	confirmed := make(chan error, 1)
	go func() { confirmed <- cw.Write(context.Background(), second) }()
	<-writer.written
	assert.Equal(t, 2, cw.Pending())

	cancel()
	assert.ErrorIs(t, <-cancelled, context.Canceled)
	assert.Equal(t, 1, cw.Pending())

	reader.frames <- frame.New(frame.RECEIPT, frame.HeaderReceiptID, "rcpt-2")
	assert.NoError(t, <-confirmed)
}

func TestConfirmationWriter_StreamErrorFailsWaiters(t *testing.T) {
	reader, o, writer, cw := newConfirmationFixture(t, time.Minute)

	f, err := frame.NewSendText("/queue/a", "hello", "rcpt-1", frame.Absent)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() { result <- cw.Write(context.Background(), f) }()
	<-writer.written

	reader.frames <- frame.New(frame.ERROR, frame.HeaderMessage, "boom")
	<-o.Done()

	var frameErr *ErrorFrameError
	assert.ErrorAs(t, <-result, &frameErr)

	// later receipted writes fail without being written
	err = cw.Write(context.Background(), f)
	assert.ErrorAs(t, err, &frameErr)
	assert.Len(t, writer.wire(), 1)
}

func TestConfirmationWriter_CompletionCancelsWaiters(t *testing.T) {
	_, o, writer, cw := newConfirmationFixture(t, time.Minute)

	f, err := frame.NewSendText("/queue/a", "hello", "rcpt-1", frame.Absent)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() { result <- cw.Write(context.Background(), f) }()
	<-writer.written

	o.Stop(nil)

	err = <-result
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	// frames without receipt are still written
	plain, err := frame.NewSendText("/queue/a", "hello", frame.Absent, frame.Absent)
	require.NoError(t, err)
	assert.NoError(t, cw.Write(context.Background(), plain))
}

func TestConfirmationWriter_WriteError(t *testing.T) {
	_, _, writer, cw := newConfirmationFixture(t, time.Minute)
	writer.err = errors.New("broken pipe")

	f, err := frame.NewSendText("/queue/a", "hello", "rcpt-1", frame.Absent)
	require.NoError(t, err)
	assert.EqualError(t, cw.Write(context.Background(), f), "broken pipe")
	assert.Equal(t, 0, cw.Pending())
}
