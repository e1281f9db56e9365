// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vmware/stomp-transport-go/frame"
)

// mockFrameReader hands out the frames and errors pushed by the test.
type mockFrameReader struct {
	frames chan *frame.Frame
	errors chan error
}

func newMockFrameReader() *mockFrameReader {
	return &mockFrameReader{
		frames: make(chan *frame.Frame, 16),
		errors: make(chan error, 1),
	}
}

func (r *mockFrameReader) Read(ctx context.Context) (*frame.Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-r.errors:
		return nil, err
	case f := <-r.frames:
		return f, nil
	}
}

// recordingWriter keeps the wire bytes of every frame written.
type recordingWriter struct {
	lock    sync.Mutex
	frames  [][]byte
	written chan *frame.Frame
	err     error
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{written: make(chan *frame.Frame, 64)}
}

func (w *recordingWriter) Write(ctx context.Context, f *frame.Frame) error {
	if w.err != nil {
		return w.err
	}
	var buf bytes.Buffer
	fw, err := frame.NewWriter(&buf)
	if err != nil {
		return err
	}
	if err := fw.Write(ctx, f); err != nil {
		return err
	}
	w.lock.Lock()
	w.frames = append(w.frames, buf.Bytes())
	w.lock.Unlock()
	select {
	case w.written <- f:
	default:
	}
	return nil
}

func (w *recordingWriter) wire() [][]byte {
	w.lock.Lock()
	defer w.lock.Unlock()
	return append([][]byte(nil), w.frames...)
}

// recordingObserver collects everything delivered by a FrameObservable.
type recordingObserver struct {
	lock      sync.Mutex
	frames    []*frame.Frame
	err       error
	completed bool
	received  chan *frame.Frame
	terminal  chan struct{}
	once      sync.Once
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		received: make(chan *frame.Frame, 64),
		terminal: make(chan struct{}),
	}
}

func (o *recordingObserver) OnNext(f *frame.Frame) {
	o.lock.Lock()
	o.frames = append(o.frames, f)
	o.lock.Unlock()
	select {
	case o.received <- f:
	default:
	}
}

func (o *recordingObserver) OnError(err error) {
	o.lock.Lock()
	o.err = err
	o.lock.Unlock()
	o.once.Do(func() { close(o.terminal) })
}

func (o *recordingObserver) OnCompleted() {
	o.lock.Lock()
	o.completed = true
	o.lock.Unlock()
	o.once.Do(func() { close(o.terminal) })
}

func (o *recordingObserver) result() ([]*frame.Frame, error, bool) {
	o.lock.Lock()
	defer o.lock.Unlock()
	return append([]*frame.Frame(nil), o.frames...), o.err, o.completed
}

var errWaitTimeout = errors.New("timed out")

func waitClosed(ch <-chan struct{}, d time.Duration) error {
	select {
	case <-ch:
		return nil
	case <-time.After(d):
		return errWaitTimeout
	}
}
