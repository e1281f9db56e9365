// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"

	"github.com/vmware/stomp-transport-go/frame"
	"github.com/vmware/stomp-transport-go/log"
	"github.com/vmware/stomp-transport-go/metrics"
	"github.com/vmware/stomp-transport-go/util"
)

// SerialFrameReader lets any number of goroutines call Read, one read runs at a time.
type SerialFrameReader struct {
	reader   FrameReader
	executor util.SerialExecutor[*frame.Frame]
}

func NewSerialFrameReader(reader FrameReader) *SerialFrameReader {
	return &SerialFrameReader{reader: reader}
}

func (r *SerialFrameReader) Read(ctx context.Context) (*frame.Frame, error) {
	return r.executor.Execute(ctx, r.reader.Read)
}

// SerialFrameWriter lets any number of goroutines call Write. Frames are written whole,
// in the order the calls were made.
type SerialFrameWriter struct {
	writer   FrameWriter
	executor util.SerialExecutor[struct{}]
}

func NewSerialFrameWriter(writer FrameWriter) *SerialFrameWriter {
	return &SerialFrameWriter{writer: writer}
}

func (w *SerialFrameWriter) Write(ctx context.Context, f *frame.Frame) error {
	_, err := w.executor.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.writer.Write(ctx, f)
	})
	if err != nil {
		return err
	}
	metrics.FramesWritten.WithLabelValues(f.Command).Inc()
	log.Log.Debugf("wrote %s frame", f.Command)
	return nil
}
