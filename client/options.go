// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"time"

	"github.com/vmware/stomp-transport-go/streamio"
	"github.com/vmware/stomp-transport-go/util"
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	retryInterval      time.Duration
	heartBeatMargin    time.Duration
	randomIDs          bool
	monitor            *util.MonitorStream
	readChunkSize      int
	writeBufferInitial int
	writeBufferMax     int
	ownsStream         bool
}

func defaultOptions() clientOptions {
	return clientOptions{
		retryInterval:      DefaultRetryInterval,
		heartBeatMargin:    DefaultHeartBeatMargin,
		readChunkSize:      streamio.DefaultChunkSize,
		writeBufferInitial: streamio.DefaultInitialCapacity,
		writeBufferMax:     streamio.DefaultMaxCapacity,
		ownsStream:         true,
	}
}

// WithRetryInterval sets how long a receipted frame waits before it is written again.
func WithRetryInterval(d time.Duration) Option {
	return func(o *clientOptions) {
		o.retryInterval = d
	}
}

// WithHeartBeatMargin sets the tolerance applied to negotiated heart-beat intervals.
func WithHeartBeatMargin(d time.Duration) Option {
	return func(o *clientOptions) {
		o.heartBeatMargin = d
	}
}

// WithRandomIDs makes receipt, subscription and transaction ids random instead of
// sequential.
func WithRandomIDs() Option {
	return func(o *clientOptions) {
		o.randomIDs = true
	}
}

// WithMonitor publishes the client's events to m.
func WithMonitor(m *util.MonitorStream) Option {
	return func(o *clientOptions) {
		o.monitor = m
	}
}

// WithReadChunkSize sets the size of a single read from the stream.
func WithReadChunkSize(size int) Option {
	return func(o *clientOptions) {
		o.readChunkSize = size
	}
}

// WithWriteBuffer sets the initial and maximum size of the write buffer.
func WithWriteBuffer(initial, max int) Option {
	return func(o *clientOptions) {
		o.writeBufferInitial = initial
		o.writeBufferMax = max
	}
}

// WithStreamOwnership decides whether Close also closes the stream. It does by default.
func WithStreamOwnership(owns bool) Option {
	return func(o *clientOptions) {
		o.ownsStream = owns
	}
}
