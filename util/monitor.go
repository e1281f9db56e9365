// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package util

import (
	"sync"

	"github.com/vmware/stomp-transport-go/frame"
)

// MonitorStream exposes a channel to listen for client events. Each client publishes
// to the stream given with client.WithMonitor, a nil stream drops everything.
type MonitorStream struct {
	Stream chan *MonitorEvent
	lock   sync.Mutex // prevent concurrent writes to stream
}

// NewMonitorStream creates a monitor whose channel buffers up to size events.
func NewMonitorStream(size int) *MonitorStream {
	return &MonitorStream{Stream: make(chan *MonitorEvent, size)}
}

// Send a new monitor event without any payload to the monitor stream
func (m *MonitorStream) SendMonitorEvent(evtType int, source string) {
	m.send(NewMonitorEvent(evtType, source, nil, nil))
}

// Send a new monitor event carrying the frame it is about. This is non-blocking
// so it does not matter if there is no-one listening to the stream.
func (m *MonitorStream) SendMonitorEventFrame(evtType int, source string, f *frame.Frame) {
	m.send(NewMonitorEvent(evtType, source, f, nil))
}

// Send a new monitor event carrying an error.
func (m *MonitorStream) SendMonitorEventError(evtType int, source string, err error) {
	m.send(NewMonitorEvent(evtType, source, nil, err))
}

func (m *MonitorStream) send(evt *MonitorEvent) {
	if m == nil {
		return
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	// make this non blocking, there may be no-one listening.
	select {
	case m.Stream <- evt:
	default:
		// channel full, no-one listening, drop.
	}
}
