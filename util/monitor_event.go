// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package util

import "github.com/vmware/stomp-transport-go/frame"

const (
	ClientStartedEvt    int = 0
	ConnectedEvt        int = 1
	ReceiptResendEvt    int = 2
	HeartBeatSentEvt    int = 3
	HeartBeatTimeoutEvt int = 4
	StreamErrorEvt      int = 5
	ClientClosedEvt     int = 6
)

// MonitorEvent describes something that happened to a client. Source names what the
// event is about (a receipt id, a session, an address) and may be empty.
type MonitorEvent struct {
	EventType int
	Source    string
	Frame     *frame.Frame
	Err       error
}

// Create a new monitor event
func NewMonitorEvent(evtType int, source string, f *frame.Frame, err error) *MonitorEvent {
	return &MonitorEvent{EventType: evtType, Source: source, Frame: f, Err: err}
}
