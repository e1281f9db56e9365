// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"
	"fmt"

	"github.com/vmware/stomp-transport-go/frame"
)

const (
	ErrAlreadyStarted   = clientErrorMessage("frame observable already started")
	ErrClosed           = clientErrorMessage("client closed")
	ErrHeartBeatTimeout = clientErrorMessage("no heart-beat received from server in time")
)

// ErrCancelled fails the writes still waiting for a receipt when the frame stream
// completes. It matches context.Canceled.
var ErrCancelled = fmt.Errorf("frame stream completed: %w", context.Canceled)

type clientErrorMessage string

func (e clientErrorMessage) Error() string {
	return string(e)
}

// ErrorFrameError ends the frame stream when the server sends an ERROR frame.
type ErrorFrameError struct {
	Frame *frame.Error
}

func (e *ErrorFrameError) Error() string {
	msg := e.Frame.Message
	if msg == "" {
		msg = string(e.Frame.Body())
	}
	if msg == "" {
		return "server sent an ERROR frame"
	}
	return "server sent an ERROR frame: " + msg
}
