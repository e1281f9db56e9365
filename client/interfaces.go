// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"

	"github.com/vmware/stomp-transport-go/frame"
)

// FrameReader reads one frame per call. *frame.Reader implements it.
type FrameReader interface {
	Read(ctx context.Context) (*frame.Frame, error)
}

// FrameWriter writes one frame per call. *frame.Writer implements it.
type FrameWriter interface {
	Write(ctx context.Context, f *frame.Frame) error
}

// Observer receives the frames read from the server. After OnError or OnCompleted
// nothing else is delivered.
type Observer interface {
	OnNext(f *frame.Frame)
	OnError(err error)
	OnCompleted()
}

// ObserverFuncs adapts plain functions to Observer. Nil functions are skipped.
type ObserverFuncs struct {
	Next      func(f *frame.Frame)
	Error     func(err error)
	Completed func()
}

func (o ObserverFuncs) OnNext(f *frame.Frame) {
	if o.Next != nil {
		o.Next(f)
	}
}

func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o ObserverFuncs) OnCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}

// Subscription cancels the delivery to one observer.
type Subscription interface {
	Unsubscribe()
}
