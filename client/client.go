// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"
	"io"
	"sync"

	"github.com/vmware/stomp-transport-go/frame"
	"github.com/vmware/stomp-transport-go/log"
	"github.com/vmware/stomp-transport-go/util"
)

const (
	receiptPrefix      = "rcpt-"
	subscriptionPrefix = "sub-"
	transactionPrefix  = "trx-"
)

// Client is a STOMP 1.2 client bound to one duplex stream. Any number of goroutines
// may write through it; frames read from the server are pushed to subscribers once
// Start was called.
type Client struct {
	reader          *frame.Reader
	observable      *FrameObservable
	serialWriter    *SerialFrameWriter
	writer          *ConfirmationWriter
	heartBeats      *HeartBeatManager
	closers         []io.Closer
	monitor         *util.MonitorStream
	receiptIDs      util.Sequence
	subscriptionIDs util.Sequence
	transactionIDs  util.Sequence

	closeOnce sync.Once
	closeErr  error
}

// New creates a client reading from and writing to rw.
func New(rw io.ReadWriter, opts ...Option) (*Client, error) {
	return NewClient(rw, rw, opts...)
}

// NewClient creates a client reading server frames from in and writing to out.
func NewClient(in io.Reader, out io.Writer, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	frameWriter, err := frame.NewWriter(out, frame.WithBufferCapacity(o.writeBufferInitial, o.writeBufferMax))
	if err != nil {
		return nil, err
	}
	c := &Client{
		reader:  frame.NewReader(in, frame.WithChunkSize(o.readChunkSize)),
		monitor: o.monitor,
	}
	c.observable = NewFrameObservable(NewSerialFrameReader(c.reader), o.monitor)
	c.serialWriter = NewSerialFrameWriter(frameWriter)
	c.writer = NewConfirmationWriter(c.serialWriter, c.observable, o.retryInterval, o.monitor)
	c.heartBeats = NewHeartBeatManager(c.observable, c.serialWriter, func() {
		c.shutdown(ErrHeartBeatTimeout)
	}, o.heartBeatMargin, o.monitor)
	c.observable.Subscribe(ObserverFuncs{Next: c.onFrame})

	if o.ownsStream {
		if closer, ok := in.(io.Closer); ok {
			c.closers = append(c.closers, closer)
		}
		if closer, ok := out.(io.Closer); ok && !sameCloser(closer, in) {
			c.closers = append(c.closers, closer)
		}
	}

	if o.randomIDs {
		ids := util.NewRandomSequence()
		c.receiptIDs = util.NewPrefixedSequence(receiptPrefix, ids)
		c.subscriptionIDs = util.NewPrefixedSequence(subscriptionPrefix, ids)
		c.transactionIDs = util.NewPrefixedSequence(transactionPrefix, ids)
	} else {
		c.receiptIDs = util.NewPrefixedSequence(receiptPrefix, util.NewCounterSequence())
		c.subscriptionIDs = util.NewPrefixedSequence(subscriptionPrefix, util.NewCounterSequence())
		c.transactionIDs = util.NewPrefixedSequence(transactionPrefix, util.NewCounterSequence())
	}
	return c, nil
}

func sameCloser(closer io.Closer, in io.Reader) bool {
	other, ok := in.(io.Closer)
	return ok && other == closer
}

// Start begins reading frames. Reading stops when ctx is done or Close is called.
func (c *Client) Start(ctx context.Context) error {
	if err := c.observable.Start(ctx); err != nil {
		return err
	}
	c.monitor.SendMonitorEvent(util.ClientStartedEvt, "")
	return nil
}

// IsStarted reports whether Start succeeded.
func (c *Client) IsStarted() bool {
	return c.observable.IsStarted()
}

// Write writes f. If f asks for a receipt, or is a CONNECT or STOMP frame, Write
// returns once the server confirmed it, which requires the client to be started.
func (c *Client) Write(ctx context.Context, f *frame.Frame) error {
	return c.writer.Write(ctx, f)
}

// Subscribe registers an observer for the frames read from the server.
func (c *Client) Subscribe(observer Observer) Subscription {
	return c.observable.Subscribe(observer)
}

// Done is closed once the frame stream ended.
func (c *Client) Done() <-chan struct{} {
	return c.observable.Done()
}

// Err returns the error that ended the frame stream, if any.
func (c *Client) Err() error {
	return c.observable.Err()
}

// Close stops reading and heart-beating and closes the stream when the client owns it.
// Subscribers are notified with OnCompleted. Calling Close again has no effect.
func (c *Client) Close() error {
	c.shutdown(nil)
	return c.closeErr
}

func (c *Client) shutdown(cause error) {
	c.closeOnce.Do(func() {
		c.observable.Stop(cause)
		c.heartBeats.Stop()
		c.reader.Close()
		for _, closer := range c.closers {
			if err := closer.Close(); err != nil && c.closeErr == nil {
				c.closeErr = err
			}
		}
		log.Log.Debugf("client closed")
		c.monitor.SendMonitorEventError(util.ClientClosedEvt, "", cause)
	})
}

func (c *Client) onFrame(f *frame.Frame) {
	if f.Command == frame.CONNECTED {
		c.monitor.SendMonitorEventFrame(util.ConnectedEvt, f.Header.Get(frame.HeaderSession), f)
	}
}

// NextReceiptID returns a new receipt id, "rcpt-1", "rcpt-2"...
func (c *Client) NextReceiptID() string {
	return c.receiptIDs.Next()
}

// NextSubscriptionID returns a new subscription id, "sub-1", "sub-2"...
func (c *Client) NextSubscriptionID() string {
	return c.subscriptionIDs.Next()
}

// NextTransactionID returns a new transaction id, "trx-1", "trx-2"...
func (c *Client) NextTransactionID() string {
	return c.transactionIDs.Next()
}
