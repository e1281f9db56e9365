// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"

	"github.com/vmware/stomp-transport-go/frame"
)

// Helpers building a frame and writing it with Write. Optional arguments take
// frame.Absent; pass NextReceiptID() as receipt to wait for the server's receipt.

// WriteConnect writes CONNECT and waits for CONNECTED.
func (c *Client) WriteConnect(ctx context.Context, host, login, passcode string, heartBeat frame.HeartBeatValue, extra ...string) error {
	f, err := frame.NewConnect(host, login, passcode, heartBeat, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteSend(ctx context.Context, destination string, body []byte, contentType, receipt, transaction string, extra ...string) error {
	f, err := frame.NewSend(destination, body, contentType, receipt, transaction, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteSubscribe(ctx context.Context, destination, id, receipt, ack string, extra ...string) error {
	f, err := frame.NewSubscribe(destination, id, receipt, ack, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteUnsubscribe(ctx context.Context, id, receipt string, extra ...string) error {
	f, err := frame.NewUnsubscribe(id, receipt, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteAck(ctx context.Context, id, receipt, transaction string, extra ...string) error {
	f, err := frame.NewAck(id, receipt, transaction, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteNack(ctx context.Context, id, receipt, transaction string, extra ...string) error {
	f, err := frame.NewNack(id, receipt, transaction, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteBegin(ctx context.Context, transaction, receipt string, extra ...string) error {
	f, err := frame.NewBegin(transaction, receipt, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteCommit(ctx context.Context, transaction, receipt string, extra ...string) error {
	f, err := frame.NewCommit(transaction, receipt, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

func (c *Client) WriteAbort(ctx context.Context, transaction, receipt string, extra ...string) error {
	f, err := frame.NewAbort(transaction, receipt, extra...)
	if err != nil {
		return err
	}
	return c.Write(ctx, f)
}

// WriteDisconnect writes DISCONNECT. With a receipt, the server's RECEIPT tells that
// every frame written before was processed.
func (c *Client) WriteDisconnect(ctx context.Context, receipt string, extra ...string) error {
	return c.Write(ctx, frame.NewDisconnect(receipt, extra...))
}

func (c *Client) WriteHeartBeat(ctx context.Context) error {
	return c.Write(ctx, frame.HeartBeat)
}
