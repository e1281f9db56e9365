// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

/*
Package client implements the client side of a STOMP 1.2 connection on top of any
duplex byte stream.

Frames from the server are read by a single goroutine and pushed to the observers
registered with Subscribe. Writes may come from any number of goroutines: they are
serialized, and frames carrying a receipt header (as well as CONNECT) only return once
the server confirmed them, being written again when the confirmation is late.
Heart-beats negotiated by CONNECTED are sent and checked automatically.

	c, err := client.New(conn)
	if err != nil {
		return err
	}
	defer c.Close()
	c.Subscribe(client.ObserverFuncs{Next: handle})
	if err := c.Start(ctx); err != nil {
		return err
	}
	if err := c.WriteConnect(ctx, "/", "guest", "guest", frame.NoHeartBeat); err != nil {
		return err
	}
*/
package client
