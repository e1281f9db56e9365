// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

/*
Package frame provides the STOMP 1.2 frame model and the codec that moves frames on and
off a byte stream.

A Reader reads frames sent by a server (CONNECTED, MESSAGE, RECEIPT and ERROR, plus
heart-beats), a Writer writes frames sent by a client. Headers of CONNECT, STOMP and
CONNECTED frames travel verbatim, every other frame escapes backslash, colon, carriage
return and line feed in header names and values.

	r := frame.NewReader(conn)
	f, err := r.Read(ctx)
	if errors.Is(err, frame.ErrMalformed) {
		// the peer sent invalid bytes
	}

Interpret turns a raw frame into one of the typed server frames.
*/
package frame
