// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package transport opens the byte streams a STOMP client runs on: plain or TLS TCP
// connections and websocket connections.
package transport
