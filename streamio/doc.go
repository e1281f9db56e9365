// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package streamio holds the byte-level adapters the STOMP codec is built on: a
// context-aware buffered Reader and a buffered Writer with a bounded growable buffer.
package streamio
