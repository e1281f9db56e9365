// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package streamio

import "errors"

var (
	// ErrStreamEnded is returned when the stream ends before the requested bytes arrived.
	ErrStreamEnded = errors.New("stream ended")

	// ErrClosed is returned by a Reader used after Close.
	ErrClosed = errors.New("stream reader closed")

	// ErrInvalidCapacity is returned for write buffer capacities below MinCapacity.
	ErrInvalidCapacity = errors.New("write buffer capacity must be at least 4 bytes")
)
