// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"errors"

	"github.com/vmware/stomp-transport-go/streamio"
)

var (
	// ErrMalformed is matched by every error reporting bytes that violate the protocol.
	ErrMalformed = errors.New("malformed frame")

	// ErrStreamEnded reports the end of the underlying stream. It is the same value
	// as streamio.ErrStreamEnded.
	ErrStreamEnded = streamio.ErrStreamEnded

	// ErrInvalidArgument is returned by the frame builders for a missing mandatory
	// argument or an unknown ack mode.
	ErrInvalidArgument = errors.New("invalid frame argument")
)

// MalformedError describes what made a frame invalid.
type MalformedError struct {
	Reason string
}

func malformed(reason string) *MalformedError {
	return &MalformedError{Reason: reason}
}

func (e *MalformedError) Error() string {
	return "malformed frame: " + e.Reason
}

// Is makes errors.Is(err, ErrMalformed) hold for every MalformedError.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}
