// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package util

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Sequence hands out identifiers that are unique for its lifetime.
type Sequence interface {
	Next() string
}

// CounterSequence returns 1, 2, 3... It is safe for concurrent use.
type CounterSequence struct {
	count atomic.Uint64
}

// NewCounterSequence creates a sequence starting at 1.
func NewCounterSequence() *CounterSequence {
	return &CounterSequence{}
}

func (s *CounterSequence) Next() string {
	return strconv.FormatUint(s.count.Add(1), 10)
}

// RandomSequence returns random UUIDs.
type RandomSequence struct{}

// NewRandomSequence creates a random sequence.
func NewRandomSequence() *RandomSequence {
	return &RandomSequence{}
}

func (s *RandomSequence) Next() string {
	return uuid.NewString()
}

// PrefixedSequence prepends a fixed prefix to the identifiers of another sequence.
type PrefixedSequence struct {
	prefix string
	seq    Sequence
}

// NewPrefixedSequence creates a sequence producing prefix followed by seq.Next().
func NewPrefixedSequence(prefix string, seq Sequence) *PrefixedSequence {
	return &PrefixedSequence{prefix: prefix, seq: seq}
}

func (s *PrefixedSequence) Next() string {
	return s.prefix + s.seq.Next()
}
