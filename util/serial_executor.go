// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package util

import (
	"context"
	"sync"
)

type executorTurn struct {
	ready chan struct{}
}

// SerialExecutor runs operations one at a time, in the order Execute was called.
// The zero value is ready to use.
type SerialExecutor[T any] struct {
	lock  sync.Mutex
	queue []*executorTurn
}

// NewSerialExecutor creates an empty executor.
func NewSerialExecutor[T any]() *SerialExecutor[T] {
	return &SerialExecutor[T]{}
}

// Execute waits until every operation queued before it has finished, then runs op and
// returns its outcome unchanged. If ctx is done while the call is still queued, op is
// never run and ctx.Err() is returned.
func (e *SerialExecutor[T]) Execute(ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	turn := &executorTurn{ready: make(chan struct{})}
	e.lock.Lock()
	e.queue = append(e.queue, turn)
	if len(e.queue) == 1 {
		close(turn.ready)
	}
	e.lock.Unlock()

	select {
	case <-turn.ready:
	case <-ctx.Done():
		e.lock.Lock()
		select {
		case <-turn.ready:
			// the turn arrived together with the cancellation, hand it on.
			e.advanceLocked()
		default:
			e.removeLocked(turn)
		}
		e.lock.Unlock()
		return zero, ctx.Err()
	}

	defer e.advance()
	return op(ctx)
}

// Pending returns the number of operations running or waiting.
func (e *SerialExecutor[T]) Pending() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.queue)
}

func (e *SerialExecutor[T]) advance() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.advanceLocked()
}

// advanceLocked drops the head of the queue and wakes the next caller.
func (e *SerialExecutor[T]) advanceLocked() {
	e.queue[0] = nil
	e.queue = e.queue[1:]
	if len(e.queue) > 0 {
		close(e.queue[0].ready)
	}
}

func (e *SerialExecutor[T]) removeLocked(turn *executorTurn) {
	for i, t := range e.queue {
		if t == turn {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return
		}
	}
}
