// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package util

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitPending(t *testing.T, e *SerialExecutor[int], n int) {
	require.Eventually(t, func() bool { return e.Pending() == n }, time.Second, time.Millisecond)
}

func TestSerialExecutor_RunsInArrivalOrder(t *testing.T) {
	e := NewSerialExecutor[int]()
	release := make(chan struct{})

	var order []int
	var orderLock sync.Mutex
	var wg sync.WaitGroup

	// the first operation holds the executor until release is closed.
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Execute(context.Background(), func(context.Context) (int, error) {
			<-release
			orderLock.Lock()
			order = append(order, 0)
			orderLock.Unlock()
			return 0, nil
		})
	}()
	waitPending(t, e, 1)

	for i := 1; i <= 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := e.Execute(context.Background(), func(context.Context) (int, error) {
				orderLock.Lock()
				order = append(order, i)
				orderLock.Unlock()
				return i * 10, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, i*10, v)
		}()
		waitPending(t, e, i+1)
	}

	close(release)
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
	assert.Equal(t, 0, e.Pending())
}

func TestSerialExecutor_PropagatesErrors(t *testing.T) {
	var e SerialExecutor[string]
	boom := errors.New("boom")

	_, err := e.Execute(context.Background(), func(context.Context) (string, error) {
		return "", boom
	})
	assert.Equal(t, boom, err)

	v, err := e.Execute(context.Background(), func(context.Context) (string, error) {
		return "next", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "next", v)
}

func TestSerialExecutor_CancelledWhileQueued(t *testing.T) {
	e := NewSerialExecutor[int]()
	release := make(chan struct{})
	go e.Execute(context.Background(), func(context.Context) (int, error) {
		<-release
		return 0, nil
	})
	waitPending(t, e, 1)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	ran := false
	go func() {
		_, err := e.Execute(ctx, func(context.Context) (int, error) {
			ran = true
			return 1, nil
		})
		result <- err
	}()
	waitPending(t, e, 2)

	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.Equal(t, 1, e.Pending())

	close(release)
	v, err := e.Execute(context.Background(), func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.False(t, ran)
}

func TestSerialExecutor_CancelledBeforeQueued(t *testing.T) {
	e := NewSerialExecutor[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Execute(ctx, func(context.Context) (int, error) {
		t.Fatal("must not run")
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Pending())
}

func TestSerialExecutor_PanicReleasesTurn(t *testing.T) {
	e := NewSerialExecutor[int]()
	assert.Panics(t, func() {
		e.Execute(context.Background(), func(context.Context) (int, error) {
			panic("observer bug")
		})
	})
	assert.Equal(t, 0, e.Pending())
}

func TestSerialExecutor_ManyCancellations(t *testing.T) {
	e := NewSerialExecutor[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(i%5)*time.Millisecond)
			defer cancel()
			e.Execute(ctx, func(context.Context) (int, error) {
				time.Sleep(time.Millisecond)
				return i, nil
			})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, e.Pending())

	v, err := e.Execute(context.Background(), func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
