// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"
	"sync"
	"time"

	"github.com/vmware/stomp-transport-go/frame"
	"github.com/vmware/stomp-transport-go/log"
	"github.com/vmware/stomp-transport-go/metrics"
	"github.com/vmware/stomp-transport-go/util"
)

// DefaultRetryInterval is how long a receipted frame waits for its receipt before it
// is written again.
const DefaultRetryInterval = 30 * time.Second

// connectReceiptKey correlates CONNECT and STOMP frames with the CONNECTED answer.
const connectReceiptKey = "~connect"

type receiptWaiter struct {
	done chan struct{}
	err  error
	once sync.Once
}

func newReceiptWaiter() *receiptWaiter {
	return &receiptWaiter{done: make(chan struct{})}
}

func (w *receiptWaiter) resolve(err error) {
	w.once.Do(func() {
		w.err = err
		close(w.done)
	})
}

// ConfirmationWriter writes frames and, for frames asking for a receipt, waits until
// the server confirmed them. CONNECT and STOMP frames are confirmed by CONNECTED.
// A frame whose confirmation does not arrive within the retry interval is written
// again, unchanged, so the server may see it more than once.
type ConfirmationWriter struct {
	writer        FrameWriter
	retryInterval time.Duration
	monitor       *util.MonitorStream

	lock       sync.Mutex
	waiters    map[string]*receiptWaiter
	terminated bool
	termErr    error
}

// NewConfirmationWriter creates a writer confirmed by the frames of observable. A
// retryInterval <= 0 selects DefaultRetryInterval; monitor may be nil.
func NewConfirmationWriter(writer FrameWriter, observable *FrameObservable, retryInterval time.Duration, monitor *util.MonitorStream) *ConfirmationWriter {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	cw := &ConfirmationWriter{
		writer:        writer,
		retryInterval: retryInterval,
		monitor:       monitor,
		waiters:       make(map[string]*receiptWaiter),
	}
	observable.Subscribe(ObserverFuncs{
		Next:      cw.onFrame,
		Error:     cw.fail,
		Completed: func() { cw.fail(ErrCancelled) },
	})
	return cw
}

// Write writes f. Frames without a receipt header return once written, the others
// once confirmed, when ctx is done, or when the frame stream ends.
func (cw *ConfirmationWriter) Write(ctx context.Context, f *frame.Frame) error {
	key, ok := receiptKey(f)
	if !ok {
		return cw.writer.Write(ctx, f)
	}

	waiter, err := cw.register(key)
	if err != nil {
		return err
	}
	defer cw.unregister(key, waiter)

	timer := time.NewTimer(cw.retryInterval)
	defer timer.Stop()
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			log.Log.Warnf("no receipt for '%s' after %v, writing %s frame again", key, cw.retryInterval, f.Command)
			metrics.ReceiptResends.Inc()
			cw.monitor.SendMonitorEventFrame(util.ReceiptResendEvt, key, f)
		}
		if err := cw.writer.Write(ctx, f); err != nil {
			return err
		}
		select {
		case <-waiter.done:
			return waiter.err
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(cw.retryInterval)
		}
	}
}

// Pending returns the number of frames waiting for confirmation.
func (cw *ConfirmationWriter) Pending() int {
	cw.lock.Lock()
	defer cw.lock.Unlock()
	return len(cw.waiters)
}

func receiptKey(f *frame.Frame) (string, bool) {
	switch f.Command {
	case frame.CONNECT, frame.STOMP:
		return connectReceiptKey, true
	case frame.HEARTBEAT:
		return "", false
	}
	return f.Header.Contains(frame.HeaderReceipt)
}

// register adds a waiter for key, replacing any waiter already registered for it.
func (cw *ConfirmationWriter) register(key string) (*receiptWaiter, error) {
	cw.lock.Lock()
	defer cw.lock.Unlock()
	if cw.terminated {
		return nil, cw.termErr
	}
	if _, replaced := cw.waiters[key]; !replaced {
		metrics.ReceiptWaiters.Inc()
	}
	waiter := newReceiptWaiter()
	cw.waiters[key] = waiter
	return waiter, nil
}

func (cw *ConfirmationWriter) unregister(key string, waiter *receiptWaiter) {
	cw.lock.Lock()
	defer cw.lock.Unlock()
	if cw.waiters[key] == waiter {
		delete(cw.waiters, key)
		metrics.ReceiptWaiters.Dec()
	}
}

func (cw *ConfirmationWriter) onFrame(f *frame.Frame) {
	var key string
	switch f.Command {
	case frame.RECEIPT:
		key = f.Header.Get(frame.HeaderReceiptID)
	case frame.CONNECTED:
		key = connectReceiptKey
	default:
		return
	}

	cw.lock.Lock()
	waiter, ok := cw.waiters[key]
	if ok {
		delete(cw.waiters, key)
		metrics.ReceiptWaiters.Dec()
	}
	cw.lock.Unlock()

	if ok {
		waiter.resolve(nil)
	}
}

// fail resolves every waiter with err. Later receipted writes fail with err right away.
func (cw *ConfirmationWriter) fail(err error) {
	cw.lock.Lock()
	if cw.terminated {
		cw.lock.Unlock()
		return
	}
	cw.terminated = true
	cw.termErr = err
	waiters := cw.waiters
	cw.waiters = make(map[string]*receiptWaiter)
	metrics.ReceiptWaiters.Sub(float64(len(waiters)))
	cw.lock.Unlock()

	for _, waiter := range waiters {
		waiter.resolve(err)
	}
}
