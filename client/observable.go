// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"
	"errors"
	"sync"

	"github.com/vmware/stomp-transport-go/frame"
	"github.com/vmware/stomp-transport-go/log"
	"github.com/vmware/stomp-transport-go/metrics"
	"github.com/vmware/stomp-transport-go/util"
)

const (
	observableCreated = iota
	observableStarted
	observableStopped
)

// FrameObservable reads frames in a single goroutine and hands each one to every
// subscribed observer, in subscription order. The stream ends with OnError when reading fails or the server
// sends an ERROR frame, and with OnCompleted when the reading context is cancelled.
type FrameObservable struct {
	reader  FrameReader
	monitor *util.MonitorStream

	lock       sync.RWMutex
	state      int
	cancel     context.CancelCauseFunc
	observers  []observerEntry
	nextID     uint64
	terminated bool
	termErr    error
	done       chan struct{}
}

// NewFrameObservable creates an observable reading from reader. monitor may be nil.
func NewFrameObservable(reader FrameReader, monitor *util.MonitorStream) *FrameObservable {
	return &FrameObservable{
		reader:  reader,
		monitor: monitor,
		done:    make(chan struct{}),
	}
}

// Start launches the read loop. It runs until ctx is done, Stop is called or reading
// fails. Starting twice returns ErrAlreadyStarted, starting after Stop ErrClosed.
func (o *FrameObservable) Start(ctx context.Context) error {
	o.lock.Lock()
	switch o.state {
	case observableStarted:
		o.lock.Unlock()
		return ErrAlreadyStarted
	case observableStopped:
		o.lock.Unlock()
		return ErrClosed
	}
	loopCtx, cancel := context.WithCancelCause(ctx)
	o.state = observableStarted
	o.cancel = cancel
	o.lock.Unlock()

	go o.readFrames(loopCtx)
	return nil
}

// IsStarted reports whether Start succeeded.
func (o *FrameObservable) IsStarted() bool {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return o.state == observableStarted
}

// Stop ends the read loop. Observers get OnCompleted when cause is nil and
// OnError(cause) otherwise.
func (o *FrameObservable) Stop(cause error) {
	o.lock.Lock()
	switch o.state {
	case observableCreated:
		o.state = observableStopped
		o.lock.Unlock()
		o.terminate(cause)
	case observableStarted:
		cancel := o.cancel
		o.lock.Unlock()
		cancel(cause)
	default:
		o.lock.Unlock()
	}
}

// Subscribe registers observer. An observer subscribing after the stream ended gets
// the terminal notification right away.
func (o *FrameObservable) Subscribe(observer Observer) Subscription {
	o.lock.Lock()
	if o.terminated {
		err := o.termErr
		o.lock.Unlock()
		o.deliverTerminal(observer, err)
		return &subscription{}
	}
	id := o.nextID
	o.nextID++
	o.observers = append(o.observers, observerEntry{id: id, observer: observer})
	o.lock.Unlock()
	return &subscription{observable: o, id: id}
}

// Done is closed once every observer has been notified of the end of the stream.
func (o *FrameObservable) Done() <-chan struct{} {
	return o.done
}

// Err returns the error that ended the stream, nil while it runs or when it completed.
func (o *FrameObservable) Err() error {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return o.termErr
}

func (o *FrameObservable) readFrames(ctx context.Context) {
	for {
		f, err := o.reader.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				cause := context.Cause(ctx)
				if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
					cause = nil
				}
				o.terminate(cause)
				return
			}
			log.Log.Errorf("reading frames failed: %v", err)
			o.monitor.SendMonitorEventError(util.StreamErrorEvt, "", err)
			o.terminate(err)
			return
		}

		metrics.FramesRead.WithLabelValues(f.Command).Inc()
		log.Log.Debugf("received %s frame", f.Command)

		if f.Command == frame.ERROR {
			errFrame := &ErrorFrameError{Frame: frame.ParseError(f)}
			log.Log.Errorf("%v", errFrame)
			o.monitor.SendMonitorEventFrame(util.StreamErrorEvt, "", f)
			o.terminate(errFrame)
			return
		}

		for _, observer := range o.snapshot() {
			o.deliver(func() { observer.OnNext(f) })
		}
	}
}

func (o *FrameObservable) snapshot() []Observer {
	o.lock.RLock()
	defer o.lock.RUnlock()
	observers := make([]Observer, len(o.observers))
	for i, entry := range o.observers {
		observers[i] = entry.observer
	}
	return observers
}

func (o *FrameObservable) terminate(err error) {
	o.lock.Lock()
	if o.terminated {
		o.lock.Unlock()
		return
	}
	o.terminated = true
	o.termErr = err
	observers := make([]Observer, len(o.observers))
	for i, entry := range o.observers {
		observers[i] = entry.observer
	}
	o.observers = nil
	o.lock.Unlock()

	for _, observer := range observers {
		o.deliverTerminal(observer, err)
	}
	close(o.done)
}

func (o *FrameObservable) deliverTerminal(observer Observer, err error) {
	if err != nil {
		o.deliver(func() { observer.OnError(err) })
	} else {
		o.deliver(observer.OnCompleted)
	}
}

// deliver calls an observer, a panicking observer does not stop delivery to the others.
func (o *FrameObservable) deliver(notify func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Log.Warnf("frame observer panicked: %v", r)
		}
	}()
	notify()
}

func (o *FrameObservable) unsubscribe(id uint64) {
	o.lock.Lock()
	defer o.lock.Unlock()
	for i, entry := range o.observers {
		if entry.id == id {
			o.observers = append(o.observers[:i:i], o.observers[i+1:]...)
			return
		}
	}
}

type observerEntry struct {
	id       uint64
	observer Observer
}

type subscription struct {
	observable *FrameObservable
	id         uint64
	once       sync.Once
}

func (s *subscription) Unsubscribe() {
	if s.observable == nil {
		return
	}
	s.once.Do(func() {
		s.observable.unsubscribe(s.id)
	})
}
