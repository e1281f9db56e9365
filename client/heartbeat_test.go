// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vmware/stomp-transport-go/frame"
)

// beatWriter records when heart-beats were written.
type beatWriter struct {
	lock  sync.Mutex
	beats []time.Time
}

func (w *beatWriter) Write(_ context.Context, f *frame.Frame) error {
	if f.IsHeartBeat() {
		w.lock.Lock()
		w.beats = append(w.beats, time.Now())
		w.lock.Unlock()
	}
	return nil
}

func (w *beatWriter) times() []time.Time {
	w.lock.Lock()
	defer w.lock.Unlock()
	return append([]time.Time(nil), w.beats...)
}

func TestHeartBeatManager_SendsHeartBeats(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	reader := newMockFrameReader()
	o := NewFrameObservable(reader, nil)
	writer := &beatWriter{}
	m := NewHeartBeatManager(o, writer, nil, 100*time.Millisecond, nil)
	require.NoError(t, o.Start(context.Background()))

	probe := newRecordingObserver()
	o.Subscribe(probe)
	connectedAt := time.Now()
	reader.frames <- frame.New(frame.CONNECTED, frame.HeaderVersion, frame.Version, frame.HeaderHeartBeat, "300,0")
	<-probe.received

	time.Sleep(700 * time.Millisecond)
	o.Stop(nil)
	<-o.Done()
	m.Wait()

	beats := writer.times()
	// one every 200ms
	require.GreaterOrEqual(t, len(beats), 2)
	assert.LessOrEqual(t, len(beats), 4)
	assert.GreaterOrEqual(t, beats[0].Sub(connectedAt), 190*time.Millisecond)
}

func TestHeartBeatManager_NoHeartBeatNegotiated(t *testing.T) {
	reader := newMockFrameReader()
	o := NewFrameObservable(reader, nil)
	writer := &beatWriter{}
	timedOut := make(chan struct{}, 1)
	m := NewHeartBeatManager(o, writer, func() { timedOut <- struct{}{} }, 10*time.Millisecond, nil)
	require.NoError(t, o.Start(context.Background()))

	reader.frames <- frame.New(frame.CONNECTED, frame.HeaderVersion, frame.Version, frame.HeaderHeartBeat, "0,0")
	time.Sleep(100 * time.Millisecond)
	o.Stop(nil)
	<-o.Done()
	m.Wait()

	assert.Empty(t, writer.times())
	assert.Empty(t, timedOut)
}

func TestHeartBeatManager_KeepAliveTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	reader := newMockFrameReader()
	o := NewFrameObservable(reader, nil)
	timedOut := make(chan time.Time, 1)
	m := NewHeartBeatManager(o, &beatWriter{}, func() { timedOut <- time.Now() }, 50*time.Millisecond, nil)
	require.NoError(t, o.Start(context.Background()))

	start := time.Now()
	reader.frames <- frame.New(frame.CONNECTED, frame.HeaderVersion, frame.Version, frame.HeaderHeartBeat, "0,100")

	// activity keeps the connection alive
	for i := 0; i < 5; i++ {
		time.Sleep(60 * time.Millisecond)
		reader.frames <- frame.HeartBeat
	}
	lastBeat := time.Now()
	assert.Empty(t, timedOut)

	select {
	case at := <-timedOut:
		assert.GreaterOrEqual(t, at.Sub(lastBeat), 140*time.Millisecond)
		assert.Greater(t, at.Sub(start), 400*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not time out")
	}
	m.Wait()
	o.Stop(nil)
	<-o.Done()
}

func TestHeartBeatManager_StartsOnce(t *testing.T) {
	reader := newMockFrameReader()
	o := NewFrameObservable(reader, nil)
	writer := &beatWriter{}
	m := NewHeartBeatManager(o, writer, nil, 100*time.Millisecond, nil)
	require.NoError(t, o.Start(context.Background()))

	connected := frame.New(frame.CONNECTED, frame.HeaderVersion, frame.Version, frame.HeaderHeartBeat, "300,0")
	reader.frames <- connected
	reader.frames <- connected.Clone()
	time.Sleep(450 * time.Millisecond)
	o.Stop(nil)
	<-o.Done()
	m.Wait()

	assert.Len(t, writer.times(), 2)
}

func TestHeartBeatManager_LastActivity(t *testing.T) {
	reader := newMockFrameReader()
	o := NewFrameObservable(reader, nil)
	m := NewHeartBeatManager(o, &beatWriter{}, nil, 0, nil)
	probe := newRecordingObserver()
	o.Subscribe(probe)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop(nil)

	before := m.LastActivity()
	time.Sleep(5 * time.Millisecond)
	reader.frames <- frame.HeartBeat
	<-probe.received
	// the manager subscribed first, so it has seen the frame
	assert.True(t, m.LastActivity().After(before))
}
