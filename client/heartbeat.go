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

// DefaultHeartBeatMargin is the tolerance applied to the intervals negotiated in
// CONNECTED.
const DefaultHeartBeatMargin = time.Second

// HeartBeatManager keeps a connection alive once CONNECTED negotiated heart-beats.
// It sends a heart-beat every max(outgoing-margin, margin) and calls onTimeout when
// nothing arrived from the server for incoming+margin.
type HeartBeatManager struct {
	writer    FrameWriter
	onTimeout func()
	margin    time.Duration
	monitor   *util.MonitorStream

	lock         sync.Mutex
	lastActivity time.Time
	running      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartBeatManager creates a manager watching the frames of observable and writing
// heart-beats with writer. A margin <= 0 selects DefaultHeartBeatMargin.
func NewHeartBeatManager(observable *FrameObservable, writer FrameWriter, onTimeout func(), margin time.Duration, monitor *util.MonitorStream) *HeartBeatManager {
	if margin <= 0 {
		margin = DefaultHeartBeatMargin
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &HeartBeatManager{
		writer:       writer,
		onTimeout:    onTimeout,
		margin:       margin,
		monitor:      monitor,
		lastActivity: time.Now(),
		ctx:          ctx,
		cancel:       cancel,
	}
	observable.Subscribe(ObserverFuncs{
		Next:      m.onFrame,
		Error:     func(error) { m.Stop() },
		Completed: m.Stop,
	})
	return m
}

// Stop ends both heart-beat loops. It does not wait for them.
func (m *HeartBeatManager) Stop() {
	m.cancel()
}

// Wait blocks until both heart-beat loops returned. Only call it after Stop.
func (m *HeartBeatManager) Wait() {
	m.wg.Wait()
}

// LastActivity returns when the last frame was received.
func (m *HeartBeatManager) LastActivity() time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.lastActivity
}

func (m *HeartBeatManager) onFrame(f *frame.Frame) {
	m.lock.Lock()
	m.lastActivity = time.Now()
	start := f.Command == frame.CONNECTED && !m.running && m.ctx.Err() == nil
	if start {
		m.running = true
	}
	m.lock.Unlock()

	if !start {
		return
	}
	connected, err := frame.ParseConnected(f)
	if err != nil {
		log.Log.Warnf("ignoring heart-beat of CONNECTED frame: %v", err)
		return
	}
	hb := connected.HeartBeat
	if hb.IsZero() {
		return
	}
	log.Log.Debugf("heart-beat negotiated: %s", hb)

	if hb.Incoming > 0 {
		m.wg.Add(1)
		go m.checkKeepAlive(hb.IncomingDuration() + m.margin)
	}
	if hb.Outgoing > 0 {
		period := hb.OutgoingDuration() - m.margin
		if period < m.margin {
			period = m.margin
		}
		m.wg.Add(1)
		go m.sendHeartBeats(period)
	}
}

// checkKeepAlive calls onTimeout once no frame arrived for limit.
func (m *HeartBeatManager) checkKeepAlive(limit time.Duration) {
	defer m.wg.Done()
	timer := time.NewTimer(limit)
	defer timer.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-timer.C:
			silence := time.Since(m.LastActivity())
			if silence < limit {
				timer.Reset(limit - silence)
				continue
			}
			log.Log.Errorf("no frame received from server for %v, closing connection", silence)
			metrics.HeartBeatTimeouts.Inc()
			m.monitor.SendMonitorEventError(util.HeartBeatTimeoutEvt, "", ErrHeartBeatTimeout)
			m.Stop()
			if m.onTimeout != nil {
				m.onTimeout()
			}
			return
		}
	}
}

// sendHeartBeats writes a heart-beat every period, the first one after one period.
func (m *HeartBeatManager) sendHeartBeats(period time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := m.writer.Write(m.ctx, frame.HeartBeat); err != nil {
				if m.ctx.Err() == nil {
					log.Log.Warnf("writing heart-beat failed: %v", err)
				}
				continue
			}
			metrics.HeartBeatsSent.Inc()
			m.monitor.SendMonitorEvent(util.HeartBeatSentEvt, "")
		}
	}
}
