// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var FramesRead = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stomp_frames_read_total",
		Help: "How many frames were read from the server, by command",
	},
	[]string{"command"})

var FramesWritten = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stomp_frames_written_total",
		Help: "How many frames were written to the server, by command",
	},
	[]string{"command"})

var ReceiptResends = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stomp_receipt_resends_total",
		Help: "How many frames were written again because their receipt did not arrive in time",
	})

var HeartBeatsSent = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stomp_heartbeats_sent_total",
		Help: "How many heart-beats were sent to the server",
	})

var HeartBeatTimeouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stomp_heartbeat_timeouts_total",
		Help: "How many connections were closed because the server went silent",
	})

var ReceiptWaiters = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "stomp_receipt_waiters",
		Help: "How many written frames are waiting for their receipt",
	})

// Collectors returns every collector of the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		FramesRead,
		FramesWritten,
		ReceiptResends,
		HeartBeatsSent,
		HeartBeatTimeouts,
		ReceiptWaiters,
	}
}

// Register adds the collectors to reg. Collectors registered before are left alone.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
