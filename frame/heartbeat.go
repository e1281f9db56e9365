// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"strconv"
	"strings"
	"time"
)

// HeartBeatValue is the pair of intervals, in milliseconds, carried by a heart-beat
// header. On CONNECTED, Outgoing drives how often the client sends heart-beats and
// Incoming how long the client waits for server traffic.
type HeartBeatValue struct {
	Outgoing int
	Incoming int
}

// NoHeartBeat disables heart-beating in both directions.
var NoHeartBeat = HeartBeatValue{}

// ParseHeartBeat parses a heart-beat header value. An empty value and "0,0" both
// yield NoHeartBeat.
func ParseHeartBeat(value string) (HeartBeatValue, error) {
	if value == "" {
		return NoHeartBeat, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return NoHeartBeat, malformed("heart-beat must contain two non-negative integers separated by a comma")
	}
	outgoing, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || outgoing < 0 {
		return NoHeartBeat, malformed("heart-beat must contain two non-negative integers separated by a comma")
	}
	incoming, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || incoming < 0 {
		return NoHeartBeat, malformed("heart-beat must contain two non-negative integers separated by a comma")
	}
	return HeartBeatValue{Outgoing: outgoing, Incoming: incoming}, nil
}

// IsZero reports whether heart-beating is disabled in both directions.
func (h HeartBeatValue) IsZero() bool {
	return h.Outgoing == 0 && h.Incoming == 0
}

// OutgoingDuration returns Outgoing as a duration.
func (h HeartBeatValue) OutgoingDuration() time.Duration {
	return time.Duration(h.Outgoing) * time.Millisecond
}

// IncomingDuration returns Incoming as a duration.
func (h HeartBeatValue) IncomingDuration() time.Duration {
	return time.Duration(h.Incoming) * time.Millisecond
}

// String renders the header value, "<outgoing>,<incoming>".
func (h HeartBeatValue) String() string {
	return strconv.Itoa(h.Outgoing) + "," + strconv.Itoa(h.Incoming)
}
