// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmware/stomp-transport-go/client"
	"github.com/vmware/stomp-transport-go/config"
	"github.com/vmware/stomp-transport-go/log"
	"github.com/vmware/stomp-transport-go/transport"
	"github.com/vmware/stomp-transport-go/util"
)

const closeTimeout = 5 * time.Second

type rootOptions struct {
	configFile  string
	debug       bool
	metricsAddr string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "stompctl",
		Short:        "Send and receive messages over STOMP 1.2",
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()
	config.ConfigureFlags(flags)
	flags.StringVar(&opts.configFile, "config", "", "configuration file (yaml, json or toml)")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	cmd.AddCommand(newSendCommand(opts), newSubscribeCommand(opts))
	return cmd
}

// session is a started, connected client.
type session struct {
	client  *client.Client
	metrics *http.Server
}

// openSession loads the configuration, connects and sends CONNECT. observer, when not
// nil, is subscribed before the client starts reading.
func openSession(ctx context.Context, cmd *cobra.Command, opts *rootOptions, observer client.Observer) (*session, error) {
	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	if level != "" {
		if err := log.Log.Configure(level, cfg.LogJSON); err != nil {
			return nil, err
		}
	}

	s := &session{}
	if opts.metricsAddr != "" {
		if s.metrics, err = startMetricsServer(opts.metricsAddr); err != nil {
			return nil, err
		}
	}

	stream, err := transport.Connect(ctx, cfg.Endpoint())
	if err != nil {
		s.shutdownMetrics()
		return nil, err
	}
	monitor := util.NewMonitorStream(64)
	go logMonitorEvents(ctx, monitor)

	s.client, err = client.New(stream, append(cfg.ClientOptions(), client.WithMonitor(monitor))...)
	if err != nil {
		stream.Close()
		s.shutdownMetrics()
		return nil, err
	}
	if observer != nil {
		s.client.Subscribe(observer)
	}
	// the session outlives ctx until close disconnected gracefully
	if err = s.client.Start(context.Background()); err == nil {
		err = s.client.WriteConnect(ctx, cfg.Host, cfg.Login, cfg.Passcode, cfg.HeartBeat)
	}
	if err != nil {
		s.client.Close()
		s.shutdownMetrics()
		return nil, fmt.Errorf("cannot connect to %s: %w", cfg.Address, err)
	}
	log.Log.Infof("connected to %s over %s", cfg.Address, cfg.Transport)
	return s, nil
}

// close disconnects gracefully, waiting for the receipt of DISCONNECT.
func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	var err error
	select {
	case <-s.client.Done():
	default:
		err = s.client.WriteDisconnect(ctx, s.client.NextReceiptID())
	}
	if closeErr := s.client.Close(); err == nil {
		err = closeErr
	}
	s.shutdownMetrics()
	return err
}

func (s *session) shutdownMetrics() {
	if s.metrics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	s.metrics.Shutdown(ctx)
}

var monitorEventNames = map[int]string{
	util.ClientStartedEvt:    "client started",
	util.ConnectedEvt:        "connected",
	util.ReceiptResendEvt:    "receipt resend",
	util.HeartBeatSentEvt:    "heart-beat sent",
	util.HeartBeatTimeoutEvt: "heart-beat timeout",
	util.StreamErrorEvt:      "stream error",
	util.ClientClosedEvt:     "client closed",
}

func describeMonitorEvent(evt *util.MonitorEvent) string {
	var b strings.Builder
	b.WriteString(monitorEventNames[evt.EventType])
	if evt.Source != "" {
		fmt.Fprintf(&b, " [%s]", evt.Source)
	}
	if evt.Frame != nil {
		fmt.Fprintf(&b, " %s", evt.Frame)
	}
	if evt.Err != nil {
		fmt.Fprintf(&b, ": %v", evt.Err)
	}
	return b.String()
}

func logMonitorEvents(ctx context.Context, monitor *util.MonitorStream) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-monitor.Stream:
			log.Log.Debugf("monitor: %s", describeMonitorEvent(evt))
		}
	}
}
