// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/vmware/stomp-transport-go/client"
	"github.com/vmware/stomp-transport-go/frame"
	"github.com/vmware/stomp-transport-go/log"
)

func newSubscribeCommand(opts *rootOptions) *cobra.Command {
	var (
		ack    string
		filter string
		count  int
	)
	cmd := &cobra.Command{
		Use:   "subscribe <destination>",
		Short: "Print the messages of a destination until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !frame.IsValidAck(ack) {
				return fmt.Errorf("unknown ack mode '%s'", ack)
			}
			match, err := compileFilter(filter)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			messages := make(chan *frame.Message)
			stopped := make(chan struct{})
			var stopOnce sync.Once
			stop := func() { stopOnce.Do(func() { close(stopped) }) }
			s, err := openSession(ctx, cmd, opts, client.ObserverFuncs{Next: func(f *frame.Frame) {
				if f.Command != frame.MESSAGE {
					return
				}
				m, err := frame.ParseMessage(f)
				if err != nil {
					log.Log.Warnf("ignoring MESSAGE: %v", err)
					return
				}
				select {
				case messages <- m:
				case <-stopped:
				}
			}})
			if err != nil {
				return err
			}

			err = consume(ctx, s, args[0], ack, match, count, messages, stop, cmd)
			stop()
			if closeErr := s.close(); err == nil {
				err = closeErr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&ack, "ack", frame.AckAuto, "auto, client or client-individual")
	cmd.Flags().StringVar(&filter, "filter", "", "only print messages whose destination matches this glob")
	cmd.Flags().IntVar(&count, "count", 0, "stop after printing this many messages, 0 for no limit")
	return cmd
}

// compileFilter compiles a destination glob, "*" stopping at '/' and "**" crossing it.
// An empty pattern matches everything.
func compileFilter(pattern string) (func(destination string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid filter '%s': %w", pattern, err)
	}
	return g.Match, nil
}

func consume(ctx context.Context, s *session, destination, ack string, match func(string) bool, count int, messages <-chan *frame.Message, stop func(), cmd *cobra.Command) error {
	c := s.client
	id := c.NextSubscriptionID()
	if err := c.WriteSubscribe(ctx, destination, id, c.NextReceiptID(), ack); err != nil {
		return err
	}
	log.Log.Infof("subscribed to %s as %s", destination, id)

	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return c.Err()
		case m := <-messages:
			if ack != frame.AckAuto {
				if err := c.WriteAck(ctx, m.Ack, frame.Absent, frame.Absent); err != nil {
					return err
				}
			}
			if !match(m.Destination) {
				continue
			}
			printMessage(cmd.OutOrStdout(), m)
			printed++
			if count > 0 && printed >= count {
				// later messages are dropped so the RECEIPT can get through
				stop()
				return c.WriteUnsubscribe(ctx, id, c.NextReceiptID())
			}
		}
	}
}
