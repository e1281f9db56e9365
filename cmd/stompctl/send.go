// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmware/stomp-transport-go/frame"
)

func newSendCommand(opts *rootOptions) *cobra.Command {
	var (
		contentType string
		headers     []string
		noReceipt   bool
	)
	cmd := &cobra.Command{
		Use:   "send <destination> [body]",
		Short: "Send one message, the body is read from stdin when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			var body []byte
			if len(args) == 2 {
				body = []byte(args[1])
			} else if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, cmd, opts, nil)
			if err != nil {
				return err
			}
			receipt := frame.Absent
			if !noReceipt {
				receipt = s.client.NextReceiptID()
			}
			err = s.client.WriteSend(ctx, args[0], body, contentType, receipt, frame.Absent, extra...)
			if closeErr := s.close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			printNotice(cmd.OutOrStdout(), "sent %d bytes to %s", len(body), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", frame.ContentTypeTextPlain, "content type of the body")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "additional header, name:value, may be repeated")
	cmd.Flags().BoolVar(&noReceipt, "no-receipt", false, "do not wait for the server to confirm the message")
	return cmd
}

// parseHeaders turns name:value arguments into header pairs.
func parseHeaders(args []string) ([]string, error) {
	pairs := make([]string, 0, 2*len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header '%s', expected name:value", arg)
		}
		pairs = append(pairs, name, value)
	}
	return pairs, nil
}
