// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/vmware/stomp-transport-go/frame"
)

var (
	headerf = color.New(color.FgHiBlue).Add(color.Bold).FprintfFunc()
	keyf    = color.New(color.FgHiCyan).FprintfFunc()
	noticef = color.New(color.FgHiYellow).FprintfFunc()
)

// printMessage writes m: a title line, its headers and its body.
func printMessage(w io.Writer, m *frame.Message) {
	f := m.Raw()
	headerf(w, "MESSAGE %s\n", m.Destination)
	for i := 0; i < f.Header.Len(); i++ {
		key, value := f.Header.GetAt(i)
		keyf(w, "  %s", key)
		fmt.Fprintf(w, ": %s\n", value)
	}
	body := m.Body()
	switch {
	case len(body) == 0:
	case utf8.Valid(body):
		fmt.Fprintln(w, strings.TrimRight(string(body), "\n"))
	default:
		noticef(w, "<%d bytes of binary content>\n", len(body))
	}
}

func printNotice(w io.Writer, format string, args ...interface{}) {
	noticef(w, format+"\n", args...)
}
