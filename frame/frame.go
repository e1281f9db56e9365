// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Frame is a single STOMP frame: a command, an ordered list of headers and a body.
// A frame must not be modified once it has been handed to a reader, writer or client.
type Frame struct {
	Command string
	Header  *Header
	Body    []byte
}

// HeartBeat is the frame produced for an empty line on the wire, and the frame a
// writer turns into a single end of line.
var HeartBeat = &Frame{
	Command: HEARTBEAT,
	Header:  &Header{},
	Body:    []byte{},
}

// New creates a frame with the given command and header key/value pairs. An odd
// trailing key is added with an empty value.
func New(command string, headers ...string) *Frame {
	f := &Frame{
		Command: command,
		Header:  &Header{},
		Body:    []byte{},
	}
	for i := 0; i < len(headers); i += 2 {
		value := ""
		if i+1 < len(headers) {
			value = headers[i+1]
		}
		f.Header.Add(headers[i], value)
	}
	return f
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	body := make([]byte, len(f.Body))
	copy(body, f.Body)
	var header *Header
	if f.Header != nil {
		header = f.Header.Clone()
	} else {
		header = &Header{}
	}
	return &Frame{Command: f.Command, Header: header, Body: body}
}

// IsHeartBeat reports whether f stands for a heart-beat.
func (f *Frame) IsHeartBeat() bool {
	return f.Command == HEARTBEAT
}

// BodyString returns the body decoded as UTF-8.
func (f *Frame) BodyString() string {
	return string(f.Body)
}

// String renders the frame for logs. Text bodies are shortened to 60 characters,
// anything else is printed as the first 20 bytes in hex.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.WriteString(f.Command)
	sb.WriteByte('\n')
	if f.Header != nil {
		for i := 0; i < f.Header.Len(); i++ {
			k, v := f.Header.GetAt(i)
			sb.WriteString(k)
			sb.WriteByte(':')
			sb.WriteString(v)
			sb.WriteByte('\n')
		}
	}
	sb.WriteByte('\n')

	contentType := ""
	if f.Header != nil {
		contentType = f.Header.Get(HeaderContentType)
	}
	if strings.HasPrefix(contentType, "text/") || (contentType == "" && utf8.Valid(f.Body)) {
		body := f.Body
		if len(body) > 60 {
			sb.Write(body[:60])
			sb.WriteString(" ...")
		} else {
			sb.Write(body)
		}
	} else {
		n := len(f.Body)
		if n > 20 {
			n = 20
		}
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%02X", f.Body[i])
		}
		if len(f.Body) > 20 {
			sb.WriteString(" ...")
		}
	}
	return sb.String()
}

// Header is an ordered list of header entries. Duplicate keys are preserved, lookups
// return the first match.
type Header struct {
	slice []string
}

// NewHeader creates a header from key/value pairs.
func NewHeader(headers ...string) *Header {
	h := &Header{}
	for i := 0; i+1 < len(headers); i += 2 {
		h.Add(headers[i], headers[i+1])
	}
	return h
}

// Add appends an entry, keeping any existing entries with the same key.
func (h *Header) Add(key, value string) {
	h.slice = append(h.slice, key, value)
}

// AddHeader appends every entry of other.
func (h *Header) AddHeader(other *Header) {
	if other == nil {
		return
	}
	h.slice = append(h.slice, other.slice...)
}

// Set replaces the value of the first entry with key, or appends it.
func (h *Header) Set(key, value string) {
	if i, ok := h.index(key); ok {
		h.slice[i+1] = value
		return
	}
	h.Add(key, value)
}

// Del removes every entry with key.
func (h *Header) Del(key string) {
	kept := h.slice[:0]
	for i := 0; i < len(h.slice); i += 2 {
		if h.slice[i] != key {
			kept = append(kept, h.slice[i], h.slice[i+1])
		}
	}
	h.slice = kept
}

// Get returns the value of the first entry with key, or the empty string.
func (h *Header) Get(key string) string {
	value, _ := h.Contains(key)
	return value
}

// Contains returns the value of the first entry with key and whether it exists.
func (h *Header) Contains(key string) (string, bool) {
	if i, ok := h.index(key); ok {
		return h.slice[i+1], true
	}
	return "", false
}

// GetAll returns the values of every entry with key, in order.
func (h *Header) GetAll(key string) []string {
	var values []string
	for i := 0; i < len(h.slice); i += 2 {
		if h.slice[i] == key {
			values = append(values, h.slice[i+1])
		}
	}
	return values
}

// Len returns the number of entries.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.slice) / 2
}

// GetAt returns the entry at position index.
func (h *Header) GetAt(index int) (key, value string) {
	index *= 2
	return h.slice[index], h.slice[index+1]
}

// Clone returns a copy of the header.
func (h *Header) Clone() *Header {
	c := &Header{slice: make([]string, len(h.slice))}
	copy(c.slice, h.slice)
	return c
}

func (h *Header) index(key string) (int, bool) {
	if h == nil {
		return -1, false
	}
	for i := 0; i < len(h.slice); i += 2 {
		if h.slice[i] == key {
			return i, true
		}
	}
	return -1, false
}
