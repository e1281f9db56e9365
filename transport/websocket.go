// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package transport

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/vmware/stomp-transport-go/log"
)

// WebSocketSubprotocols are offered when dialing, most recent STOMP version first.
var WebSocketSubprotocols = []string{"v12.stomp", "v11.stomp", "v10.stomp"}

const closeGracePeriod = time.Second

// WebSocketStream turns a websocket connection into a byte stream. Bytes written are
// held until Flush, which sends them as a single message, so every frame written by a
// frame.Writer travels in its own message whatever its size. Reads concatenate
// incoming messages.
type WebSocketStream struct {
	conn    *websocket.Conn
	current io.Reader
	pending []byte

	closeOnce sync.Once
	closeErr  error
}

// NewWebSocketStream wraps an established connection.
func NewWebSocketStream(conn *websocket.Conn) *WebSocketStream {
	return &WebSocketStream{conn: conn}
}

// DialWebSocket opens a websocket connection to url offering the STOMP subprotocols.
func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocketStream, error) {
	return dialWebSocket(ctx, websocket.DefaultDialer, url, header)
}

func dialWebSocket(ctx context.Context, base *websocket.Dialer, url string, header http.Header) (*WebSocketStream, error) {
	dialer := *base
	dialer.Subprotocols = WebSocketSubprotocols
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	log.Log.Debugf("websocket connected to %s, subprotocol '%s'", url, conn.Subprotocol())
	return NewWebSocketStream(conn), nil
}

// Conn returns the wrapped connection.
func (s *WebSocketStream) Conn() *websocket.Conn {
	return s.conn
}

// Read reads the bytes of incoming messages, one message after the other.
func (s *WebSocketStream) Read(p []byte) (int, error) {
	for {
		if s.current == nil {
			_, r, err := s.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			s.current = r
		}
		n, err := s.current.Read(p)
		if err == io.EOF {
			s.current = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

// Write holds p until the next Flush.
func (s *WebSocketStream) Write(p []byte) (int, error) {
	s.pending = append(s.pending, p...)
	return len(p), nil
}

// Flush sends the held bytes as one message: a text message when they are valid
// UTF-8, a binary message otherwise.
func (s *WebSocketStream) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	messageType := websocket.TextMessage
	if !utf8.Valid(s.pending) {
		messageType = websocket.BinaryMessage
	}
	err := s.conn.WriteMessage(messageType, s.pending)
	s.pending = s.pending[:0]
	return err
}

// Close sends a close message and closes the connection.
func (s *WebSocketStream) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod)); err != nil {
			log.Log.Debugf("sending websocket close message failed: %v", err)
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
