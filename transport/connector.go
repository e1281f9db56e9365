// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vmware/stomp-transport-go/log"
)

// Transports supported by Connect.
const (
	TCP             = "tcp"
	WebSocket       = "ws"
	SecureWebSocket = "wss"
)

// Endpoint describes where a STOMP server listens.
type Endpoint struct {
	Transport string      // TCP (default), WebSocket or SecureWebSocket
	Address   string      // host:port
	WSPath    string      // path of the websocket endpoint
	TLSConfig *tls.Config // switches TCP to TLS, used by SecureWebSocket
	Header    http.Header // sent with the websocket handshake
}

// URL returns the websocket URL of the endpoint.
func (e *Endpoint) URL() string {
	scheme := "ws"
	if e.Transport == SecureWebSocket {
		scheme = "wss"
	}
	path := e.WSPath
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: scheme, Host: e.Address, Path: path}
	return u.String()
}

func checkEndpoint(endpoint *Endpoint) error {
	if endpoint == nil {
		return fmt.Errorf("endpoint is nil")
	}
	if endpoint.Address == "" {
		return fmt.Errorf("endpoint invalid, missing server address")
	}
	switch endpoint.Transport {
	case "", TCP:
	case WebSocket, SecureWebSocket:
		if endpoint.WSPath == "" {
			return fmt.Errorf("endpoint invalid, missing websocket path")
		}
	default:
		return fmt.Errorf("endpoint invalid, unknown transport '%s'", endpoint.Transport)
	}
	return nil
}

// Connect opens a byte stream to endpoint.
func Connect(ctx context.Context, endpoint *Endpoint) (io.ReadWriteCloser, error) {
	if err := checkEndpoint(endpoint); err != nil {
		return nil, err
	}
	switch endpoint.Transport {
	case WebSocket, SecureWebSocket:
		dialer := *websocket.DefaultDialer
		dialer.TLSClientConfig = endpoint.TLSConfig
		stream, err := dialWebSocket(ctx, &dialer, endpoint.URL(), endpoint.Header)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to host '%s' via path '%s': %w", endpoint.Address, endpoint.WSPath, err)
		}
		return stream, nil
	default:
		conn, err := Dial(ctx, TCP, endpoint.Address, endpoint.TLSConfig)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Dial connects to address, over TLS when tlsConfig is not nil.
func Dial(ctx context.Context, network, address string, tlsConfig *tls.Config) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if tlsConfig != nil {
		dialer := &tls.Dialer{Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, network, address)
	} else {
		var dialer net.Dialer
		conn, err = dialer.DialContext(ctx, network, address)
	}
	if err != nil {
		return nil, err
	}
	log.Log.Debugf("connected to %s over %s, tls: %v", address, network, tlsConfig != nil)
	return conn, nil
}
