// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

// Client commands.
const (
	CONNECT     = "CONNECT"
	STOMP       = "STOMP"
	SEND        = "SEND"
	SUBSCRIBE   = "SUBSCRIBE"
	UNSUBSCRIBE = "UNSUBSCRIBE"
	BEGIN       = "BEGIN"
	COMMIT      = "COMMIT"
	ABORT       = "ABORT"
	ACK         = "ACK"
	NACK        = "NACK"
	DISCONNECT  = "DISCONNECT"
)

// Server commands.
const (
	CONNECTED = "CONNECTED"
	MESSAGE   = "MESSAGE"
	RECEIPT   = "RECEIPT"
	ERROR     = "ERROR"
)

// HEARTBEAT is never sent on the wire as a command, it names the empty line frame.
const HEARTBEAT = "HEARTBEAT"

// Header names.
const (
	HeaderAcceptVersion = "accept-version"
	HeaderAck           = "ack"
	HeaderContentLength = "content-length"
	HeaderContentType   = "content-type"
	HeaderDestination   = "destination"
	HeaderHeartBeat     = "heart-beat"
	HeaderHost          = "host"
	HeaderID            = "id"
	HeaderLogin         = "login"
	HeaderMessage       = "message"
	HeaderMessageID     = "message-id"
	HeaderPasscode      = "passcode"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderServer        = "server"
	HeaderSession       = "session"
	HeaderSubscription  = "subscription"
	HeaderTransaction   = "transaction"
	HeaderVersion       = "version"
)

// Ack modes of a SUBSCRIBE frame.
const (
	AckAuto             = "auto"
	AckClient           = "client"
	AckClientIndividual = "client-individual"
)

// Content types used as defaults.
const (
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeTextPlain   = "text/plain"
)

// Version is the only protocol version this package speaks.
const Version = "1.2"

// Absent is the value of an optional builder argument that must not become a header.
const Absent = ""

var clientCommands = map[string]bool{
	CONNECT:     true,
	STOMP:       true,
	SEND:        true,
	SUBSCRIBE:   true,
	UNSUBSCRIBE: true,
	BEGIN:       true,
	COMMIT:      true,
	ABORT:       true,
	ACK:         true,
	NACK:        true,
	DISCONNECT:  true,
}

var serverCommands = map[string]bool{
	CONNECTED: true,
	MESSAGE:   true,
	RECEIPT:   true,
	ERROR:     true,
}

// IsClientCommand reports whether command may be sent by a client.
func IsClientCommand(command string) bool {
	return clientCommands[command]
}

// IsServerCommand reports whether command may be sent by a server.
func IsServerCommand(command string) bool {
	return serverCommands[command]
}

// IsValidAck reports whether ack is one of the ack modes.
func IsValidAck(ack string) bool {
	switch ack {
	case AckAuto, AckClient, AckClientIndividual:
		return true
	}
	return false
}

// escapesHeaders reports whether the headers of frames with command are escaped on
// the wire. CONNECT, STOMP and CONNECTED headers are written verbatim.
func escapesHeaders(command string) bool {
	switch command {
	case CONNECT, STOMP, CONNECTED:
		return false
	}
	return true
}
