// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

import (
	"fmt"
	"strconv"
)

// Builders for client frames. Optional arguments equal to Absent are left out, extra
// is a list of additional key/value pairs appended after the standard headers.

func mandatory(name, value string) error {
	if value == Absent {
		return fmt.Errorf("%w: '%s' is mandatory", ErrInvalidArgument, name)
	}
	return nil
}

func build(command string, body []byte, headers []string, extra []string) *Frame {
	f := New(command)
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i+1] != Absent {
			f.Header.Add(headers[i], headers[i+1])
		}
	}
	for i := 0; i < len(extra); i += 2 {
		value := ""
		if i+1 < len(extra) {
			value = extra[i+1]
		}
		f.Header.Add(extra[i], value)
	}
	if body != nil {
		f.Body = body
	}
	return f
}

// NewConnect builds a CONNECT frame accepting version 1.2 and announcing heartBeat.
func NewConnect(host, login, passcode string, heartBeat HeartBeatValue, extra ...string) (*Frame, error) {
	if err := mandatory(HeaderHost, host); err != nil {
		return nil, err
	}
	return build(CONNECT, nil, []string{
		HeaderAcceptVersion, Version,
		HeaderHost, host,
		HeaderLogin, login,
		HeaderPasscode, passcode,
		HeaderHeartBeat, heartBeat.String(),
	}, extra), nil
}

// NewSend builds a SEND frame. The content-length header is always set.
func NewSend(destination string, body []byte, contentType, receipt, transaction string, extra ...string) (*Frame, error) {
	if err := mandatory(HeaderDestination, destination); err != nil {
		return nil, err
	}
	if body == nil {
		body = []byte{}
	}
	return build(SEND, body, []string{
		HeaderDestination, destination,
		HeaderReceipt, receipt,
		HeaderContentType, contentType,
		HeaderTransaction, transaction,
		HeaderContentLength, strconv.Itoa(len(body)),
	}, extra), nil
}

// NewSendText builds a SEND frame with a UTF-8 text body.
func NewSendText(destination, body, receipt, transaction string, extra ...string) (*Frame, error) {
	return NewSend(destination, []byte(body), ContentTypeTextPlain+";charset=utf-8", receipt, transaction, extra...)
}

// NewSubscribe builds a SUBSCRIBE frame. ack may be Absent, the server then uses auto.
func NewSubscribe(destination, id, receipt, ack string, extra ...string) (*Frame, error) {
	if err := mandatory(HeaderDestination, destination); err != nil {
		return nil, err
	}
	if err := mandatory(HeaderID, id); err != nil {
		return nil, err
	}
	if ack != Absent && !IsValidAck(ack) {
		return nil, fmt.Errorf("%w: unknown ack mode '%s'", ErrInvalidArgument, ack)
	}
	return build(SUBSCRIBE, nil, []string{
		HeaderDestination, destination,
		HeaderID, id,
		HeaderReceipt, receipt,
		HeaderAck, ack,
	}, extra), nil
}

// NewUnsubscribe builds an UNSUBSCRIBE frame for the subscription id.
func NewUnsubscribe(id, receipt string, extra ...string) (*Frame, error) {
	if err := mandatory(HeaderID, id); err != nil {
		return nil, err
	}
	return build(UNSUBSCRIBE, nil, []string{HeaderID, id, HeaderReceipt, receipt}, extra), nil
}

// NewAck builds an ACK frame; id is the ack header of the acknowledged MESSAGE.
func NewAck(id, receipt, transaction string, extra ...string) (*Frame, error) {
	return newAcknowledgement(ACK, id, receipt, transaction, extra)
}

// NewNack builds a NACK frame.
func NewNack(id, receipt, transaction string, extra ...string) (*Frame, error) {
	return newAcknowledgement(NACK, id, receipt, transaction, extra)
}

func newAcknowledgement(command, id, receipt, transaction string, extra []string) (*Frame, error) {
	if err := mandatory(HeaderID, id); err != nil {
		return nil, err
	}
	return build(command, nil, []string{
		HeaderID, id,
		HeaderReceipt, receipt,
		HeaderTransaction, transaction,
	}, extra), nil
}

// NewBegin builds a BEGIN frame.
func NewBegin(transaction, receipt string, extra ...string) (*Frame, error) {
	return newTransactionFrame(BEGIN, transaction, receipt, extra)
}

// NewCommit builds a COMMIT frame.
func NewCommit(transaction, receipt string, extra ...string) (*Frame, error) {
	return newTransactionFrame(COMMIT, transaction, receipt, extra)
}

// NewAbort builds an ABORT frame.
func NewAbort(transaction, receipt string, extra ...string) (*Frame, error) {
	return newTransactionFrame(ABORT, transaction, receipt, extra)
}

func newTransactionFrame(command, transaction, receipt string, extra []string) (*Frame, error) {
	if err := mandatory(HeaderTransaction, transaction); err != nil {
		return nil, err
	}
	return build(command, nil, []string{HeaderTransaction, transaction, HeaderReceipt, receipt}, extra), nil
}

// NewDisconnect builds a DISCONNECT frame.
func NewDisconnect(receipt string, extra ...string) *Frame {
	return build(DISCONNECT, nil, []string{HeaderReceipt, receipt}, extra)
}
