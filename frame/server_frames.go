// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package frame

// ServerFrame is a frame received from the server, interpreted according to its
// command. The concrete types are *Connected, *Message, *Receipt, *Error and
// *HeartBeatFrame.
type ServerFrame interface {
	// Raw returns the frame the value was interpreted from.
	Raw() *Frame
	serverFrame()
}

// Connected is the server's answer to CONNECT or STOMP.
type Connected struct {
	frame     *Frame
	Version   string
	Session   string
	Server    string
	HeartBeat HeartBeatValue
}

// Message carries a message sent to a subscription.
type Message struct {
	frame        *Frame
	Destination  string
	MessageID    string
	Subscription string
	Ack          string
	ContentType  string
}

// Receipt confirms the frame whose receipt header equals ReceiptID.
type Receipt struct {
	frame     *Frame
	ReceiptID string
}

// Error is sent by the server before it closes the connection.
type Error struct {
	frame       *Frame
	ReceiptID   string
	Message     string
	ContentType string
}

// HeartBeatFrame is an interpreted heart-beat.
type HeartBeatFrame struct{}

func (c *Connected) Raw() *Frame { return c.frame }
func (m *Message) Raw() *Frame { return m.frame }
func (r *Receipt) Raw() *Frame { return r.frame }
func (e *Error) Raw() *Frame { return e.frame }
func (*HeartBeatFrame) Raw() *Frame { return HeartBeat }
func (*Connected) serverFrame() {}
func (*Message) serverFrame() {}
func (*Receipt) serverFrame() {}
func (*Error) serverFrame() {}
func (*HeartBeatFrame) serverFrame() {}

// Body returns the message payload.
func (m *Message) Body() []byte { return m.frame.Body }

// ContentLength is the length of the body that was read, whatever the header said.
func (m *Message) ContentLength() int { return len(m.frame.Body) }

// Body returns the error details.
func (e *Error) Body() []byte { return e.frame.Body }

// ContentLength is the length of the body that was read, whatever the header said.
func (e *Error) ContentLength() int { return len(e.frame.Body) }

// Interpret turns a frame read from the server into its typed form.
func Interpret(f *Frame) (ServerFrame, error) {
	var (
		sf  ServerFrame
		err error
	)
	switch f.Command {
	case CONNECTED:
		var c *Connected
		if c, err = ParseConnected(f); err == nil {
			sf = c
		}
		return sf, err
	case MESSAGE:
		var m *Message
		if m, err = ParseMessage(f); err == nil {
			sf = m
		}
		return sf, err
	case RECEIPT:
		var r *Receipt
		if r, err = ParseReceipt(f); err == nil {
			sf = r
		}
		return sf, err
	case ERROR:
		return ParseError(f), nil
	case HEARTBEAT:
		return &HeartBeatFrame{}, nil
	}
	return nil, malformed("'" + f.Command + "' is not a server command")
}

// ParseConnected interprets a CONNECTED frame. The version defaults to 1.0 when the
// server did not send one.
func ParseConnected(f *Frame) (*Connected, error) {
	if len(f.Body) != 0 {
		return nil, malformed("CONNECTED frame must not have a body")
	}
	c := &Connected{
		frame:   f,
		Version: f.Header.Get(HeaderVersion),
		Session: f.Header.Get(HeaderSession),
		Server:  f.Header.Get(HeaderServer),
	}
	if c.Version == "" {
		c.Version = "1.0"
	}
	hb, err := ParseHeartBeat(f.Header.Get(HeaderHeartBeat))
	if err != nil {
		return nil, err
	}
	c.HeartBeat = hb
	return c, nil
}

// ParseMessage interprets a MESSAGE frame. Destination, message-id and subscription
// are mandatory, the content type defaults to application/octet-stream.
func ParseMessage(f *Frame) (*Message, error) {
	m := &Message{
		frame:        f,
		Destination:  f.Header.Get(HeaderDestination),
		MessageID:    f.Header.Get(HeaderMessageID),
		Subscription: f.Header.Get(HeaderSubscription),
		Ack:          f.Header.Get(HeaderAck),
		ContentType:  f.Header.Get(HeaderContentType),
	}
	switch {
	case m.Destination == "":
		return nil, missingHeader(HeaderDestination)
	case m.MessageID == "":
		return nil, missingHeader(HeaderMessageID)
	case m.Subscription == "":
		return nil, missingHeader(HeaderSubscription)
	}
	if m.ContentType == "" {
		m.ContentType = ContentTypeOctetStream
	}
	return m, nil
}

// ParseReceipt interprets a RECEIPT frame.
func ParseReceipt(f *Frame) (*Receipt, error) {
	if len(f.Body) != 0 {
		return nil, malformed("RECEIPT frame must not have a body")
	}
	r := &Receipt{frame: f, ReceiptID: f.Header.Get(HeaderReceiptID)}
	if r.ReceiptID == "" {
		return nil, missingHeader(HeaderReceiptID)
	}
	return r, nil
}

// ParseError interprets an ERROR frame. Every header is optional.
func ParseError(f *Frame) *Error {
	return &Error{
		frame:       f,
		ReceiptID:   f.Header.Get(HeaderReceiptID),
		Message:     f.Header.Get(HeaderMessage),
		ContentType: f.Header.Get(HeaderContentType),
	}
}

func missingHeader(name string) *MalformedError {
	return malformed("'" + name + "' header is mandatory")
}
