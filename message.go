package wsclient

import (
	"fmt"

	"github.com/paularlott/wsclient/codec"
)

// SendEncoded marshals v with the serializer and sends it as a single
// BINARY frame. Legal only while OPEN, like Send.
func (c *Conn) SendEncoded(ser codec.Serializer, v interface{}) error {
	data, err := ser.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return c.Send(data, OpBinary)
}

// ReceiveDecoded drains one pending message into buf and unmarshals it
// into v. It returns false without touching v when no complete message is
// pending yet. buf bounds the message size: like Receive, payload beyond
// its capacity is discarded, so size it for the largest expected message.
func (c *Conn) ReceiveDecoded(ser codec.Serializer, buf []byte, v interface{}) (bool, error) {
	n, err := c.Receive(buf)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := ser.Unmarshal(buf[:n], v); err != nil {
		return false, fmt.Errorf("decode message: %w", err)
	}
	return true, nil
}
