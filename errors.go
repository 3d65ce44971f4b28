package wsclient

import "errors"

var (
	// ErrInvalidState is returned when an operation is attempted outside
	// the state it is legal in, e.g. Send on a connection that is not open
	// or Connect on a connection that is already connecting.
	ErrInvalidState = errors.New("wsclient: operation not legal in current state")

	// ErrMalformedURI is returned by Connect for URIs that are not of the
	// form ws://host[:port][/path] or wss://host[:port][/path].
	ErrMalformedURI = errors.New("wsclient: malformed websocket URI")

	// ErrConnectFailed is returned when no resolved candidate address
	// accepted a TCP connection within the connect timeout.
	ErrConnectFailed = errors.New("wsclient: unable to connect to any resolved address")

	// ErrHandshakeFailed is returned when the HTTP upgrade exchange does
	// not produce a valid 101 Switching Protocols response.
	ErrHandshakeFailed = errors.New("wsclient: websocket handshake failed")

	// ErrPeerClosed is returned when the peer closed the TCP stream and no
	// data could be handed to the caller.
	ErrPeerClosed = errors.New("wsclient: connection closed by peer")

	// ErrProtocolError indicates the peer violated RFC 6455, for example a
	// control frame announcing a payload larger than 125 bytes. The
	// connection is failed with close code 1002 before this is returned.
	ErrProtocolError = errors.New("wsclient: protocol error")

	// ErrControlTooLarge is returned when a caller asks this client to
	// send a control frame with more than 125 bytes of payload.
	ErrControlTooLarge = errors.New("wsclient: control frame payload exceeds 125 bytes")
)
