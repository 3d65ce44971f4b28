package wsclient

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
)

// Conn is a client-side WebSocket connection over a single TCP stream. It
// owns the socket and the lifecycle state and drives the frame codec and
// transport together.
//
// The scheduling model is synchronous: every operation blocks the calling
// goroutine, there is no internal locking, and a single Conn must not be
// driven from two goroutines concurrently. Callers alternate Service
// (drains control frames, emits periodic pings), Receive (drains data
// frames) and Send until Close or Fail tears the connection down.
type Conn struct {
	config *Config
	log    Logger
	id     uuid.UUID

	state State
	tr    *transport

	// scratch is the internal receive buffer retained across calls, used
	// for discarding payload bytes beyond the caller's capacity and for
	// the teardown drain. Never handed to the caller.
	scratch []byte

	lastPingSentAt time.Time
	lastPongAt     time.Time

	closeCode   int
	closeReason string
}

// NewConn creates a connection in the CLOSED state. A nil config selects
// the defaults; zero-valued fields are filled in from DefaultConfig.
func NewConn(config *Config) *Conn {
	if config == nil {
		config = DefaultConfig()
	}
	config.MergeDefault()

	id := uuid.New()
	return &Conn{
		config:  config,
		log:     config.Logger.Field("conn_id", id.String()),
		id:      id,
		state:   StateClosed,
		scratch: make([]byte, config.ReceiveBufferSize),
	}
}

// ID returns the identifier attached to this connection's log lines.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	return c.state
}

// CloseStatus returns the status code and reason carried by the peer's
// CLOSE frame, once one has been seen. The code is CloseNoStatusReceived
// when the peer's CLOSE had no body and zero when none arrived at all.
func (c *Conn) CloseStatus() (int, string) {
	return c.closeCode, c.closeReason
}

// LastPong returns when the most recent PONG frame arrived. Pong liveness
// is the caller's responsibility; Service never blocks waiting for one.
func (c *Conn) LastPong() time.Time {
	return c.lastPongAt
}

// IsAlive reports whether the connection is open and the peer has not
// closed its end of the stream. The check peeks without consuming, so any
// pending frame is left for Receive or Service.
func (c *Conn) IsAlive() bool {
	return c.state == StateOpen && c.tr.isAlive()
}

// Connect establishes the connection: parses the URI, dials the first
// reachable resolved address with a bounded per-candidate timeout, then
// runs the HTTP upgrade handshake. On success the state is OPEN; on any
// failure the socket is closed and the state is CLOSED.
//
// The wss scheme is accepted only as a port-selection hint (443), no TLS
// is established. Known limitation.
func (c *Conn) Connect(uri string) error {
	if c.state != StateClosed {
		return ErrInvalidState
	}

	u, err := parseURI(uri)
	if err != nil {
		return err
	}
	if u.scheme == "wss" {
		c.log.Warnf("wss selects port 443 only, no TLS is established")
	}

	c.state = StateConnecting
	c.log.Field("uri", uri).Debugf("connecting")

	netConn, err := c.dial(u)
	if err != nil {
		c.state = StateClosed
		c.log.Err(err).Errorf("connect failed")
		return err
	}

	c.tr = newTransport(netConn)
	if err := performHandshake(c.tr, u.hostPort(), u.path, c.config.Rand); err != nil {
		c.tr.close()
		c.tr = nil
		c.state = StateClosed
		c.log.Err(err).Errorf("handshake failed")
		return err
	}

	c.state = StateOpen
	c.lastPingSentAt = time.Now()
	c.log.Infof("connection open")
	return nil
}

// dial attempts each resolved candidate address in order and stops at the
// first success.
func (c *Conn) dial(u wsURI) (net.Conn, error) {
	candidates, err := resolveCandidates(c.config.Resolver, u.host, u.port, c.config.PreferIPv6)
	if err != nil {
		return nil, err
	}

	var firstErr error
	for _, addr := range candidates {
		conn, err := net.DialTimeout("tcp", addr.String(), c.config.ConnectTimeout)
		if err == nil {
			return conn, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrConnectFailed, firstErr)
}

// Send encodes data as a single masked frame with FIN set and writes it in
// full. Legal only while OPEN. A write failure closes the connection: a
// broken frame stream cannot be resynchronised.
func (c *Conn) Send(data []byte, op Opcode) error {
	if c.state != StateOpen {
		return ErrInvalidState
	}

	frame, err := encodeFrame(op, data, true, c.config.Rand)
	if err != nil {
		return err
	}
	if err := c.tr.sendAll(frame); err != nil {
		c.abort()
		return fmt.Errorf("send frame: %w", err)
	}

	c.log.Field("opcode", op.String()).Field("payload_len", len(data)).Debugf("frame sent")
	return nil
}

// SendText sends text as a single TEXT frame.
func (c *Conn) SendText(text string) error {
	return c.Send([]byte(text), OpText)
}

// SendBinary sends data as a single BINARY frame.
func (c *Conn) SendBinary(data []byte) error {
	return c.Send(data, OpBinary)
}

// Receive drains pending data frames into buf and returns how many bytes
// were written. Legal only while OPEN. It never blocks waiting for a frame
// to start arriving: with nothing pending it returns immediately with what
// it has accumulated, possibly zero bytes. It stops at a frame boundary
// when the next pending frame is a control frame (those are drained only
// by Service), and reassembles fragments across CONTINUATION frames until
// a frame with FIN set has been consumed or buf is full. Payload bytes
// beyond the buffer's capacity are read and discarded, not retained.
//
// Once a frame header has been observed, the reads for that frame's body
// are blocking and unbounded; a peer that stalls mid-frame hangs the
// caller. Known limitation.
func (c *Conn) Receive(buf []byte) (int, error) {
	if c.state != StateOpen {
		return 0, ErrInvalidState
	}

	total := 0
	for total < len(buf) {
		hdr, err := c.tr.peekHeader()
		if err != nil {
			c.abort()
			if errors.Is(err, io.EOF) {
				if total > 0 {
					return total, nil
				}
				return 0, ErrPeerClosed
			}
			return total, fmt.Errorf("receive frame: %w", err)
		}
		if hdr == nil {
			// Nothing pending yet.
			return total, nil
		}

		h := decodeHeader(hdr[0], hdr[1])
		if h.opcode.IsControl() {
			return total, nil
		}

		n, fin, err := c.consumeDataFrame(buf[total:], h)
		if err != nil {
			c.abort()
			return total, err
		}
		total += n
		if fin {
			break
		}
	}
	return total, nil
}

// consumeDataFrame reads one data frame whose header has already been
// peeked: header, extended length, mask key if present, then the payload
// into dst up to its capacity with the excess discarded. Masked frames
// from a server violate RFC 6455 but are tolerated and unmasked.
func (c *Conn) consumeDataFrame(dst []byte, h frameHeader) (int, bool, error) {
	if _, err := c.tr.recvExact(2); err != nil {
		return 0, false, fmt.Errorf("consume frame header: %w", err)
	}

	payloadLen, err := c.readPayloadLength(h)
	if err != nil {
		return 0, false, err
	}

	var mask [4]byte
	if h.masked {
		mb, err := c.tr.recvExact(4)
		if err != nil {
			return 0, false, fmt.Errorf("read mask key: %w", err)
		}
		copy(mask[:], mb)
	}

	toCopy := payloadLen
	if capacity := uint64(len(dst)); toCopy > capacity {
		toCopy = capacity
	}
	if toCopy > 0 {
		if err := c.tr.readFull(dst[:toCopy]); err != nil {
			return 0, false, fmt.Errorf("read payload: %w", err)
		}
	}
	if err := c.discard(payloadLen - toCopy); err != nil {
		return int(toCopy), false, err
	}
	if h.masked {
		// The written portion is the payload prefix, so the mask key
		// aligns at offset zero.
		applyMask(dst[:toCopy], mask)
	}

	c.log.Field("opcode", h.opcode.String()).Field("payload_len", payloadLen).Debugf("frame received")
	return int(toCopy), h.fin, nil
}

// readPayloadLength resolves the 7-bit length indicator, consuming the
// extended length bytes when the indicator calls for them.
func (c *Conn) readPayloadLength(h frameHeader) (uint64, error) {
	extSize := extendedLengthSize(h.lengthIndicator)
	if extSize == 0 {
		return uint64(h.lengthIndicator), nil
	}
	ext, err := c.tr.recvExact(extSize)
	if err != nil {
		return 0, fmt.Errorf("read extended length: %w", err)
	}
	return resolveExtendedLength(h.lengthIndicator, ext), nil
}

// discard reads and drops n payload bytes through the scratch buffer.
func (c *Conn) discard(n uint64) error {
	for n > 0 {
		chunk := uint64(len(c.scratch))
		if n < chunk {
			chunk = n
		}
		if err := c.tr.readFull(c.scratch[:chunk]); err != nil {
			return fmt.Errorf("discard excess payload: %w", err)
		}
		n -= chunk
	}
	return nil
}

// Service handles the control-frame sub-protocol: if the next pending
// frame is a control frame it is consumed and acted on (PING answered
// with a PONG carrying the same payload, PONG recorded, CLOSE triggering
// teardown); otherwise, when the ping interval has elapsed, an empty PING
// is emitted. Service never blocks waiting for a reply. Legal while OPEN;
// a no-op success while CLOSING; an error in any other state.
func (c *Conn) Service() error {
	switch c.state {
	case StateOpen:
	case StateClosing:
		return nil
	default:
		return ErrInvalidState
	}

	hdr, err := c.tr.peekHeader()
	if err != nil {
		c.abort()
		if errors.Is(err, io.EOF) {
			return ErrPeerClosed
		}
		return fmt.Errorf("service: %w", err)
	}

	if hdr != nil {
		h := decodeHeader(hdr[0], hdr[1])
		if h.opcode.IsControl() {
			return c.handleControlFrame(h)
		}
		// Data frame pending: left untouched for Receive.
	}

	if c.config.PingInterval > 0 && time.Since(c.lastPingSentAt) >= c.config.PingInterval {
		if err := c.sendControl(OpPing, nil); err != nil {
			return err
		}
		c.lastPingSentAt = time.Now()
		c.log.Debugf("ping sent")
	}
	return nil
}

// handleControlFrame fully consumes a peeked control frame and reacts to
// it. Control frames never use the extended length field: an indicator
// above 125 is a protocol violation that fails the connection with close
// code 1002 (RFC 6455 section 5.5).
func (c *Conn) handleControlFrame(h frameHeader) error {
	if h.lengthIndicator > maxControlPayload {
		c.Fail(CloseProtocolError, "Protocol error")
		return fmt.Errorf("%w: control frame announces %d byte payload", ErrProtocolError, h.lengthIndicator)
	}

	if _, err := c.tr.recvExact(2); err != nil {
		c.abort()
		return fmt.Errorf("consume control header: %w", err)
	}

	var mask [4]byte
	if h.masked {
		mb, err := c.tr.recvExact(4)
		if err != nil {
			c.abort()
			return fmt.Errorf("read control mask key: %w", err)
		}
		copy(mask[:], mb)
	}

	var payload []byte
	if h.lengthIndicator > 0 {
		var err error
		payload, err = c.tr.recvExact(int(h.lengthIndicator))
		if err != nil {
			c.abort()
			return fmt.Errorf("read control payload: %w", err)
		}
		if h.masked {
			applyMask(payload, mask)
		}
	}
	return c.dispatchControlFrame(h.opcode, payload)
}

func (c *Conn) dispatchControlFrame(op Opcode, payload []byte) error {
	switch op {
	case OpPing:
		c.log.Debugf("ping received, replying with pong")
		return c.sendControl(OpPong, payload)

	case OpPong:
		c.lastPongAt = time.Now()
		c.log.Debugf("pong received")
		return nil

	case OpClose:
		c.closeCode, c.closeReason = parseClosePayload(payload)
		c.log.Field("code", c.closeCode).Field("reason", c.closeReason).Infof("close frame received")
		// Echo the CLOSE best-effort, then tear down.
		if frame, err := encodeFrame(OpClose, closePayload(c.closeCode, ""), true, c.config.Rand); err == nil {
			c.tr.sendAll(frame)
		}
		c.abort()
		return nil

	default:
		c.Fail(CloseProtocolError, "Protocol error")
		return fmt.Errorf("%w: unexpected opcode 0x%X", ErrProtocolError, byte(op))
	}
}

// sendControl emits one masked control frame.
func (c *Conn) sendControl(op Opcode, payload []byte) error {
	frame, err := encodeFrame(op, payload, true, c.config.Rand)
	if err != nil {
		return err
	}
	if err := c.tr.sendAll(frame); err != nil {
		c.abort()
		return fmt.Errorf("send %s frame: %w", op, err)
	}
	return nil
}

// Close performs the graceful shutdown. From OPEN it sends a CLOSE frame
// with status 1000, waits a bounded time for the peer's CLOSE, half-closes
// the TCP stream and drains until the peer closes or the window elapses.
// From any state it always ends with the socket closed and the state
// CLOSED; calling it on an already-CLOSED connection is a no-op.
func (c *Conn) Close() error {
	switch c.state {
	case StateClosed:
		return nil
	case StateConnecting, StateClosing:
		c.abort()
		return nil
	}

	c.state = StateClosing
	c.log.Debugf("closing connection")

	if frame, err := encodeFrame(OpClose, closePayload(CloseNormalClosure, ""), true, c.config.Rand); err == nil {
		if err := c.tr.sendAll(frame); err != nil {
			c.log.Err(err).Debugf("close frame send failed")
		}
	}

	c.awaitPeerClose()

	c.tr.shutdownWrite()
	c.drainUntilClosed()

	c.abort()
	c.log.Infof("connection closed")
	return nil
}

// Fail is the abrupt variant of Close, used for protocol-violation paths.
// From OPEN it best-effort sends a CLOSE frame carrying the status code
// and reason without waiting for the peer's reply, then force-closes the
// socket. The state ends CLOSED unconditionally.
func (c *Conn) Fail(code int, reason string) error {
	if c.state == StateOpen {
		if frame, err := encodeFrame(OpClose, closePayload(code, reason), true, c.config.Rand); err == nil {
			if err := c.tr.sendAll(frame); err != nil {
				c.log.Err(err).Debugf("close frame send failed")
			}
		}
		c.log.Field("code", code).Field("reason", reason).Warnf("connection failed")
	}
	c.abort()
	return nil
}

// awaitPeerClose reads and discards frames under the close deadline until
// the peer's CLOSE frame arrives, recording its status code and reason.
func (c *Conn) awaitPeerClose() {
	c.tr.setReadDeadline(c.config.CloseTimeout)
	for {
		hb, err := c.tr.recvExact(2)
		if err != nil {
			return
		}
		h := decodeHeader(hb[0], hb[1])

		payloadLen, err := c.readPayloadLength(h)
		if err != nil {
			return
		}
		var mask [4]byte
		if h.masked {
			mb, err := c.tr.recvExact(4)
			if err != nil {
				return
			}
			copy(mask[:], mb)
		}

		if h.opcode == OpClose && payloadLen <= maxControlPayload {
			payload, err := c.tr.recvExact(int(payloadLen))
			if err != nil {
				return
			}
			if h.masked {
				applyMask(payload, mask)
			}
			c.closeCode, c.closeReason = parseClosePayload(payload)
			c.log.Field("code", c.closeCode).Debugf("peer close frame received")
			return
		}

		if err := c.discard(payloadLen); err != nil {
			return
		}
	}
}

// drainUntilClosed reads and drops whatever the peer still sends after the
// half-close, until it closes its end or the drain window elapses.
func (c *Conn) drainUntilClosed() {
	c.tr.setReadDeadline(c.config.CloseTimeout)
	for {
		if _, err := c.tr.recvUpTo(c.scratch); err != nil {
			return
		}
	}
}

// abort force-closes the socket and drives the state to CLOSED. Safe to
// call from any state, including repeatedly.
func (c *Conn) abort() {
	if c.tr != nil {
		c.tr.close()
		c.tr = nil
	}
	c.state = StateClosed
}

// closePayload builds the optional close-frame body: a 2-byte big-endian
// status code followed by a UTF-8 reason, 125 bytes total at most. Codes
// that must not appear on the wire produce an empty body.
func closePayload(code int, reason string) []byte {
	if code == 0 || code == CloseNoStatusReceived || code == CloseAbnormalClosure {
		return nil
	}
	if len(reason) > maxControlPayload-2 {
		reason = reason[:maxControlPayload-2]
	}
	p := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(p, uint16(code))
	copy(p[2:], reason)
	return p
}

// parseClosePayload extracts the status code and UTF-8 reason from a
// close-frame body. An empty body means no status was received.
func parseClosePayload(payload []byte) (int, string) {
	if len(payload) < 2 {
		return CloseNoStatusReceived, ""
	}
	return int(binary.BigEndian.Uint16(payload[:2])), string(payload[2:])
}
