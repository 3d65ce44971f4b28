package wsclient

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"
)

// peekWindow is the short read deadline used by peekHeader. The peek must
// not block a caller that polls for data, but an already-expired deadline
// would fail before the kernel buffer is ever consulted, so a millisecond
// window stands in for a zero-timeout poll.
const peekWindow = time.Millisecond

// transport adapts a connected stream socket to the exact primitives the
// connection state machine needs: full writes, exact reads, a
// peek-without-consume of the next frame header and a liveness check. The
// peek/consume split is an explicit two-phase API; the socket itself stays
// in blocking mode throughout.
type transport struct {
	conn net.Conn
	br   *bufio.Reader
}

func newTransport(conn net.Conn) *transport {
	return &transport{
		conn: conn,
		br:   bufio.NewReader(conn),
	}
}

// sendAll writes the whole buffer, looping over partial writes. A short
// write is never reported as success.
func (t *transport) sendAll(data []byte) error {
	written := 0
	for written < len(data) {
		n, err := t.conn.Write(data[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

// recvExact blocks until exactly n bytes are read. Used for header,
// extended length and mask key reads where partial data is meaningless.
func (t *transport) recvExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := t.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFull blocks until the destination buffer is filled. It honours
// whatever read deadline is in force: none on the normal frame path,
// a bounded one on the teardown paths.
func (t *transport) readFull(dst []byte) error {
	_, err := io.ReadFull(t.br, dst)
	return err
}

// recvUpTo performs a single read of whatever is available, up to
// len(dst). A zero count with io.EOF signals an orderly peer close.
func (t *transport) recvUpTo(dst []byte) (int, error) {
	return t.br.Read(dst)
}

// peekHeader looks at the next 2 bytes without consuming them. It returns
// (nil, nil) when no complete header is pending yet, the 2 header bytes
// when one is, io.EOF when the peer has closed the stream, and any other
// error for a genuine socket failure.
func (t *transport) peekHeader() ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(peekWindow)); err != nil {
		return nil, err
	}
	defer t.conn.SetReadDeadline(time.Time{})

	hdr, err := t.br.Peek(2)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// Would block: nothing pending, or only 1 of 2 bytes so far.
			return nil, nil
		}
		if errors.Is(err, io.EOF) && t.br.Buffered() == 0 {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			// Stream ended inside a frame header.
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return hdr, nil
}

// isAlive reports whether the peer end of the stream is still usable. It
// peeks without consuming, so a pending frame is left untouched.
func (t *transport) isAlive() bool {
	_, err := t.peekHeader()
	return err == nil
}

// setReadDeadline exposes a bounded-read window for teardown paths that
// must not wait forever on a silent peer.
func (t *transport) setReadDeadline(d time.Duration) error {
	return t.conn.SetReadDeadline(time.Now().Add(d))
}

// shutdownWrite half-closes the TCP stream, signalling the peer that no
// more data follows while the drain continues reading.
func (t *transport) shutdownWrite() {
	if tcp, ok := t.conn.(*net.TCPConn); ok {
		tcp.CloseWrite()
	}
}

func (t *transport) close() error {
	return t.conn.Close()
}
