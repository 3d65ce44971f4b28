package wsclient

import (
	"bytes"
	"crypto/sha1" // #nosec G505 - SHA-1 mandated by RFC 6455 section 1.3
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

const (
	// websocketGUID is the magic GUID from RFC 6455 section 1.3, used to
	// derive Sec-WebSocket-Accept from the client key.
	websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

	// handshakeKeySize is the size of the raw random key before Base64
	// encoding (RFC 6455 section 4.1).
	handshakeKeySize = 16

	// maxHandshakeResponse caps how many response bytes are read while
	// looking for the header terminator; failing to find it within the
	// ceiling is a handshake failure.
	maxHandshakeResponse = 2048
)

// generateKey produces the Base64-encoded Sec-WebSocket-Key from 16 fresh
// random bytes.
func generateKey(rnd io.Reader) (string, error) {
	raw := make([]byte, handshakeKeySize)
	if _, err := io.ReadFull(rnd, raw); err != nil {
		return "", fmt.Errorf("generate handshake key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// computeAcceptKey derives the expected Sec-WebSocket-Accept value:
// base64(SHA-1(key + GUID)) per RFC 6455 section 1.3.
func computeAcceptKey(key string) string {
	h := sha1.New() // #nosec G401 - not used for cryptographic security
	h.Write([]byte(key))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// buildUpgradeRequest constructs the HTTP/1.1 upgrade request for the
// given target and key.
func buildUpgradeRequest(host, path, key string) []byte {
	var b strings.Builder
	b.WriteString("GET " + path + " HTTP/1.1\r\n")
	b.WriteString("Host: " + host + "\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Sec-WebSocket-Key: " + key + "\r\n")
	b.WriteString("Sec-WebSocket-Version: 13\r\n")
	b.WriteString("\r\n")
	return []byte(b.String())
}

// performHandshake runs the HTTP upgrade exchange exactly once on the
// transport. On success the stream is ready for framing; on failure the
// caller owns closing the socket.
func performHandshake(t *transport, host, path string, rnd io.Reader) error {
	key, err := generateKey(rnd)
	if err != nil {
		return err
	}

	if err := t.sendAll(buildUpgradeRequest(host, path, key)); err != nil {
		return fmt.Errorf("%w: send upgrade request: %v", ErrHandshakeFailed, err)
	}

	response, err := readUpgradeResponse(t)
	if err != nil {
		return err
	}

	return validateUpgradeResponse(response, key)
}

// readUpgradeResponse accumulates response bytes until the blank line that
// terminates the header block, or gives up at the buffer ceiling. Reading
// stops exactly at the terminator so any frame bytes the server sent
// immediately after the response stay in the transport's buffer.
func readUpgradeResponse(t *transport) (string, error) {
	buf := make([]byte, 0, 512)
	b := make([]byte, 1)
	for len(buf) < maxHandshakeResponse {
		if err := t.readFull(b); err != nil {
			return "", fmt.Errorf("%w: read response: %v", ErrHandshakeFailed, err)
		}
		buf = append(buf, b[0])
		if bytes.HasSuffix(buf, []byte("\r\n\r\n")) {
			return string(buf), nil
		}
	}
	return "", fmt.Errorf("%w: no header terminator within %d bytes", ErrHandshakeFailed, maxHandshakeResponse)
}

// validateUpgradeResponse checks the status line, the Upgrade header and
// the Sec-WebSocket-Accept derivation. Header token matching is
// case-insensitive per HTTP semantics.
func validateUpgradeResponse(response, key string) error {
	lines := strings.Split(response, "\r\n")
	if len(lines) == 0 || !strings.Contains(lines[0], "HTTP/1.1 101") {
		return fmt.Errorf("%w: unexpected status line %q", ErrHandshakeFailed, firstLine(response))
	}

	upgraded := false
	acceptOK := false
	expected := computeAcceptKey(key)
	for _, line := range lines[1:] {
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "upgrade":
			if strings.EqualFold(value, "websocket") {
				upgraded = true
			}
		case "sec-websocket-accept":
			if value == expected {
				acceptOK = true
			}
		}
	}

	if !upgraded {
		return fmt.Errorf("%w: missing Upgrade: websocket header", ErrHandshakeFailed)
	}
	if !acceptOK {
		return fmt.Errorf("%w: missing or invalid Sec-WebSocket-Accept header", ErrHandshakeFailed)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.Index(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
