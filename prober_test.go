package wsclient

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckServerAvailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	// The probe only needs the TCP accept, no handshake.
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	assert.True(t, CheckServerAvailable("127.0.0.1", port))
}

func TestCheckServerAvailableRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	ln.Close()

	config := DefaultConfig()
	config.ProbeTimeout = 200 * time.Millisecond
	config.MergeDefault()
	assert.False(t, checkServerAvailable(config, "127.0.0.1", port))
}

func TestCheckServerAvailableUnresolvable(t *testing.T) {
	config := DefaultConfig()
	config.ProbeTimeout = 200 * time.Millisecond
	config.MergeDefault()
	assert.False(t, checkServerAvailable(config, "host.invalid", 80))
}
