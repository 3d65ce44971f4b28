package wsclient

import (
	"crypto/rand"
	"io"
	"time"
)

type Config struct {
	// ConnectTimeout is the duration to wait for a TCP connection to be
	// established, applied per resolved candidate address.
	ConnectTimeout time.Duration

	// ProbeTimeout bounds the TCP reachability check performed by
	// CheckServerAvailable.
	ProbeTimeout time.Duration

	// CloseTimeout bounds how long Close waits for the peer's CLOSE frame
	// and the post-shutdown drain.
	CloseTimeout time.Duration

	// PingInterval is the cadence of automatic pings emitted by Service.
	// A negative value disables automatic pings; zero selects the default.
	PingInterval time.Duration

	// ReceiveBufferSize is the size of the internal scratch buffer used
	// for the handshake response and for draining payload bytes the
	// caller's buffer cannot hold. This is distinct from the destination
	// buffer passed to Receive.
	ReceiveBufferSize int

	// PreferIPv6 orders resolved IPv6 addresses ahead of IPv4 when
	// dialling and probing.
	PreferIPv6 bool

	// Resolver converts host names to candidate IP addresses, nil to use
	// the default resolver.
	Resolver Resolver

	// Logger receives the diagnostic trace, nil to discard it.
	Logger Logger

	// Rand is the random byte source for handshake keys and per-frame
	// mask keys, nil to use crypto/rand.
	Rand io.Reader
}

// MergeDefault merges the default config with the given config to ensure all fields are set
func (c *Config) MergeDefault() *Config {
	defaultConfig := DefaultConfig()
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConfig.ConnectTimeout
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = defaultConfig.ProbeTimeout
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = defaultConfig.CloseTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = defaultConfig.PingInterval
	}
	if c.ReceiveBufferSize == 0 {
		c.ReceiveBufferSize = defaultConfig.ReceiveBufferSize
	}
	if c.Resolver == nil {
		c.Resolver = NewDefaultResolver()
	}
	if c.Logger == nil {
		c.Logger = NewNullLogger()
	}
	if c.Rand == nil {
		c.Rand = rand.Reader
	}

	return c
}

func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout:    2 * time.Second,
		ProbeTimeout:      1 * time.Second,
		CloseTimeout:      5 * time.Second,
		PingInterval:      30 * time.Second,
		ReceiveBufferSize: 1024,
	}
}
