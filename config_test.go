package wsclient

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigMergeDefault(t *testing.T) {
	config := &Config{}
	config.MergeDefault()

	assert.Equal(t, 2*time.Second, config.ConnectTimeout)
	assert.Equal(t, 1*time.Second, config.ProbeTimeout)
	assert.Equal(t, 5*time.Second, config.CloseTimeout)
	assert.Equal(t, 30*time.Second, config.PingInterval)
	assert.Equal(t, 1024, config.ReceiveBufferSize)
	assert.NotNil(t, config.Resolver)
	assert.NotNil(t, config.Logger)
	assert.Equal(t, rand.Reader, config.Rand)
}

func TestConfigMergeDefaultKeepsOverrides(t *testing.T) {
	config := &Config{
		ConnectTimeout:    250 * time.Millisecond,
		ReceiveBufferSize: 4096,
	}
	config.MergeDefault()

	assert.Equal(t, 250*time.Millisecond, config.ConnectTimeout)
	assert.Equal(t, 4096, config.ReceiveBufferSize)
	assert.Equal(t, 30*time.Second, config.PingInterval)
}

func TestConfigNegativePingIntervalDisables(t *testing.T) {
	config := &Config{PingInterval: -1}
	config.MergeDefault()

	// Negative means no automatic pings; zero would have selected the
	// default cadence.
	assert.Equal(t, time.Duration(-1), config.PingInterval)
}

func TestNewConnWithNilConfig(t *testing.T) {
	c := NewConn(nil)
	assert.Equal(t, StateClosed, c.State())
	assert.NotEqual(t, [16]byte{}, [16]byte(c.ID()))
}
