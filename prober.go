package wsclient

import (
	"net"
)

// CheckServerAvailable performs a one-shot TCP reachability probe of
// host:port before any WebSocket traffic: each resolved candidate address
// gets a bounded connect attempt and the first success wins. Entirely
// decoupled from connection state; callers typically probe before Connect
// to avoid walking the handshake path against a down server.
func CheckServerAvailable(host string, port int) bool {
	config := DefaultConfig().MergeDefault()
	return checkServerAvailable(config, host, port)
}

func checkServerAvailable(config *Config, host string, port int) bool {
	candidates, err := resolveCandidates(config.Resolver, host, port, config.PreferIPv6)
	if err != nil {
		config.Logger.Err(err).Debugf("probe resolution failed")
		return false
	}

	for _, addr := range candidates {
		conn, err := net.DialTimeout("tcp", addr.String(), config.ProbeTimeout)
		if err != nil {
			continue
		}
		conn.Close()
		return true
	}
	return false
}
