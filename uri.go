package wsclient

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// wsURI is the parsed form of a ws:// or wss:// URI.
type wsURI struct {
	scheme string
	host   string
	port   int
	path   string
}

// hostPort formats the dial target.
func (u wsURI) hostPort() string {
	return net.JoinHostPort(u.host, strconv.Itoa(u.port))
}

// parseURI accepts ws://host[:port][/path] and wss://host[:port][/path].
// The port defaults to 80 for ws and 443 for wss, the path to "/". Note
// that wss only selects the port: no TLS is established, which is a known
// limitation of this library rather than a feature.
func parseURI(raw string) (wsURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return wsURI{}, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}

	if u.Scheme != "ws" && u.Scheme != "wss" {
		return wsURI{}, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURI, u.Scheme)
	}
	if u.Hostname() == "" {
		return wsURI{}, fmt.Errorf("%w: missing host", ErrMalformedURI)
	}

	port := 80
	if u.Scheme == "wss" {
		port = 443
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return wsURI{}, fmt.Errorf("%w: invalid port %q", ErrMalformedURI, p)
		}
	}

	path := u.RequestURI()
	if path == "" {
		path = "/"
	}

	return wsURI{
		scheme: u.Scheme,
		host:   u.Hostname(),
		port:   port,
		path:   path,
	}, nil
}
