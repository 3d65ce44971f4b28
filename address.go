package wsclient

import (
	"fmt"
	"net"
	"strconv"
)

type address struct {
	IP   net.IP
	Port int
}

func (a address) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}

// resolveCandidates expands host:port into the ordered list of dialable
// candidate addresses. Literal IPs skip resolution; host names resolve
// through the resolver with the preferred address family first.
func resolveCandidates(resolver Resolver, host string, port int, preferIPv6 bool) ([]address, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []address{{IP: ip, Port: port}}, nil
	}

	ipStrs, err := resolver.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address %s: %w", host, err)
	}

	var v4, v6 []address
	for _, ipStr := range ipStrs {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			v4 = append(v4, address{IP: ip, Port: port})
		} else {
			v6 = append(v6, address{IP: ip, Port: port})
		}
	}

	ordered := make([]address, 0, len(v4)+len(v6))
	if preferIPv6 {
		ordered = append(ordered, v6...)
		ordered = append(ordered, v4...)
	} else {
		ordered = append(ordered, v4...)
		ordered = append(ordered, v6...)
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("no addresses resolved for %s", host)
	}
	return ordered, nil
}
