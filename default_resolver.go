package wsclient

import (
	"fmt"
	"net"
)

// DefaultResolver implements the Resolver interface using Go's standard net package
type DefaultResolver struct{}

// NewDefaultResolver creates a new DefaultResolver
func NewDefaultResolver() *DefaultResolver {
	return &DefaultResolver{}
}

// LookupIP takes a hostname and converts it to a list of IP addresses
func (r *DefaultResolver) LookupIP(host string) ([]string, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	result := make([]string, len(ips))
	for i, ip := range ips {
		result[i] = ip.String()
	}
	return result, nil
}
