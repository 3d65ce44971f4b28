package wsclient

// Resolver defines the interface for DNS resolution
type Resolver interface {
	// LookupIP takes a hostname and converts it to a list of IP addresses
	LookupIP(host string) ([]string, error)
}
