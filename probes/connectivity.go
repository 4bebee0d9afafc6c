package probes

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"phishguard/features"
)

// IPResolver resolves a hostname to addresses. *net.Resolver satisfies it.
type IPResolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// ContextDialer opens TCP connections. *net.Dialer satisfies it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Connectivity measures DNS resolution latency, address class and TCP
// handshake latency on port 80.
type Connectivity struct {
	Resolver IPResolver
	Dialer   ContextDialer
	Port     string
}

// NewConnectivity builds the probe. A non-empty dnsServer ("host:port") routes
// lookups through that server instead of the system resolver.
func NewConnectivity(dnsServer string, timeout time.Duration) *Connectivity {
	return &Connectivity{
		Resolver: newResolver(dnsServer, timeout),
		Dialer:   &net.Dialer{Timeout: timeout},
		Port:     "80",
	}
}

func newResolver(server string, timeout time.Duration) *net.Resolver {
	if server == "" {
		return net.DefaultResolver
	}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, "udp", server)
		},
	}
}

func (c *Connectivity) Name() string { return "connectivity" }

func (c *Connectivity) Sentinel() features.Vector {
	return features.Vector{
		{Name: features.DNSResolutionTime, Value: 5.0},
		{Name: features.IsPrivateIP, Value: 0},
		{Name: features.TCPConnectTime, Value: 5.0},
	}
}

func (c *Connectivity) Measure(ctx context.Context, t Target) (features.Vector, error) {
	if t.Host == "" {
		return nil, errNoHost
	}

	start := time.Now()
	addrs, err := c.Resolver.LookupIPAddr(ctx, t.Host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", t.Host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("resolve %s: no addresses", t.Host)
	}
	dnsTime := time.Since(start)

	ip := pickAddr(addrs)

	port := c.Port
	if port == "" {
		port = "80"
	}
	start = time.Now()
	conn, err := c.Dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), port))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", t.Host, err)
	}
	tcpTime := time.Since(start)
	conn.Close()

	return features.Vector{
		{Name: features.DNSResolutionTime, Value: seconds(dnsTime)},
		{Name: features.IsPrivateIP, Value: flag(isPrivate(ip))},
		{Name: features.TCPConnectTime, Value: seconds(tcpTime)},
	}, nil
}

// pickAddr prefers the first IPv4 address, like a plain A lookup would.
func pickAddr(addrs []net.IPAddr) net.IP {
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP
		}
	}
	return addrs[0].IP
}

// isPrivate reports RFC 1918 / RFC 4193 private and link-local unicast addresses.
func isPrivate(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return false
	}
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLinkLocalUnicast()
}
