package probes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"phishguard/features"
)

// fallbackNameserver is used when no resolver is configured or readable.
const fallbackNameserver = "8.8.8.8:53"

// Exchanger sends a DNS query. *dns.Client satisfies it.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

// DNSRecords checks whether the host publishes MX and TXT records.
type DNSRecords struct {
	Client Exchanger
	Server string
}

// NewDNSRecords builds the probe against server, or the system nameserver
// when server is empty.
func NewDNSRecords(server string, timeout time.Duration) *DNSRecords {
	if server == "" {
		server = SystemNameserver()
	}
	return &DNSRecords{
		Client: &dns.Client{Timeout: timeout},
		Server: server,
	}
}

// SystemNameserver returns the first nameserver from /etc/resolv.conf.
func SystemNameserver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return fallbackNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

func (d *DNSRecords) Name() string { return "dns_records" }

func (d *DNSRecords) Sentinel() features.Vector {
	return features.Vector{
		{Name: features.HasMXRecord, Value: 0},
		{Name: features.HasTXTRecord, Value: 0},
	}
}

// Measure treats a negative answer as a measured 0. Only when both queries
// fail to get any answer does the probe fall back to its sentinels.
func (d *DNSRecords) Measure(ctx context.Context, t Target) (features.Vector, error) {
	if t.Host == "" {
		return nil, errNoHost
	}

	hasMX, mxErr := d.has(ctx, t.Host, dns.TypeMX)
	hasTXT, txtErr := d.has(ctx, t.Host, dns.TypeTXT)
	if mxErr != nil && txtErr != nil {
		return nil, fmt.Errorf("dns records for %s: %w", t.Host, errors.Join(mxErr, txtErr))
	}

	return features.Vector{
		{Name: features.HasMXRecord, Value: flag(hasMX)},
		{Name: features.HasTXTRecord, Value: flag(hasTXT)},
	}, nil
}

func (d *DNSRecords) has(ctx context.Context, host string, qtype uint16) (bool, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	in, _, err := d.Client.ExchangeContext(ctx, m, d.Server)
	if err != nil {
		return false, fmt.Errorf("%s query: %w", dns.TypeToString[qtype], err)
	}
	if in == nil || in.Rcode != dns.RcodeSuccess {
		return false, nil
	}
	for _, rr := range in.Answer {
		switch rr.(type) {
		case *dns.MX:
			if qtype == dns.TypeMX {
				return true, nil
			}
		case *dns.TXT:
			if qtype == dns.TypeTXT {
				return true, nil
			}
		}
	}
	return false, nil
}
