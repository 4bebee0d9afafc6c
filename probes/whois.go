package probes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"phishguard/features"
)

// newDomainDays is the age below which a domain counts as newly registered.
const newDomainDays = 30

// WhoisClient queries a WHOIS server. *whois.Client satisfies it.
type WhoisClient interface {
	Whois(domain string, servers ...string) (string, error)
}

// Whois derives domain age and registrar presence from WHOIS records.
type Whois struct {
	Client WhoisClient
	Now    func() time.Time
}

// NewWhois builds the probe with a client bounded by timeout.
func NewWhois(timeout time.Duration) *Whois {
	return &Whois{
		Client: whois.NewClient().SetTimeout(timeout),
		Now:    time.Now,
	}
}

func (w *Whois) Name() string { return "whois" }

func (w *Whois) Sentinel() features.Vector {
	return features.Vector{
		{Name: features.DomainAgeDays, Value: 0},
		{Name: features.IsNewDomain, Value: 1},
		{Name: features.HasRegistrar, Value: 0},
	}
}

// Measure queries the registrable domain, so sub.example.com is looked up as
// example.com. A record without a parseable creation date reads as a new
// domain of age 0.
func (w *Whois) Measure(ctx context.Context, t Target) (features.Vector, error) {
	if t.IP || t.Domain == "" {
		return nil, fmt.Errorf("whois %s: %w", t.Host, errNoRegistrableDomain)
	}

	raw, err := w.Client.Whois(t.Domain)
	if err != nil {
		return nil, fmt.Errorf("whois %s: %w", t.Domain, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse whois %s: %w", t.Domain, err)
	}

	hasRegistrar := info.Registrar != nil && strings.TrimSpace(info.Registrar.Name) != ""

	age, newDomain := 0, true
	if created, ok := earliestCreation(t.Domain, raw, info); ok {
		now := time.Now
		if w.Now != nil {
			now = w.Now
		}
		age = max(int(now().Sub(created).Hours()/24), 0)
		newDomain = age < newDomainDays
	}

	return features.Vector{
		{Name: features.DomainAgeDays, Value: float64(age)},
		{Name: features.IsNewDomain, Value: flag(newDomain)},
		{Name: features.HasRegistrar, Value: flag(hasRegistrar)},
	}, nil
}

// earliestCreation returns the oldest creation date anywhere in raw. The
// client concatenates the registry and registrar answers, and the parser keeps
// only the first date it meets, so every section and every line is parsed on
// its own as well.
func earliestCreation(domain, raw string, whole whoisparser.WhoisInfo) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	add := func(info whoisparser.WhoisInfo) {
		if info.Domain == nil || info.Domain.CreatedDateInTime == nil {
			return
		}
		if t := *info.Domain.CreatedDateInTime; !found || t.Before(earliest) {
			earliest, found = t, true
		}
	}

	add(whole)
	for _, section := range splitSections(raw) {
		if info, err := whoisparser.Parse(section); err == nil {
			add(info)
		}
	}
	header := "Domain Name: " + domain + "\n"
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ":") {
			continue
		}
		if info, err := whoisparser.Parse(header + line + "\n"); err == nil {
			add(info)
		}
	}
	return earliest, found
}

// splitSections cuts a concatenated response at each "Domain Name:" line.
func splitSections(raw string) []string {
	var (
		sections []string
		cur      strings.Builder
	)
	for _, line := range strings.Split(raw, "\n") {
		key, _, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok && strings.EqualFold(key, "domain name") && cur.Len() > 0 {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	if cur.Len() > 0 {
		sections = append(sections, cur.String())
	}
	return sections
}
