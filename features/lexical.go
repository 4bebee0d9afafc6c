package features

import (
	"net/netip"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// PhishKeywords are counted at most once each by phish_hints.
var PhishKeywords = []string{
	"login", "verify", "secure", "account", "update", "banking", "password", "confirm",
}

// SuspiciousTLDs are free-registration suffixes heavily used by phishing kits.
var SuspiciousTLDs = map[string]bool{
	"tk": true,
	"ml": true,
	"ga": true,
	"cf": true,
	"gq": true,
}

// URLParts is the structural decomposition of a normalized URL.
type URLParts struct {
	URL    string // normalized URL string
	Scheme string
	Netloc string // host[:port], userinfo included, original case
	Host   string // lower-cased hostname without userinfo, port or brackets
	Port   string
	Path   string

	Subdomain string
	Domain    string
	Suffix    string
	IP        bool
}

// RegistrableDomain returns domain.suffix, or "" when the host has none.
func (p URLParts) RegistrableDomain() string {
	if p.Domain == "" || p.Suffix == "" {
		return ""
	}
	return p.Domain + "." + p.Suffix
}

// Normalize trims the input and prepends http:// when no web scheme is present.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return "http://" + s
}

// ParseURL normalizes raw and splits it into its parts. It never fails: a
// string the standard parser would reject still yields its network location.
func ParseURL(raw string) URLParts {
	u := Normalize(raw)
	p := URLParts{URL: u}

	scheme, rest, _ := strings.Cut(u, "://")
	p.Scheme = strings.ToLower(scheme)

	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		p.Netloc = rest
	} else {
		p.Netloc = rest[:end]
		if rest[end] == '/' {
			p.Path = rest[end:]
			if i := strings.IndexAny(p.Path, "?#"); i >= 0 {
				p.Path = p.Path[:i]
			}
		}
	}

	p.Host, p.Port = splitHostPort(p.Netloc)
	if addr, err := netip.ParseAddr(p.Host); err == nil && addr.IsValid() {
		p.IP = true
		return p
	}
	p.Subdomain, p.Domain, p.Suffix = splitDomain(p.Host)
	return p
}

// splitHostPort drops userinfo and port from a network location.
func splitHostPort(netloc string) (host, port string) {
	hp := netloc
	if i := strings.LastIndexByte(hp, '@'); i >= 0 {
		hp = hp[i+1:]
	}
	if strings.HasPrefix(hp, "[") {
		end := strings.IndexByte(hp, ']')
		if end < 0 {
			return strings.ToLower(hp[1:]), ""
		}
		host = hp[1:end]
		if z := strings.IndexByte(host, '%'); z >= 0 {
			host = host[:z]
		}
		port = strings.TrimPrefix(hp[end+1:], ":")
		return strings.ToLower(host), port
	}
	host, port, _ = strings.Cut(hp, ":")
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return host, port
}

// splitDomain separates a hostname into subdomain, domain label and ICANN
// public suffix. Unknown TLDs yield an empty suffix.
func splitDomain(host string) (subdomain, domain, suffix string) {
	if host == "" {
		return "", "", ""
	}
	ascii := host
	if a, err := idna.Lookup.ToASCII(host); err == nil && a != "" {
		ascii = a
	}

	suffix = icannSuffix(ascii)
	rest := ascii
	switch {
	case suffix == "":
	case rest == suffix:
		return "", "", suffix
	case strings.HasSuffix(rest, "."+suffix):
		rest = strings.TrimSuffix(rest, "."+suffix)
	default:
		suffix = ""
	}

	i := strings.LastIndexByte(rest, '.')
	if i < 0 {
		return "", rest, suffix
	}
	return rest[:i], rest[i+1:], suffix
}

// icannSuffix narrows publicsuffix results to the ICANN section, skipping
// privately registered suffixes such as github.io.
func icannSuffix(host string) string {
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann {
		i := strings.IndexByte(suffix, '.')
		if i < 0 {
			return ""
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[i+1:])
	}
	return suffix
}

// ExtractLexical computes the classifier row from URL structure alone.
func ExtractLexical(raw string) ModelVector {
	p := ParseURL(raw)
	lower := strings.ToLower(p.URL)
	netloc := strings.ToLower(p.Netloc)

	var m ModelVector
	m[0] = float64(utf8.RuneCountInString(p.URL))
	m[1] = float64(utf8.RuneCountInString(netloc))
	m[2] = float64(strings.Count(p.URL, "."))
	m[3] = float64(strings.Count(p.URL, "-"))
	m[4] = float64(strings.Count(p.URL, "/"))
	m[5] = boolFloat(p.Scheme == "https")
	m[6] = float64(countLabels(p.Subdomain))
	m[7] = boolFloat(strings.Contains(netloc, "-"))
	m[8] = float64(countKeywords(lower))
	m[9] = boolFloat(SuspiciousTLDs[p.Suffix])
	return m
}

func countLabels(subdomain string) int {
	n := 0
	for _, label := range strings.Split(subdomain, ".") {
		if label != "" {
			n++
		}
	}
	return n
}

func countKeywords(lowerURL string) int {
	n := 0
	for _, kw := range PhishKeywords {
		if strings.Contains(lowerURL, kw) {
			n++
		}
	}
	return n
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
