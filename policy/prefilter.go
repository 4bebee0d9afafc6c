// Package policy holds operator-maintained allow and deny lists that are
// consulted before the model.
package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decision is the outcome of a pre-filter lookup.
type Decision string

const (
	// Undecided leaves the URL to the model.
	Undecided Decision = ""
	Allow     Decision = "allow"
	Deny      Decision = "deny"
)

// Rules is the on-disk policy file layout.
type Rules struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// Verdict records which rule decided a host.
type Verdict struct {
	Decision Decision `json:"decision"`
	Rule     string   `json:"rule,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Prefilter matches hosts against domain lists. The allowlist wins over the
// denylist. A nil Prefilter decides nothing.
type Prefilter struct {
	allow []string
	deny  []string
}

// New normalizes rule entries into a Prefilter.
func New(r Rules) *Prefilter {
	return &Prefilter{
		allow: normalizeEntries(r.Allow),
		deny:  normalizeEntries(r.Deny),
	}
}

// LoadFile reads a YAML policy file:
//
//	allow:
//	  - example.com
//	deny:
//	  - evil.tk
func LoadFile(path string) (*Prefilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return New(r), nil
}

// Len returns the number of allow and deny entries.
func (p *Prefilter) Len() (allow, deny int) {
	if p == nil {
		return 0, 0
	}
	return len(p.allow), len(p.deny)
}

// Check decides host, which must already be lower-cased and port-free.
func (p *Prefilter) Check(host string) Verdict {
	if p == nil || host == "" {
		return Verdict{}
	}
	if rule, ok := match(host, p.allow); ok {
		return Verdict{
			Decision: Allow,
			Rule:     rule,
			Reason:   "Host is on the allowlist: " + rule,
		}
	}
	if rule, ok := match(host, p.deny); ok {
		return Verdict{
			Decision: Deny,
			Rule:     rule,
			Reason:   "Host is on the denylist: " + rule,
		}
	}
	return Verdict{}
}

// match reports the first entry equal to host or a parent domain of it.
func match(host string, entries []string) (string, bool) {
	for _, e := range entries {
		if host == e || strings.HasSuffix(host, "."+e) {
			return e, true
		}
	}
	return "", false
}

func normalizeEntries(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		e = strings.TrimPrefix(e, "*.")
		e = strings.Trim(e, ".")
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
