package probes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"phishguard/features"
)

// Options configures the default probe set.
type Options struct {
	Timeout    time.Duration // per probe
	Sequential bool          // run probes one after another
	DNSServer  string        // "host:port"; empty uses the system resolver
	MaxBody    int64         // HTTP body read cap in bytes
	Logger     *slog.Logger
}

// Set runs a fixed group of probes against one URL.
type Set struct {
	probes     []Probe
	timeout    time.Duration
	sequential bool
	logger     *slog.Logger
}

// NewSet builds the connectivity, DNS records, HTTP fetch and WHOIS probes.
func NewSet(opts Options) *Set {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewSetWith([]Probe{
		NewConnectivity(opts.DNSServer, timeout),
		NewDNSRecords(opts.DNSServer, timeout),
		NewHTTPFetch(timeout, opts.MaxBody),
		NewWhois(timeout),
	}, opts)
}

// NewSetWith builds a set from explicit probes, in display order.
func NewSetWith(probes []Probe, opts Options) *Set {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Set{
		probes:     probes,
		timeout:    timeout,
		sequential: opts.Sequential,
		logger:     logger,
	}
}

// Run probes rawURL and returns the merged network fields plus per-probe
// results. Individual probe failures are absorbed into sentinels; an error
// means the set itself could not run.
func (s *Set) Run(ctx context.Context, rawURL string) (features.Vector, []Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("probe set: %w", err)
	}
	target, err := NewTarget(rawURL)
	if err != nil {
		return nil, nil, err
	}

	results := make([]Result, len(s.probes))
	if s.sequential {
		for i, p := range s.probes {
			results[i] = Run(ctx, p, target, s.timeout)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range s.probes {
			i, p := i, p
			g.Go(func() error {
				results[i] = Run(gctx, p, target, s.timeout)
				return nil
			})
		}
		_ = g.Wait()
	}

	var merged features.Vector
	for _, r := range results {
		if r.Measured {
			s.logger.Debug("probe measured", "probe", r.Probe, "host", target.Host, "elapsed", r.Elapsed)
		} else {
			s.logger.Info("probe fell back to sentinels", "probe", r.Probe, "host", target.Host, "reason", r.Reason, "elapsed", r.Elapsed)
		}
		merged = merged.Merge(r.Fields)
	}
	return merged, results, nil
}

// Extract implements features.NetworkExtractor.
func (s *Set) Extract(ctx context.Context, rawURL string) (features.Vector, []features.ProbeOutcome, error) {
	v, results, err := s.Run(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	outcomes := make([]features.ProbeOutcome, len(results))
	for i, r := range results {
		outcomes[i] = r.Outcome()
	}
	return v, outcomes, nil
}

// FieldNames lists the fields the set contributes, in order.
func (s *Set) FieldNames() []string {
	var names []string
	for _, p := range s.probes {
		names = append(names, p.Sentinel().Names()...)
	}
	return names
}
