// Package probes measures network-level signals for a URL. Every probe is a
// total function: when a measurement cannot be taken it reports the probe's
// documented sentinel values together with the reason.
package probes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phishguard/features"
)

// DefaultTimeout bounds each individual probe.
const DefaultTimeout = 5 * time.Second

var (
	errNoHost              = errors.New("url has no host")
	errNoRegistrableDomain = errors.New("host has no registrable domain")
)

// Target is the parsed form of the URL every probe works from.
type Target struct {
	URL    string // normalized URL
	Scheme string
	Host   string // hostname without port
	Domain string // registrable domain, empty for IP literals
	IP     bool
}

// NewTarget normalizes raw and fails only when there is no host to probe.
func NewTarget(raw string) (Target, error) {
	p := features.ParseURL(raw)
	if p.Host == "" {
		return Target{}, fmt.Errorf("probe target %q: %w", raw, errNoHost)
	}
	return Target{
		URL:    p.URL,
		Scheme: p.Scheme,
		Host:   p.Host,
		Domain: p.RegistrableDomain(),
		IP:     p.IP,
	}, nil
}

// Probe measures one group of network fields.
type Probe interface {
	// Name identifies the probe in logs and results.
	Name() string
	// Sentinel returns the full fallback mapping, in field order.
	Sentinel() features.Vector
	// Measure takes a live measurement. It may fail; Run absorbs the failure.
	Measure(ctx context.Context, t Target) (features.Vector, error)
}

// Result is the outcome of one probe: either every field measured, or the
// full sentinel mapping with the reason it was used.
type Result struct {
	Probe    string          `json:"probe"`
	Fields   features.Vector `json:"fields"`
	Measured bool            `json:"measured"`
	Reason   string          `json:"reason,omitempty"`
	Err      error           `json:"-"`
	Elapsed  time.Duration   `json:"elapsed_ns"`
}

// Outcome drops the measured values, keeping what happened.
func (r Result) Outcome() features.ProbeOutcome {
	return features.ProbeOutcome{
		Probe:    r.Probe,
		Measured: r.Measured,
		Reason:   r.Reason,
		Elapsed:  r.Elapsed,
	}
}

func measured(name string, v features.Vector, elapsed time.Duration) Result {
	return Result{Probe: name, Fields: v, Measured: true, Elapsed: elapsed}
}

func sentinel(p Probe, err error, elapsed time.Duration) Result {
	return Result{
		Probe:   p.Name(),
		Fields:  p.Sentinel(),
		Reason:  err.Error(),
		Err:     err,
		Elapsed: elapsed,
	}
}

// Run executes p under its own timeout. It never fails and never returns a
// partially filled mapping, even if the probe ignores its context or panics.
func Run(ctx context.Context, p Probe, t Target, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		v   features.Vector
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%s probe panicked: %v", p.Name(), r)}
			}
		}()
		v, err := p.Measure(ctx, t)
		done <- outcome{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return sentinel(p, fmt.Errorf("%s probe: %w", p.Name(), ctx.Err()), time.Since(start))
	case o := <-done:
		elapsed := time.Since(start)
		if o.err != nil {
			return sentinel(p, o.err, elapsed)
		}
		v, err := complete(p.Sentinel(), o.v)
		if err != nil {
			return sentinel(p, fmt.Errorf("%s probe: %w", p.Name(), err), elapsed)
		}
		return measured(p.Name(), v, elapsed)
	}
}

// complete reorders a measurement into sentinel field order and rejects
// measurements with missing or unexpected fields.
func complete(want, got features.Vector) (features.Vector, error) {
	if len(got) != len(want) {
		return nil, fmt.Errorf("measured %d fields, want %d", len(got), len(want))
	}
	out := make(features.Vector, 0, len(want))
	for _, f := range want {
		x, ok := got.Get(f.Name)
		if !ok {
			return nil, fmt.Errorf("measurement missing %s", f.Name)
		}
		out = append(out, features.Field{Name: f.Name, Value: x})
	}
	return out, nil
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
