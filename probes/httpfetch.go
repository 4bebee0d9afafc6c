package probes

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"phishguard/features"
)

// DefaultMaxBody caps how much of a response body is read and counted.
const DefaultMaxBody = 10 << 20

const userAgent = "phishguard/1.0 (+url-analysis)"

// HTTPFetch downloads the URL and records latency, status and body size.
type HTTPFetch struct {
	Client  *http.Client
	MaxBody int64
}

// NewHTTPFetch builds the probe. Certificates are not verified: phishing
// sites with broken TLS must still be measurable.
func NewHTTPFetch(timeout time.Duration, maxBody int64) *HTTPFetch {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return &HTTPFetch{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		MaxBody: maxBody,
	}
}

func (h *HTTPFetch) Name() string { return "http_fetch" }

func (h *HTTPFetch) Sentinel() features.Vector {
	return features.Vector{
		{Name: features.HTTPResponseTime, Value: 5.0},
		{Name: features.HTTPStatusCode, Value: 0},
		{Name: features.ContentLength, Value: 0},
		{Name: features.UsesHTTPS, Value: 0},
	}
}

func (h *HTTPFetch) Measure(ctx context.Context, t Target) (features.Vector, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.URL, err)
	}
	defer resp.Body.Close()

	limit := h.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", t.URL, err)
	}
	elapsed := time.Since(start)

	return features.Vector{
		{Name: features.HTTPResponseTime, Value: seconds(elapsed)},
		{Name: features.HTTPStatusCode, Value: float64(resp.StatusCode)},
		{Name: features.ContentLength, Value: float64(n)},
		{Name: features.UsesHTTPS, Value: flag(t.Scheme == "https")},
	}, nil
}
