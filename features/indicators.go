package features

import "fmt"

// Network feature names, grouped by the probe that measures them.
const (
	DNSResolutionTime = "dns_resolution_time"
	IsPrivateIP       = "is_private_ip"
	TCPConnectTime    = "tcp_connect_time"

	HasMXRecord  = "has_mx_record"
	HasTXTRecord = "has_txt_record"

	HTTPResponseTime = "http_response_time"
	HTTPStatusCode   = "http_status_code"
	ContentLength    = "content_length"
	UsesHTTPS        = "uses_https"

	DomainAgeDays = "domain_age_days"
	IsNewDomain   = "is_new_domain"
	HasRegistrar  = "has_registrar"
)

// NetworkFeatureNames lists every network field in display order.
var NetworkFeatureNames = []string{
	DNSResolutionTime, IsPrivateIP, TCPConnectTime,
	HasMXRecord, HasTXTRecord,
	HTTPResponseTime, HTTPStatusCode, ContentLength, UsesHTTPS,
	DomainAgeDays, IsNewDomain, HasRegistrar,
}

// BasicAnalysisIndicator is the only indicator reported in degraded mode.
const BasicAnalysisIndicator = "Basic URL analysis only - Network features unavailable"

// slowThreshold is the latency, in seconds, above which a lookup reads as slow.
const slowThreshold = 2.0

// Indicators turns select network fields into human-readable signals. Missing
// fields read as their failure sentinels.
func Indicators(display Vector, enhanced bool) []string {
	if !enhanced {
		return []string{BasicAnalysisIndicator}
	}

	var out []string

	dns := display.Value(DNSResolutionTime, 5)
	if dns > slowThreshold {
		out = append(out, fmt.Sprintf("Slow DNS resolution (%.2fs - potentially suspicious)", dns))
	} else {
		out = append(out, fmt.Sprintf("Fast DNS resolution (%.2fs - good sign)", dns))
	}

	tcp := display.Value(TCPConnectTime, 5)
	if tcp > slowThreshold {
		out = append(out, fmt.Sprintf("Slow TCP connection (%.2fs - potentially suspicious)", tcp))
	} else {
		out = append(out, fmt.Sprintf("Fast TCP connection (%.2fs - good sign)", tcp))
	}

	if display.Value(IsPrivateIP, 0) == 1 {
		out = append(out, "Private IP address (highly suspicious)")
	} else {
		out = append(out, "Public IP address (normal)")
	}

	if display.Value(UsesHTTPS, 0) == 0 {
		out = append(out, "No HTTPS encryption (suspicious)")
	} else {
		out = append(out, "HTTPS encryption present (good sign)")
	}

	if display.Value(IsNewDomain, 1) == 1 {
		out = append(out, "New domain (potentially suspicious)")
	} else {
		out = append(out, fmt.Sprintf("Established domain (%d days - good sign)", int(display.Value(DomainAgeDays, 0))))
	}

	if display.Value(HasMXRecord, 0) == 1 {
		out = append(out, "MX record present (typical for legitimate sites)")
	} else {
		out = append(out, "No MX record (suspicious for legitimate sites)")
	}

	return out
}
