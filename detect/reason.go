package detect

import (
	"fmt"
	"strings"

	"phishguard/classifier"
	"phishguard/features"
)

const longURLChars = 75

// buildReason lists the risk factors behind a model verdict.
func buildReason(pred classifier.Prediction, ex features.Extraction) string {
	m := ex.Model
	var reasons []string

	if v, _ := m.Get(features.HTTPSToken); v == 0 {
		reasons = append(reasons, "no HTTPS")
	}
	if v, _ := m.Get(features.LengthURL); v > longURLChars {
		reasons = append(reasons, fmt.Sprintf("long URL (%d chars)", int(v)))
	}
	if v, _ := m.Get(features.NbSubdomains); v >= 3 {
		reasons = append(reasons, fmt.Sprintf("%d subdomains", int(v)))
	}
	if v, _ := m.Get(features.PrefixSuffix); v == 1 {
		reasons = append(reasons, "hyphen in domain")
	}
	if v, _ := m.Get(features.PhishHints); v > 0 {
		reasons = append(reasons, fmt.Sprintf("%d phishing keywords", int(v)))
	}
	if v, _ := m.Get(features.SuspiciousTLD); v == 1 {
		reasons = append(reasons, "suspicious TLD")
	}

	if ex.Enhanced {
		d := ex.Display
		if d.Value(features.IsPrivateIP, 0) == 1 {
			reasons = append(reasons, "private IP address")
		}
		if d.Value(features.IsNewDomain, 1) == 1 {
			reasons = append(reasons, "new domain")
		}
		if d.Value(features.HasMXRecord, 0) == 0 {
			reasons = append(reasons, "no MX record")
		}
	}

	label := "legitimate"
	if pred.IsPhishing() {
		label = "phishing"
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("Classified %s (%s). No risk factors found", label, percent(pred.Confidence()))
	}
	return fmt.Sprintf("Classified %s (%s). Risk factors: %s", label, percent(pred.Confidence()), strings.Join(reasons, ", "))
}
