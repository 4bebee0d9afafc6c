package features

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicators_Degraded(t *testing.T) {
	got := Indicators(ExtractLexical("example.com").Vector(), false)
	assert.Equal(t, []string{BasicAnalysisIndicator}, got)
}

func TestIndicators_Sentinels(t *testing.T) {
	got := Indicators(networkSentinels(), true)

	assert.Equal(t, []string{
		"Slow DNS resolution (5.00s - potentially suspicious)",
		"Slow TCP connection (5.00s - potentially suspicious)",
		"Public IP address (normal)",
		"No HTTPS encryption (suspicious)",
		"New domain (potentially suspicious)",
		"No MX record (suspicious for legitimate sites)",
	}, got)
}

func TestIndicators_HealthySite(t *testing.T) {
	v := Vector{
		{DNSResolutionTime, 0.03}, {IsPrivateIP, 0}, {TCPConnectTime, 0.12},
		{HasMXRecord, 1}, {UsesHTTPS, 1},
		{DomainAgeDays, 9000}, {IsNewDomain, 0},
	}

	got := Indicators(v, true)

	assert.Equal(t, []string{
		"Fast DNS resolution (0.03s - good sign)",
		"Fast TCP connection (0.12s - good sign)",
		"Public IP address (normal)",
		"HTTPS encryption present (good sign)",
		"Established domain (9000 days - good sign)",
		"MX record present (typical for legitimate sites)",
	}, got)
}

func TestIndicators_PrivateIP(t *testing.T) {
	got := Indicators(Vector{{IsPrivateIP, 1}}, true)
	assert.Contains(t, got, "Private IP address (highly suspicious)")
}

func TestVector_JSONKeepsOrder(t *testing.T) {
	v := Vector{{"b", 2}, {"a", 1.5}, {"c", 0}}

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":1.5,"c":0}`, string(data))

	var back Vector
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, v.Equal(back))
}

func TestVector_Merge(t *testing.T) {
	a := Vector{{"x", 1}}
	b := Vector{{"x", 9}, {"y", 2}}

	m := a.Merge(b)

	assert.Equal(t, []string{"x", "y"}, m.Names())
	assert.Equal(t, 1.0, m.Value("x", 0))
	assert.Len(t, a, 1)
}

func TestModelVector_Row(t *testing.T) {
	m := ExtractLexical("example.com")
	row := m.Row()
	row[0] = -1
	assert.NotEqual(t, -1.0, m[0])
	assert.Len(t, row, NumModelFeatures)
}

func TestModelVector_JSONRoundTrip(t *testing.T) {
	m := ExtractLexical("https://secure-pay.example.com:8443/a-b/c.d")

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back ModelVector
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)

	assert.Error(t, json.Unmarshal([]byte(`{"length_url":3}`), &back))
}
