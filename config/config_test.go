package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var allKeys = []string{
	"PHISHGUARD_PORT", "PORT", "PHISHGUARD_MODEL_PATH", "PHISHGUARD_MODEL_FORMAT",
	"PHISHGUARD_ONNX_LIB", "PHISHGUARD_PROBE_TIMEOUT", "PHISHGUARD_PROBE_SEQUENTIAL",
	"PHISHGUARD_DNS_SERVER", "PHISHGUARD_HTTP_MAX_BODY", "PHISHGUARD_POLICY_PATH",
	"GEMINI_API_KEY", "PHISHGUARD_GEMINI_MODEL", "PHISHGUARD_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "model/phishing_xgb.model", cfg.Model.Path)
	assert.Equal(t, "xgboost", cfg.Model.Format)
	assert.Empty(t, cfg.Model.ONNXLib)
	assert.Equal(t, 5*time.Second, cfg.Probes.Timeout)
	assert.False(t, cfg.Probes.Sequential)
	assert.Empty(t, cfg.Probes.DNSServer)
	assert.Equal(t, int64(10<<20), cfg.Probes.MaxBody)
	assert.Empty(t, cfg.Policy.Path)
	assert.Empty(t, cfg.Narrator.APIKey)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("PHISHGUARD_MODEL_FORMAT", "onnx")
	t.Setenv("PHISHGUARD_PROBE_TIMEOUT", "1500ms")
	t.Setenv("PHISHGUARD_PROBE_SEQUENTIAL", "true")
	t.Setenv("PHISHGUARD_DNS_SERVER", "1.1.1.1:53")
	t.Setenv("PHISHGUARD_HTTP_MAX_BODY", "4096")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "onnx", cfg.Model.Format)
	assert.Equal(t, 1500*time.Millisecond, cfg.Probes.Timeout)
	assert.True(t, cfg.Probes.Sequential)
	assert.Equal(t, "1.1.1.1:53", cfg.Probes.DNSServer)
	assert.Equal(t, int64(4096), cfg.Probes.MaxBody)
	assert.Equal(t, "secret", cfg.Narrator.APIKey)

	t.Setenv("PHISHGUARD_PORT", "7000")
	assert.Equal(t, "7000", Load().Server.Port)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHISHGUARD_PROBE_TIMEOUT", "soon")
	t.Setenv("PHISHGUARD_PROBE_SEQUENTIAL", "maybe")
	t.Setenv("PHISHGUARD_HTTP_MAX_BODY", "-1")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.Probes.Timeout)
	assert.False(t, cfg.Probes.Sequential)
	assert.Equal(t, int64(10<<20), cfg.Probes.MaxBody)
}
