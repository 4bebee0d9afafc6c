package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all phishguard configuration.
type Config struct {
	Server   ServerConfig
	Model    ModelConfig
	Probes   ProbeConfig
	Policy   PolicyConfig
	Narrator NarratorConfig
	LogLevel string
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port string
}

// ModelConfig selects the classifier artifact.
type ModelConfig struct {
	Path    string
	Format  string // "xgboost" or "onnx"
	ONNXLib string // empty means libonnxruntime.so next to the model
}

// ProbeConfig bounds network enrichment.
type ProbeConfig struct {
	Timeout    time.Duration
	Sequential bool
	DNSServer  string
	MaxBody    int64
}

// PolicyConfig points at the allow/deny list file.
type PolicyConfig struct {
	Path string
}

// NarratorConfig enables LLM explanations.
type NarratorConfig struct {
	APIKey string
	Model  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getenv("PHISHGUARD_PORT", getenv("PORT", "8080")),
		},
		Model: ModelConfig{
			Path:    getenv("PHISHGUARD_MODEL_PATH", "model/phishing_xgb.model"),
			Format:  getenv("PHISHGUARD_MODEL_FORMAT", "xgboost"),
			ONNXLib: os.Getenv("PHISHGUARD_ONNX_LIB"),
		},
		Probes: ProbeConfig{
			Timeout:    getenvDuration("PHISHGUARD_PROBE_TIMEOUT", 5*time.Second),
			Sequential: getenvBool("PHISHGUARD_PROBE_SEQUENTIAL", false),
			DNSServer:  os.Getenv("PHISHGUARD_DNS_SERVER"),
			MaxBody:    getenvInt("PHISHGUARD_HTTP_MAX_BODY", 10<<20),
		},
		Policy: PolicyConfig{
			Path: os.Getenv("PHISHGUARD_POLICY_PATH"),
		},
		Narrator: NarratorConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  os.Getenv("PHISHGUARD_GEMINI_MODEL"),
		},
		LogLevel: getenv("PHISHGUARD_LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
