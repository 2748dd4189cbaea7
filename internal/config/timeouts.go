package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the outbound call bounds and the status push retry budget.
type Timeouts struct {
	HTTP                    time.Duration // Control-plane request timeout
	Kube                    time.Duration // Kubernetes API request timeout
	StatusRetryMaxAttempts  int           // Attempts for a status push, including the first
	StatusRetryInitialDelay time.Duration // Delay before the second status push attempt
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - ACME_CH_TIMEOUT_HTTP (default: 30s)
//   - ACME_CH_TIMEOUT_KUBE (default: 30s)
//   - ACME_CH_STATUS_RETRY_MAX_ATTEMPTS (default: 2)
//   - ACME_CH_STATUS_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		HTTP:                    parseDuration("ACME_CH_TIMEOUT_HTTP", 30*time.Second),
		Kube:                    parseDuration("ACME_CH_TIMEOUT_KUBE", 30*time.Second),
		StatusRetryMaxAttempts:  parseInt("ACME_CH_STATUS_RETRY_MAX_ATTEMPTS", 2),
		StatusRetryInitialDelay: parseDuration("ACME_CH_STATUS_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a positive duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}

	return i
}
