package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvAPIURL         = "ACME_CH_API_URL"
	EnvAPIToken       = "ACME_CH_API_TOKEN"
	EnvOrgID          = "ACME_CH_ORG_ID"
	EnvInCluster      = "IN_CLUSTER"
	EnvKubeconfig     = "KUBECONFIG"
	EnvArchiveBucket  = "ACME_CH_ARCHIVE_BUCKET"
	EnvArchivePrefix  = "ACME_CH_ARCHIVE_PREFIX"
	EnvArchiveRegion  = "ACME_CH_ARCHIVE_REGION"
	EnvArchiveEndpt   = "ACME_CH_ARCHIVE_ENDPOINT"
	EnvArchiveKey     = "ACME_CH_ARCHIVE_ACCESS_KEY"
	EnvArchiveSecret  = "ACME_CH_ARCHIVE_SECRET_KEY"
	EnvPushgatewayURL = "ACME_CH_PUSHGATEWAY_URL"
	EnvDebug          = "ACME_CH_DEBUG"
)

// Load builds the configuration. When path is non-empty the YAML file is read
// first; environment variables override file values. Load does not validate.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	applyEnv(cfg)

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.Timeouts = LoadTimeouts()

	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.APIURL, EnvAPIURL)
	overrideString(&cfg.APIToken, EnvAPIToken)
	overrideString(&cfg.OrgID, EnvOrgID)
	overrideString(&cfg.Kubeconfig, EnvKubeconfig)
	overrideString(&cfg.Archive.Bucket, EnvArchiveBucket)
	overrideString(&cfg.Archive.Prefix, EnvArchivePrefix)
	overrideString(&cfg.Archive.Region, EnvArchiveRegion)
	overrideString(&cfg.Archive.Endpoint, EnvArchiveEndpt)
	overrideString(&cfg.Archive.AccessKey, EnvArchiveKey)
	overrideString(&cfg.Archive.SecretKey, EnvArchiveSecret)
	overrideString(&cfg.PushgatewayURL, EnvPushgatewayURL)

	if v, ok := os.LookupEnv(EnvInCluster); ok {
		cfg.InCluster = parseBool(v)
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		cfg.Debug = parseBool(v)
	}
}

func overrideString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

// parseBool accepts true, 1 and yes in any case.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
