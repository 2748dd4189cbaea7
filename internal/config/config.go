package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Config is the agent configuration.
type Config struct {
	APIURL         string        `yaml:"api_url"`
	APIToken       string        `yaml:"api_token"`
	OrgID          string        `yaml:"org_id"`
	InCluster      bool          `yaml:"in_cluster"`
	Kubeconfig     string        `yaml:"kubeconfig"`
	Archive        ArchiveConfig `yaml:"archive"`
	PushgatewayURL string        `yaml:"pushgateway_url"`
	Debug          bool          `yaml:"debug"`

	Timeouts *Timeouts `yaml:"-"`
}

// ArchiveConfig configures the optional S3 archive of rendered manifests.
// Static keys are optional; the default AWS credential chain is used otherwise.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Enabled reports whether a bucket is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// MissingError lists every required setting that is unset.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Vars, ", "))
}

// Validate checks that the control-plane settings are present.
// All missing variables are reported in one error.
func (c *Config) Validate() error {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, EnvAPIURL)
	}
	if c.APIToken == "" {
		missing = append(missing, EnvAPIToken)
	}
	if c.OrgID == "" {
		missing = append(missing, EnvOrgID)
	}
	if len(missing) > 0 {
		return &MissingError{Vars: missing}
	}

	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvAPIURL, c.APIURL, err)
	}
	if c.Archive.Enabled() && c.Archive.Region == "" {
		return fmt.Errorf("%s is required when %s is set", EnvArchiveRegion, EnvArchiveBucket)
	}
	return nil
}

// OrgURL is the organization document endpoint.
func (c *Config) OrgURL() string {
	return c.APIURL + "/api/orgs/" + url.PathEscape(c.OrgID)
}

// InstallURL is the install document endpoint.
func (c *Config) InstallURL() string {
	return c.OrgURL() + "/install"
}

// InstallStateURL is the infrastructure outputs endpoint.
func (c *Config) InstallStateURL() string {
	return c.OrgURL() + "/install-state"
}

// ClustersURL lists the organization's ClickHouse clusters.
func (c *Config) ClustersURL() string {
	return c.OrgURL() + "/ch-clusters"
}

// ClusterURL addresses a single cluster.
func (c *Config) ClusterURL(id string) string {
	return c.ClustersURL() + "/" + url.PathEscape(id)
}

// ClusterStatusURL is where reconcile outcomes are posted.
func (c *Config) ClusterStatusURL(id string) string {
	return c.ClusterURL(id) + "/update-status"
}

// Redacted returns a copy safe for printing.
func (c *Config) Redacted() Config {
	out := *c
	out.APIToken = redact(c.APIToken)
	out.Archive.AccessKey = redact(c.Archive.AccessKey)
	out.Archive.SecretKey = redact(c.Archive.SecretKey)
	if c.Timeouts != nil {
		t := *c.Timeouts
		out.Timeouts = &t
	}
	return out
}

// redact keeps only the last four characters.
func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
