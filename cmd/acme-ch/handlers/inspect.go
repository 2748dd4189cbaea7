package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	"github.com/acmech/dataplane/internal/controlplane"
)

// GetOrg prints the organization document.
func GetOrg(ctx context.Context, configPath, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	cfg, err := loadValidConfig(configPath)
	if err != nil {
		return err
	}

	org, err := newControlPlane(cfg).GetOrganization(ctx)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}

	if output == OutputJSON {
		return writeJSON(stdout, org.Raw)
	}
	printOrg(org)
	return nil
}

// printOrg shows the scalar fields of the organization, one per row.
func printOrg(org *controlplane.Organization) {
	st := newStyles()
	fmt.Fprintln(stdout, st.title.Render("Organization Details"))

	keys := make([]string, 0, len(org.Raw))
	for k, v := range org.Raw {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &table{headers: []string{"FIELD", "VALUE"}}
	for _, k := range keys {
		t.add(displayKey(k), fmt.Sprint(org.Raw[k]))
	}
	t.render(stdout, st, nil)
}

// displayKey turns "created_at" into "Created At".
func displayKey(k string) string {
	words := strings.Split(k, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// GetClusters prints the desired clusters.
func GetClusters(ctx context.Context, configPath, clusterID, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	cfg, err := loadValidConfig(configPath)
	if err != nil {
		return err
	}

	clusters, err := newControlPlane(cfg).GetClusters(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("failed to get clusters: %w", err)
	}

	if output == OutputJSON {
		if clusters == nil {
			clusters = []controlplane.ClusterSpec{}
		}
		return writeJSON(stdout, clusters)
	}
	if len(clusters) == 0 {
		fmt.Fprintln(stdout, "No ClickHouse clusters found")
		return nil
	}

	st := newStyles()
	t := &table{headers: []string{"ID", "NAME", "SLUG", "TYPE", "INGRESS", "STATUS"}}
	for _, c := range clusters {
		t.add(c.ID, c.Name, c.Slug, string(c.ClusterType), string(c.IngressType), c.Status.String())
	}
	t.render(stdout, st, nil)
	fmt.Fprintf(stdout, "\nTotal: %d cluster(s)\n", len(clusters))
	return nil
}

// DebugState dumps the install state and the outputs extracted from it,
// optionally preceded by the install document.
func DebugState(ctx context.Context, configPath string, withInstall bool) error {
	cfg, err := loadValidConfig(configPath)
	if err != nil {
		return err
	}
	cp := newControlPlane(cfg)

	if withInstall {
		install, err := cp.GetInstall(ctx)
		if err != nil {
			return fmt.Errorf("failed to get install: %w", err)
		}
		raw, err := yaml.Marshal(install)
		if err != nil {
			return fmt.Errorf("failed to marshal install: %w", err)
		}
		fmt.Fprintln(stdout, "# Install")
		fmt.Fprint(stdout, string(raw))
		fmt.Fprintln(stdout, "---")
	}

	state, err := cp.GetInstallState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get install state: %w", err)
	}

	raw, err := yaml.Marshal(state.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal install state: %w", err)
	}
	fmt.Fprintln(stdout, "# Full install state")
	fmt.Fprint(stdout, string(raw))

	fmt.Fprintln(stdout, "---")
	fmt.Fprintln(stdout, "# Extracted outputs")
	infra, err := state.Outputs()
	if err != nil {
		fmt.Fprintf(stdout, "# error: %v\n", err)
		return err
	}
	out, err := yaml.Marshal(infra)
	if err != nil {
		return fmt.Errorf("failed to marshal outputs: %w", err)
	}
	fmt.Fprint(stdout, string(out))
	return nil
}

// ConfigInfo prints the effective configuration with secrets redacted.
// Missing required settings are reported as a warning, not an error.
func ConfigInfo(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	redacted := cfg.Redacted()
	out, err := yamlv3.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(stdout, string(out))

	if t := redacted.Timeouts; t != nil {
		fmt.Fprintf(stdout, "timeouts:\n  http: %s\n  kube: %s\n  status_retry_max_attempts: %d\n  status_retry_initial_delay: %s\n",
			t.HTTP, t.Kube, t.StatusRetryMaxAttempts, t.StatusRetryInitialDelay)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "# warning: %v\n", err)
	}
	return nil
}
