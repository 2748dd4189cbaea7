package controlplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/config"
)

const defaultTimeout = 30 * time.Second

// Client talks to the control-plane API of one organization.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the configured organization. Requests are
// bounded by the configured HTTP timeout.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.Timeouts != nil && cfg.Timeouts.HTTP > 0 {
		timeout = cfg.Timeouts.HTTP
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrganization fetches the organization document.
func (c *Client) GetOrganization(ctx context.Context) (*Organization, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, c.cfg.OrgURL(), &raw); err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}

	org := &Organization{Raw: raw}
	if err := decodeInto(raw, org); err != nil {
		return nil, fmt.Errorf("parse organization: %w", err)
	}
	return org, nil
}

// GetInstall fetches the install document, used for diagnostics only.
func (c *Client) GetInstall(ctx context.Context) (map[string]any, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, c.cfg.InstallURL(), &raw); err != nil {
		return nil, fmt.Errorf("get install: %w", err)
	}
	return raw, nil
}

// GetInstallState fetches the infrastructure outputs document.
func (c *Client) GetInstallState(ctx context.Context) (*InstallState, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, c.cfg.InstallStateURL(), &raw); err != nil {
		return nil, fmt.Errorf("get install state: %w", err)
	}
	return &InstallState{Raw: raw}, nil
}

// GetClusters lists the organization's clusters. With a non-empty id only
// that cluster is fetched and returned as a single-element list.
func (c *Client) GetClusters(ctx context.Context, id string) ([]ClusterSpec, error) {
	endpoint := c.cfg.ClustersURL()
	if id != "" {
		endpoint = c.cfg.ClusterURL(id)
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("get clusters: %w", err)
	}

	clusters, err := parseClusters(raw)
	if err != nil {
		return nil, fmt.Errorf("parse clusters: %w", err)
	}
	return clusters, nil
}

// UpdateClusterStatus posts a reconcile outcome for one cluster.
func (c *Client) UpdateClusterStatus(ctx context.Context, id string, update StatusUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.ClusterStatusURL(id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("update cluster %s status: %w", id, err)
	}
	return nil
}

// parseClusters accepts a JSON array, a paginated {"results": [...]}
// document or a single cluster object.
func parseClusters(raw json.RawMessage) ([]ClusterSpec, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []ClusterSpec
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var page struct {
		Results *[]ClusterSpec `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	if page.Results != nil {
		return *page.Results, nil
	}

	var one ClusterSpec
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []ClusterSpec{one}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	logger := log.FromContext(req.Context())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	logger.V(1).Info("control plane request", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}
	return nil
}
