package controlplane

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRegionMissing is returned when install_stack.outputs.region is absent.
var ErrRegionMissing = errors.New("region not found in install state (install_stack.outputs.region)")

// InstallState is the raw infrastructure outputs document.
type InstallState struct {
	Raw map[string]any
}

// KarpenterOutputs describes the autoscaler installed by the sandbox.
type KarpenterOutputs struct {
	ClusterName     string          `json:"cluster_name"`
	DiscoveryKey    string          `json:"discovery_key"`
	DiscoveryValue  string          `json:"discovery_value"`
	InstanceProfile InstanceProfile `json:"instance_profile"`
	NodeRoleName    string          `json:"node_role_name"`
}

// InstanceProfile is the IAM instance profile nodes launch with.
type InstanceProfile struct {
	Name string `json:"name"`
	ARN  string `json:"arn"`
}

// ImageOutputs are the outputs of an image build component.
type ImageOutputs struct {
	Image ImageRef `json:"image"`
}

// ImageRef locates a container image.
type ImageRef struct {
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
	Digest     string `json:"digest"`
}

// String formats the reference, preferring the digest over the tag.
func (r ImageRef) String() string {
	switch {
	case r.Repository == "":
		return ""
	case r.Digest != "":
		return r.Repository + "@" + r.Digest
	case r.Tag != "":
		return r.Repository + ":" + r.Tag
	default:
		return r.Repository
	}
}

// InfraOutputs are the typed values manifests are rendered from.
type InfraOutputs struct {
	Region         string           `json:"region"`
	Karpenter      KarpenterOutputs `json:"karpenter"`
	KeeperImage    ImageOutputs     `json:"keeper_image"`
	ServerImage    ImageOutputs     `json:"server_image"`
	PublicDomain   string           `json:"public_domain"`
	CertificateARN string           `json:"certificate_arn"`
}

// Outputs extracts the typed outputs. Only the region is mandatory; other
// paths decode to zero values when absent.
func (s *InstallState) Outputs() (*InfraOutputs, error) {
	if s == nil {
		return nil, ErrRegionMissing
	}

	region, _ := lookup(s.Raw, "install_stack", "outputs", "region").(string)
	if region == "" {
		return nil, ErrRegionMissing
	}

	out := &InfraOutputs{Region: region}
	out.PublicDomain, _ = lookup(s.Raw, "sandbox", "outputs", "nuon_dns", "public_domain", "name").(string)
	out.CertificateARN, _ = lookup(s.Raw, "components", "certificate", "outputs", "arn").(string)

	if err := decodeInto(lookup(s.Raw, "sandbox", "outputs", "karpenter"), &out.Karpenter); err != nil {
		return nil, fmt.Errorf("decode karpenter outputs: %w", err)
	}
	if err := decodeInto(lookup(s.Raw, "components", "img_clickhouse_keeper", "outputs"), &out.KeeperImage); err != nil {
		return nil, fmt.Errorf("decode keeper image outputs: %w", err)
	}
	if err := decodeInto(lookup(s.Raw, "components", "img_clickhouse_server", "outputs"), &out.ServerImage); err != nil {
		return nil, fmt.Errorf("decode server image outputs: %w", err)
	}

	return out, nil
}

// lookup walks nested objects and returns nil when any step is missing.
func lookup(doc map[string]any, path ...string) any {
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func decodeInto(v any, dst any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
