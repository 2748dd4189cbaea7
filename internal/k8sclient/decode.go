package k8sclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// ErrInvalidManifest is returned for documents that are not Kubernetes objects.
var ErrInvalidManifest = errors.New("invalid manifest")

// DecodeManifest parses one YAML document into an object. The document must
// set apiVersion, kind and metadata.name.
func DecodeManifest(data []byte) (*unstructured.Unstructured, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
	}

	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var head struct {
		APIVersion string `json:"apiVersion"`
		Kind       string `json:"kind"`
		Metadata   struct {
			Name string `json:"name"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	switch {
	case head.APIVersion == "":
		return nil, fmt.Errorf("%w: apiVersion is required", ErrInvalidManifest)
	case head.Kind == "":
		return nil, fmt.Errorf("%w: kind is required", ErrInvalidManifest)
	case head.Metadata.Name == "":
		return nil, fmt.Errorf("%w: metadata.name is required", ErrInvalidManifest)
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return obj, nil
}
