package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/util/keygen"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

// Template file names.
const (
	TemplateNamespace     = "namespace.yaml"
	TemplateNodeClass     = "ec2nodeclass.yaml"
	TemplateNodePool      = "nodepool.yaml"
	TemplateSecret        = "secret.yaml"
	TemplateCHISingleNode = "chi-single-node.yaml"
	TemplateCHICluster    = "chi-cluster.yaml"
	TemplateCHK           = "chk.yaml"
	TemplateService       = "service.yaml"
	TemplateIngressPublic = "ingress-public.yaml"
	TemplateIngressTail   = "ingress-tailnet.yaml"
)

const (
	defaultDiscoveryKey = "karpenter.sh/discovery"
	defaultServerImage  = "clickhouse/clickhouse-server:25.3"
	defaultKeeperImage  = "clickhouse/clickhouse-keeper:25.3"
)

// Input is everything a cluster's manifests are rendered from.
// Credentials is nil when the credential secret already exists.
type Input struct {
	Cluster     controlplane.ClusterSpec
	Org         controlplane.Organization
	Infra       controlplane.InfraOutputs
	Credentials *keygen.Credentials
}

// Manifest is one rendered YAML document.
type Manifest struct {
	Template string
	Data     []byte
}

// Renderer executes the manifest templates.
type Renderer struct {
	fsys  fs.FS
	funcs template.FuncMap
}

// New returns a renderer over the embedded templates.
func New() *Renderer {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return NewRenderer(sub)
}

// NewRenderer returns a renderer reading templates from the root of fsys.
func NewRenderer(fsys fs.FS) *Renderer {
	funcs := sprig.TxtFuncMap()
	funcs["required"] = required
	return &Renderer{fsys: fsys, funcs: funcs}
}

// Plan returns the template names Render would execute, in order.
func Plan(cluster controlplane.ClusterSpec, withCredentials bool) ([]string, error) {
	names := []string{TemplateNamespace, TemplateNodeClass, TemplateNodePool}

	if withCredentials && cluster.ClusterType.NeedsCredentials() {
		names = append(names, TemplateSecret)
	}

	switch cluster.ClusterType {
	case controlplane.ClusterTypeSingleNode:
		names = append(names, TemplateCHISingleNode)
	case controlplane.ClusterTypeKeeper:
		names = append(names, TemplateCHK)
	case controlplane.ClusterTypeCluster:
		names = append(names, TemplateCHICluster, TemplateCHK)
	default:
		return nil, &Error{Err: fmt.Errorf("%w %q: expected single_node, keeper or cluster", ErrUnknownClusterType, cluster.ClusterType)}
	}

	names = append(names, TemplateService)

	switch cluster.IngressType {
	case controlplane.IngressNone, "":
	case controlplane.IngressPublic:
		names = append(names, TemplateIngressPublic)
	case controlplane.IngressTailnet:
		names = append(names, TemplateIngressTail)
	default:
		return nil, &Error{Err: fmt.Errorf("%w %q: expected none, public or tailnet", ErrUnknownIngressType, cluster.IngressType)}
	}

	return names, nil
}

// Render produces the cluster's manifests in apply order.
func (r *Renderer) Render(in Input) ([]Manifest, error) {
	names, err := Plan(in.Cluster, in.Credentials != nil)
	if err != nil {
		return nil, err
	}

	data := newTemplateData(in)
	manifests := make([]Manifest, 0, len(names))
	for _, name := range names {
		out, err := r.execute(name, data)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, Manifest{Template: name, Data: out})
	}
	return manifests, nil
}

func (r *Renderer) execute(name string, data *templateData) ([]byte, error) {
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Template: name, Err: ErrTemplateNotFound}
		}
		return nil, &Error{Template: name, Err: err}
	}

	tmpl, err := template.New(name).Funcs(r.funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, &Error{Template: name, Err: fmt.Errorf("parse: %w", err)}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &Error{Template: name, Err: err}
	}

	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil, &Error{Template: name, Err: errors.New("rendered an empty document")}
	}
	return []byte(out + "\n"), nil
}

// Join concatenates manifests into one multi-document YAML stream.
func Join(manifests []Manifest) []byte {
	var buf bytes.Buffer
	for _, m := range manifests {
		appendYAML(&buf, m.Data)
	}
	return buf.Bytes()
}

func appendYAML(buffer *bytes.Buffer, content []byte) {
	if buffer.Len() > 0 {
		buffer.WriteString("---\n")
	}
	buffer.Write(content)
}

// required fails the template when val is empty.
func required(msg string, val any) (any, error) {
	switch v := val.(type) {
	case nil:
		return nil, errors.New(msg)
	case string:
		if v == "" {
			return nil, errors.New(msg)
		}
	}
	return val, nil
}
