package render

import (
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/util/keygen"
	"github.com/acmech/dataplane/internal/util/labels"
	"github.com/acmech/dataplane/internal/util/naming"
)

// templateData is the context every template executes against.
type templateData struct {
	Cluster     controlplane.ClusterSpec
	Org         controlplane.Organization
	Region      string
	Credentials *keygen.Credentials

	Names     names
	Karpenter karpenter
	Images    images
	Ingress   ingress

	Labels       []labels.Pair
	ServerLabels []labels.Pair
	KeeperLabels []labels.Pair
}

type names struct {
	Namespace    string
	NodeClass    string
	NodePool     string
	Secret       string
	Installation string
	Keeper       string
	Service      string
	Ingress      string
}

type karpenter struct {
	InstanceProfile string
	Role            string
	DiscoveryKey    string
	DiscoveryValue  string
}

type images struct {
	Server string
	Keeper string
}

type ingress struct {
	PublicHost     string
	TailnetHost    string
	CertificateARN string
}

func newTemplateData(in Input) *templateData {
	slug := in.Cluster.Namespace()
	k := in.Infra.Karpenter

	base := func() *labels.LabelBuilder {
		return labels.NewLabelBuilder(slug).
			WithOrg(in.Org.ID).
			WithCluster(in.Cluster.ID).
			WithClusterType(string(in.Cluster.ClusterType))
	}

	d := &templateData{
		Cluster:     in.Cluster,
		Org:         in.Org,
		Region:      in.Infra.Region,
		Credentials: in.Credentials,
		Names: names{
			Namespace:    naming.Namespace(slug),
			NodeClass:    naming.NodeClass(slug),
			NodePool:     naming.NodePool(slug),
			Secret:       naming.CredentialSecret,
			Installation: naming.Installation(slug),
			Keeper:       naming.Keeper(slug),
			Service:      naming.Service(slug),
			Ingress:      naming.Ingress(slug),
		},
		Karpenter: karpenter{
			InstanceProfile: k.InstanceProfile.Name,
			Role:            k.NodeRoleName,
			DiscoveryKey:    firstNonEmpty(k.DiscoveryKey, defaultDiscoveryKey),
			DiscoveryValue:  firstNonEmpty(k.DiscoveryValue, k.ClusterName),
		},
		Images: images{
			Server: firstNonEmpty(in.Infra.ServerImage.Image.String(), defaultServerImage),
			Keeper: firstNonEmpty(in.Infra.KeeperImage.Image.String(), defaultKeeperImage),
		},
		Ingress: ingress{
			PublicHost:     naming.PublicHostname(slug, in.Infra.PublicDomain),
			TailnetHost:    naming.TailnetHostname(slug),
			CertificateARN: in.Infra.CertificateARN,
		},
		Labels:       base().Sorted(),
		ServerLabels: base().WithComponent(labels.ComponentServer).Sorted(),
		KeeperLabels: base().WithComponent(labels.ComponentKeeper).Sorted(),
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
