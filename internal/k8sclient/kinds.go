package k8sclient

import "strings"

// Kinds with dedicated handling.
const (
	KindNamespace    = "Namespace"
	KindService      = "Service"
	KindSecret       = "Secret"
	KindIngress      = "Ingress"
	KindEC2NodeClass = "EC2NodeClass"
	KindNodePool     = "NodePool"
	KindCHI          = "ClickHouseInstallation"
	KindCHK          = "ClickHouseKeeperInstallation"
)

type kindInfo struct {
	typed         bool
	clusterScoped bool
	plural        string
}

var kinds = map[string]kindInfo{
	KindNamespace:    {typed: true, clusterScoped: true, plural: "namespaces"},
	KindService:      {typed: true, plural: "services"},
	KindSecret:       {typed: true, plural: "secrets"},
	KindIngress:      {typed: true, plural: "ingresses"},
	KindEC2NodeClass: {clusterScoped: true, plural: "ec2nodeclasses"},
	KindNodePool:     {clusterScoped: true, plural: "nodepools"},
	KindCHI:          {plural: "clickhouseinstallations"},
	KindCHK:          {plural: "clickhousekeeperinstallations"},
}

// lookupKind returns the handling for kind. Unknown kinds are namespaced
// custom resources whose plural is the lower-cased kind plus "s".
func lookupKind(kind string) kindInfo {
	if info, ok := kinds[kind]; ok {
		return info
	}
	return kindInfo{plural: strings.ToLower(kind) + "s"}
}

// IsClusterScoped reports whether objects of kind live outside namespaces.
func IsClusterScoped(kind string) bool {
	return lookupKind(kind).clusterScoped
}
