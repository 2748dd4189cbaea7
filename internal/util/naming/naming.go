package naming

import "fmt"

// CredentialSecret is the name of the per-namespace Secret holding the
// generated ClickHouse username and password.
const CredentialSecret = "clickhouse-cluster-pw"

func Namespace(slug string) string {
	return slug
}

func NodeClass(slug string) string {
	return fmt.Sprintf("ch-%s", slug)
}

func NodePool(slug string) string {
	return fmt.Sprintf("ch-%s", slug)
}

func Installation(slug string) string {
	return slug
}

func Keeper(slug string) string {
	return fmt.Sprintf("%s-keeper", slug)
}

func Service(slug string) string {
	return fmt.Sprintf("clickhouse-%s", slug)
}

func Ingress(slug string) string {
	return fmt.Sprintf("clickhouse-%s", slug)
}

// PublicHostname returns the DNS name a public ingress is exposed under.
// An empty domain yields an empty hostname.
func PublicHostname(slug, domain string) string {
	if domain == "" {
		return ""
	}
	return fmt.Sprintf("%s.%s", slug, domain)
}

// TailnetHostname returns the machine name requested from the tailnet operator.
func TailnetHostname(slug string) string {
	return fmt.Sprintf("clickhouse-%s", slug)
}
