// Package offline keeps the edge usable without its backend: a versioned
// cache lifecycle and the per-request dispatch strategies built on it.
package offline

import "strings"

// Namespace kinds. Each cache version owns one namespace of each kind.
const (
	KindShell   = "shell"
	KindRuntime = "runtime"
	KindAPI     = "api"
)

var kinds = []string{KindShell, KindRuntime, KindAPI}

// NamespaceName builds the namespace identifier for kind at version.
func NamespaceName(prefix, kind, version string) string {
	return prefix + "-" + kind + "-" + version
}

// ParseNamespace splits a namespace identifier built by NamespaceName.
// Identifiers belonging to another prefix, or of an unknown kind, report false.
func ParseNamespace(prefix, name string) (kind, version string, ok bool) {
	rest, found := strings.CutPrefix(name, prefix+"-")
	if !found {
		return "", "", false
	}
	for _, k := range kinds {
		if v, found := strings.CutPrefix(rest, k+"-"); found && v != "" {
			return k, v, true
		}
	}
	return "", "", false
}

// Namespaces are the three namespace identifiers of one version.
type Namespaces struct {
	Version string
	Shell   string
	Runtime string
	API     string
}

func namespacesFor(prefix, version string) Namespaces {
	return Namespaces{
		Version: version,
		Shell:   NamespaceName(prefix, KindShell, version),
		Runtime: NamespaceName(prefix, KindRuntime, version),
		API:     NamespaceName(prefix, KindAPI, version),
	}
}

// All lists the identifiers in shell, runtime, api order.
func (n Namespaces) All() []string {
	return []string{n.Shell, n.Runtime, n.API}
}
