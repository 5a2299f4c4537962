package domain

import "strings"

// ServiceRole tags a target with the kind of workload it runs. Roles decide
// which added Linux capabilities are justified and which packaging rules are
// waived (multi-stage builds are optional for database images).
type ServiceRole string

const (
	RoleDatabase    ServiceRole = "database"
	RoleWebFrontend ServiceRole = "web-frontend"
	RoleAPIBackend  ServiceRole = "api-backend"
	RoleUnknown     ServiceRole = "unknown"
)

// justifiedCaps maps each role to the capabilities it may add beyond the
// dropped default set. Canonical CAP_* form.
var justifiedCaps = map[ServiceRole][]string{
	RoleDatabase: {
		"CAP_CHOWN", "CAP_SETUID", "CAP_SETGID", "CAP_FOWNER", "CAP_DAC_OVERRIDE",
	},
	RoleWebFrontend: {
		"CAP_CHOWN", "CAP_SETUID", "CAP_SETGID", "CAP_NET_BIND_SERVICE",
	},
	RoleAPIBackend: {},
}

// JustifiedCapabilities returns the allowed added-capability set for a role.
func JustifiedCapabilities(role ServiceRole) map[string]bool {
	set := make(map[string]bool, len(justifiedCaps[role]))
	for _, c := range justifiedCaps[role] {
		set[c] = true
	}
	return set
}

// rolePriority is the tie-break order when a name matches patterns for more
// than one role. Database wins, matching the inference table below.
var rolePriority = []ServiceRole{RoleDatabase, RoleWebFrontend, RoleAPIBackend}

// roleInference lists name-substring patterns per role. Database patterns are
// checked first so an ambiguous name like "api-db-sync" resolves
// deterministically to database rather than depending on map order.
var roleInference = []struct {
	role     ServiceRole
	patterns []string
}{
	{RoleDatabase, []string{"postgres", "mysql", "mariadb", "mongo", "database", "db"}},
	{RoleWebFrontend, []string{"nginx", "frontend", "web", "httpd"}},
	{RoleAPIBackend, []string{"api", "backend", "node", "server"}},
}

// InferRole assigns a role by substring match on a container or folder name.
// Explicit role assignments from configuration take precedence over this;
// inference exists as a fallback for unconfigured targets.
func InferRole(name string) ServiceRole {
	lower := strings.ToLower(name)
	for _, entry := range roleInference {
		for _, p := range entry.patterns {
			if strings.Contains(lower, p) {
				return entry.role
			}
		}
	}
	return RoleUnknown
}

// NormalizeCapability converts a bare capability name to canonical CAP_* form
// for comparison. "chown" and "CAP_CHOWN" both normalize to "CAP_CHOWN".
func NormalizeCapability(cap string) string {
	upper := strings.ToUpper(strings.TrimSpace(cap))
	if upper == "" {
		return ""
	}
	if upper == "ALL" {
		return "ALL"
	}
	if !strings.HasPrefix(upper, "CAP_") {
		upper = "CAP_" + upper
	}
	return upper
}

// NormalizeCapabilities normalizes a whole list, dropping empty entries.
func NormalizeCapabilities(caps []string) []string {
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		if n := NormalizeCapability(c); n != "" {
			out = append(out, n)
		}
	}
	return out
}
