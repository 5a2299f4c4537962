package domain

import (
	"fmt"
	"strings"
)

// ValidCategories enumerates all audit category names in suite order.
var ValidCategories = []string{
	"security", "capabilities", "multistage",
	"environment", "orchestration", "api",
}

// ProjectConfig holds project-level configuration loaded from .stackaudit.yaml.
type ProjectConfig struct {
	// BaseURL is the root of the HTTP surface under test.
	BaseURL string `yaml:"base_url"     json:"base_url,omitempty"`
	// ImagePrefix selects project images during image target resolution.
	ImagePrefix string `yaml:"image_prefix" json:"image_prefix,omitempty"`
	// ComposeFile overrides compose file discovery.
	ComposeFile string `yaml:"compose_file" json:"compose_file,omitempty"`
	// Roles maps a container/folder name pattern to an explicit service role.
	// Explicit entries win over substring inference.
	Roles map[string]ServiceRole `yaml:"roles" json:"roles,omitempty"`
	// BaseImages lists additional image refs audited alongside project images.
	BaseImages []string `yaml:"base_images" json:"base_images,omitempty"`
	// HTTPTimeoutMS bounds each endpoint probe. Defaults to 5000.
	HTTPTimeoutMS int `yaml:"http_timeout_ms" json:"http_timeout_ms,omitempty"`
}

// DefaultConfig returns the configuration used when no .stackaudit.yaml exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		BaseURL:       "http://localhost:3000",
		ImagePrefix:   "",
		HTTPTimeoutMS: 5000,
	}
}

// Validate rejects unknown role names before the config is used.
func (c ProjectConfig) Validate() error {
	for pattern, role := range c.Roles {
		switch role {
		case RoleDatabase, RoleWebFrontend, RoleAPIBackend:
		default:
			return fmt.Errorf("role %q for pattern %q: must be one of database, web-frontend, api-backend", role, pattern)
		}
	}
	if c.HTTPTimeoutMS < 0 {
		return fmt.Errorf("http_timeout_ms must not be negative")
	}
	return nil
}

// RoleFor resolves a target name to a service role: explicit config mapping
// first (substring match on the pattern), then inference. When several
// configured patterns match the same name, roles are resolved in the same
// database-first priority order inference uses, so an ambiguous name like
// "api-db-sync" maps to the same role on every run regardless of map order.
func (c ProjectConfig) RoleFor(name string) ServiceRole {
	lower := strings.ToLower(name)
	matched := make(map[ServiceRole]bool, len(c.Roles))
	for pattern, role := range c.Roles {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			matched[role] = true
		}
	}
	for _, role := range rolePriority {
		if matched[role] {
			return role
		}
	}
	return InferRole(name)
}
