// Package policy holds the audit rule catalog and its evaluation functions.
// Every function here is pure: it takes a fact bundle and returns check
// results, with no I/O and no dependence on other rules' outcomes.
package policy

import "github.com/stackaudit/stackaudit/internal/domain"

// Rule identifiers. Stable across releases; report consumers key on these.
const (
	RuleNonRootUser     = "non-root-user"
	RuleNoNewPrivileges = "no-new-privileges"
	RuleNotPrivileged   = "not-privileged"
	RuleResourceLimits  = "resource-limits"
	RuleReadonlyRootfs  = "readonly-rootfs"

	RuleCapDropAll       = "cap-drop-all"
	RuleCapAddJustified  = "cap-add-justified"

	RuleMultiStageBuild = "multi-stage-build"
	RuleAlpineBase      = "alpine-base"
	RuleDockerfileUser  = "dockerfile-user"
	RuleImageSize       = "image-size"
	RuleLayerCount      = "layer-count"

	RuleDockerfileSecrets   = "dockerfile-secrets"
	RuleEnvFileSecrets      = "envfile-secrets"
	RuleContainerEnvSecrets = "container-env-secrets"

	RuleComposeNetworks      = "compose-networks"
	RuleComposeVolumes       = "compose-volumes"
	RuleComposeDependsOn     = "compose-depends-on"
	RuleComposeHealthcheck   = "compose-healthcheck"
	RuleComposeServices      = "compose-services"
	RuleComposeRestartPolicy = "compose-restart-policy"

	RuleStatusCode   = "status-code"
	RuleContentType  = "content-type"
	RuleBodyShape    = "body-shape"
	RuleResponseTime = "response-time"

	RuleImageVulnerabilities = "image-vulnerabilities"
)

// Category names, in suite order.
const (
	CategorySecurity      = "security"
	CategoryCapabilities  = "capabilities"
	CategoryMultistage    = "multistage"
	CategoryEnvironment   = "environment"
	CategoryOrchestration = "orchestration"
	CategoryAPI           = "api"
	CategoryScan          = "scan"
)

// SuiteCategories is the ordered list the suite aggregator runs.
var SuiteCategories = []string{
	CategorySecurity, CategoryCapabilities, CategoryMultistage,
	CategoryEnvironment, CategoryOrchestration, CategoryAPI,
}

// ThresholdsFor returns the tier thresholds for a category. The capabilities
// audit uses a stricter 80/60 split.
func ThresholdsFor(category string) domain.Thresholds {
	if category == CategoryCapabilities {
		return domain.CapabilityThresholds
	}
	return domain.DefaultThresholds
}

// Recommendations derives the remediation block for a category report purely
// from its score tier. Per-rule remediation lives in the check results.
func Recommendations(tier domain.Tier) []string {
	switch tier {
	case domain.TierHealthy:
		return []string{"No action required. Re-run the audit after the next deploy."}
	case domain.TierDegraded:
		return []string{
			"Review the failed checks above and fix them before the next release.",
			"Re-run this category to confirm the score returns above the healthy threshold.",
		}
	default:
		return []string{
			"Treat the failed checks above as release blockers.",
			"Fix the highest-impact items first: root execution, privileged mode, missing capability drops.",
			"Re-run the full suite after remediation.",
		}
	}
}
