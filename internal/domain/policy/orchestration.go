package policy

import (
	"fmt"
	"strings"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// allowedRestartPolicies is the fixed set a declared restart policy must
// belong to. Declaring none at all is acceptable for a dev setup.
var allowedRestartPolicies = map[string]bool{
	"no":             true,
	"always":         true,
	"on-failure":     true,
	"unless-stopped": true,
}

// EvaluateCompose applies the orchestration category rules to one compose
// file's structural facts, in catalog order.
func EvaluateCompose(target domain.Target, f *domain.ComposeFacts) []domain.CheckResult {
	return []domain.CheckResult{
		boolCheck(RuleComposeServices, "Compose file declares services", target,
			f.ServiceCount > 0, "no services declared").
			WithDetail("services", fmt.Sprintf("%d", f.ServiceCount)),
		boolCheck(RuleComposeNetworks, "Compose file declares networks", target,
			f.HasNetworks, "no top-level networks: section"),
		boolCheck(RuleComposeVolumes, "Compose file declares volumes", target,
			f.HasVolumes, "no top-level volumes: section"),
		boolCheck(RuleComposeDependsOn, "Service startup order is declared", target,
			f.DependsOnCount > 0, "no depends_on declarations"),
		boolCheck(RuleComposeHealthcheck, "At least one healthcheck is declared", target,
			f.HealthcheckCount > 0, "no healthcheck declarations"),
		checkRestartPolicies(target, f),
	}
}

func boolCheck(id, name string, target domain.Target, ok bool, failReason string) domain.CheckResult {
	if ok {
		return domain.Pass(id, name, target)
	}
	return domain.Fail(id, name, target, failReason)
}

func checkRestartPolicies(target domain.Target, f *domain.ComposeFacts) domain.CheckResult {
	const name = "Declared restart policies are valid"

	if len(f.RestartPolicies) == 0 {
		r := domain.Pass(RuleComposeRestartPolicy, name, target)
		r.Reason = "no restart policies declared (acceptable for a dev setup)"
		return r
	}
	var invalid []string
	for _, p := range f.RestartPolicies {
		if !allowedRestartPolicies[strings.TrimSpace(p)] {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return domain.Fail(RuleComposeRestartPolicy, name, target,
			"invalid restart policies: "+strings.Join(invalid, ", "))
	}
	return domain.Pass(RuleComposeRestartPolicy, name, target).
		WithDetail("policies", strings.Join(f.RestartPolicies, ", "))
}

// FailedCompose produces failed results for every orchestration rule when the
// compose file could not be read or parsed.
func FailedCompose(target domain.Target, reason string) []domain.CheckResult {
	return failAll(target, reason, []rule{
		{RuleComposeServices, "Compose file declares services"},
		{RuleComposeNetworks, "Compose file declares networks"},
		{RuleComposeVolumes, "Compose file declares volumes"},
		{RuleComposeDependsOn, "Service startup order is declared"},
		{RuleComposeHealthcheck, "At least one healthcheck is declared"},
		{RuleComposeRestartPolicy, "Declared restart policies are valid"},
	})
}
