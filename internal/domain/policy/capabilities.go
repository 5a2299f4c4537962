package policy

import (
	"fmt"
	"strings"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// EvaluateCapabilities applies the capabilities category rules to one running
// container. The role decides which added capabilities are justified.
func EvaluateCapabilities(target domain.Target, f *domain.ContainerFacts, role domain.ServiceRole) []domain.CheckResult {
	return []domain.CheckResult{
		checkCapDrop(target, f),
		checkCapAdd(target, f, role),
	}
}

// checkCapDrop grants full credit when the drop list contains ALL, half
// credit when something is dropped but not ALL, and zero credit when the
// drop list is empty.
func checkCapDrop(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "Default capabilities are dropped"

	drops := domain.NormalizeCapabilities(f.CapDrop)
	if len(drops) == 0 {
		return domain.Fail(RuleCapDropAll, name, target, "no capabilities dropped")
	}
	for _, c := range drops {
		if c == "ALL" {
			return domain.Pass(RuleCapDropAll, name, target).
				WithDetail("cap_drop", "ALL")
		}
	}
	return domain.Warn(RuleCapDropAll, name, target,
		fmt.Sprintf("drop list does not include ALL (dropped: %s)", strings.Join(drops, ", "))).
		WithDetail("cap_drop", strings.Join(drops, ", "))
}

// checkCapAdd grants full credit for an empty add list, full credit when
// every added capability is justified for the container's service role, and
// half credit otherwise, naming the unjustified subset.
func checkCapAdd(target domain.Target, f *domain.ContainerFacts, role domain.ServiceRole) domain.CheckResult {
	const name = "Added capabilities are justified for the service role"

	adds := domain.NormalizeCapabilities(f.CapAdd)
	if len(adds) == 0 {
		return domain.Pass(RuleCapAddJustified, name, target)
	}

	justified := domain.JustifiedCapabilities(role)
	var unjustified []string
	for _, c := range adds {
		if !justified[c] {
			unjustified = append(unjustified, c)
		}
	}
	if len(unjustified) == 0 {
		return domain.Pass(RuleCapAddJustified, name, target).
			WithDetail("cap_add", strings.Join(adds, ", ")).
			WithDetail("role", string(role))
	}
	return domain.PartialFail(RuleCapAddJustified, name, target,
		fmt.Sprintf("capabilities not justified for role %s: %s", role, strings.Join(unjustified, ", "))).
		WithDetail("cap_add", strings.Join(adds, ", ")).
		WithDetail("role", string(role))
}

// FailedCapabilities produces failed results for both capability rules when a
// container's facts could not be fetched.
func FailedCapabilities(target domain.Target, reason string) []domain.CheckResult {
	return failAll(target, reason, []rule{
		{RuleCapDropAll, "Default capabilities are dropped"},
		{RuleCapAddJustified, "Added capabilities are justified for the service role"},
	})
}
