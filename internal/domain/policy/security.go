package policy

import (
	"fmt"
	"strings"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// noNewPrivilegesLiterals are the security-opt spellings the runtime reports
// when no-new-privileges is enabled.
var noNewPrivilegesLiterals = map[string]bool{
	"no-new-privileges":      true,
	"no-new-privileges:true": true,
	"no-new-privileges=true": true,
}

// EvaluateContainerSecurity applies the security category rules to one
// running container, in catalog order.
func EvaluateContainerSecurity(target domain.Target, f *domain.ContainerFacts) []domain.CheckResult {
	return []domain.CheckResult{
		checkNonRootUser(target, f),
		checkNoNewPrivileges(target, f),
		checkNotPrivileged(target, f),
		checkResourceLimits(target, f),
		checkReadonlyRootfs(target, f),
	}
}

// checkNonRootUser fails when PID 1 runs as root, and independently when the
// image's default entry user resolves to root even if PID 1 itself does not.
func checkNonRootUser(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "Container process runs as non-root user"

	pid1Root := f.Pid1User == "root" || f.Pid1UID == 0
	defaultUser := f.ConfigUser
	if defaultUser == "" {
		defaultUser = f.ProbeUser
	}
	defaultRoot := userIsRoot(defaultUser)

	var result domain.CheckResult
	switch {
	case pid1Root && defaultRoot:
		result = domain.Fail(RuleNonRootUser, name, target, "PID 1 and image default user both resolve to root")
	case pid1Root:
		result = domain.Fail(RuleNonRootUser, name, target,
			fmt.Sprintf("PID 1 runs as root (image default user is %s)", defaultUser))
	case defaultRoot:
		result = domain.Fail(RuleNonRootUser, name, target,
			fmt.Sprintf("image default user resolves to root even though PID 1 runs as %s", f.Pid1User))
	default:
		result = domain.Pass(RuleNonRootUser, name, target)
	}

	return result.
		WithDetail("pid1_user", fmt.Sprintf("%s (uid %d)", f.Pid1User, f.Pid1UID)).
		WithDetail("config_user", f.ConfigUser).
		WithDetail("probe_user", f.ProbeUser)
}

// userIsRoot recognizes every USER spelling that resolves to uid 0: empty
// (the image default), "root", "0", and the user:group forms "root:root"
// and "0:0".
func userIsRoot(user string) bool {
	if user == "" {
		return true
	}
	name, _, _ := strings.Cut(user, ":")
	return name == "root" || name == "0"
}

func checkNoNewPrivileges(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "no-new-privileges security option is set"
	for _, opt := range f.SecurityOpt {
		if noNewPrivilegesLiterals[strings.TrimSpace(opt)] {
			return domain.Pass(RuleNoNewPrivileges, name, target)
		}
	}
	return domain.Fail(RuleNoNewPrivileges, name, target, "security options do not include no-new-privileges")
}

func checkNotPrivileged(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "Container does not run in privileged mode"
	if f.Privileged {
		return domain.Fail(RuleNotPrivileged, name, target, "container runs in privileged mode")
	}
	return domain.Pass(RuleNotPrivileged, name, target)
}

// checkResourceLimits requires both a positive memory limit and a positive
// CPU limit; the reason enumerates whichever is missing.
func checkResourceLimits(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "Memory and CPU limits are set"

	var missing []string
	if f.MemoryLimitBytes <= 0 {
		missing = append(missing, "memory limit")
	}
	if f.CPUCores <= 0 {
		missing = append(missing, "CPU limit")
	}
	if len(missing) > 0 {
		return domain.Fail(RuleResourceLimits, name, target, "missing "+strings.Join(missing, " and "))
	}
	return domain.Pass(RuleResourceLimits, name, target).
		WithDetail("memory_bytes", fmt.Sprintf("%d", f.MemoryLimitBytes)).
		WithDetail("cpu_cores", fmt.Sprintf("%.2f", f.CPUCores))
}

func checkReadonlyRootfs(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "Root filesystem is read-only"
	if !f.ReadonlyRootfs {
		return domain.Fail(RuleReadonlyRootfs, name, target, "root filesystem is writable")
	}
	return domain.Pass(RuleReadonlyRootfs, name, target)
}

// FailedContainerSecurity produces failed results for every security rule
// when a container's facts could not be fetched. The rules stay in the
// denominator so scoring remains conservative.
func FailedContainerSecurity(target domain.Target, reason string) []domain.CheckResult {
	return failAll(target, reason, []rule{
		{RuleNonRootUser, "Container process runs as non-root user"},
		{RuleNoNewPrivileges, "no-new-privileges security option is set"},
		{RuleNotPrivileged, "Container does not run in privileged mode"},
		{RuleResourceLimits, "Memory and CPU limits are set"},
		{RuleReadonlyRootfs, "Root filesystem is read-only"},
	})
}

// rule pairs a stable id with its display name for bulk failure reporting.
type rule struct {
	id   string
	name string
}

func failAll(target domain.Target, reason string, rules []rule) []domain.CheckResult {
	results := make([]domain.CheckResult, 0, len(rules))
	for _, r := range rules {
		results = append(results, domain.Fail(r.id, r.name, target, reason))
	}
	return results
}
