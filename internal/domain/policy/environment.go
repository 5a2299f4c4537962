package policy

import (
	"fmt"
	"strings"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// EvaluateDockerfileSecrets fails when any secret-like key=value literal
// appears in Dockerfile text, regardless of the value. Baking credentials
// into image layers is never acceptable.
func EvaluateDockerfileSecrets(target domain.Target, f *domain.DockerfileFacts) domain.CheckResult {
	const name = "Dockerfile contains no secret literals"

	if len(f.SecretHits) == 0 {
		return domain.Pass(RuleDockerfileSecrets, name, target)
	}
	return domain.Fail(RuleDockerfileSecrets, name, target, describeHits(f.SecretHits)).
		WithDetail("matches", fmt.Sprintf("%d", len(f.SecretHits)))
}

// EvaluateEnvFileSecrets fails only when a matched value looks like live
// credential material. Short human placeholders (a demo password) are
// tolerated in env files of a dev setup.
func EvaluateEnvFileSecrets(target domain.Target, f *domain.EnvFileFacts) domain.CheckResult {
	const name = "Env file contains no live secrets"

	var real []domain.SecretHit
	for _, h := range f.SecretHits {
		if domain.LooksLikeRealSecret(h.Value) {
			real = append(real, h)
		}
	}
	if len(real) == 0 {
		result := domain.Pass(RuleEnvFileSecrets, name, target)
		if n := len(f.SecretHits); n > 0 {
			result = result.WithDetail("placeholders_tolerated", fmt.Sprintf("%d", n))
		}
		return result
	}
	return domain.Fail(RuleEnvFileSecrets, name, target, describeHits(real)).
		WithDetail("matches", fmt.Sprintf("%d", len(real)))
}

// EvaluateContainerEnvSecrets applies the same live-secret heuristic to a
// running container's environment list.
func EvaluateContainerEnvSecrets(target domain.Target, f *domain.ContainerFacts) domain.CheckResult {
	const name = "Container environment contains no live secrets"

	var real []domain.SecretHit
	for _, h := range domain.FindSecretHits(domain.EnvAssignments(f.Env)) {
		if domain.LooksLikeRealSecret(h.Value) {
			real = append(real, h)
		}
	}
	if len(real) == 0 {
		return domain.Pass(RuleContainerEnvSecrets, name, target)
	}
	return domain.Fail(RuleContainerEnvSecrets, name, target, describeHits(real)).
		WithDetail("matches", fmt.Sprintf("%d", len(real)))
}

// describeHits names the matched keys without echoing their values into the
// report.
func describeHits(hits []domain.SecretHit) string {
	keys := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Line > 0 {
			keys = append(keys, fmt.Sprintf("%s (line %d)", h.Key, h.Line))
		} else {
			keys = append(keys, h.Key)
		}
	}
	return "secret-like assignments: " + strings.Join(keys, ", ")
}

// FailedEnvironmentContainer produces the failed result for the container env
// rule when the container's facts could not be fetched.
func FailedEnvironmentContainer(target domain.Target, reason string) []domain.CheckResult {
	return failAll(target, reason, []rule{
		{RuleContainerEnvSecrets, "Container environment contains no live secrets"},
	})
}
