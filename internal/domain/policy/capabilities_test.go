package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

func TestCheckCapDrop_All(t *testing.T) {
	f := &domain.ContainerFacts{CapDrop: []string{"ALL"}}

	r := resultByRule(t, policy.EvaluateCapabilities(containerTarget("x"), f, domain.RoleAPIBackend), policy.RuleCapDropAll)

	assert.Equal(t, domain.OutcomePass, r.Outcome)
	assert.Equal(t, 1.0, r.Credit)
}

func TestCheckCapDrop_PartialList(t *testing.T) {
	f := &domain.ContainerFacts{CapDrop: []string{"NET_RAW", "MKNOD"}}

	r := resultByRule(t, policy.EvaluateCapabilities(containerTarget("x"), f, domain.RoleAPIBackend), policy.RuleCapDropAll)

	assert.Equal(t, domain.OutcomePass, r.Outcome)
	assert.Equal(t, 0.5, r.Credit)
	assert.Contains(t, r.Reason, "does not include ALL")
	assert.Equal(t, "CAP_NET_RAW, CAP_MKNOD", r.Details["cap_drop"])
}

func TestCheckCapDrop_Empty(t *testing.T) {
	f := &domain.ContainerFacts{}

	r := resultByRule(t, policy.EvaluateCapabilities(containerTarget("x"), f, domain.RoleAPIBackend), policy.RuleCapDropAll)

	assert.Equal(t, domain.OutcomeFail, r.Outcome)
	assert.Equal(t, 0.0, r.Credit)
}

func TestCheckCapAdd_EmptyPasses(t *testing.T) {
	f := &domain.ContainerFacts{CapDrop: []string{"ALL"}}

	r := resultByRule(t, policy.EvaluateCapabilities(containerTarget("x"), f, domain.RoleAPIBackend), policy.RuleCapAddJustified)

	assert.Equal(t, domain.OutcomePass, r.Outcome)
	assert.Equal(t, 1.0, r.Credit)
}

func TestCheckCapAdd_JustifiedForDatabase(t *testing.T) {
	// The same adds that a database justifies are unjustified on an API
	// backend, which justifies nothing.
	f := &domain.ContainerFacts{CapAdd: []string{"chown", "setuid", "setgid"}}

	asDB := resultByRule(t, policy.EvaluateCapabilities(containerTarget("db"), f, domain.RoleDatabase), policy.RuleCapAddJustified)
	assert.Equal(t, domain.OutcomePass, asDB.Outcome)
	assert.Equal(t, 1.0, asDB.Credit)

	asAPI := resultByRule(t, policy.EvaluateCapabilities(containerTarget("api"), f, domain.RoleAPIBackend), policy.RuleCapAddJustified)
	assert.Equal(t, domain.OutcomeFail, asAPI.Outcome)
	assert.Equal(t, 0.5, asAPI.Credit)
	assert.Contains(t, asAPI.Reason, "CAP_CHOWN")
}

func TestCheckCapAdd_NamesOnlyUnjustifiedSubset(t *testing.T) {
	f := &domain.ContainerFacts{CapAdd: []string{"CAP_CHOWN", "CAP_SYS_ADMIN"}}

	r := resultByRule(t, policy.EvaluateCapabilities(containerTarget("db"), f, domain.RoleDatabase), policy.RuleCapAddJustified)

	assert.Equal(t, domain.OutcomeFail, r.Outcome)
	assert.Contains(t, r.Reason, "CAP_SYS_ADMIN")
	assert.NotContains(t, r.Reason, "CAP_CHOWN,")
}

func TestEvaluateCapabilities_ScoreAcrossThreeTierStack(t *testing.T) {
	// db justifies its adds, web drops a partial list, api adds nothing:
	// credits 1+1 + 0.5+1 + 1+0.5 = 5 of 6 checks = 83.3, healthy at 80.
	db := policy.EvaluateCapabilities(containerTarget("demo-postgres"),
		&domain.ContainerFacts{CapDrop: []string{"ALL"}, CapAdd: []string{"CAP_CHOWN"}}, domain.RoleDatabase)
	web := policy.EvaluateCapabilities(containerTarget("demo-nginx"),
		&domain.ContainerFacts{CapDrop: []string{"NET_RAW"}}, domain.RoleWebFrontend)
	api := policy.EvaluateCapabilities(containerTarget("demo-api"),
		&domain.ContainerFacts{CapDrop: []string{"ALL"}, CapAdd: []string{"CAP_NET_RAW"}}, domain.RoleAPIBackend)

	var all []domain.CheckResult
	all = append(all, db...)
	all = append(all, web...)
	all = append(all, api...)
	report := domain.NewCategoryReport(policy.CategoryCapabilities, domain.CapabilityThresholds, all)

	require.Len(t, all, 6)
	assert.Equal(t, 83.3, report.Score)
	assert.Equal(t, domain.TierHealthy, report.Tier)
}

func TestFailedCapabilities(t *testing.T) {
	results := policy.FailedCapabilities(containerTarget("gone"), "Inspection failed")

	require.Len(t, results, 2)
	assert.Equal(t, policy.RuleCapDropAll, results[0].RuleID)
	assert.Equal(t, policy.RuleCapAddJustified, results[1].RuleID)
}
