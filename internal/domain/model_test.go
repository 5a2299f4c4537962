package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackaudit/stackaudit/internal/domain"
)

func target(name string) domain.Target {
	return domain.Target{Kind: domain.TargetContainer, Name: name, Ref: name}
}

func TestNewCategoryReport_AllPassing(t *testing.T) {
	results := []domain.CheckResult{
		domain.Pass("a", "A", target("web")),
		domain.Pass("b", "B", target("web")),
	}

	report := domain.NewCategoryReport("security", domain.DefaultThresholds, results)

	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, domain.TierHealthy, report.Tier)
	assert.Equal(t, domain.ExitOK, report.ExitCode())
}

func TestNewCategoryReport_SevenOfTen(t *testing.T) {
	var results []domain.CheckResult
	for i := 0; i < 7; i++ {
		results = append(results, domain.Pass("p", "P", target("web")))
	}
	for i := 0; i < 3; i++ {
		results = append(results, domain.Fail("f", "F", target("web"), "broken"))
	}

	report := domain.NewCategoryReport("security", domain.DefaultThresholds, results)

	assert.Equal(t, 70.0, report.Score)
	assert.Equal(t, domain.TierHealthy, report.Tier)
}

func TestNewCategoryReport_FractionalCredit(t *testing.T) {
	// One full pass, one half-credit warning: (1 + 0.5) / 2 = 75%.
	results := []domain.CheckResult{
		domain.Pass("a", "A", target("db")),
		domain.Warn("b", "B", target("db"), "partial"),
	}

	report := domain.NewCategoryReport("capabilities", domain.CapabilityThresholds, results)

	assert.Equal(t, 75.0, report.Score)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, domain.TierDegraded, report.Tier)
	assert.Equal(t, domain.ExitDegraded, report.ExitCode())
}

func TestNewCategoryReport_PartialFailCountsAsFailed(t *testing.T) {
	results := []domain.CheckResult{
		domain.PartialFail("a", "A", target("api"), "unjustified"),
		domain.Pass("b", "B", target("api")),
	}

	report := domain.NewCategoryReport("capabilities", domain.CapabilityThresholds, results)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 75.0, report.Score)
}

func TestNewCategoryReport_RoundsToOneDecimal(t *testing.T) {
	// 1 of 3 passing: 33.333... rounds to 33.3.
	results := []domain.CheckResult{
		domain.Pass("a", "A", target("web")),
		domain.Fail("b", "B", target("web"), "x"),
		domain.Fail("c", "C", target("web"), "y"),
	}

	report := domain.NewCategoryReport("security", domain.DefaultThresholds, results)

	assert.Equal(t, 33.3, report.Score)
	assert.Equal(t, domain.TierCritical, report.Tier)
	assert.Equal(t, domain.ExitCritical, report.ExitCode())
}

func TestThresholds_CapabilityBoundaries(t *testing.T) {
	assert.Equal(t, domain.TierHealthy, domain.CapabilityThresholds.TierFor(80))
	assert.Equal(t, domain.TierDegraded, domain.CapabilityThresholds.TierFor(79.9))
	assert.Equal(t, domain.TierDegraded, domain.CapabilityThresholds.TierFor(60))
	assert.Equal(t, domain.TierCritical, domain.CapabilityThresholds.TierFor(59.9))
}

func TestWithDetail_DoesNotMutateOriginal(t *testing.T) {
	original := domain.Pass("a", "A", target("web"))
	derived := original.WithDetail("k", "v")

	assert.Nil(t, original.Details)
	assert.Equal(t, "v", derived.Details["k"])
}

func TestNewSuiteReport_AllPassed(t *testing.T) {
	suite := domain.NewSuiteReport([]domain.CategoryOutcome{
		{Category: "security", Passed: true},
		{Category: "api", Passed: true},
	})

	assert.True(t, suite.Passed)
	assert.Equal(t, 100.0, suite.GlobalScore)
}

func TestNewSuiteReport_FiveOfSix(t *testing.T) {
	outcomes := []domain.CategoryOutcome{
		{Category: "security", Passed: true},
		{Category: "capabilities", Passed: true},
		{Category: "multistage", Passed: true},
		{Category: "environment", Passed: true},
		{Category: "orchestration", Passed: false},
		{Category: "api", Passed: true},
	}

	suite := domain.NewSuiteReport(outcomes)

	assert.False(t, suite.Passed)
	assert.Equal(t, 83.3, suite.GlobalScore)
}

func TestNewSuiteReport_Empty(t *testing.T) {
	suite := domain.NewSuiteReport(nil)

	assert.False(t, suite.Passed)
	assert.Equal(t, 0.0, suite.GlobalScore)
}
