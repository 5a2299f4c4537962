package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackaudit/stackaudit/internal/adapters/outbound/tui"
	"github.com/stackaudit/stackaudit/internal/domain"
)

func sampleReport() *domain.CategoryReport {
	target := domain.Target{Kind: domain.TargetContainer, Name: "demo-api", Ref: "demo-api"}
	results := []domain.CheckResult{
		domain.Pass("not-privileged", "Container does not run in privileged mode", target),
		domain.Warn("cap-drop-all", "Default capabilities are dropped", target, "drop list does not include ALL"),
		domain.Fail("readonly-rootfs", "Root filesystem is read-only", target, "root filesystem is writable"),
	}
	report := domain.NewCategoryReport("security", domain.DefaultThresholds, results)
	report.CommitHash = "0123456789abcdef"
	return &report
}

func TestRenderCategory(t *testing.T) {
	out := tui.RenderCategory(sampleReport())

	assert.Contains(t, out, "stackaudit")
	assert.Contains(t, out, "security audit")
	assert.Contains(t, out, "demo-api")
	assert.Contains(t, out, "Container does not run in privileged mode")
	assert.Contains(t, out, "root filesystem is writable")
	assert.Contains(t, out, "Recommendations")
	// Commit hashes are shortened for display.
	assert.Contains(t, out, "commit 0123456")
	assert.NotContains(t, out, "0123456789abcdef")
}

func TestRenderSuite(t *testing.T) {
	suite := domain.NewSuiteReport([]domain.CategoryOutcome{
		{Category: "security", Score: 100, Tier: domain.TierHealthy, Passed: true},
		{Category: "api", Score: 46.2, Tier: domain.TierCritical, Passed: false},
		{Category: "orchestration", Tier: domain.TierCritical, Err: "no targets resolved"},
	})

	out := tui.RenderSuite(&suite)

	assert.Contains(t, out, "Suite summary")
	assert.Contains(t, out, "security")
	assert.Contains(t, out, "46.2%")
	assert.Contains(t, out, "no targets resolved")
	assert.Contains(t, out, "One or more categories failed.")
}
