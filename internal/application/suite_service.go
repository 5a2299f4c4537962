package application

import (
	"context"

	"github.com/samber/lo"

	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

// SuiteService runs every audit category in order and aggregates one global
// verdict. Categories are independent; they run sequentially to keep console
// output readable.
type SuiteService struct {
	audit *AuditService
}

func NewSuiteService(audit *AuditService) *SuiteService {
	return &SuiteService{audit: audit}
}

// SuiteRequest configures one full-suite run.
type SuiteRequest struct {
	ProjectPath string
	BaseURL     string
	// StopOnFailure short-circuits the remaining categories after the first
	// one that does not pass.
	StopOnFailure bool
}

// RunSuite executes all categories. A category that hard-fails (zero targets,
// unreachable daemon) is recorded as failed without aborting the rest, unless
// StopOnFailure is set. The returned reports carry the per-check detail for
// rendering; the SuiteReport carries the aggregate verdict.
func (s *SuiteService) RunSuite(ctx context.Context, req SuiteRequest) (*domain.SuiteReport, []domain.CategoryReport) {
	var (
		outcomes []domain.CategoryOutcome
		reports  []domain.CategoryReport
	)

	for _, category := range policy.SuiteCategories {
		report, err := s.audit.RunCategory(ctx, category, AuditRequest{
			ProjectPath: req.ProjectPath,
			BaseURL:     req.BaseURL,
		})
		if err != nil {
			outcomes = append(outcomes, domain.CategoryOutcome{
				Category: category,
				Tier:     domain.TierCritical,
				Err:      err.Error(),
			})
			if req.StopOnFailure {
				break
			}
			continue
		}

		reports = append(reports, *report)
		outcomes = append(outcomes, domain.CategoryOutcome{
			Category: category,
			Score:    report.Score,
			Tier:     report.Tier,
			Passed:   report.Healthy(),
		})
		if req.StopOnFailure && !report.Healthy() {
			break
		}
	}

	suite := domain.NewSuiteReport(outcomes)
	return &suite, reports
}

// FailedCategories names the categories that did not pass, for log summaries.
func FailedCategories(suite *domain.SuiteReport) []string {
	failed := lo.Filter(suite.Categories, func(c domain.CategoryOutcome, _ int) bool {
		return !c.Passed
	})
	return lo.Map(failed, func(c domain.CategoryOutcome, _ int) string {
		return c.Category
	})
}
