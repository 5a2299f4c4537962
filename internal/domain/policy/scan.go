package policy

import (
	"fmt"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// EvaluateImageScan converts one image's vulnerability counts into a check
// result: any critical finding fails, highs alone earn half credit.
func EvaluateImageScan(target domain.Target, s domain.ImageScanSummary) domain.CheckResult {
	const name = "Image is free of critical vulnerabilities"

	result := domain.Pass(RuleImageVulnerabilities, name, target)
	switch {
	case s.Critical > 0:
		result = domain.Fail(RuleImageVulnerabilities, name, target,
			fmt.Sprintf("%d critical, %d high severity findings", s.Critical, s.High))
	case s.High > 0:
		result = domain.Warn(RuleImageVulnerabilities, name, target,
			fmt.Sprintf("%d high severity findings", s.High))
	}
	return result.
		WithDetail("critical", fmt.Sprintf("%d", s.Critical)).
		WithDetail("high", fmt.Sprintf("%d", s.High))
}
