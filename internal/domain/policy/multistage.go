package policy

import (
	"fmt"
	"strings"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// maxImageSizeBytes is the fixed image size ceiling (500 MB).
const maxImageSizeBytes = 500 * 1024 * 1024

// Layer-count ceilings. Images built on well-known large bases (databases,
// web servers, language runtimes) get the raised ceiling.
const (
	maxLayers          = 15
	maxLayersLargeBase = 25
)

var largeBaseImages = []string{
	"postgres", "mysql", "mariadb", "mongo",
	"nginx", "httpd", "node", "python", "openjdk",
}

// EvaluateDockerfile applies the multistage category's Dockerfile rules.
// Multi-stage builds are waived for database-role Dockerfiles: single-layer
// database images have nothing to gain from a builder stage.
func EvaluateDockerfile(target domain.Target, f *domain.DockerfileFacts, role domain.ServiceRole) []domain.CheckResult {
	return []domain.CheckResult{
		checkMultiStage(target, f, role),
		checkAlpineBase(target, f),
		checkDockerfileUser(target, f),
	}
}

func checkMultiStage(target domain.Target, f *domain.DockerfileFacts, role domain.ServiceRole) domain.CheckResult {
	const name = "Dockerfile uses a multi-stage build"

	count := len(f.FromImages)
	if count == 0 {
		return domain.Fail(RuleMultiStageBuild, name, target, "Parse error")
	}
	if count >= 2 {
		return domain.Pass(RuleMultiStageBuild, name, target).
			WithDetail("from_count", fmt.Sprintf("%d", count))
	}
	if role == domain.RoleDatabase {
		r := domain.Pass(RuleMultiStageBuild, name, target).
			WithDetail("from_count", "1")
		r.Reason = "multi-stage build is optional for database images"
		return r
	}
	return domain.Fail(RuleMultiStageBuild, name, target, "single-stage build (1 FROM statement)")
}

// checkAlpineBase inspects only the final FROM: a builder stage on a full
// image is fine as long as the runtime stage is Alpine-based.
func checkAlpineBase(target domain.Target, f *domain.DockerfileFacts) domain.CheckResult {
	const name = "Final stage uses an Alpine base image"

	last := f.LastFrom()
	if last == "" {
		return domain.Fail(RuleAlpineBase, name, target, "Parse error")
	}
	if strings.Contains(strings.ToLower(last), "alpine") {
		return domain.Pass(RuleAlpineBase, name, target).WithDetail("base", last)
	}
	return domain.Fail(RuleAlpineBase, name, target,
		fmt.Sprintf("final stage base image is %s", last)).WithDetail("base", last)
}

func checkDockerfileUser(target domain.Target, f *domain.DockerfileFacts) domain.CheckResult {
	const name = "Dockerfile sets a non-root USER"

	if len(f.Users) == 0 {
		return domain.Fail(RuleDockerfileUser, name, target, "no USER directive found")
	}
	last := f.Users[len(f.Users)-1]
	if last == "root" || last == "0" {
		return domain.Fail(RuleDockerfileUser, name, target,
			fmt.Sprintf("final USER directive is %s", last))
	}
	return domain.Pass(RuleDockerfileUser, name, target).WithDetail("user", last)
}

// EvaluateImage applies the multistage category's image rules.
func EvaluateImage(target domain.Target, f *domain.ImageFacts) []domain.CheckResult {
	return []domain.CheckResult{
		checkImageSize(target, f),
		checkLayerCount(target, f),
	}
}

func checkImageSize(target domain.Target, f *domain.ImageFacts) domain.CheckResult {
	const name = "Image size is within the 500 MB ceiling"

	sizeMB := float64(f.SizeBytes) / (1024 * 1024)
	if f.SizeBytes > maxImageSizeBytes {
		return domain.Fail(RuleImageSize, name, target,
			fmt.Sprintf("image is %.0f MB (limit 500 MB)", sizeMB)).
			WithDetail("size_mb", fmt.Sprintf("%.0f", sizeMB))
	}
	return domain.Pass(RuleImageSize, name, target).
		WithDetail("size_mb", fmt.Sprintf("%.0f", sizeMB))
}

func checkLayerCount(target domain.Target, f *domain.ImageFacts) domain.CheckResult {
	const name = "Layer count is within the ceiling"

	ceiling := maxLayers
	if isLargeBase(f.Ref) {
		ceiling = maxLayersLargeBase
	}
	if f.LayerCount > ceiling {
		return domain.Fail(RuleLayerCount, name, target,
			fmt.Sprintf("%d layers (limit %d)", f.LayerCount, ceiling)).
			WithDetail("layers", fmt.Sprintf("%d", f.LayerCount))
	}
	return domain.Pass(RuleLayerCount, name, target).
		WithDetail("layers", fmt.Sprintf("%d", f.LayerCount)).
		WithDetail("ceiling", fmt.Sprintf("%d", ceiling))
}

func isLargeBase(ref string) bool {
	lower := strings.ToLower(ref)
	for _, base := range largeBaseImages {
		if strings.Contains(lower, base) {
			return true
		}
	}
	return false
}

// FailedDockerfile produces failed results for the Dockerfile rules when the
// file could not be read.
func FailedDockerfile(target domain.Target, reason string) []domain.CheckResult {
	return failAll(target, reason, []rule{
		{RuleMultiStageBuild, "Dockerfile uses a multi-stage build"},
		{RuleAlpineBase, "Final stage uses an Alpine base image"},
		{RuleDockerfileUser, "Dockerfile sets a non-root USER"},
	})
}

// FailedImage produces failed results for the image rules when the image
// could not be inspected.
func FailedImage(target domain.Target, reason string) []domain.CheckResult {
	return failAll(target, reason, []rule{
		{RuleImageSize, "Image size is within the 500 MB ceiling"},
		{RuleLayerCount, "Layer count is within the ceiling"},
	})
}
