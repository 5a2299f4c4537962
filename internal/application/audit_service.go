package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

// AuditService runs one audit category: resolve targets, fetch fact bundles,
// evaluate the pure policy rules, score. Fact fetches fan out across
// goroutines; results are restored to deterministic target-then-rule order
// before scoring so reports are reproducible.
type AuditService struct {
	containers domain.ContainerInspector
	images     domain.ImageInspector
	files      domain.FileInspector
	prober     domain.HTTPProber
	configs    domain.ConfigLoader
}

func NewAuditService(
	containers domain.ContainerInspector,
	images domain.ImageInspector,
	files domain.FileInspector,
	prober domain.HTTPProber,
	configs domain.ConfigLoader,
) *AuditService {
	return &AuditService{
		containers: containers,
		images:     images,
		files:      files,
		prober:     prober,
		configs:    configs,
	}
}

// AuditRequest selects what one category run inspects.
type AuditRequest struct {
	// ProjectPath is the root of the project under audit.
	ProjectPath string
	// Targets optionally overrides auto-discovery (container names, image
	// refs or file paths, depending on the category).
	Targets []string
	// BaseURL overrides the configured HTTP base URL for the api category.
	BaseURL string
}

// RunCategory executes one audit category. A category that resolves zero
// targets returns domain.ErrNoTargets: a hard failure, never a vacuous score.
func (s *AuditService) RunCategory(ctx context.Context, category string, req AuditRequest) (*domain.CategoryReport, error) {
	cfg, err := s.configs.Load(req.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var results []domain.CheckResult
	switch category {
	case policy.CategorySecurity, policy.CategoryCapabilities:
		results, err = s.evaluateContainers(ctx, category, cfg, req.Targets)
	case policy.CategoryMultistage:
		results, err = s.evaluateMultistage(ctx, cfg, req)
	case policy.CategoryEnvironment:
		results, err = s.evaluateEnvironment(ctx, cfg, req)
	case policy.CategoryOrchestration:
		results, err = s.evaluateOrchestration(cfg, req)
	case policy.CategoryAPI:
		results, err = s.evaluateAPI(ctx, cfg, req)
	default:
		return nil, fmt.Errorf("unknown audit category %q", category)
	}
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: category %s", domain.ErrNoTargets, category)
	}

	report := domain.NewCategoryReport(category, policy.ThresholdsFor(category), results)
	return &report, nil
}

// evaluateContainers runs the security or capabilities rules over all running
// containers (or an explicit list). Fact fetches run concurrently; one
// container's failed inspection becomes failed checks, never an aborted run.
func (s *AuditService) evaluateContainers(ctx context.Context, category string, cfg domain.ProjectConfig, explicit []string) ([]domain.CheckResult, error) {
	names, err := s.resolveContainers(ctx, explicit)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no running containers", domain.ErrNoTargets)
	}

	facts, errs := s.fetchContainerFacts(ctx, names)

	var results []domain.CheckResult
	for i, name := range names {
		target := domain.Target{Kind: domain.TargetContainer, Name: name, Ref: name}
		if errs[i] != nil {
			reason := domain.FailureReason(errs[i], "Container "+name)
			if category == policy.CategorySecurity {
				results = append(results, policy.FailedContainerSecurity(target, reason)...)
			} else {
				results = append(results, policy.FailedCapabilities(target, reason)...)
			}
			continue
		}
		if category == policy.CategorySecurity {
			results = append(results, policy.EvaluateContainerSecurity(target, facts[i])...)
		} else {
			results = append(results, policy.EvaluateCapabilities(target, facts[i], cfg.RoleFor(name))...)
		}
	}
	return results, nil
}

func (s *AuditService) evaluateMultistage(ctx context.Context, cfg domain.ProjectConfig, req AuditRequest) ([]domain.CheckResult, error) {
	dockerfiles, err := s.resolveDockerfiles(req)
	if err != nil {
		return nil, err
	}

	var results []domain.CheckResult
	for _, path := range dockerfiles {
		target := domain.Target{Kind: domain.TargetDockerfile, Name: path, Ref: path}
		facts, err := s.files.DockerfileFacts(path)
		if err != nil {
			results = append(results, policy.FailedDockerfile(target, domain.FailureReason(err, "Dockerfile "+path))...)
			continue
		}
		results = append(results, policy.EvaluateDockerfile(target, facts, cfg.RoleFor(facts.Service))...)
	}

	refs := s.resolveImages(ctx, cfg)
	for _, ref := range refs {
		target := domain.Target{Kind: domain.TargetImage, Name: ref, Ref: ref}
		facts, err := s.images.ImageFacts(ctx, ref)
		if err != nil {
			results = append(results, policy.FailedImage(target, domain.FailureReason(err, "Image "+ref))...)
			continue
		}
		results = append(results, policy.EvaluateImage(target, facts)...)
	}
	return results, nil
}

func (s *AuditService) evaluateEnvironment(ctx context.Context, cfg domain.ProjectConfig, req AuditRequest) ([]domain.CheckResult, error) {
	var results []domain.CheckResult

	dockerfiles, err := s.resolveDockerfiles(req)
	if err != nil {
		return nil, err
	}
	for _, path := range dockerfiles {
		target := domain.Target{Kind: domain.TargetDockerfile, Name: path, Ref: path}
		facts, err := s.files.DockerfileFacts(path)
		if err != nil {
			results = append(results, domain.Fail(policy.RuleDockerfileSecrets,
				"Dockerfile contains no secret literals", target,
				domain.FailureReason(err, "Dockerfile "+path)))
			continue
		}
		results = append(results, policy.EvaluateDockerfileSecrets(target, facts))
	}

	envFiles, err := s.files.FindEnvFiles(req.ProjectPath)
	if err != nil {
		return nil, err
	}
	for _, path := range envFiles {
		target := domain.Target{Kind: domain.TargetEnvFile, Name: path, Ref: path}
		facts, err := s.files.EnvFileFacts(path)
		if err != nil {
			results = append(results, domain.Fail(policy.RuleEnvFileSecrets,
				"Env file contains no live secrets", target,
				domain.FailureReason(err, "Env file "+path)))
			continue
		}
		results = append(results, policy.EvaluateEnvFileSecrets(target, facts))
	}

	// Running containers are one more target class here. A daemon that is
	// down removes the class, it does not fail the file checks.
	if names, err := s.resolveContainers(ctx, nil); err == nil {
		facts, errs := s.fetchContainerFacts(ctx, names)
		for i, name := range names {
			target := domain.Target{Kind: domain.TargetContainer, Name: name, Ref: name}
			if errs[i] != nil {
				results = append(results, policy.FailedEnvironmentContainer(target,
					domain.FailureReason(errs[i], "Container "+name))...)
				continue
			}
			results = append(results, policy.EvaluateContainerEnvSecrets(target, facts[i]))
		}
	}

	return results, nil
}

func (s *AuditService) evaluateOrchestration(cfg domain.ProjectConfig, req AuditRequest) ([]domain.CheckResult, error) {
	path := cfg.ComposeFile
	if len(req.Targets) > 0 {
		path = req.Targets[0]
	}
	if path == "" {
		found, err := s.files.FindComposeFile(req.ProjectPath)
		if err != nil {
			// The compose file is this category's one target: a missing file
			// is a full set of failed checks, not an empty report.
			target := domain.Target{Kind: domain.TargetComposeFile, Name: "docker-compose.yml", Ref: req.ProjectPath}
			return policy.FailedCompose(target, "Compose file not found"), nil
		}
		path = found
	}

	target := domain.Target{Kind: domain.TargetComposeFile, Name: path, Ref: path}
	facts, err := s.files.ComposeFacts(path)
	if err != nil {
		return policy.FailedCompose(target, domain.FailureReason(err, "Compose file "+path)), nil
	}
	return policy.EvaluateCompose(target, facts), nil
}

func (s *AuditService) evaluateAPI(ctx context.Context, cfg domain.ProjectConfig, req AuditRequest) ([]domain.CheckResult, error) {
	base := cfg.BaseURL
	if req.BaseURL != "" {
		base = req.BaseURL
	}
	base = strings.TrimSuffix(base, "/")
	timeout := time.Duration(cfg.HTTPTimeoutMS) * time.Millisecond

	var results []domain.CheckResult
	for _, exp := range policy.APIEndpoints() {
		url := base + exp.Path
		target := domain.Target{Kind: domain.TargetEndpoint, Name: string(exp.Kind), Ref: url}
		facts := s.prober.Probe(ctx, url, timeout)
		results = append(results, policy.EvaluateEndpoint(target, exp, facts)...)
	}
	return results, nil
}

func (s *AuditService) resolveContainers(ctx context.Context, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	if s.containers == nil {
		return nil, fmt.Errorf("%w: container runtime unavailable", domain.ErrInspectionFailed)
	}
	return s.containers.ListContainers(ctx)
}

func (s *AuditService) resolveDockerfiles(req AuditRequest) ([]string, error) {
	if len(req.Targets) > 0 {
		return req.Targets, nil
	}
	return s.files.FindDockerfiles(req.ProjectPath)
}

// resolveImages returns project images plus the configured base images.
// Image discovery is best-effort: multistage still audits Dockerfiles when
// the daemon is unreachable.
func (s *AuditService) resolveImages(ctx context.Context, cfg domain.ProjectConfig) []string {
	var refs []string
	if s.images != nil {
		if found, err := s.images.ListImages(ctx, cfg.ImagePrefix); err == nil {
			refs = append(refs, found...)
		}
	}
	refs = append(refs, cfg.BaseImages...)
	return refs
}

// fetchContainerFacts pulls fact bundles for all containers concurrently.
// The indexed slices keep the deterministic target order regardless of
// completion order.
func (s *AuditService) fetchContainerFacts(ctx context.Context, names []string) ([]*domain.ContainerFacts, []error) {
	facts := make([]*domain.ContainerFacts, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for idx, name := range names {
		g.Go(func() error {
			facts[idx], errs[idx] = s.containers.ContainerFacts(gctx, name)
			return nil
		})
	}
	_ = g.Wait() // per-target errors are collected, never propagated
	return facts, errs
}
