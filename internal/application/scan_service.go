package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

// ScanService drives the external vulnerability scanner as its own audit
// category.
type ScanService struct {
	scanner domain.VulnScanner
	images  domain.ImageInspector
	configs domain.ConfigLoader
}

func NewScanService(scanner domain.VulnScanner, images domain.ImageInspector, configs domain.ConfigLoader) *ScanService {
	return &ScanService{scanner: scanner, images: images, configs: configs}
}

// ScanRequest configures one vulnerability scan run.
type ScanRequest struct {
	ProjectPath string
	// Refs optionally overrides image discovery.
	Refs []string
	// Severity is the scanner's severity filter, e.g. "HIGH,CRITICAL".
	Severity string
	// AllowMissing soft-skips the scan when the scanner binary is absent
	// (deploy-pipeline mode). When false, a missing scanner is a hard failure.
	AllowMissing bool
}

// ErrScanSkipped signals that the scanner was unavailable and the caller
// opted into soft-skipping.
var ErrScanSkipped = errors.New("scan skipped: scanner unavailable")

// Run scans the resolved images and scores the results like any other
// category.
func (s *ScanService) Run(ctx context.Context, req ScanRequest) (*domain.CategoryReport, error) {
	if !s.scanner.Available() {
		if req.AllowMissing {
			return nil, ErrScanSkipped
		}
		return nil, fmt.Errorf("%w: install trivy or pass --allow-missing", domain.ErrToolUnavailable)
	}

	refs := req.Refs
	if len(refs) == 0 {
		cfg, err := s.configs.Load(req.ProjectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if s.images != nil {
			if found, err := s.images.ListImages(ctx, cfg.ImagePrefix); err == nil {
				refs = append(refs, found...)
			}
		}
		refs = append(refs, cfg.BaseImages...)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no images to scan", domain.ErrNoTargets)
	}

	severity := req.Severity
	if severity == "" {
		severity = "HIGH,CRITICAL"
	}

	summaries, err := s.scanner.Scan(ctx, refs, severity)
	if err != nil {
		return nil, err
	}

	results := make([]domain.CheckResult, 0, len(summaries))
	for _, summary := range summaries {
		target := domain.Target{Kind: domain.TargetImage, Name: summary.Ref, Ref: summary.Ref}
		results = append(results, policy.EvaluateImageScan(target, summary))
	}

	report := domain.NewCategoryReport(policy.CategoryScan, policy.ThresholdsFor(policy.CategoryScan), results)
	return &report, nil
}
