package cli

import (
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/config"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/dockerd"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/files"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/gitinfo"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/httpprobe"
	"github.com/stackaudit/stackaudit/internal/adapters/outbound/trivyscan"
	"github.com/stackaudit/stackaudit/internal/application"
	"github.com/stackaudit/stackaudit/internal/domain"
)

// deps wires the outbound adapters into the application services. Built once
// per command invocation.
type deps struct {
	audit   *application.AuditService
	suite   *application.SuiteService
	scan    *application.ScanService
	git     domain.GitInfo
	cleanup func()
}

// buildDeps constructs the full adapter set. A Docker daemon that cannot be
// reached does not abort startup: the file-based categories still work, and
// the container categories surface the failure as domain.ErrInspectionFailed
// when they actually need the daemon.
func buildDeps() *deps {
	var (
		containers domain.ContainerInspector
		images     domain.ImageInspector
		cleanup    = func() {}
	)
	if inspector, err := dockerd.New(log); err != nil {
		log.WithError(err).Debug("docker daemon unavailable")
	} else {
		containers = inspector
		images = inspector
		cleanup = func() { _ = inspector.Close() }
	}

	scanner := files.New(log)
	prober := httpprobe.New(log)
	loader := config.New()

	audit := application.NewAuditService(containers, images, scanner, prober, loader)
	return &deps{
		audit:   audit,
		suite:   application.NewSuiteService(audit),
		scan:    application.NewScanService(trivyscan.New(log), images, loader),
		git:     gitinfo.New(),
		cleanup: cleanup,
	}
}

// stampCommit records the audited project's HEAD commit on the report when the
// project is a git repo.
func (d *deps) stampCommit(projectPath string) string {
	if !d.git.IsGitRepo(projectPath) {
		return ""
	}
	hash, err := d.git.CommitHash(projectPath)
	if err != nil {
		log.WithError(err).Debug("reading HEAD commit")
		return ""
	}
	return hash
}
