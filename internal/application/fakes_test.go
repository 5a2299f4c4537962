package application_test

import (
	"context"
	"time"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// fakeContainers serves canned container facts keyed by name.
type fakeContainers struct {
	names []string
	facts map[string]*domain.ContainerFacts
	errs  map[string]error

	listErr error
}

func (f *fakeContainers) ListContainers(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.names, nil
}

func (f *fakeContainers) ContainerFacts(ctx context.Context, name string) (*domain.ContainerFacts, error) {
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if facts, ok := f.facts[name]; ok {
		return facts, nil
	}
	return nil, domain.ErrTargetNotFound
}

type fakeImages struct {
	refs  []string
	facts map[string]*domain.ImageFacts
}

func (f *fakeImages) ListImages(ctx context.Context, prefix string) ([]string, error) {
	return f.refs, nil
}

func (f *fakeImages) ImageFacts(ctx context.Context, ref string) (*domain.ImageFacts, error) {
	if facts, ok := f.facts[ref]; ok {
		return facts, nil
	}
	return nil, domain.ErrTargetNotFound
}

type fakeFiles struct {
	dockerfiles     []string
	envFiles        []string
	composeFile     string
	composeErr      error
	dockerfileFacts map[string]*domain.DockerfileFacts
	envFileFacts    map[string]*domain.EnvFileFacts
	composeFacts    *domain.ComposeFacts
}

func (f *fakeFiles) FindDockerfiles(root string) ([]string, error) { return f.dockerfiles, nil }
func (f *fakeFiles) FindEnvFiles(root string) ([]string, error)    { return f.envFiles, nil }

func (f *fakeFiles) FindComposeFile(root string) (string, error) {
	if f.composeErr != nil {
		return "", f.composeErr
	}
	return f.composeFile, nil
}

func (f *fakeFiles) DockerfileFacts(path string) (*domain.DockerfileFacts, error) {
	if facts, ok := f.dockerfileFacts[path]; ok {
		return facts, nil
	}
	return nil, domain.ErrTargetNotFound
}

func (f *fakeFiles) ComposeFacts(path string) (*domain.ComposeFacts, error) {
	if f.composeFacts == nil {
		return nil, domain.ErrParseError
	}
	return f.composeFacts, nil
}

func (f *fakeFiles) EnvFileFacts(path string) (*domain.EnvFileFacts, error) {
	if facts, ok := f.envFileFacts[path]; ok {
		return facts, nil
	}
	return nil, domain.ErrTargetNotFound
}

// fakeProber records probed URLs and serves canned facts keyed by path suffix.
type fakeProber struct {
	byPath map[string]*domain.EndpointFacts
	probed []string
}

func (f *fakeProber) Probe(ctx context.Context, url string, timeout time.Duration) *domain.EndpointFacts {
	f.probed = append(f.probed, url)
	for suffix, facts := range f.byPath {
		if len(url) >= len(suffix) && url[len(url)-len(suffix):] == suffix {
			return facts
		}
	}
	return &domain.EndpointFacts{URL: url, TransportErr: "connection refused"}
}

type fakeConfigs struct {
	cfg domain.ProjectConfig
	err error
}

func (f *fakeConfigs) Load(projectPath string) (domain.ProjectConfig, error) {
	if f.err != nil {
		return domain.ProjectConfig{}, f.err
	}
	return f.cfg, nil
}

type fakeVulnScanner struct {
	available bool
	summaries []domain.ImageScanSummary
	err       error
}

func (f *fakeVulnScanner) Available() bool { return f.available }

func (f *fakeVulnScanner) Scan(ctx context.Context, refs []string, severity string) ([]domain.ImageScanSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}
