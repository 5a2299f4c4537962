package domain

import (
	"context"
	"time"
)

// ContainerInspector queries the container runtime for structural facts.
type ContainerInspector interface {
	// ListContainers returns the names of all running containers, in the
	// order the runtime reports them.
	ListContainers(ctx context.Context) ([]string, error)
	// ContainerFacts pulls a fresh fact bundle for one container by name.
	ContainerFacts(ctx context.Context, name string) (*ContainerFacts, error)
}

// ImageInspector queries the image store.
type ImageInspector interface {
	// ListImages returns image refs matching the project prefix.
	ListImages(ctx context.Context, prefix string) ([]string, error)
	// ImageFacts pulls size and layer facts for one image ref.
	ImageFacts(ctx context.Context, ref string) (*ImageFacts, error)
}

// FileInspector discovers and scans Dockerfiles, compose files and env files.
// Scanning is narrow and purpose-built: only the fields the policy needs.
type FileInspector interface {
	FindDockerfiles(root string) ([]string, error)
	FindEnvFiles(root string) ([]string, error)
	FindComposeFile(root string) (string, error)
	DockerfileFacts(path string) (*DockerfileFacts, error)
	ComposeFacts(path string) (*ComposeFacts, error)
	EnvFileFacts(path string) (*EnvFileFacts, error)
}

// HTTPProber performs one bounded HTTP GET against a service endpoint.
// A transport failure is reported inside EndpointFacts, not as an error:
// it is a valid audit observation, not an inspection breakdown.
type HTTPProber interface {
	Probe(ctx context.Context, url string, timeout time.Duration) *EndpointFacts
}

// VulnScanner invokes the external vulnerability scanner.
type VulnScanner interface {
	// Available reports whether the scanner binary can be found.
	Available() bool
	// Scan runs the scanner over the given image refs with a severity filter
	// such as "HIGH,CRITICAL".
	Scan(ctx context.Context, refs []string, severity string) ([]ImageScanSummary, error)
}

// ConfigLoader reads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// GitInfo resolves version-control provenance for report stamping.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
