// Package dockerd implements container and image inspection against the
// Docker daemon. It extracts structural facts only; all judgment lives in the
// policy package.
package dockerd

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/sirupsen/logrus"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// Inspector implements domain.ContainerInspector and domain.ImageInspector
// over the Docker Engine API.
type Inspector struct {
	cli *client.Client
	log *logrus.Logger
}

// New connects to the daemon using the standard environment configuration.
func New(log *logrus.Logger) (*Inspector, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("initializing docker client: %w", err)
	}
	return &Inspector{cli: cli, log: log}, nil
}

// Close releases the underlying client connection.
func (i *Inspector) Close() error { return i.cli.Close() }

// ListContainers returns the names of all running containers in the order the
// daemon reports them.
func (i *Inspector) ListContainers(ctx context.Context) ([]string, error) {
	containers, err := i.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: listing containers: %v", domain.ErrInspectionFailed, err)
	}
	names := make([]string, 0, len(containers))
	for _, c := range containers {
		if len(c.Names) > 0 {
			names = append(names, strings.TrimPrefix(c.Names[0], "/"))
		} else {
			names = append(names, c.ID[:12])
		}
	}
	i.log.WithField("count", len(names)).Debug("resolved running containers")
	return names, nil
}

// ContainerFacts pulls a fresh fact bundle for one container. PID-1 identity
// is read from the container's process table and cross-checked with a
// whoami-style probe run as the image's default entry user.
func (i *Inspector) ContainerFacts(ctx context.Context, name string) (*domain.ContainerFacts, error) {
	insp, err := i.cli.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: container %s", domain.ErrTargetNotFound, name)
		}
		return nil, fmt.Errorf("%w: inspecting container %s: %v", domain.ErrInspectionFailed, name, err)
	}

	// UID -1 marks "probe did not run"; the zero value would read as root.
	facts := &domain.ContainerFacts{Name: strings.TrimPrefix(insp.Name, "/"), Pid1UID: -1}
	if insp.Config != nil {
		facts.ConfigUser = insp.Config.User
		facts.Env = append(facts.Env, insp.Config.Env...)
	}
	if hc := insp.HostConfig; hc != nil {
		facts.CapAdd = domain.NormalizeCapabilities(hc.CapAdd)
		facts.CapDrop = domain.NormalizeCapabilities(hc.CapDrop)
		facts.SecurityOpt = append(facts.SecurityOpt, hc.SecurityOpt...)
		facts.Privileged = hc.Privileged
		facts.UsernsMode = string(hc.UsernsMode)
		facts.ReadonlyRootfs = hc.ReadonlyRootfs
		facts.MemoryLimitBytes = hc.Memory
		facts.CPUCores = cpuCores(hc.NanoCPUs, hc.CPUQuota, hc.CPUPeriod)
	}

	// Probes are best-effort: a minimal image without ps or whoami leaves the
	// corresponding fields empty, and the policy judges what it sees.
	if out, err := i.execProbe(ctx, name, []string{"ps", "-o", "user,pid"}); err == nil {
		facts.Pid1User = parsePid1User(out)
	} else {
		i.log.WithField("container", name).WithError(err).Debug("ps probe failed")
	}
	if out, err := i.execProbe(ctx, name, []string{"cat", "/proc/1/status"}); err == nil {
		facts.Pid1UID = parseUIDFromStatus(out)
	} else {
		i.log.WithField("container", name).WithError(err).Debug("proc status probe failed")
	}
	if out, err := i.execProbe(ctx, name, []string{"whoami"}); err == nil {
		facts.ProbeUser = strings.TrimSpace(out)
	} else {
		i.log.WithField("container", name).WithError(err).Debug("whoami probe failed")
	}

	return facts, nil
}

// ListImages returns image refs whose repo tag starts with the given prefix.
// An empty prefix matches nothing: auditing every image on a shared daemon is
// never what the caller wants.
func (i *Inspector) ListImages(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		return nil, nil
	}
	summaries, err := i.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: listing images: %v", domain.ErrInspectionFailed, err)
	}
	var refs []string
	for _, s := range summaries {
		for _, tag := range s.RepoTags {
			if strings.HasPrefix(tag, prefix) {
				refs = append(refs, tag)
			}
		}
	}
	i.log.WithField("prefix", prefix).WithField("count", len(refs)).Debug("resolved project images")
	return refs, nil
}

// ImageFacts pulls size and layer facts for one image ref.
func (i *Inspector) ImageFacts(ctx context.Context, ref string) (*domain.ImageFacts, error) {
	insp, _, err := i.cli.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: image %s", domain.ErrTargetNotFound, ref)
		}
		return nil, fmt.Errorf("%w: inspecting image %s: %v", domain.ErrInspectionFailed, ref, err)
	}

	layers := len(insp.RootFS.Layers)
	if layers == 0 {
		history, err := i.cli.ImageHistory(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: image history for %s: %v", domain.ErrInspectionFailed, ref, err)
		}
		for _, h := range history {
			if h.Size > 0 {
				layers++
			}
		}
	}

	return &domain.ImageFacts{
		Ref:        ref,
		LayerCount: layers,
		SizeBytes:  insp.Size,
	}, nil
}

// execProbe runs a short command inside the container's namespace as its
// default user and returns combined output.
func (i *Inspector) execProbe(ctx context.Context, name string, cmd []string) (string, error) {
	exec, err := i.cli.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("creating exec: %w", err)
	}

	resp, err := i.cli.ContainerExecAttach(ctx, exec.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", fmt.Errorf("attaching exec: %w", err)
	}
	defer resp.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, resp.Reader); err != nil {
		return "", fmt.Errorf("reading exec output: %w", err)
	}
	if stdout.Len() == 0 && stderr.Len() > 0 {
		return "", fmt.Errorf("probe %v: %s", cmd, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// cpuCores folds both CPU limit representations into one figure: NanoCPUs
// when present, otherwise the legacy quota/period pair.
func cpuCores(nanoCPUs, quota, period int64) float64 {
	if nanoCPUs > 0 {
		return float64(nanoCPUs) / 1e9
	}
	if quota > 0 && period > 0 {
		return float64(quota) / float64(period)
	}
	return 0
}

// parsePid1User extracts the user of the PID 1 row from `ps -o user,pid`
// output.
func parsePid1User(out string) string {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "1" {
			return fields[0]
		}
	}
	return ""
}

// parseUIDFromStatus extracts the real UID from /proc/1/status content.
// Returns -1 when the Uid line is absent so an unreadable probe is never
// mistaken for root.
func parseUIDFromStatus(out string) int {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			if uid, err := strconv.Atoi(fields[1]); err == nil {
				return uid
			}
		}
	}
	return -1
}
