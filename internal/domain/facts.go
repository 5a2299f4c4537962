package domain

import "time"

// ContainerFacts is the raw structural data pulled from one running
// container. Fetched fresh per run and never mutated after evaluation.
type ContainerFacts struct {
	Name string `json:"name"`

	// PID-1 identity, read from the container's process table. A UID of -1
	// means the probe could not run; 0 means root.
	Pid1User string `json:"pid1_user"`
	Pid1UID  int    `json:"pid1_uid"`

	// ConfigUser is the image's declared default user (Config.User).
	ConfigUser string `json:"config_user"`
	// ProbeUser is the result of a whoami-style probe run as the container's
	// default entry user. Recorded independently so the evaluator can flag
	// drift between declared and effective users.
	ProbeUser string `json:"probe_user"`

	// Capabilities, normalized to canonical CAP_* form.
	CapAdd  []string `json:"cap_add"`
	CapDrop []string `json:"cap_drop"`

	SecurityOpt    []string `json:"security_opt"`
	Privileged     bool     `json:"privileged"`
	UsernsMode     string   `json:"userns_mode"`
	ReadonlyRootfs bool     `json:"readonly_rootfs"`

	// MemoryLimitBytes is 0 when unlimited. CPUCores folds both the legacy
	// quota/period representation and NanoCPUs into one figure; 0 means no
	// CPU limit.
	MemoryLimitBytes int64    `json:"memory_limit_bytes"`
	CPUCores         float64  `json:"cpu_cores"`
	Env              []string `json:"env"`
}

// ImageFacts is the raw structural data pulled from one built image.
type ImageFacts struct {
	Ref        string `json:"ref"`
	LayerCount int    `json:"layer_count"`
	SizeBytes  int64  `json:"size_bytes"`
}

// SecretHit is one secret-pattern match inside a scanned file.
type SecretHit struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// DockerfileFacts is the narrow, typed view of a Dockerfile the policy needs.
// No general Dockerfile grammar: only FROM, USER and secret-like literals.
type DockerfileFacts struct {
	Path string `json:"path"`
	// Service is the name of the Dockerfile's containing directory, used for
	// role inference.
	Service    string      `json:"service"`
	FromImages []string    `json:"from_images"`
	Users      []string    `json:"users"`
	SecretHits []SecretHit `json:"secret_hits,omitempty"`
}

// LastFrom returns the final-stage base image, or "" for an empty Dockerfile.
func (f DockerfileFacts) LastFrom() string {
	if len(f.FromImages) == 0 {
		return ""
	}
	return f.FromImages[len(f.FromImages)-1]
}

// ComposeFacts is the narrow structural view of a compose file.
type ComposeFacts struct {
	Path             string   `json:"path"`
	ServiceCount     int      `json:"service_count"`
	HasNetworks      bool     `json:"has_networks"`
	HasVolumes       bool     `json:"has_volumes"`
	DependsOnCount   int      `json:"depends_on_count"`
	HealthcheckCount int      `json:"healthcheck_count"`
	RestartPolicies  []string `json:"restart_policies"`
}

// EnvFileFacts holds the key=value entries of one env file.
type EnvFileFacts struct {
	Path       string      `json:"path"`
	SecretHits []SecretHit `json:"secret_hits,omitempty"`
}

// EndpointFacts is the observed response of one HTTP probe. TransportErr is
// set when no response was received at all (connection refused, timeout);
// a non-2xx status is still a valid result with TransportErr empty.
type EndpointFacts struct {
	URL          string        `json:"url"`
	StatusCode   int           `json:"status_code"`
	ContentType  string        `json:"content_type"`
	Body         []byte        `json:"-"`
	Elapsed      time.Duration `json:"elapsed"`
	TransportErr string        `json:"transport_err,omitempty"`
}

// ImageScanSummary is the per-image result of an external vulnerability scan.
type ImageScanSummary struct {
	Ref      string `json:"ref"`
	Critical int    `json:"critical"`
	High     int    `json:"high"`
}
