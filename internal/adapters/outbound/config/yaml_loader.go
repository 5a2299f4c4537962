package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stackaudit/stackaudit/internal/domain"
)

const fileName = ".stackaudit.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .stackaudit.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .stackaudit.yaml from projectPath. Returns the default config
// when the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	cfg := domain.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}
	if cfg.HTTPTimeoutMS == 0 {
		cfg.HTTPTimeoutMS = domain.DefaultConfig().HTTPTimeoutMS
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultConfig().BaseURL
	}
	return cfg, nil
}
