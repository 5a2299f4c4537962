// Package files implements discovery and narrow scanning of Dockerfiles,
// compose files and env files. It is not a general parser: it extracts only
// the specific fields the policy catalog needs.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stackaudit/stackaudit/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"dist":         true,
	"bin":          true,
}

// Scanner implements domain.FileInspector by walking the project tree.
type Scanner struct {
	log *logrus.Logger
}

func New(log *logrus.Logger) *Scanner {
	return &Scanner{log: log}
}

// FindDockerfiles returns all Dockerfiles under root, sorted by path so
// target resolution order is deterministic.
func (s *Scanner) FindDockerfiles(root string) ([]string, error) {
	return s.findByName(root, func(name string) bool {
		return name == "Dockerfile" || strings.HasPrefix(name, "Dockerfile.")
	})
}

// FindEnvFiles returns all .env files under root (including variants such as
// .env.example), sorted by path.
func (s *Scanner) FindEnvFiles(root string) ([]string, error) {
	return s.findByName(root, func(name string) bool {
		return name == ".env" || strings.HasPrefix(name, ".env.")
	})
}

// FindComposeFile returns the project's compose file by conventional names.
func (s *Scanner) FindComposeFile(root string) (string, error) {
	for _, name := range []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: compose file under %s", domain.ErrTargetNotFound, root)
}

func (s *Scanner) findByName(root string, match func(string) bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if match(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %v", domain.ErrInspectionFailed, root, err)
	}
	s.log.WithField("root", root).WithField("count", len(found)).Debug("file discovery complete")
	return found, nil
}

var (
	fromPattern = regexp.MustCompile(`(?im)^\s*FROM\s+([^\s]+)(?:\s+AS\s+\S+)?\s*$`)
	userPattern = regexp.MustCompile(`(?im)^\s*USER\s+([^\s]+)\s*$`)
)

// DockerfileFacts extracts FROM/USER statements and secret-like literals from
// one Dockerfile. The service name is the containing directory.
func (s *Scanner) DockerfileFacts(path string) (*domain.DockerfileFacts, error) {
	text, err := readFile(path)
	if err != nil {
		return nil, err
	}

	facts := &domain.DockerfileFacts{
		Path:    path,
		Service: filepath.Base(filepath.Dir(path)),
	}
	for _, m := range fromPattern.FindAllStringSubmatch(text, -1) {
		facts.FromImages = append(facts.FromImages, m[1])
	}
	for _, m := range userPattern.FindAllStringSubmatch(text, -1) {
		facts.Users = append(facts.Users, m[1])
	}
	facts.SecretHits = domain.FindSecretHits(strings.Split(text, "\n"))
	return facts, nil
}

// ComposeFacts extracts the structural fields the orchestration rules need.
// Line-oriented on purpose: the policy cares about presence and counts, not
// the full compose grammar.
func (s *Scanner) ComposeFacts(path string) (*domain.ComposeFacts, error) {
	text, err := readFile(path)
	if err != nil {
		return nil, err
	}

	facts := &domain.ComposeFacts{Path: path}
	inServices := false
	// Service names sit at whatever indent the file uses under services:.
	// Learned from the first key so 2-space and 4-space files both count.
	serviceIndent := -1
	for _, raw := range strings.Split(text, "\n") {
		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		topLevel := indent == 0
		switch {
		case topLevel && line == "services:":
			inServices = true
			serviceIndent = -1
			continue
		case topLevel && line == "networks:":
			facts.HasNetworks = true
			inServices = false
			continue
		case topLevel && line == "volumes:":
			facts.HasVolumes = true
			inServices = false
			continue
		case topLevel:
			inServices = false
			continue
		}

		if inServices && strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			if serviceIndent == -1 {
				serviceIndent = indent
			}
			if indent == serviceIndent {
				facts.ServiceCount++
			}
		}
		switch {
		case strings.HasPrefix(line, "depends_on:"):
			facts.DependsOnCount++
		case strings.HasPrefix(line, "healthcheck:"):
			facts.HealthcheckCount++
		case strings.HasPrefix(line, "restart:"):
			policy := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "restart:")), `"'`)
			facts.RestartPolicies = append(facts.RestartPolicies, policy)
		}
	}
	return facts, nil
}

// EnvFileFacts extracts secret-like key=value entries from one env file.
func (s *Scanner) EnvFileFacts(path string) (*domain.EnvFileFacts, error) {
	text, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.EnvFileFacts{
		Path:       path,
		SecretHits: domain.FindSecretHits(strings.Split(text, "\n")),
	}, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrTargetNotFound, path)
		}
		return "", fmt.Errorf("%w: reading %s: %v", domain.ErrInspectionFailed, path, err)
	}
	return string(data), nil
}
