package files_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackaudit/stackaudit/internal/adapters/outbound/files"
	"github.com/stackaudit/stackaudit/internal/domain"
)

func newScanner() *files.Scanner {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return files.New(log)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindDockerfiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "api", "Dockerfile"), "FROM node:22-alpine\n")
	writeFile(t, filepath.Join(root, "web", "Dockerfile.prod"), "FROM nginx:alpine\n")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "Dockerfile"), "FROM scratch\n")
	writeFile(t, filepath.Join(root, "README.md"), "docs\n")

	found, err := newScanner().FindDockerfiles(root)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "api", "Dockerfile"),
		filepath.Join(root, "web", "Dockerfile.prod"),
	}, found)
}

func TestFindEnvFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "PORT=3000\n")
	writeFile(t, filepath.Join(root, ".env.example"), "PORT=\n")
	writeFile(t, filepath.Join(root, "environment.txt"), "x\n")

	found, err := newScanner().FindEnvFiles(root)

	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestFindComposeFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docker-compose.yml"), "services:\n")

	path, err := newScanner().FindComposeFile(root)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docker-compose.yml"), path)
}

func TestFindComposeFile_Missing(t *testing.T) {
	_, err := newScanner().FindComposeFile(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestDockerfileFacts(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "api", "Dockerfile")
	writeFile(t, path, `FROM node:22 AS builder
WORKDIR /app
RUN npm ci

FROM node:22-alpine
COPY --from=builder /app/dist ./dist
USER root
ENV API_TOKEN=eyJhbGciOiJIUzI1NiJ9.payload
USER node
CMD ["node", "dist/main.js"]
`)

	facts, err := newScanner().DockerfileFacts(path)

	require.NoError(t, err)
	assert.Equal(t, "api", facts.Service)
	assert.Equal(t, []string{"node:22", "node:22-alpine"}, facts.FromImages)
	assert.Equal(t, "node:22-alpine", facts.LastFrom())
	assert.Equal(t, []string{"root", "node"}, facts.Users)
	require.Len(t, facts.SecretHits, 1)
	assert.Equal(t, "API_TOKEN", facts.SecretHits[0].Key)
}

func TestDockerfileFacts_NotFound(t *testing.T) {
	_, err := newScanner().DockerfileFacts(filepath.Join(t.TempDir(), "Dockerfile"))
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestComposeFacts(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "docker-compose.yml")
	writeFile(t, path, `services:
  db:
    image: postgres:16-alpine
    restart: unless-stopped
    healthcheck:
      test: ["CMD-SHELL", "pg_isready"]
  api:
    build: ./api
    restart: "on-failure"
    depends_on:
      - db
  web:
    image: nginx:alpine
    depends_on:
      - api

networks:
  demo:

volumes:
  dbdata:
`)

	facts, err := newScanner().ComposeFacts(path)

	require.NoError(t, err)
	assert.Equal(t, 3, facts.ServiceCount)
	assert.True(t, facts.HasNetworks)
	assert.True(t, facts.HasVolumes)
	assert.Equal(t, 2, facts.DependsOnCount)
	assert.Equal(t, 1, facts.HealthcheckCount)
	assert.Equal(t, []string{"unless-stopped", "on-failure"}, facts.RestartPolicies)
}

func TestComposeFacts_FourSpaceIndent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "docker-compose.yml")
	writeFile(t, path, `services:
    db:
        image: postgres:16-alpine
        healthcheck:
            test: ["CMD-SHELL", "pg_isready"]
    api:
        build: ./api
        depends_on:
            - db
`)

	facts, err := newScanner().ComposeFacts(path)

	require.NoError(t, err)
	assert.Equal(t, 2, facts.ServiceCount)
	assert.Equal(t, 1, facts.DependsOnCount)
	assert.Equal(t, 1, facts.HealthcheckCount)
}

func TestComposeFacts_EmptyFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "compose.yml")
	writeFile(t, path, "# nothing here\n")

	facts, err := newScanner().ComposeFacts(path)

	require.NoError(t, err)
	assert.Equal(t, 0, facts.ServiceCount)
	assert.False(t, facts.HasNetworks)
}

func TestEnvFileFacts(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".env")
	writeFile(t, path, "PORT=3000\nPOSTGRES_PASSWORD=changeme\n# DB_SECRET=commented\n")

	facts, err := newScanner().EnvFileFacts(path)

	require.NoError(t, err)
	require.Len(t, facts.SecretHits, 1)
	assert.Equal(t, "POSTGRES_PASSWORD", facts.SecretHits[0].Key)
	assert.Equal(t, 2, facts.SecretHits[0].Line)
}
