package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackaudit/stackaudit/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 5000, cfg.HTTPTimeoutMS)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_RejectsUnknownRole(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Roles = map[string]domain.ServiceRole{"cache": "memcached"}

	err := cfg.Validate()
	assert.ErrorContains(t, err, "memcached")
}

func TestConfigValidate_RejectsNegativeTimeout(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.HTTPTimeoutMS = -1

	assert.Error(t, cfg.Validate())
}

func TestRoleFor_ExplicitMappingWins(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Roles = map[string]domain.ServiceRole{
		// Inference alone would classify this as a database.
		"db-proxy": domain.RoleAPIBackend,
	}

	assert.Equal(t, domain.RoleAPIBackend, cfg.RoleFor("demo-db-proxy"))
}

func TestRoleFor_OverlappingPatternsResolveDeterministically(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Roles = map[string]domain.ServiceRole{
		"api": domain.RoleAPIBackend,
		"db":  domain.RoleDatabase,
	}

	// Both patterns match; database must win on every run, independent of
	// map iteration order.
	for i := 0; i < 200; i++ {
		assert.Equal(t, domain.RoleDatabase, cfg.RoleFor("api-db-sync"))
	}
}

func TestRoleFor_FallsBackToInference(t *testing.T) {
	cfg := domain.DefaultConfig()

	assert.Equal(t, domain.RoleDatabase, cfg.RoleFor("demo-postgres"))
	assert.Equal(t, domain.RoleUnknown, cfg.RoleFor("queue-worker"))
}
