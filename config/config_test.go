package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRE_HOURS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AWS_S3_EXPORTS_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.False(t, cfg.AWS.ExportsEnabled())
}

func TestLoad_RejectsNonPositiveExpiry(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRE_HOURS", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ngo", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/ngo?sslmode=disable", c.DSN())

	c.URL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}
