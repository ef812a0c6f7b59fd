package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsUnmarshal(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "wetmill", cfg.Database.Name)
	assert.Equal(t, 3, cfg.Tasks.Attempts)
	assert.Equal(t, 300, cfg.Redis.ReportTTLSeconds)
	assert.Empty(t, cfg.Archive.Bucket)
}

func TestApplyEnvOverridesDatabase(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ARCHIVE_BUCKET", "reports")

	var cfg Config
	cfg.Database.Port = 5432
	applyEnv(&cfg)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "reports", cfg.Archive.Bucket)
}

func TestDSN(t *testing.T) {
	var cfg Config
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Host = "h"
	cfg.Database.Port = 5432
	cfg.Database.Name = "wetmill"
	cfg.Database.MaxConns = 10

	assert.Equal(t, "postgres://u:p@h:5432/wetmill?pool_max_conns=10", cfg.DSN())
}
