package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DBT_HOST", "acme.cloud.getdbt.com")
	t.Setenv("DBT_TOKEN", "dbts_token")
	t.Setenv("DBT_ENV_ID", "42")
	t.Setenv("DBT_PROJECT_DIR", "/tmp/project")
	t.Setenv("MULTICELL_ACCOUNT_PREFIX", "")
	t.Setenv("DBT_PATH", "")
	t.Setenv("DBT_EXECUTABLE_TYPE", "")
	t.Setenv("DBT_CLI_ARGS", "")
	t.Setenv("DBT_USER_ID", "")
	t.Setenv("DISABLE_SEMANTIC_LAYER", "")
	t.Setenv("DISABLE_DISCOVERY", "")
	t.Setenv("DISABLE_DBT_CLI", "")
	t.Setenv("DISABLE_REMOTE", "")
}

func TestLoadConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBT_CLI_ARGS", "--quiet --no-use-colors")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "acme.cloud.getdbt.com", cfg.Host)
	assert.Equal(t, int64(42), cfg.EnvironmentId)
	assert.Equal(t, []string{"--quiet", "--no-use-colors"}, cfg.DbtGlobalArgs)
}

func TestLoadConfigAggregatesProblems(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBT_HOST", "")
	t.Setenv("DBT_TOKEN", "")
	t.Setenv("DBT_ENV_ID", "nope")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DBT_HOST")
	assert.Contains(t, err.Error(), "DBT_TOKEN")
	assert.Contains(t, err.Error(), "DBT_ENV_ID")
}

func TestLoadConfigExecutableType(t *testing.T) {
	setBaseEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "dbt", cfg.DbtPath)

	t.Setenv("DBT_EXECUTABLE_TYPE", "cloud")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "dbt-cloud", cfg.DbtPath)

	t.Setenv("DBT_PATH", "/opt/dbt/bin/dbt")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/opt/dbt/bin/dbt", cfg.DbtPath)

	t.Setenv("DBT_PATH", "")
	t.Setenv("DBT_EXECUTABLE_TYPE", "fusion")
	_, err = loadConfig()
	require.Error(t, err)
}

func TestLoadConfigRemoteAndUserId(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBT_USER_ID", "7")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.UserId)
	assert.False(t, cfg.DisableRemote)

	t.Setenv("DISABLE_REMOTE", "true")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.DisableRemote)

	t.Setenv("DBT_USER_ID", "seven")
	_, err = loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DBT_USER_ID")
}

func TestLoadConfigRejectsServiceHost(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBT_HOST", "semantic-layer.cloud.getdbt.com")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service endpoint")
}

func TestLoadConfigRemoteDisabledSkipsRemoteChecks(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBT_HOST", "")
	t.Setenv("DBT_TOKEN", "")
	t.Setenv("DBT_ENV_ID", "")
	t.Setenv("DISABLE_SEMANTIC_LAYER", "true")
	t.Setenv("DISABLE_DISCOVERY", "1")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.DisableSemanticLayer)
	assert.True(t, cfg.DisableDiscovery)
	assert.False(t, cfg.DisableCli)
}

func TestLoadConfigCliRequiresProjectDir(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBT_PROJECT_DIR", "")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DBT_PROJECT_DIR")
}
