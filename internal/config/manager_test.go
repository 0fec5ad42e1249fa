package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.HasCredentials())
	assert.Empty(t, cfg.DefaultIDs)
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := &AppConfig{
		AccountName:    "robot@example.iam.gserviceaccount.com",
		PrivateKeyPath: "/keys/analytics.pem",
		ReadOnly:       true,
		DefaultIDs:     []string{"12345", "67890"},
	}
	require.NoError(t, SaveConfig(in))

	out, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, in.AccountName, out.AccountName)
	assert.Equal(t, in.PrivateKeyPath, out.PrivateKeyPath)
	assert.True(t, out.ReadOnly)
	assert.Equal(t, in.DefaultIDs, out.DefaultIDs)
	assert.True(t, out.HasCredentials())
	assert.False(t, out.UpdatedAt.IsZero())
}

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ConfigDirName), dir)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

	tokenPath, err := DefaultTokenPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TokenFileName), tokenPath)
}
