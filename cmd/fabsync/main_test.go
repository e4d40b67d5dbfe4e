package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bricolab/fabsync/internal/config"
)

func cmdWithConfigFlag(path string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", path, "")
	return cmd
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := &config.Config{
		DataDir: t.TempDir(),
		Drive:   config.DriveConfig{FolderID: "folder-1"},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := loadConfig(cmdWithConfigFlag(path))
	require.NoError(t, err)
	assert.Equal(t, "folder-1", loaded.Drive.FolderID)
	assert.Equal(t, "prefix", loaded.Drive.Match, "validation applies defaults")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := &config.Config{DataDir: t.TempDir()}
	require.NoError(t, cfg.Save(path))

	t.Setenv("FABSYNC_DRIVE_TOKEN", "tok-from-env")
	t.Setenv("FABSYNC_ERP_API_KEY", "key-from-env")

	loaded, err := loadConfig(cmdWithConfigFlag(path))
	require.NoError(t, err)
	assert.Equal(t, "tok-from-env", loaded.Drive.APIToken)
	assert.Equal(t, "key-from-env", loaded.ERP.APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(cmdWithConfigFlag(filepath.Join(t.TempDir(), "nope.json")))
	assert.Error(t, err)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cmd := newInitCmd()
	cmd.Flags().String("config", path, "")
	require.NoError(t, cmd.RunE(cmd, nil))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDataDir, loaded.DataDir)

	// refuses to overwrite
	assert.Error(t, cmd.RunE(cmd, nil))
}
