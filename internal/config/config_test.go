package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{
		DataDir: t.TempDir(),
		Drive: DriveConfig{
			FolderID:  "folder-123",
			TargetDir: "docs",
			FileTypes: []string{"pdf"},
			Match:     "prefix",
		},
		ERP: ERPConfig{
			URL:      "https://erp.example.com",
			Database: "prod",
			Username: "bot@example.com",
		},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, cfg.Drive, loaded.Drive)
	assert.Equal(t, cfg.ERP, loaded.ERP)
	assert.Equal(t, path, loaded.Path)
}

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir()}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "prefix", cfg.Drive.Match)
	assert.Equal(t, "docs", cfg.Drive.TargetDir)
	assert.Equal(t, DefaultExcludeKeywords, cfg.ERP.ExcludeKeywords)
}

func TestValidateErrors(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate(), "missing data_dir")

	cfg = &Config{DataDir: t.TempDir(), Drive: DriveConfig{Match: "fuzzy"}}
	assert.Error(t, cfg.Validate(), "bad match mode")
}
