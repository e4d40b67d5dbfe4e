package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bricolab/fabsync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".fabsync", "config.json")
	DefaultDataDir    = filepath.Join(home, "FabSync")
)

// DefaultExcludeKeywords is the packaging/labeling vocabulary filtered out
// of BOM exports. Matching is case-insensitive substring. Overridable via
// the `erp.exclude_keywords` config field.
var DefaultExcludeKeywords = []string{
	"zebra", "label", "plastic bag", "zip bag",
	"adhesive foam", "bubble wrap", "sleeve",
	"sticker", "certificate", "user manual", "equipment wire",
	"pallet", "cardboard", "packaging", "tgo", "bep235", "bep203",
	"pcad", "cad18", "chad70", "cpl45", "vk421", "poster box", "u foam",
	"bor15", "bor35",
}

// DriveConfig holds settings for the flat file-sync flow.
type DriveConfig struct {
	FolderID  string   `json:"folder_id"`
	Subfolder string   `json:"subfolder,omitempty"`
	TargetDir string   `json:"target_dir"`
	FileTypes []string `json:"file_types,omitempty"` // extension allow-list, e.g. ["pdf"]
	Match     string   `json:"match,omitempty"`      // "prefix" (default) or "exact"
	APIToken  string   `json:"api_token,omitempty"`
}

// ERPConfig holds settings for the BOM export flow.
type ERPConfig struct {
	URL             string   `json:"url"`
	Database        string   `json:"database"`
	Username        string   `json:"username"`
	APIKey          string   `json:"api_key,omitempty"`
	ExcludeKeywords []string `json:"exclude_keywords,omitempty"`
}

type Config struct {
	DataDir string      `json:"data_dir"`
	Drive   DriveConfig `json:"drive"`
	ERP     ERPConfig   `json:"erp"`
	Path    string      `json:"-"`
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir is required")
	}

	dataDir, err := utils.ResolvePath(c.DataDir)
	if err != nil {
		return fmt.Errorf("config: resolve data_dir: %w", err)
	}
	c.DataDir = dataDir

	switch c.Drive.Match {
	case "":
		c.Drive.Match = "prefix"
	case "prefix", "exact":
	default:
		return fmt.Errorf("config: invalid drive.match %q", c.Drive.Match)
	}

	if c.Drive.TargetDir == "" {
		c.Drive.TargetDir = "docs"
	}

	if len(c.ERP.ExcludeKeywords) == 0 {
		c.ERP.ExcludeKeywords = DefaultExcludeKeywords
	}

	return nil
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Path = path

	return &cfg, nil
}
