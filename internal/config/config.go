package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"genomecorrupt/internal/modules"
)

// InputsConfig points at the raw pipeline inputs.
type InputsConfig struct {
	Selection      string `yaml:"selection"`
	Taxon          string `yaml:"taxon"`
	AnnotationList string `yaml:"annotation_list"`
	AnnotationDir  string `yaml:"annotation_dir"`
	Modules        string `yaml:"modules"`
	Holdout        string `yaml:"holdout,omitempty"`
}

// CorruptionConfig selects the policy and shapes the assembled dataset.
type CorruptionConfig struct {
	Policy           string  `yaml:"policy"`
	Replicates       int     `yaml:"replicates"`
	TargetModules    int     `yaml:"target_modules"`
	Fraction         float64 `yaml:"fraction,omitempty"`
	Threshold        int     `yaml:"threshold"`
	Seed             *uint64 `yaml:"seed,omitempty"`
	Workers          int     `yaml:"workers"`
	UseCanonical     bool    `yaml:"use_canonical"`
	LegacyProvenance bool    `yaml:"legacy_provenance"`
	// Split is all, train or test; train and test need a holdout file.
	Split string `yaml:"split"`
}

// SQLiteConfig locates the sqlite dataset store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects where assembled rows are kept.
type StoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// FSExportConfig roots filesystem exports.
type FSExportConfig struct {
	Root string `yaml:"root"`
}

// S3ExportConfig contains connection details for an S3-compatible bucket.
type S3ExportConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style"`
}

// ExportConfig selects the artifact store runs are exported to: none, memory
// (encode and discard, for checking a run), fs or s3.
type ExportConfig struct {
	Type   string          `yaml:"type"`
	Prefix string          `yaml:"prefix"`
	FS     *FSExportConfig `yaml:"fs,omitempty"`
	S3     *S3ExportConfig `yaml:"s3,omitempty"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Inputs     InputsConfig        `yaml:"inputs"`
	Corruption CorruptionConfig    `yaml:"corruption"`
	Exclusions []modules.Exclusion `yaml:"exclusions,omitempty"`
	Store      StoreConfig         `yaml:"store"`
	Export     ExportConfig        `yaml:"export"`
	Logging    LoggingConfig       `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/genomecorrupt/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "genomecorrupt", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Inputs.Taxon == "" {
		cfg.Inputs.Taxon = "k__Bacteria"
	}
	c := &cfg.Corruption
	if c.Policy == "" {
		c.Policy = "module-subset"
	}
	if c.Replicates == 0 {
		c.Replicates = 1
	}
	if c.TargetModules == 0 {
		c.TargetModules = 10
	}
	if c.Threshold == 0 {
		c.Threshold = 10
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Split == "" {
		c.Split = "all"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.Type == "sqlite" {
		if cfg.Store.SQLite == nil {
			cfg.Store.SQLite = &SQLiteConfig{}
		}
		if cfg.Store.SQLite.Path == "" {
			cfg.Store.SQLite.Path = "genomecorrupt.db"
		}
	}
	if cfg.Export.Type == "" {
		cfg.Export.Type = "none"
	}
	if cfg.Export.Type == "fs" {
		if cfg.Export.FS == nil {
			cfg.Export.FS = &FSExportConfig{}
		}
		if cfg.Export.FS.Root == "" {
			cfg.Export.FS.Root = "artifacts"
		}
	}
	if cfg.Export.Type == "s3" && cfg.Export.S3 == nil {
		cfg.Export.S3 = &S3ExportConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
