package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied by NewConfig.
const (
	DefaultDuplicatesDir   = "99_Archive/Duplicates"
	DefaultProviderTimeout = "10s"
)

// Config represents the main configuration for omnisort.
type Config struct {
	BaseDir       string           `toml:"base_dir"`
	LogDir        string           `toml:"log_dir"`
	RulesPath     string           `toml:"rules_path"`
	DuplicatesDir string           `toml:"duplicates_dir"`
	Database      DatabaseConfig   `toml:"database"`
	Journal       JournalConfig    `toml:"journal"`
	Sorter        SorterConfig     `toml:"sorter"`
	Filesystem    FilesystemConfig `toml:"filesystem"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore  []string `toml:"ignore"`  // name or path globs skipped during the walk
	Exclude []string `toml:"exclude"` // root-relative directories never entered
}

// DatabaseConfig represents configuration for the move/audit history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// JournalConfig represents configuration for the rollback journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type string `toml:"type"`           // "file" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=file
}

// SorterConfig tunes the sort pipeline.
type SorterConfig struct {
	Workers         int      `toml:"workers"`          // 0 selects the number of CPUs
	ProviderTimeout string   `toml:"provider_timeout"` // Go duration, e.g. "10s"
	Keywords        []string `toml:"keywords"`         // extra content keywords to detect
	PerceptualDedup bool     `toml:"perceptual_dedup"` // images dedup on average hash instead of sha256
}

// Timeout parses ProviderTimeout. An empty value yields zero, which selects the default.
func (c SorterConfig) Timeout() (time.Duration, error) {
	if c.ProviderTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ProviderTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid provider_timeout %q: %w", c.ProviderTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid provider_timeout %q: must not be negative", c.ProviderTimeout)
	}
	return d, nil
}

// NewConfig creates a new Config rooted at baseDir with default paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:       baseDir,
		LogDir:        filepath.Join(baseDir, "log"),
		RulesPath:     filepath.Join(baseDir, "rules.yaml"),
		DuplicatesDir: DefaultDuplicatesDir,
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Journal: JournalConfig{
			Type: "file",
			Path: filepath.Join(baseDir, "rollback.jsonl"),
		},
		Sorter: SorterConfig{
			ProviderTimeout: DefaultProviderTimeout,
		},
	}
}

// Validate checks settings that would otherwise only fail mid-run.
func (c *Config) Validate() error {
	if c.Sorter.Workers < 0 {
		return fmt.Errorf("sorter.workers must not be negative, got %d", c.Sorter.Workers)
	}
	if _, err := c.Sorter.Timeout(); err != nil {
		return err
	}
	if filepath.IsAbs(c.DuplicatesDir) {
		return fmt.Errorf("duplicates_dir must be relative to the sorted tree: %s", c.DuplicatesDir)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads the config at path, falling back to NewConfig(baseDir)
// when no file exists there.
func LoadOrDefault(path, baseDir string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewConfig(baseDir), nil
	}
	cfg, err := ReadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
