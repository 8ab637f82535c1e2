package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultHost            = "localhost"
	DefaultPort            = "8080"
	DefaultPageLength      = 10
	DefaultCacheSize       = 256
	DefaultShutdownTimeout = 30 * time.Second
)

type Config struct {
	StorageDir string        `toml:"storage_dir"`
	Web        WebConfig     `toml:"web"`
	Catalog    CatalogConfig `toml:"catalog"`
}

type WebConfig struct {
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	PageLength int    `toml:"page_length"`
	// CacheSize is the number of result pages memoized by the search backend.
	CacheSize       int      `toml:"cache_size"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type CatalogConfig struct {
	// ImportDir is watched for song files while the web server runs.
	ImportDir string `toml:"import_dir,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{
		StorageDir: storageDir,
		Web:        WebConfig{CacheSize: DefaultCacheSize},
	}
	cfg.applyDefaults()
	return cfg, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &config, nil
}

// Validate rejects values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Web.PageLength < 0 {
		return fmt.Errorf("web.page_length must be positive, got %d", c.Web.PageLength)
	}
	if c.Web.CacheSize < 0 {
		return fmt.Errorf("web.cache_size must not be negative, got %d", c.Web.CacheSize)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Web.Host == "" {
		c.Web.Host = DefaultHost
	}
	if c.Web.Port == "" {
		c.Web.Port = DefaultPort
	}
	if c.Web.PageLength == 0 {
		c.Web.PageLength = DefaultPageLength
	}
	if c.Web.ShutdownTimeout.Duration == 0 {
		c.Web.ShutdownTimeout = Duration{DefaultShutdownTimeout}
	}
}

// CatalogPath is the SQLite database holding songs and images.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.StorageDir, "catalog.db")
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	template := strings.Replace(configTemplate, "/home/user/.local/share/topsongs", storageDir, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// GetDefaultStorageDir returns $XDG_DATA_HOME/topsongs, creating it if needed.
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "topsongs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/topsongs, creating it if needed.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "topsongs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
