package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	units "github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = 3000
	DefaultBodyLimit = "2kb"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Root      string `yaml:"root"`
	DataDir   string `yaml:"data_dir"`
	Store     string `yaml:"store"`
	BodyLimit string `yaml:"body_limit"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Metrics   *bool  `yaml:"metrics"`

	// resolved by Validate
	BodyLimitBytes int64 `yaml:"-"`
}

// LoadServerConfig reads the optional YAML file at path (skipped when path is
// empty), applies environment overrides, fills defaults and validates.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var c ServerConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *ServerConfig) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %q is not a number", v)
		}
		c.Port = p
	}
	if v := getenv("KH_HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("KH_ROOT"); v != "" {
		c.Root = v
	}
	if v := getenv("KH_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("KH_STORE"); v != "" {
		c.Store = v
	}
	if v := getenv("KH_BODY_LIMIT"); v != "" {
		c.BodyLimit = v
	}
	if v := getenv("KH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("KH_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("KH_METRICS"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KH_METRICS: %q is not a boolean", v)
		}
		c.Metrics = &on
	}
	return nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Root == "" {
		c.Root = "."
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(c.Root, "data")
	}
	if c.Store == "" {
		c.Store = StoreFile
	}
	if c.BodyLimit == "" {
		c.BodyLimit = DefaultBodyLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Metrics == nil {
		on := true
		c.Metrics = &on
	}
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("store %q is not one of file, sqlite, memory", c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not one of text, json", c.LogFormat)
	}
	if c.Root != "" && c.DataDir != "" {
		root, rerr := filepath.Abs(c.Root)
		data, derr := filepath.Abs(c.DataDir)
		if rerr == nil && derr == nil && root == data {
			return fmt.Errorf("data_dir %q must not be the static root", c.DataDir)
		}
	}
	n, err := units.RAMInBytes(strings.TrimSpace(c.BodyLimit))
	if err != nil {
		return fmt.Errorf("body_limit: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("body_limit %q must be positive", c.BodyLimit)
	}
	c.BodyLimitBytes = n
	return nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}
