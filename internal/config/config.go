package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gateway struct {
		Port int `yaml:"port"`
	} `yaml:"gateway"`

	Backend struct {
		BaseURL        string `yaml:"baseURL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"backend"`

	Scan struct {
		DefaultModel string `yaml:"defaultModel"` // clinical | consumer
	} `yaml:"scan"`

	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`

	Archive struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"archive"`

	TokenPath string `yaml:"tokenPath"`
}

// Load reads the config file and applies defaults plus env overrides.
// An empty path is allowed; everything then comes from defaults and env.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()

	if v := os.Getenv("DERMASENSE_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("DERMASENSE_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.baseURL is required")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8787
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 60
	}
	if c.Scan.DefaultModel == "" {
		c.Scan.DefaultModel = "clinical"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if c.TokenPath == "" {
		c.TokenPath = filepath.Join(home, ".dermasense", "token.json")
	}
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(home, ".dermasense", "dashboard.db")
	}
}

// BackendTimeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}
