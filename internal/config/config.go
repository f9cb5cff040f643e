package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "aws-netdoc"

// Config holds optional defaults loaded from ~/.config/aws-netdoc/config.yaml.
// AWS_NETDOC_<KEY> environment variables override the file.
type Config struct {
	DefaultProfile  string `yaml:"default_profile"`
	DefaultRegion   string `yaml:"default_region"`
	Language        string `yaml:"language"`
	OutputDir       string `yaml:"output_dir"`
	LogFile         string `yaml:"log_file"`
	LogLevel        string `yaml:"log_level"`
	EndpointURL     string `yaml:"endpoint_url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	HistoryDB       string `yaml:"history_db"`
}

// Dir is the configuration directory under home.
func Dir(home string) string {
	return filepath.Join(home, ".config", appName)
}

// Load reads the config file. Returns a defaulted Config if the file doesn't exist.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		cfg := &Config{}
		cfg.applyEnv()
		cfg.applyDefaults("")
		return cfg, nil
	}
	cfg, err := LoadFile(filepath.Join(Dir(home), "config.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults(Dir(home))
	return cfg, nil
}

// LoadFile reads path and overlays the environment. Defaults are not applied.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"default_profile":   &c.DefaultProfile,
		"default_region":    &c.DefaultRegion,
		"language":          &c.Language,
		"output_dir":        &c.OutputDir,
		"log_file":          &c.LogFile,
		"log_level":         &c.LogLevel,
		"endpoint_url":      &c.EndpointURL,
		"access_key_id":     &c.AccessKeyID,
		"secret_access_key": &c.SecretAccessKey,
		"history_db":        &c.HistoryDB,
	}
}

func (c *Config) applyEnv() {
	v := viper.New()
	v.SetEnvPrefix("AWS_NETDOC")
	v.AutomaticEnv()
	for key, field := range c.fields() {
		if s := v.GetString(key); s != "" {
			*field = s
		}
	}
}

func (c *Config) applyDefaults(dir string) {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "trace.log")
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(dir, "history.db")
	}
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	p := c.DefaultProfile
	if profile != "" {
		p = profile
	}
	r := c.DefaultRegion
	if region != "" {
		r = region
	}
	return p, r
}
