// Package config loads the runtime configuration for executing operations
// against an API: where the metadata document lives, which base URL and
// token to use, and the failure/pagination policy.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces the environment variables that override file
// settings, e.g. FORMBRIDGE_APITOKEN.
const EnvPrefix = "FORMBRIDGE"

// Config is the complete runtime configuration.
type Config struct {
	// Metadata is the path to the metadata JSON document.
	Metadata string `yaml:"metadata"`
	// BaseURL is the API root every operation path is resolved against.
	BaseURL string `yaml:"baseURL"`
	// APIToken is the bearer token, with or without a "Bearer " prefix.
	APIToken string `yaml:"apiToken"`
	// ContinueOnFail captures per-item errors as error records instead of
	// aborting the run.
	ContinueOnFail bool `yaml:"continueOnFail"`
	// MaxPages overrides the pagination safety ceiling when positive.
	MaxPages int `yaml:"maxPages"`
	// TimeoutSeconds bounds one HTTP round trip when positive.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// Load reads a YAML configuration file and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg)

	if cfg.Metadata == "" {
		return nil, errors.New("config.metadata is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("config.baseURL is required")
	}
	if cfg.APIToken == "" {
		return nil, errors.New("config.apiToken is required")
	}
	if !filepath.IsAbs(cfg.Metadata) {
		if abs, err := filepath.Abs(cfg.Metadata); err == nil {
			cfg.Metadata = abs
		}
	}
	return &cfg, nil
}

// applyEnv overlays FORMBRIDGE_* environment variables on the file
// settings, so secrets like the token can stay out of the file.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("metadata"); s != "" {
		cfg.Metadata = s
	}
	if s := v.GetString("baseurl"); s != "" {
		cfg.BaseURL = s
	}
	if s := v.GetString("apitoken"); s != "" {
		cfg.APIToken = s
	}
	if v.IsSet("continueonfail") {
		cfg.ContinueOnFail = v.GetBool("continueonfail")
	}
	if n := v.GetInt("maxpages"); n > 0 {
		cfg.MaxPages = n
	}
	if n := v.GetInt("timeoutseconds"); n > 0 {
		cfg.TimeoutSeconds = n
	}
}
