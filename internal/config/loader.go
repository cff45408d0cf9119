package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. MLSERVED_ADDR.
const EnvPrefix = "MLSERVED"

// Config holds runtime parameters for the server and the batch front-ends.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr           string   `json:"addr" yaml:"addr" toml:"addr" envconfig:"ADDR"`
	ReposDir       string   `json:"repos_dir" yaml:"repos_dir" toml:"repos_dir" envconfig:"REPOS_DIR"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat      string   `json:"log_format" yaml:"log_format" toml:"log_format" envconfig:"LOG_FORMAT"`
	MaxBodyBytes   int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	CORSEnabled    bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" envconfig:"CORS_ENABLED"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" envconfig:"CORS_ORIGINS"`
	MaxQueueDepth  int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth" envconfig:"MAX_QUEUE_DEPTH"`
	MaxWait        Duration `json:"max_wait" yaml:"max_wait" toml:"max_wait" envconfig:"MAX_WAIT"`
	OnlineInflight int      `json:"online_inflight" yaml:"online_inflight" toml:"online_inflight" envconfig:"ONLINE_INFLIGHT"`
	TrainTimeout   Duration `json:"train_timeout" yaml:"train_timeout" toml:"train_timeout" envconfig:"TRAIN_TIMEOUT"`
	DrainTimeout   Duration `json:"drain_timeout" yaml:"drain_timeout" toml:"drain_timeout" envconfig:"DRAIN_TIMEOUT"`
}

// Duration is a time.Duration written as "30s", "5m" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overlays MLSERVED_* environment variables onto cfg. Unset
// variables leave the corresponding field untouched.
func FromEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Resolve loads path (when not empty), overlays the environment and applies
// defaults.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := FromEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}
