package config

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied to unset fields.
const (
	DefaultAddr         = ":8080"
	DefaultReposDir     = "~/.local/share/mlserved"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultMaxBodyBytes = 1 << 20
	DefaultDrainTimeout = 5 * time.Second
)

// ApplyDefaults fills unset fields. Manager tunables left at zero are
// defaulted by the manager itself.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ReposDir == "" {
		c.ReposDir = DefaultReposDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = Duration(DefaultDrainTimeout)
	}
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	if c.TrainTimeout < 0 || c.MaxWait < 0 || c.DrainTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.MaxQueueDepth < 0 || c.OnlineInflight < 0 {
		return fmt.Errorf("max_queue_depth and online_inflight must not be negative")
	}
	return nil
}
