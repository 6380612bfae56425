// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from strings like "5s"
// or "2m" in both YAML documents and environment variables.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by the env
// parser).
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(raw))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all wicketd settings.
type Config struct {
	// Token is the bot token for the messaging gateway. Required.
	Token string `yaml:"token" env:"WICKET_TOKEN"`

	// APIBaseURL overrides the gateway endpoint. Empty uses the
	// public API. Only set for self-hosted gateways and tests.
	APIBaseURL string `yaml:"api_base_url" env:"WICKET_API_URL"`

	// AdminIDs is the allow-list of operator identities permitted to
	// issue admin commands.
	AdminIDs []int64 `yaml:"admin_ids" env:"WICKET_ADMIN_IDS"`

	// DataSpaceID is the approval-log destination: every approved
	// join request is reported there. Zero disables it.
	DataSpaceID int64 `yaml:"data_space_id" env:"WICKET_DATA_SPACE_ID"`

	// LogSpaceID is the operator audit channel for alerts and
	// approval summaries. Zero disables it.
	LogSpaceID int64 `yaml:"log_space_id" env:"WICKET_LOG_SPACE_ID"`

	// StateFile is the path of the persisted approval store.
	StateFile string `yaml:"state_file" env:"WICKET_STATE_FILE"`

	// SocketPath is where the control socket is created. Empty
	// disables the control surface.
	SocketPath string `yaml:"socket_path" env:"WICKET_SOCKET_PATH"`

	// PollTimeout is the server-side long-poll hold for the inbound
	// event stream.
	PollTimeout Duration `yaml:"poll_timeout" env:"WICKET_POLL_TIMEOUT"`

	// BroadcastInterval is the pacing delay between consecutive
	// broadcast sends, bounding the outbound rate.
	BroadcastInterval Duration `yaml:"broadcast_interval" env:"WICKET_BROADCAST_INTERVAL"`

	// BackoffBase is the first restart delay after a listener fault.
	BackoffBase Duration `yaml:"backoff_base" env:"WICKET_BACKOFF_BASE"`

	// BackoffMax caps the restart delay doubling.
	BackoffMax Duration `yaml:"backoff_max" env:"WICKET_BACKOFF_MAX"`
}

// Default returns the default configuration. The token and admin list
// have no defaults — they must come from the file or the environment.
func Default() *Config {
	return &Config{
		StateFile:         "data.json",
		SocketPath:        "",
		PollTimeout:       Duration(50 * time.Second),
		BroadcastInterval: Duration(100 * time.Millisecond),
		BackoffBase:       Duration(5 * time.Second),
		BackoffMax:        Duration(120 * time.Second),
	}
}

// Load builds the configuration from defaults, the optional file named
// by WICKET_CONFIG, and the WICKET_* environment variables, in that
// precedence order.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("WICKET_CONFIG"))
}

// LoadFile is Load with an explicit file path. An empty path skips the
// file layer entirely; a non-empty path must name a readable YAML
// file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	// Environment wins over file values.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Token == "" {
		errs = append(errs, fmt.Errorf("token is required (WICKET_TOKEN)"))
	}
	if c.StateFile == "" {
		errs = append(errs, fmt.Errorf("state_file is required"))
	}
	if c.PollTimeout.Std() <= 0 {
		errs = append(errs, fmt.Errorf("poll_timeout must be positive"))
	}
	if c.BroadcastInterval.Std() < 0 {
		errs = append(errs, fmt.Errorf("broadcast_interval must not be negative"))
	}
	if c.BackoffBase.Std() <= 0 {
		errs = append(errs, fmt.Errorf("backoff_base must be positive"))
	}
	if c.BackoffMax.Std() < c.BackoffBase.Std() {
		errs = append(errs, fmt.Errorf("backoff_max must be at least backoff_base"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// IsAdmin reports whether id is in the admin allow-list.
func (c *Config) IsAdmin(id int64) bool {
	for _, admin := range c.AdminIDs {
		if admin == id {
			return true
		}
	}
	return false
}
