package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Config holds all application configuration.
type Config struct {
	Browser   BrowserConfig   `koanf:"browser" validate:"required"`
	Collect   CollectConfig   `koanf:"collect" validate:"required"`
	Transport TransportConfig `koanf:"transport" validate:"required"`
	Identity  IdentityConfig  `koanf:"identity"`
	Gateway   GatewayConfig   `koanf:"gateway"`
}

// BrowserConfig holds settings for the headless browser.
type BrowserConfig struct {
	Timeout     time.Duration `koanf:"timeout" validate:"required"`
	Headless    bool          `koanf:"headless"`
	NoSandbox   bool          `koanf:"no_sandbox"`
	ChromePath  string        `koanf:"chrome_path" validate:"required"`
	UserDataDir string        `koanf:"user_data_dir"`
	Preset      string        `koanf:"preset"`
}

// CollectConfig holds collection pass settings.
type CollectConfig struct {
	ProbeTimeout       time.Duration `koanf:"probe_timeout" validate:"required"`
	MaxConcurrency     int           `koanf:"max_concurrency" validate:"gte=0"`
	AdblockSettle      time.Duration `koanf:"adblock_settle"`
	GeolocationTimeout time.Duration `koanf:"geolocation_timeout"`
	GeolocationMaxAge  time.Duration `koanf:"geolocation_max_age"`
	LocalIPTimeout     time.Duration `koanf:"local_ip_timeout"`
	Fonts              []string      `koanf:"fonts" validate:"dive,required"`
	ShowDiagnostics    bool          `koanf:"show_diagnostics"`
}

// TransportConfig holds the analytics backend endpoints.
type TransportConfig struct {
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	VisitorLogPath string        `koanf:"visitor_log_path" validate:"required,startswith=/"`
	IPInfoPath     string        `koanf:"ip_info_path" validate:"required,startswith=/"`
	Timeout        time.Duration `koanf:"timeout" validate:"required"`
}

// IdentityConfig holds visitor identity settings.
type IdentityConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// GatewayConfig holds UPnP gateway discovery settings.
type GatewayConfig struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout" validate:"required_if=Enabled true"`
}

// Load reads and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// ConfigFrom extracts the Config from the CLI command metadata.
func ConfigFrom(cmd *cli.Command) (*Config, error) {
	v, ok := cmd.Root().Metadata["config"]
	if !ok {
		return nil, fmt.Errorf("config not found in command metadata")
	}
	cfg, ok := v.(*Config)
	if !ok {
		return nil, fmt.Errorf("config has unexpected type %T", v)
	}
	return cfg, nil
}
