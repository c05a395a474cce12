// Package appconf holds application configuration loaded from the
// environment, an optional .env file, and an optional YAML config file.
package appconf

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment describes the runtime environment of the application.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFromString maps a FLEETPULSE_ENV value onto an Environment.
// Unknown values fall back to Development.
func EnvFromString(s string) Environment {
	switch s {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// BlobMode selects which blob source backend serves the GTFS feed.
type BlobMode string

const (
	BlobModeLocal BlobMode = "local"
	BlobModeAzure BlobMode = "azure"
)

// Config is the full application configuration.
type Config struct {
	Env  Environment `yaml:"-"`
	Port int         `yaml:"port" validate:"min=1,max=65535"`

	// Blob source selection. Mode is forced to azure when the cloud-host
	// sentinel variable is present, unless explicitly overridden.
	BlobMode BlobMode `yaml:"blobMode" validate:"oneof=local azure"`

	// Local mode: feed CSVs live under DataRoot/FeedName.
	DataRoot string `yaml:"dataRoot" validate:"required_if=BlobMode local"`
	FeedName string `yaml:"feedName"`

	// Azure mode.
	StorageAccount   string `yaml:"storageAccount" validate:"required_if=BlobMode azure"`
	StorageContainer string `yaml:"storageContainer" validate:"required_if=BlobMode azure"`

	// RateLimitRPS is the per-key request budget per second. Zero disables
	// rate limiting entirely.
	RateLimitRPS int `yaml:"rateLimitRPS" validate:"min=0"`

	Verbose bool `yaml:"verbose"`
}

// CloudHostSentinel is the environment variable whose presence indicates the
// process is running on a cloud host and should read the feed from blob
// storage rather than the local filesystem.
const CloudHostSentinel = "CONTAINER_APP_NAME"

// Load assembles the configuration. Precedence, lowest to highest:
// defaults, YAML config file (FLEETPULSE_CONFIG), environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:          EnvFromString(os.Getenv("FLEETPULSE_ENV")),
		Port:         8080,
		BlobMode:     BlobModeLocal,
		DataRoot:     "./data",
		RateLimitRPS: 0,
	}

	if path := os.Getenv("FLEETPULSE_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if _, onCloudHost := os.LookupEnv(CloudHostSentinel); onCloudHost {
		cfg.BlobMode = BlobModeAzure
	}
	if v := os.Getenv("BLOB_SOURCE"); v != "" {
		cfg.BlobMode = BlobMode(v)
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DATA_ROOT"); v != "" {
		cfg.DataRoot = v
	}
	if v := os.Getenv("FEED_NAME"); v != "" {
		cfg.FeedName = v
	}
	if v := os.Getenv("AZURE_STORAGE_ACCOUNT"); v != "" {
		cfg.StorageAccount = v
	}
	if v := os.Getenv("AZURE_STORAGE_CONTAINER"); v != "" {
		cfg.StorageContainer = v
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.RateLimitRPS = rps
	}
	if v := os.Getenv("VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid VERBOSE %q: %w", v, err)
		}
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration's struct constraints.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
