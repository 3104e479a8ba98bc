// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for every block.
package config

import (
	"fmt"
	"strings"

	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any code reads env vars.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/deppfellow/villarch/internal/validation"
)

/*
	Key idea in this file:
	- Env vars are read using a prefix: VILLARCH_
	- Keys are normalized (lowercased, prefix removed)
	- Nesting uses a double underscore, which koanf then splits on "."
	  e.g. VILLARCH_SERVER__READ_TIMEOUT -> server.read_timeout
	- The bare PORT variable is honored for server.port, below any
	  VILLARCH_ value.
*/

const (
	// EnvPrefix is the prefix every application variable carries.
	EnvPrefix = "VILLARCH_"

	// PortEnv is the conventional variable process managers use to hand a
	// port to the server.
	PortEnv = "PORT"

	// DefaultPort is used when neither PORT nor VILLARCH_SERVER__PORT is set.
	DefaultPort = "3000"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Handlers      HandlersConfig       `koanf:"handlers" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Usually used to tag logs/traces and switch behavior based on env.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// HandlersConfig describes where handler units live and how they are loaded.
type HandlersConfig struct {
	// Dir is the handler base directory, one subdirectory per resource.
	Dir string `koanf:"dir" validate:"required"`

	// Extension is appended to the action segment to form the file name.
	Extension string `koanf:"extension" validate:"required,startswith=."`

	// Symbol is the exported entry point every handler unit must provide.
	Symbol string `koanf:"symbol" validate:"required"`

	// Cache keeps loaded handler units for the life of the process.
	Cache bool `koanf:"cache"`

	// Preload loads every discovered handler unit at startup and logs failures.
	Preload bool `koanf:"preload"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{
			Env: "development",
		},
		Server: ServerConfig{
			Port:               DefaultPort,
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Handlers: HandlersConfig{
			Dir:       "api",
			Extension: ".so",
			Symbol:    "Handler",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys hold comma separated values, e.g. "https://a.com,https://b.com".
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
}

// envKey maps VILLARCH_SERVER__READ_TIMEOUT to server.read_timeout.
// Empty values are skipped so they never clobber a default.
func envKey(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}

	k := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
	if !listKeys[k] {
		return k, value
	}

	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return k, items
}

// portKey only lets a non-empty bare PORT variable through.
func portKey(key, value string) (string, interface{}) {
	if key != PortEnv || value == "" {
		return "", nil
	}
	return "server.port", value
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it, and returns the resulting config.
//
// Behavior summary:
//   - Loads PORT, then env vars with prefix VILLARCH_ (later sources win)
//   - Unmarshals into a Config pre-populated with defaults
//   - Validates required config blocks/fields
//   - Overrides observability service name + environment
//   - Validates observability config as well
func LoadConfig() (*Config, error) {
	// The "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	if err := k.Load(env.ProviderWithValue(PortEnv, ".", portKey), nil); err != nil {
		return nil, fmt.Errorf("could not load %s: %w", PortEnv, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Unmarshal only touches keys that are present, so defaults survive.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validation.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed and environment always follows primary.env so
	// logs and traces see consistent naming.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
