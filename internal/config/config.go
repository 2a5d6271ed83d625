package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/spellchain/internal/game/cast"
)

// Engine holds all configuration for the combat simulator.
// Precedence: defaults < YAML file < SPELLCHAIN_* environment variables.
type Engine struct {
	LogLevel string `yaml:"log_level" env:"SPELLCHAIN_LOG_LEVEL"`

	// Data
	CatalogPath  string `yaml:"catalog_path" env:"SPELLCHAIN_CATALOG"`
	ScenarioPath string `yaml:"scenario_path" env:"SPELLCHAIN_SCENARIO"`

	// Simulation
	Tick          float64       `yaml:"tick" env:"SPELLCHAIN_TICK"` // game seconds per step
	Pace          time.Duration `yaml:"pace" env:"SPELLCHAIN_PACE"` // wall time between steps, 0 = as fast as possible
	ParryManaGain float64       `yaml:"parry_mana_gain" env:"SPELLCHAIN_PARRY_MANA_GAIN"`
	Loadout       cast.Loadout  `yaml:"loadout"`
	// KeepAlive keeps the process (and the debug server) running after the scenario ends.
	KeepAlive bool `yaml:"keep_alive" env:"SPELLCHAIN_KEEP_ALIVE"`

	HTTP      HTTPConfig      `yaml:"http"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig configures the debug server (/healthz, /metrics, /actors).
type HTTPConfig struct {
	Enabled     bool   `yaml:"enabled" env:"SPELLCHAIN_HTTP_ENABLED"`
	BindAddress string `yaml:"bind_address" env:"SPELLCHAIN_HTTP_ADDR"`
	// CommandRate limits POST /api/commands per second, 0 = unlimited.
	CommandRate float64 `yaml:"command_rate" env:"SPELLCHAIN_HTTP_COMMAND_RATE"`
}

// TelemetryConfig configures the PostgreSQL combat log.
type TelemetryConfig struct {
	Enabled       bool           `yaml:"enabled" env:"SPELLCHAIN_TELEMETRY_ENABLED"`
	RunID         string         `yaml:"run_id" env:"SPELLCHAIN_RUN_ID"`
	BatchSize     int            `yaml:"batch_size" env:"SPELLCHAIN_TELEMETRY_BATCH"`
	FlushInterval time.Duration  `yaml:"flush_interval" env:"SPELLCHAIN_TELEMETRY_FLUSH"`
	QueueSize     int            `yaml:"queue_size" env:"SPELLCHAIN_TELEMETRY_QUEUE"`
	MaxPerSecond  float64        `yaml:"max_per_second" env:"SPELLCHAIN_TELEMETRY_RATE"`
	Database      DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"SPELLCHAIN_DB_HOST"`
	Port     int    `yaml:"port" env:"SPELLCHAIN_DB_PORT"`
	User     string `yaml:"user" env:"SPELLCHAIN_DB_USER"`
	Password string `yaml:"password" env:"SPELLCHAIN_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"SPELLCHAIN_DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"SPELLCHAIN_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultEngine returns Engine config with sensible defaults.
func DefaultEngine() Engine {
	return Engine{
		LogLevel:      "info",
		Tick:          0.05,
		ParryManaGain: 10,
		Loadout:       cast.DefaultLoadout(),
		HTTP: HTTPConfig{
			BindAddress: "127.0.0.1:6060",
			CommandRate: 20,
		},
		Telemetry: TelemetryConfig{
			RunID:         "local",
			BatchSize:     256,
			FlushInterval: 500 * time.Millisecond,
			QueueSize:     4096,
			MaxPerSecond:  5000,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "spellchain",
				Password: "spellchain",
				DBName:   "spellchain",
				SSLMode:  "disable",
			},
		},
	}
}

// Validate checks values that would make the simulator misbehave.
func (c Engine) Validate() error {
	var errs []error
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", c.Tick))
	}
	if c.Pace < 0 {
		errs = append(errs, fmt.Errorf("pace must not be negative, got %s", c.Pace))
	}
	if c.HTTP.CommandRate < 0 {
		errs = append(errs, fmt.Errorf("http.command_rate must not be negative, got %v", c.HTTP.CommandRate))
	}
	if c.HTTP.Enabled && c.HTTP.BindAddress == "" {
		errs = append(errs, errors.New("http.bind_address is required when http is enabled"))
	}
	if c.Telemetry.Enabled && c.Telemetry.Database.Host == "" {
		errs = append(errs, errors.New("telemetry.database.host is required when telemetry is enabled"))
	}
	return errors.Join(errs...)
}

// LoadEngine loads config from a YAML file, then applies environment overrides.
// If the file doesn't exist, defaults are used.
func LoadEngine(path string) (Engine, error) {
	cfg := DefaultEngine()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
