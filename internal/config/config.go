// Package config provides Viper-based configuration loading for the TinyMUD server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage driver names.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Name identifies the server in logs.
	Name string `mapstructure:"name"`
	// CheckpointInterval is how often the world is saved. Zero disables
	// periodic checkpoints; the world is still saved on shutdown.
	CheckpointInterval time.Duration `mapstructure:"checkpoint_interval"`
	// Console enables the local stdin/stdout console.
	Console bool `mapstructure:"console"`
	// ConsolePlayer is the object number of the player the console drives.
	ConsolePlayer int `mapstructure:"console_player"`
}

// StorageConfig selects where the world is persisted.
type StorageConfig struct {
	// Driver is one of "memory", "bolt", "sqlite" or "postgres".
	Driver     string `mapstructure:"driver"`
	BoltPath   string `mapstructure:"bolt_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// WorldConfig holds world content and economy settings.
type WorldConfig struct {
	// BootstrapFile is the YAML world loaded when storage holds no world.
	BootstrapFile string `mapstructure:"bootstrap_file"`
	// MessagesFile optionally overrides message catalog templates.
	MessagesFile string `mapstructure:"messages_file"`
	// PennyRate is the 1-in-N chance of finding a penny on entering a room.
	PennyRate int `mapstructure:"penny_rate"`
	// MaxPennies is the wealth above which no pennies are found.
	MaxPennies int `mapstructure:"max_pennies"`
	// MaxObjectEndowment caps the reward for sacrificing a thing.
	MaxObjectEndowment int `mapstructure:"max_object_endowment"`
	// RandomSeed seeds a deterministic random source. Zero uses crypto/rand.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	World    WorldConfig    `mapstructure:"world"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWorld(c.World); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Name == "" {
		errs = append(errs, "server.name must not be empty")
	}
	if s.CheckpointInterval < 0 {
		errs = append(errs, "server.checkpoint_interval must not be negative")
	}
	if s.Console && s.ConsolePlayer < 0 {
		errs = append(errs, fmt.Sprintf("server.console_player must be >= 0, got %d", s.ConsolePlayer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverMemory:
	case DriverBolt:
		if s.BoltPath == "" {
			return errors.New("storage.bolt_path must not be empty for the bolt driver")
		}
	case DriverSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("storage.driver must be one of [memory, bolt, sqlite, postgres], got %q", s.Driver)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if w.BootstrapFile == "" {
		errs = append(errs, "world.bootstrap_file must not be empty")
	}
	if w.PennyRate < 1 {
		errs = append(errs, fmt.Sprintf("world.penny_rate must be >= 1, got %d", w.PennyRate))
	}
	if w.MaxPennies < 0 {
		errs = append(errs, fmt.Sprintf("world.max_pennies must be >= 0, got %d", w.MaxPennies))
	}
	if w.MaxObjectEndowment < 1 {
		errs = append(errs, fmt.Sprintf("world.max_object_endowment must be >= 1, got %d", w.MaxObjectEndowment))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// TINYMUD_STORAGE_DRIVER overrides storage.driver, and so on.
	v.SetEnvPrefix("TINYMUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
// Unset keys take their defaults.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "tinymud")
	v.SetDefault("server.checkpoint_interval", "5m")
	v.SetDefault("server.console", false)
	v.SetDefault("server.console_player", 1)

	v.SetDefault("storage.driver", DriverBolt)
	v.SetDefault("storage.bolt_path", "data/tinymud.db")
	v.SetDefault("storage.sqlite_path", "data/tinymud.sqlite")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tinymud")
	v.SetDefault("database.password", "tinymud")
	v.SetDefault("database.name", "tinymud")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("world.bootstrap_file", "content/world.yaml")
	v.SetDefault("world.messages_file", "")
	v.SetDefault("world.penny_rate", 10)
	v.SetDefault("world.max_pennies", 10000)
	v.SetDefault("world.max_object_endowment", 100)
	v.SetDefault("world.random_seed", 0)
}
