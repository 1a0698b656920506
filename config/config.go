// Package config loads server configuration from an optional YAML file and
// command-line flags. Flags win over the file; the file wins over defaults.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Review   ReviewConfig   `yaml:"review"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// Path is the SQLite file (or ":memory:").
	Path string `yaml:"path"`
	// URL is the PostgreSQL connection string.
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type ReviewConfig struct {
	// WarmConcurrency bounds parallel baseline fetches per view.
	WarmConcurrency int `yaml:"warm_concurrency"`
	// LongTextThreshold is the rune count above which a value is shown as
	// long text with an inline diff.
	LongTextThreshold int `yaml:"long_text_threshold"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "profile-review.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Review: ReviewConfig{
			WarmConcurrency:   4,
			LongTextThreshold: 18,
		},
	}
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and parses a YAML file.
func LoadFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(b)
}

// Load builds the configuration from command-line args: -config names an
// optional YAML file, the remaining flags override it when set.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("profile-review", flag.ContinueOnError)
	path := fs.String("config", "", "Path to YAML config file")
	port := fs.Int("port", 0, "HTTP server port")
	db := fs.String("db", "", "SQLite database path or PostgreSQL URL")
	driver := fs.String("driver", "", "Storage driver: sqlite, postgres or memory")
	level := fs.String("log-level", "", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *path != "" {
		var err error
		if cfg, err = LoadFile(*path); err != nil {
			return Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "driver":
			cfg.Database.Driver = *driver
		case "log-level":
			cfg.Log.Level = *level
		}
	})
	// -db is applied after -driver so it lands in the right field.
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "db" {
			return
		}
		if cfg.Database.Driver == DriverPostgres {
			cfg.Database.URL = *db
		} else {
			cfg.Database.Path = *db
		}
	})

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for postgres"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q unknown", c.Database.Driver))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q unknown", c.Log.Format))
	}
	if c.Review.WarmConcurrency <= 0 {
		errs = append(errs, errors.New("review.warm_concurrency must be positive"))
	}
	if c.Review.LongTextThreshold <= 0 {
		errs = append(errs, errors.New("review.long_text_threshold must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q unknown", l.Level)
	}
	return level, nil
}

// NewLogger builds the process logger described by l.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
