package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisheknishant138/scope/internal/errors"
)

const (
	// DefaultPort is the default server port.
	DefaultPort = 4040

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultBackend is the default persistence backend.
	DefaultBackend = "memory"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "scope"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "scope"
)

// ConfigFileNames are the file names Load looks for, in order.
var ConfigFileNames = []string{"scope.json", "scope.yaml", "scope.yml"}

var backends = map[string]bool{"memory": true, "bolt": true, "sqlite": true, "s3": true}

// Config represents the complete server configuration.
type Config struct {
	// Server contains listener settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Persistence selects where the encoded view state is stored.
	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains listener settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// PersistenceConfig selects and configures the store backend.
type PersistenceConfig struct {
	// Enabled turns on mirroring of the view state into the store.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Backend is one of memory, bolt, sqlite or s3.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Path is the database file of the bolt and sqlite backends, relative
	// to the config file.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the s3 backend.
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Persistence: PersistenceConfig{
			Enabled: true,
			Backend: DefaultBackend,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for each of ConfigFileNames in turn.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E141").
		WithDetail("No scope.json, scope.yaml or scope.yml found in " + dir).
		WithSuggestion("Create scope.json or pass --config with the path of a config file")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E140").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E140").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON or YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to path, as YAML or JSON depending on
// the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E140").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E140").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	c.Persistence.Backend = strings.ToLower(c.Persistence.Backend)
	if c.Persistence.Backend == "" {
		c.Persistence.Backend = DefaultBackend
	}
	if c.Persistence.Path == "" {
		switch c.Persistence.Backend {
		case "bolt":
			c.Persistence.Path = "scope.db"
		case "sqlite":
			c.Persistence.Path = "scope.sqlite"
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E142").
			WithDetail("server.port must be between 0 and 65535")
	}
	if !backends[c.Persistence.Backend] {
		return errors.New("E142").
			WithDetail("persistence.backend " + strconv.Quote(c.Persistence.Backend) + " is not one of memory, bolt, sqlite, s3")
	}
	if c.Persistence.Backend == "s3" && c.Persistence.Bucket == "" {
		return errors.New("E142").
			WithDetail("persistence.bucket is required by the s3 backend")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("E142").
			WithDetail("log.level " + strconv.Quote(c.Log.Level) + " is not one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E142").
			WithDetail("log.format " + strconv.Quote(c.Log.Format) + " is not one of text, json")
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// StorePath returns the absolute path of the bolt or sqlite database.
func (c *Config) StorePath() string {
	path := c.Persistence.Path
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Logger builds the slog logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
