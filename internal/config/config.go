package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/vango-dev/mvu/internal/errors"
	"github.com/vango-dev/mvu/internal/logging"
	"github.com/vango-dev/mvu/pkg/runtime"
	"github.com/vango-dev/mvu/pkg/transport"
	"github.com/vango-dev/mvu/pkg/vdom"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is the configuration file looked up when none is given.
	DefaultFileName = "mvu.yaml"

	// DefaultAddress is the default server listen address.
	DefaultAddress = ":8080"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"
)

// Config is the complete mvu configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Publish PublishConfig `mapstructure:"publish"`

	// path stores the file the config was loaded from.
	path string
}

// ServerConfig configures the websocket host.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string `mapstructure:"address"`

	// Title is the page title of the host page.
	Title string `mapstructure:"title"`

	// ReadTimeout is the maximum time to wait for a client frame.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum time to wait when sending a frame.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// HeartbeatInterval is the time between websocket pings.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxMessageSize is the largest client frame accepted, in bytes.
	MaxMessageSize int64 `mapstructure:"max_message_size"`

	// AllowedOrigins lists extra origins for the websocket upgrade.
	// The page's own origin is always allowed.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RuntimeConfig configures each application instance.
type RuntimeConfig struct {
	// Transport is "id-indirection" or "inline-serialization".
	Transport string `mapstructure:"transport"`

	// Codec is "json" or "cbor"; used by inline-serialization.
	Codec string `mapstructure:"codec"`

	// Concurrency is "queue" or "reject".
	Concurrency string `mapstructure:"concurrency"`

	// RootID is the identity of the root node.
	RootID string `mapstructure:"root_id"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// PublishConfig configures uploading a pre-rendered page to S3.
type PublishConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint for compatible stores.
	Endpoint string `mapstructure:"endpoint"`

	// PathStyle addresses buckets by path instead of virtual host.
	PathStyle bool `mapstructure:"path_style"`
}

// New returns a Config with every default applied.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           DefaultAddress,
			Title:             "mvu",
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      10 * time.Second,
			HeartbeatInterval: 30 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			MaxMessageSize:    64 * 1024, // 64KB
		},
		Runtime: RuntimeConfig{
			Transport:   transport.ModeIDIndirection.String(),
			Codec:       "json",
			Concurrency: runtime.ConcurrencyQueue.String(),
			RootID:      vdom.DefaultRootID,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "mvu",
			Path:      DefaultMetricsPath,
		},
		Publish: PublishConfig{
			Region: "us-east-1",
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("M021").Wrap(err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// LoadOptional loads path when it is set or when DefaultFileName exists in
// the working directory, and returns the defaults otherwise.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}
	return New(), nil
}

// Parse decodes YAML or JSON data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.New("M021").Wrap(err)
	}

	cfg := New()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, errors.New("M021").Wrap(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.New("M020").WithDetail(err.Error()).Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Validate checks every enumerated value and limit.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Address == "" {
		add("server.address is empty")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		add("server timeouts must be positive")
	}
	if c.Server.HeartbeatInterval <= 0 || c.Server.HeartbeatInterval >= c.Server.ReadTimeout {
		add("server.heartbeat_interval must be positive and less than server.read_timeout")
	}
	if c.Server.MaxMessageSize <= 0 {
		add("server.max_message_size must be positive")
	}
	if _, err := transport.ParseMode(c.Runtime.Transport); err != nil {
		add("runtime.transport: %v", err)
	}
	if _, err := transport.NewCodec(c.Runtime.Codec, nil); err != nil {
		add("runtime.codec: %v", err)
	}
	if _, err := runtime.ParseConcurrency(c.Runtime.Concurrency); err != nil {
		add("runtime.concurrency: %v", err)
	}
	if !vdom.ValidRootID(c.Runtime.RootID) {
		add("runtime.root_id %q may only contain letters, digits and '_'", c.Runtime.RootID)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		add("log.format: %v", err)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path %q must start with '/'", c.Metrics.Path)
	}

	if len(problems) > 0 {
		return errors.New("M020").WithDetail(strings.Join(problems, "; "))
	}
	return nil
}
