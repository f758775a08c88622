package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Provider    ProviderConfig    `koanf:"provider"`
	Compression CompressionConfig `koanf:"compression"`
	Runner      RunnerConfig      `koanf:"runner"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type DatabaseConfig struct {
	URL            string `koanf:"url"`
	MaxConnections int    `koanf:"max_connections"`
}

// ProviderConfig selects how dataset frames are resolved. "synthetic"
// fabricates frame references for any valid dataset id; "local" scans a
// fixture directory laid out as <root>/<namespace>/<name>/.
type ProviderConfig struct {
	Mode            string `koanf:"mode"`
	Root            string `koanf:"root"`
	SyntheticFrames int    `koanf:"synthetic_frames"`
}

type CompressionConfig struct {
	Engine     string `koanf:"engine"`
	FrameDelay string `koanf:"frame_delay"`
}

type RunnerConfig struct {
	Budget    string `koanf:"budget"`
	MaxFrames int    `koanf:"max_frames"`
	Workers   int    `koanf:"workers"`
	QueueSize int    `koanf:"queue_size"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads config from TOML file (if provided) then overlays env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	// 2. Load TOML config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load env vars: MG_SERVER_PORT -> server.port
	// Only set env vars that have non-empty values to avoid overriding TOML config.
	if err := k.Load(env.ProviderWithValue("MG_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		mapped := strings.Replace(
			strings.ToLower(strings.TrimPrefix(key, "MG_")),
			"_", ".", -1,
		)
		return mapped, value
	}), nil); err != nil {
		return nil, err
	}

	// 4. Handle top-level convenience env vars
	if v := os.Getenv("MG_DATABASE_URL"); v != "" {
		k.Set("database.url", v)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RunBudget parses the runner's wall-clock budget, falling back to one
// minute on malformed input.
func (c *Config) RunBudget() time.Duration {
	d, err := time.ParseDuration(c.Runner.Budget)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// FrameDelay parses the stub's simulated per-frame latency. Zero means no
// artificial delay.
func (c *Config) FrameDelay() time.Duration {
	d, err := time.ParseDuration(c.Compression.FrameDelay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
