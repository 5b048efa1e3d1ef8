package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		Addr         string        `koanf:"addr"`
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
	} `koanf:"http"`

	Database struct {
		Host     string `koanf:"host"`
		Port     int    `koanf:"port"`
		User     string `koanf:"user"`
		Password string `koanf:"password"`
		Name     string `koanf:"database"`
		MaxConns int    `koanf:"max_conns"`
	} `koanf:"database"`

	Rabbit struct {
		Host     string `koanf:"host"`
		Port     int    `koanf:"port"`
		User     string `koanf:"user"`
		Password string `koanf:"password"`
	} `koanf:"rabbitmq"`

	Feed struct {
		// Mode selects the change-feed source: "listen" (Postgres
		// LISTEN/NOTIFY) or "poll" (interval re-query).
		Mode         string        `koanf:"mode"`
		PollInterval time.Duration `koanf:"poll_interval"`
	} `koanf:"feed"`

	Storage struct {
		Endpoint string `koanf:"endpoint"`
		Bucket   string `koanf:"bucket"`
		APIKey   string `koanf:"api_key"`
	} `koanf:"storage"`

	GenAI struct {
		Endpoint string        `koanf:"endpoint"`
		APIKey   string        `koanf:"api_key"`
		Model    string        `koanf:"model"`
		Timeout  time.Duration `koanf:"timeout"`
	} `koanf:"genai"`
}

// Load reads the YAML config at path, then overlays environment variables
// with the KITCHEN_ prefix (nested keys separated by __, e.g.
// KITCHEN_DATABASE__PASSWORD).
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Load(env.Provider("KITCHEN_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "KITCHEN_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "kitchen-admin"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Rabbit.Port == 0 {
		c.Rabbit.Port = 5672
	}
	if c.Feed.Mode == "" {
		c.Feed.Mode = "listen"
	}
	if c.Feed.PollInterval == 0 {
		c.Feed.PollInterval = 5 * time.Second
	}
	if c.GenAI.Timeout == 0 {
		c.GenAI.Timeout = 30 * time.Second
	}
}

func (c Config) Validate() error {
	if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.Feed.Mode != "listen" && c.Feed.Mode != "poll" {
		return fmt.Errorf("feed.mode must be \"listen\" or \"poll\", got %q", c.Feed.Mode)
	}
	if c.Feed.PollInterval < time.Second {
		return fmt.Errorf("feed.poll_interval must be at least 1s")
	}
	return nil
}
