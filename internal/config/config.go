package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type API struct {
	BaseURL   string        `yaml:"base_url" env:"STOREFRONT_API_URL" env-default:"http://localhost:8000"`
	Timeout   time.Duration `yaml:"timeout" env:"STOREFRONT_API_TIMEOUT" env-default:"0s"`
	UserAgent string        `yaml:"user_agent" env:"STOREFRONT_USER_AGENT" env-default:"storefront-cli/1.0"`
}

type Session struct {
	Backend  string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"file"`
	FilePath string        `yaml:"file_path" env:"SESSION_FILE" env-default:""`
	Key      string        `yaml:"key" env:"SESSION_KEY" env-default:"default"`
	TTL      time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"336h"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type OtelConfig struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront-cli"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT" env-default:""`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Metrics struct {
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE" env-default:""`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"warn"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type Config struct {
	Env          string       `yaml:"env" env:"ENV" env-default:"local"`
	API          API          `yaml:"api"`
	Session      Session      `yaml:"session"`
	RedisConnect RedisConnect `yaml:"redis"`
	Otel         OtelConfig   `yaml:"otel"`
	Metrics      Metrics      `yaml:"metrics"`
	Log          Log          `yaml:"log"`
}

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// MustLoad reads the config file named by CONFIG_PATH or -config, falling
// back to the environment alone when neither is set.
func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config: %s", err.Error())
	}

	return cfg

}

// LoadConfigFromPath loads a YAML config file, or only the environment when
// configPath is empty.
func LoadConfigFromPath(configPath string) (*Config, error) {

	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("can not read environment: %w", err)
		}
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("can not read config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Session.Backend == SessionBackendFile && cfg.Session.FilePath == "" {
		cfg.Session.FilePath = defaultSessionFile()
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base_url must not be empty")
	}

	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if c.Otel.SamplerRatio < 0 || c.Otel.SamplerRatio > 1 {
		return fmt.Errorf("otel sampler ratio must be within [0,1], got %v", c.Otel.SamplerRatio)
	}

	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "storefront", "session.json")
}

func (r *RedisConnect) GetDSN() string {
	if r.Username != "" || r.Password != "" {
		return fmt.Sprintf("redis://%s:%s@%s:%s/%d", r.Username, r.Password, r.Host, r.Port, r.DB)
	}

	return fmt.Sprintf("redis://%s:%s/%d", r.Host, r.Port, r.DB)
}
