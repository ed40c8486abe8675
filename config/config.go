package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/opdesk/opdesk/internal/printing"
	"github.com/opdesk/opdesk/internal/registration"
	"github.com/opdesk/opdesk/internal/repository/postgres"
	"github.com/opdesk/opdesk/pkg/messaging/redis"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// BackendConfig points at the role-scoped base paths of the hospital
// backend.
type BackendConfig struct {
	ReceptionistURL string        `mapstructure:"receptionist_url"`
	AdminURL        string        `mapstructure:"admin_url"`
	ScannerURL      string        `mapstructure:"scanner_url"`
	AuthURL         string        `mapstructure:"auth_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxFailures     int           `mapstructure:"max_failures"`
	BreakerWait     time.Duration `mapstructure:"breaker_wait"`
}

type DirectoryConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type PrintConfig struct {
	SpoolDir     string        `mapstructure:"spool_dir"`
	Command      []string      `mapstructure:"command"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
}

type JournalConfig struct {
	Enabled  bool            `mapstructure:"enabled"`
	Database postgres.Config `mapstructure:"database"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// SessionConfig is read from the environment, never from the config
// file: the token is established at login and injected into client
// construction explicitly.
type SessionConfig struct {
	Token string `envconfig:"OPDESK_SESSION_TOKEN"`
	Role  string `envconfig:"OPDESK_SESSION_ROLE" default:"receptionist"`
}

type Config struct {
	Server     ServerConfig                  `mapstructure:"server"`
	Backend    BackendConfig                 `mapstructure:"backend"`
	Directory  DirectoryConfig               `mapstructure:"directory"`
	Validation registration.ValidationConfig `mapstructure:"validation"`
	Print      PrintConfig                   `mapstructure:"print"`
	Journal    JournalConfig                 `mapstructure:"journal"`
	Redis      RedisConfig                   `mapstructure:"redis"`
	RateLimit  RateLimitConfig               `mapstructure:"rate_limit"`
	Session    SessionConfig                 `mapstructure:"-"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("opdesk", &config.Session); err != nil {
		return nil, fmt.Errorf("failed to read session env: %w", err)
	}

	// Env overrides for container deployments.
	if url := os.Getenv("BACKEND_RECEPTIONIST_URL"); url != "" {
		config.Backend.ReceptionistURL = url
	}
	if url := os.Getenv("BACKEND_ADMIN_URL"); url != "" {
		config.Backend.AdminURL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		config.Redis.URL = url
	}

	return &config, nil
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *PrintConfig) ToProcessorConfig() printing.ProcessorConfig {
	return printing.ProcessorConfig{
		BatchSize:    c.BatchSize,
		PollInterval: c.PollInterval,
		SettleDelay:  c.SettleDelay,
	}
}
