package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user config directory
const AppName = "classroom-mcp"

// Config represents the main configuration structure
type Config struct {
	Log           LogConfig     `yaml:"log"`
	Memory        MemoryConfig  `yaml:"memory"`
	Durable       DurableConfig `yaml:"durable"`
	Remote        RemoteConfig  `yaml:"remote"`
	Google        GoogleConfig  `yaml:"google"`
	HTTP          HTTPConfig    `yaml:"http"`
	TierRulesFile string        `yaml:"tier_rules_file" env:"CLASSROOM_MCP_TIER_RULES_FILE"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `yaml:"level" env:"CLASSROOM_MCP_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// MemoryConfig configures the expiring memory tier
type MemoryConfig struct {
	Backend        string        `yaml:"backend" env:"CLASSROOM_MCP_MEMORY_BACKEND" validate:"oneof=lru bigcache"`
	Capacity       int           `yaml:"capacity" validate:"gt=0"`
	FileCapacity   int           `yaml:"file_capacity" validate:"gt=0"`
	TTL            time.Duration `yaml:"ttl" env:"CLASSROOM_MCP_MEMORY_TTL" validate:"gt=0"`
	BigCacheSizeMB int           `yaml:"bigcache_size_mb" validate:"gte=0"`
}

// DurableConfig configures the permanent tier
type DurableConfig struct {
	Backend string      `yaml:"backend" env:"CLASSROOM_MCP_DURABLE_BACKEND" validate:"oneof=fs badger redis none"`
	Dir     string      `yaml:"dir" env:"CLASSROOM_MCP_DURABLE_DIR"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis durable backend
type RedisConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PoolSize       int           `yaml:"pool_size" validate:"gte=0"`
	KeyPrefix      string        `yaml:"key_prefix"`
}

// RemoteConfig configures resilience around the remote API
type RemoteConfig struct {
	Timeout           time.Duration `yaml:"timeout" env:"CLASSROOM_MCP_REMOTE_TIMEOUT"`
	RetryMaxAttempts  int           `yaml:"retry_max_attempts" validate:"gte=0"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMultiplier   float64       `yaml:"retry_multiplier" validate:"gte=0"`
	BreakerThreshold  int           `yaml:"breaker_threshold" validate:"gte=0"`
	BreakerTimeout    time.Duration `yaml:"breaker_timeout"`
	RateLimit         int           `yaml:"rate_limit" validate:"gte=0"`
	RateBurst         int           `yaml:"rate_burst" validate:"gte=0"`
}

// GoogleConfig locates OAuth client secrets and stored tokens
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"CLASSROOM_MCP_CREDENTIALS_FILE"`
	TokenFile       string `yaml:"token_file" env:"CLASSROOM_MCP_TOKEN_FILE"`
	RedirectPort    int    `yaml:"redirect_port" validate:"gte=0,lte=65535"`
}

// HTTPConfig configures the health/metrics/tool HTTP listener
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled" env:"CLASSROOM_MCP_HTTP_ENABLED"`
	Addr    string `yaml:"addr" env:"CLASSROOM_MCP_HTTP_ADDR"`
}

// DefaultConfigDir returns <user config dir>/classroom-mcp
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", AppName)
	}
	return filepath.Join(dir, AppName)
}

// Load resolves the config path from CLASSROOM_MCP_CONFIG, falling back to
// the default location. A missing default file yields the defaults.
func Load(logger *zap.Logger) (*Config, error) {
	if configPath := os.Getenv("CLASSROOM_MCP_CONFIG"); configPath != "" {
		return LoadConfig(configPath, logger)
	}

	configPath := filepath.Join(DefaultConfigDir(), "config.yaml")
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		logger.Info("No configuration file, using defaults", zap.String("path", configPath))
		return finalize(&Config{})
	}
	return LoadConfig(configPath, logger)
}

// LoadConfig loads configuration from file path
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	return finalize(&config)
}

// finalize overlays environment variables, applies defaults and validates
func finalize(config *Config) (*Config, error) {
	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Memory.Backend == "" {
		c.Memory.Backend = "lru"
	}
	if c.Memory.Capacity == 0 {
		c.Memory.Capacity = 1000
	}
	if c.Memory.FileCapacity == 0 {
		c.Memory.FileCapacity = 200
	}
	if c.Memory.TTL == 0 {
		c.Memory.TTL = 5 * time.Minute
	}
	if c.Memory.BigCacheSizeMB == 0 {
		c.Memory.BigCacheSizeMB = 64
	}

	if c.Durable.Backend == "" {
		c.Durable.Backend = "fs"
	}
	if c.Durable.Dir == "" {
		c.Durable.Dir = filepath.Join(DefaultConfigDir(), "cache")
	}
	if c.Durable.Redis.ConnectTimeout == 0 {
		c.Durable.Redis.ConnectTimeout = time.Second
	}
	if c.Durable.Redis.ReadTimeout == 0 {
		c.Durable.Redis.ReadTimeout = time.Second
	}
	if c.Durable.Redis.WriteTimeout == 0 {
		c.Durable.Redis.WriteTimeout = time.Second
	}
	if c.Durable.Redis.PoolSize == 0 {
		c.Durable.Redis.PoolSize = 10
	}
	if c.Durable.Redis.KeyPrefix == "" {
		c.Durable.Redis.KeyPrefix = AppName + ":"
	}

	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = 30 * time.Second
	}
	if c.Remote.RetryMaxAttempts == 0 {
		c.Remote.RetryMaxAttempts = 3
	}
	if c.Remote.RetryInitialDelay == 0 {
		c.Remote.RetryInitialDelay = 200 * time.Millisecond
	}
	if c.Remote.RetryMultiplier == 0 {
		c.Remote.RetryMultiplier = 2.0
	}
	if c.Remote.BreakerThreshold == 0 {
		c.Remote.BreakerThreshold = 5
	}
	if c.Remote.BreakerTimeout == 0 {
		c.Remote.BreakerTimeout = 30 * time.Second
	}
	if c.Remote.RateLimit == 0 {
		c.Remote.RateLimit = 10
	}
	if c.Remote.RateBurst == 0 {
		c.Remote.RateBurst = c.Remote.RateLimit
	}

	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = filepath.Join(DefaultConfigDir(), "credentials.json")
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = filepath.Join(DefaultConfigDir(), "tokens.json")
	}
	if c.Google.RedirectPort == 0 {
		c.Google.RedirectPort = 8085
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = "127.0.0.1:9464"
	}
}
