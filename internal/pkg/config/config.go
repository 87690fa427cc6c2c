package config

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Storage StorageConfig
	Cipher  CipherConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type StorageConfig struct {
	Driver  string `env:"STORAGE_DRIVER, default=file"`
	DataDir string `env:"DATA_DIR,       default=data"`
}

// CipherConfig selects the credential cipher. The default key matches the
// one existing data directories were written with.
type CipherConfig struct {
	Mode string `env:"CIPHER_MODE, default=aes-ecb"`
	Key  string `env:"CIPHER_KEY,  default=1234567890123456"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=messenger"`
}

type RedisConfig struct {
	Addr   string `env:"REDIS_ADDR,   default=localhost:6379"`
	DB     int    `env:"REDIS_DB,     default=0"`
	Prefix string `env:"REDIS_PREFIX, default=messenger"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	drivers := []string{DriverFile, DriverMemory, DriverMongo, DriverRedis}
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("STORAGE_DRIVER must be one of %v, got %q", drivers, c.Storage.Driver)
	}
	if c.Storage.Driver == DriverFile && c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required for the file driver")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := Parse(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Parse reads configuration from l and validates it.
func Parse(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
