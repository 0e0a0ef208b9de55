package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig holds the Redis connection settings. Key names the sorted set that
// holds prediction records.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// MySQLConfig holds the MySQL connection settings. ConnMaxLifetime is in seconds.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"`
}

// MongoConfig holds the MongoDB connection settings. Address is a connection URI.
type MongoConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// KafkaConfig holds the Kafka settings for prediction events.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DatabaseConfigs groups every backing service the relay can talk to.
type DatabaseConfigs struct {
	MongoDB MongoConfig `yaml:"mongodb"`
	Redis   RedisConfig `yaml:"redis"`
	MySQL   MySQLConfig `yaml:"mysql"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// AppInfo corresponds to the 'app' section.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address     string            `yaml:"address"`
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// RateLimiterConfig configures the token bucket in front of every route. Rate is in
// tokens per second.
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"`
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig configures the breaker around oracle calls.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"`
}

// OracleConfig points at the external prediction service.
type OracleConfig struct {
	BaseURL        string               `yaml:"baseURL"`
	Timeout        string               `yaml:"timeout"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// PredictionConfig tunes request validation. Zero values keep presence-only validation.
type PredictionConfig struct {
	ExpectedFeatures int  `yaml:"expectedFeatures"`
	StrictTypes      bool `yaml:"strictTypes"`
}

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// StoreConfig selects and tunes the prediction store.
type StoreConfig struct {
	Driver         string `yaml:"driver"`
	Collection     string `yaml:"collection"`
	WriteTimeout   string `yaml:"writeTimeout"`
	ConnectTimeout string `yaml:"connectTimeout"`
}

// AppConfig is the root of the YAML file.
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Logger     LoggerConfig     `yaml:"logger"`
	Server     ServerConfig     `yaml:"server"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Prediction PredictionConfig `yaml:"prediction"`
	Store      StoreConfig      `yaml:"store"`
	Databases  DatabaseConfigs  `yaml:"databases"`
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	return &AppConfig{
		App:    AppInfo{Name: "prediction-relay", Version: "dev", Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Address: ":4000",
			RateLimiter: RateLimiterConfig{
				Rate:     20,
				Capacity: 40,
			},
		},
		Oracle: OracleConfig{
			Timeout: "10s",
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 1,
				Timeout:          "30s",
			},
		},
		Store: StoreConfig{
			Driver:         DriverMongo,
			Collection:     "predictions",
			WriteTimeout:   "5s",
			ConnectTimeout: "10s",
		},
		Databases: DatabaseConfigs{
			MongoDB: MongoConfig{Database: "prediction_relay"},
			Redis:   RedisConfig{Key: "predictions"},
			Kafka:   KafkaConfig{Topic: "prediction_events"},
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		default:
			if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	ApplyEnv(cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with the deployment's environment variables.
func ApplyEnv(cfg *AppConfig, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		if strings.Contains(v, ":") {
			cfg.Server.Address = v
		} else {
			cfg.Server.Address = ":" + v
		}
	}
	if v := getenv("ML_API_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := getenv("MONGO_URI"); v != "" {
		cfg.Databases.MongoDB.Address = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
}

// Validate checks the fields the relay cannot run without.
func (c *AppConfig) Validate() error {
	if c.Oracle.BaseURL == "" {
		return errors.New("oracle.baseURL is required (or set ML_API_URL)")
	}
	switch c.Store.Driver {
	case DriverMongo, DriverRedis, DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}
	for name, d := range map[string]string{
		"oracle.timeout":                c.Oracle.Timeout,
		"oracle.circuitBreaker.timeout": c.Oracle.CircuitBreaker.Timeout,
		"store.writeTimeout":            c.Store.WriteTimeout,
		"store.connectTimeout":          c.Store.ConnectTimeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.Prediction.ExpectedFeatures < 0 {
		return errors.New("prediction.expectedFeatures must not be negative")
	}
	return nil
}

// Duration parses d, falling back to def when d is empty or malformed.
func Duration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return def
	}
	return parsed
}
