package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL      MySQLConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CMA        CMAConfig
	JobWatcher JobWatcherConfig
	Admin      AdminConfig
	Migrate    bool
	HTTPAddr   string
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// CMAConfig holds Content Management API connection settings
type CMAConfig struct {
	BaseURL       string
	Token         string
	SpaceID       string
	EnvironmentID string
	TimeoutSec    int
}

// JobWatcherConfig holds scheduled job watcher configuration
type JobWatcherConfig struct {
	Enabled     bool
	IntervalSec int
	Concurrency int
	MaxIdleMin  int // evict releases not requested for this long; 0 disables
}

// AdminConfig seeds the first console account when the users table is empty
type AdminConfig struct {
	Username string
	Password string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "go_releasehub"),
		},
		CMA: CMAConfig{
			BaseURL:       getEnv("CMA_BASE_URL", "https://api.contentful.com"),
			Token:         os.Getenv("CMA_TOKEN"),
			SpaceID:       os.Getenv("CMA_SPACE_ID"),
			EnvironmentID: getEnv("CMA_ENVIRONMENT_ID", "master"),
			TimeoutSec:    getEnvInt("CMA_TIMEOUT_SEC", 30),
		},
		JobWatcher: JobWatcherConfig{
			Enabled:     getEnv("JOB_WATCHER_ENABLED", "1") == "1",
			IntervalSec: getEnvInt("JOB_WATCHER_INTERVAL_SEC", 30),
			Concurrency: getEnvInt("JOB_WATCHER_CONCURRENCY", 4),
			MaxIdleMin:  getEnvInt("JOB_WATCHER_MAX_IDLE_MIN", 60),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.CMA.SpaceID == "" {
		return fmt.Errorf("CMA_SPACE_ID is required")
	}
	if cfg.CMA.Token == "" {
		return fmt.Errorf("CMA_TOKEN is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", getValueInt("", "jwt", "expire_seconds", 86400)/60),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "go_releasehub"),
		},
		CMA: CMAConfig{
			BaseURL:       getValue("CMA_BASE_URL", "cma", "base_url", "https://api.contentful.com"),
			Token:         getValue("CMA_TOKEN", "cma", "token", ""),
			SpaceID:       getValue("CMA_SPACE_ID", "cma", "space_id", ""),
			EnvironmentID: getValue("CMA_ENVIRONMENT_ID", "cma", "environment_id", "master"),
			TimeoutSec:    getValueInt("CMA_TIMEOUT_SEC", "cma", "timeout_sec", 30),
		},
		JobWatcher: JobWatcherConfig{
			Enabled:     getValueBool("JOB_WATCHER_ENABLED", "job_watcher", "enabled", true),
			IntervalSec: getValueInt("JOB_WATCHER_INTERVAL_SEC", "job_watcher", "interval_sec", 30),
			Concurrency: getValueInt("JOB_WATCHER_CONCURRENCY", "job_watcher", "concurrency", 4),
			MaxIdleMin:  getValueInt("JOB_WATCHER_MAX_IDLE_MIN", "job_watcher", "max_idle_min", 60),
		},
		Admin: AdminConfig{
			Username: getValue("ADMIN_USERNAME", "admin", "username", "admin"),
			Password: getValue("ADMIN_PASSWORD", "admin", "password", ""),
		},
		Migrate:  getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
