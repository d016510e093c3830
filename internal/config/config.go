package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all configuration for the gateway
type Config struct {
	Server  ServerConfig
	ShopAPI ShopAPIConfig
	Redis   RedisConfig
	Session SessionConfig
	Notify  NotifyConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
}

// ShopAPIConfig points at the upstream storefront REST backend. The gateway
// never enforces authority itself; every credential check goes upstream.
type ShopAPIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	LoginTimeout time.Duration
	RetryMax     int
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

type SessionConfig struct {
	CookieName       string
	DeviceCookieName string
	StepUpTTL        time.Duration
	CheckWait        time.Duration
}

type NotifyConfig struct {
	AppVersion       string
	DueSoonDays      int
	MaintenanceStart time.Time
	MaintenanceEnd   time.Time
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton config instance
func GetConfig() *Config {
	once.Do(func() {
		config = &Config{}
		config.ShopAPI.BaseURL = os.Getenv("SHOP_API_URL")
		config.Server.PublicURL = os.Getenv("PUBLIC_URL")
	})
	return config
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),
		},
		ShopAPI: ShopAPIConfig{
			BaseURL:      getEnv("SHOP_API_URL", "http://localhost:5000"),
			Timeout:      getEnvAsDuration("SHOP_API_TIMEOUT", 10*time.Second),
			LoginTimeout: getEnvAsDuration("SHOP_API_LOGIN_TIMEOUT", 5*time.Second),
			RetryMax:     getEnvAsInt("SHOP_API_RETRY_MAX", 2),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			CookieName:       getEnv("SESSION_COOKIE_NAME", "ef_session"),
			DeviceCookieName: getEnv("DEVICE_COOKIE_NAME", "ef_device"),
			StepUpTTL:        getEnvAsDuration("STEPUP_TTL", 30*time.Minute),
			CheckWait:        getEnvAsDuration("SESSION_CHECK_WAIT", 8*time.Second),
		},
		Notify: NotifyConfig{
			AppVersion:       getEnv("APP_VERSION", "1.0.0"),
			DueSoonDays:      getEnvAsInt("NOTIFY_DUE_SOON_DAYS", 3),
			MaintenanceStart: getEnvAsTime("MAINTENANCE_START"),
			MaintenanceEnd:   getEnvAsTime("MAINTENANCE_END"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsTime(key string) time.Time {
	if value, exists := os.LookupEnv(key); exists {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
