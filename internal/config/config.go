package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	API         APIConfig
	Cart        CartConfig
	Catalog     CatalogConfig
	Orders      OrdersConfig
	Identity    IdentityConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	LogLevel    string
}

type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimit       float64
	RateBurst       int
	BreakerFailures int
	BreakerCooldown time.Duration
}

type CartConfig struct {
	UpdateDebounce time.Duration
	SettleDelay    time.Duration
}

type CatalogConfig struct {
	SearchDebounce time.Duration
	CacheTTL       time.Duration
}

type OrdersConfig struct {
	PageSize int
}

type IdentityConfig struct {
	Store string
	File  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var boundFlags = map[string]*pflag.Flag{}

// BindFlag lets a command-line flag override the env/.env value of key
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	boundFlags[key] = flag
	return viper.BindPFlag(key, flag)
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_BASE_URL", "https://qzaway-backend.onrender.com")
	viper.SetDefault("API_TIMEOUT", "15s")
	viper.SetDefault("API_RATE_LIMIT", 10)
	viper.SetDefault("API_RATE_BURST", 20)
	viper.SetDefault("BREAKER_FAILURES", 5)
	viper.SetDefault("BREAKER_COOLDOWN", "30s")
	viper.SetDefault("CART_UPDATE_DEBOUNCE", "400ms")
	viper.SetDefault("CART_SETTLE_DELAY", "16ms")
	viper.SetDefault("SEARCH_DEBOUNCE", "400ms")
	viper.SetDefault("CATALOG_CACHE_TTL", "5m")
	viper.SetDefault("ORDERS_PAGE_SIZE", 10)
	viper.SetDefault("IDENTITY_STORE", "file")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "3000"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		API: APIConfig{
			BaseURL:         getEnvOrViper("API_BASE_URL", "https://qzaway-backend.onrender.com"),
			Timeout:         viper.GetDuration("API_TIMEOUT"),
			RateLimit:       viper.GetFloat64("API_RATE_LIMIT"),
			RateBurst:       viper.GetInt("API_RATE_BURST"),
			BreakerFailures: viper.GetInt("BREAKER_FAILURES"),
			BreakerCooldown: viper.GetDuration("BREAKER_COOLDOWN"),
		},
		Cart: CartConfig{
			UpdateDebounce: viper.GetDuration("CART_UPDATE_DEBOUNCE"),
			SettleDelay:    viper.GetDuration("CART_SETTLE_DELAY"),
		},
		Catalog: CatalogConfig{
			SearchDebounce: viper.GetDuration("SEARCH_DEBOUNCE"),
			CacheTTL:       viper.GetDuration("CATALOG_CACHE_TTL"),
		},
		Orders: OrdersConfig{
			PageSize: viper.GetInt("ORDERS_PAGE_SIZE"),
		},
		Identity: IdentityConfig{
			Store: getEnvOrViper("IDENTITY_STORE", "file"),
			File:  getEnvOrViper("IDENTITY_FILE", defaultIdentityFile()),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "foodcourt"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", ""),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       viper.GetInt("REDIS_DB"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.Identity.Store != "file" && cfg.Identity.Store != "postgres" {
		return nil, fmt.Errorf("IDENTITY_STORE must be file or postgres, got %q", cfg.Identity.Store)
	}
	if cfg.Orders.PageSize <= 0 {
		return nil, fmt.Errorf("ORDERS_PAGE_SIZE must be positive")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if flag, ok := boundFlags[key]; ok && flag.Changed {
		return flag.Value.String()
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func defaultIdentityFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "qzaway", "state.json")
}
