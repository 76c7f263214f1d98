package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Planning PlanningConfig
	Events   EventsConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type PlanningConfig struct {
	DefaultBatchSize decimal.Decimal
	PlaceholderUOM   string
	MaxBOMDepth      int
}

type EventsConfig struct {
	Retention int
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration once from .env (if present), the environment and defaults
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = read()
	})
	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "release")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("MRP_DB_DRIVER", "sqlite3")
	viper.SetDefault("MRP_DB_DSN", "file:mrp.db?_foreign_keys=on")
	viper.SetDefault("MRP_DEFAULT_BATCH_SIZE", "25")
	viper.SetDefault("MRP_PLACEHOLDER_UOM", "ea")
	viper.SetDefault("MRP_MAX_BOM_DEPTH", 0)
	viper.SetDefault("MRP_EVENT_RETENTION", 1000)
	viper.SetDefault("LOG_LEVEL", "info")
}

func read() *Config {
	setDefaults()

	// Read from environment variables
	viper.AutomaticEnv()

	batchSize, err := decimal.NewFromString(viper.GetString("MRP_DEFAULT_BATCH_SIZE"))
	if err != nil || !batchSize.IsPositive() {
		batchSize = decimal.NewFromInt(25)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver: viper.GetString("MRP_DB_DRIVER"),
			DSN:    viper.GetString("MRP_DB_DSN"),
		},
		Planning: PlanningConfig{
			DefaultBatchSize: batchSize,
			PlaceholderUOM:   viper.GetString("MRP_PLACEHOLDER_UOM"),
			MaxBOMDepth:      viper.GetInt("MRP_MAX_BOM_DEPTH"),
		},
		Events: EventsConfig{
			Retention: viper.GetInt("MRP_EVENT_RETENTION"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}
}
