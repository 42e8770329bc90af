package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	StorageDriver string
	DatabaseURL   string
	SqlitePath    string
	Port          string
	IsProduction  bool

	BotTokenSecret string
	GatewayBaseURL string

	StartingBalance int64
	MaxTxnAmount    int64

	VoiceChannelCost int64
	VoiceUserLimit   int
	VoiceGracePeriod time.Duration
	VoiceSweepEvery  time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("STORAGE_DRIVER", DriverSqlite)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("SQLITE_PATH", "elysion-bank.db")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BOT_TOKEN_SECRET", "")
	viper.SetDefault("GATEWAY_BASE_URL", "http://localhost:9090")
	viper.SetDefault("STARTING_BALANCE", 10000)
	viper.SetDefault("MAX_TXN_AMOUNT", 1000000)
	viper.SetDefault("VC_COST", 500)
	viper.SetDefault("VC_USER_LIMIT", 2)
	viper.SetDefault("VC_GRACE_PERIOD", "5m")
	viper.SetDefault("VC_SWEEP_INTERVAL", "5m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.StorageDriver = viper.GetString("STORAGE_DRIVER")
	switch cfg.StorageDriver {
	case DriverPostgres:
		cfg.DatabaseURL = viper.GetString("PGSQL_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER is %q but PGSQL_URL is not set", DriverPostgres)
		}
	case DriverSqlite:
		cfg.SqlitePath = viper.GetString("SQLITE_PATH")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want %q or %q)", cfg.StorageDriver, DriverPostgres, DriverSqlite)
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.BotTokenSecret = viper.GetString("BOT_TOKEN_SECRET")
	if cfg.BotTokenSecret == "" {
		cfg.BotTokenSecret = "insecure-dev-secret-change-me"
		log.Println("Warning: BOT_TOKEN_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.GatewayBaseURL = viper.GetString("GATEWAY_BASE_URL")

	cfg.StartingBalance = viper.GetInt64("STARTING_BALANCE")
	if cfg.StartingBalance < 0 {
		return nil, fmt.Errorf("STARTING_BALANCE must not be negative, got %d", cfg.StartingBalance)
	}

	cfg.MaxTxnAmount = viper.GetInt64("MAX_TXN_AMOUNT")
	if cfg.MaxTxnAmount <= 0 {
		return nil, fmt.Errorf("MAX_TXN_AMOUNT must be positive, got %d", cfg.MaxTxnAmount)
	}

	cfg.VoiceChannelCost = viper.GetInt64("VC_COST")
	if cfg.VoiceChannelCost <= 0 {
		return nil, fmt.Errorf("VC_COST must be positive, got %d", cfg.VoiceChannelCost)
	}

	cfg.VoiceUserLimit = viper.GetInt("VC_USER_LIMIT")

	var err error
	cfg.VoiceGracePeriod, err = time.ParseDuration(viper.GetString("VC_GRACE_PERIOD"))
	if err != nil {
		cfg.VoiceGracePeriod = 5 * time.Minute
		log.Printf("Warning: Invalid value for VC_GRACE_PERIOD. Defaulting to %s.\n", cfg.VoiceGracePeriod)
	}

	cfg.VoiceSweepEvery, err = time.ParseDuration(viper.GetString("VC_SWEEP_INTERVAL"))
	if err != nil {
		cfg.VoiceSweepEvery = 5 * time.Minute
		log.Printf("Warning: Invalid value for VC_SWEEP_INTERVAL. Defaulting to %s.\n", cfg.VoiceSweepEvery)
	}

	return cfg, nil
}
