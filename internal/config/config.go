package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	Stages string `mapstructure:"STAGES"`

	BaseURL    string `mapstructure:"BASE_URL"`
	ListingURL string `mapstructure:"LISTING_URL"`
	PriceURL   string `mapstructure:"PRICE_URL"`

	ListingPages   int     `mapstructure:"LISTING_PAGES"`
	MinRating      float64 `mapstructure:"MIN_RATING"`
	ListingWorkers int     `mapstructure:"LISTING_WORKERS"`
	DetailWorkers  int     `mapstructure:"DETAIL_WORKERS"`
	PriceWorkers   int     `mapstructure:"PRICE_WORKERS"`

	FetchTimeout int `mapstructure:"FETCH_TIMEOUT"`
	MaxRetries   int `mapstructure:"MAX_RETRIES"`
	RetryWaitMs  int `mapstructure:"RETRY_WAIT_MS"`

	DataDir string `mapstructure:"DATA_DIR"`

	UserAgent string `mapstructure:"USER_AGENT"`
	Platform  string `mapstructure:"PLATFORM"`
	SessionID string `mapstructure:"SESSION_ID"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STAGES", "listing,details,aggregate,prices")
	viper.SetDefault("BASE_URL", "https://www.futbin.com")
	viper.SetDefault("LISTING_URL", "https://futbin.com/players/?page=%d")
	viper.SetDefault("PRICE_URL", "https://www.futbin.com/20/playerGraph?type=daily_graph&year=20&player=%s&set_id=")
	viper.SetDefault("LISTING_PAGES", 754)
	viper.SetDefault("MIN_RATING", 0)
	viper.SetDefault("LISTING_WORKERS", 4)
	viper.SetDefault("DETAIL_WORKERS", 4)
	viper.SetDefault("PRICE_WORKERS", 4)
	viper.SetDefault("FETCH_TIMEOUT", 30) // in seconds
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("RETRY_WAIT_MS", 500)
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:77.0) Gecko/20100101 Firefox/77.0")
	viper.SetDefault("PLATFORM", "ps4")
	viper.SetDefault("SESSION_ID", "")
	viper.SetDefault("POSTGRES_URL", "")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
