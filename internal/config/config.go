package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds the service configuration. Values come from an optional
// config file in the working directory, overridden by environment variables.
type Config struct {
	HTTPPort      string
	MetricsPort   string
	ChannelBuffer int
	Demo          DemoConfig
}

// DemoConfig drives the terminal demo loop.
type DemoConfig struct {
	Symbol     string
	Steps      int
	IntervalMS int
	MinPrice   float64
	MaxPrice   float64
	MinQty     int64
	MaxQty     int64
	Seed       int64 // 0 means seed from the clock
}

// Load reads configuration with sane defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("CHANNEL_BUFFER", 4096)
	v.SetDefault("DEMO_SYMBOL", "AAPL")
	v.SetDefault("DEMO_STEPS", 40)
	v.SetDefault("DEMO_INTERVAL_MS", 300)
	v.SetDefault("DEMO_MIN_PRICE", 149.0)
	v.SetDefault("DEMO_MAX_PRICE", 152.0)
	v.SetDefault("DEMO_MIN_QTY", 10)
	v.SetDefault("DEMO_MAX_QTY", 100)
	v.SetDefault("DEMO_SEED", 0)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// No config file is fine; defaults and env apply.
	}

	return &Config{
		HTTPPort:      v.GetString("HTTP_PORT"),
		MetricsPort:   v.GetString("METRICS_PORT"),
		ChannelBuffer: v.GetInt("CHANNEL_BUFFER"),
		Demo: DemoConfig{
			Symbol:     v.GetString("DEMO_SYMBOL"),
			Steps:      v.GetInt("DEMO_STEPS"),
			IntervalMS: v.GetInt("DEMO_INTERVAL_MS"),
			MinPrice:   v.GetFloat64("DEMO_MIN_PRICE"),
			MaxPrice:   v.GetFloat64("DEMO_MAX_PRICE"),
			MinQty:     v.GetInt64("DEMO_MIN_QTY"),
			MaxQty:     v.GetInt64("DEMO_MAX_QTY"),
			Seed:       v.GetInt64("DEMO_SEED"),
		},
	}, nil
}
