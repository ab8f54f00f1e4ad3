package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Model          string  `mapstructure:"model"`
	APIBaseURL     string  `mapstructure:"api_base_url"`
	RequestTimeout int     `mapstructure:"request_timeout"` // seconds
	Temperature    float64 `mapstructure:"temperature"`
	ReportDir      string  `mapstructure:"report_dir"`
	DataDir        string  `mapstructure:"data_dir"`
	ScanDepth      string  `mapstructure:"scan_depth"` // "quick", "deep", "complete"
}

// DataDirectory returns the resolved data directory path
func (c *Config) DataDirectory() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".superdiag")
}

func LoadConfig() (*Config, error) {
	// .env first so viper's env lookups see it
	_ = godotenv.Load()

	viper.SetDefault("model", "gemini-2.5-flash")
	viper.SetDefault("api_base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("request_timeout", 120)
	viper.SetDefault("temperature", 0.1)
	viper.SetDefault("report_dir", "AI_Reports")
	viper.SetDefault("data_dir", "")
	viper.SetDefault("scan_depth", "complete")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.superdiag")
	viper.SetEnvPrefix("superdiag")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults")
		} else {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	os.MkdirAll(config.DataDirectory(), 0755)

	return &config, nil
}
