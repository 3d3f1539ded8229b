package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings holds everything the web process needs to start. Values come from
// environment variables (TENANT_OPTIMIZER_ prefix) with an optional YAML file
// layered underneath.
type Settings struct {
	ServerHost string `mapstructure:"server_host"`
	ServerPort string `mapstructure:"server_port"`

	DBPath string `mapstructure:"db_path"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`

	AdvisorTimeout time.Duration `mapstructure:"advisor_timeout"`
	ScanFanOut     int           `mapstructure:"scan_fan_out"`
}

func Load(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("db_path", "tenant-optimizer.db")
	// Registered with an empty default so AutomaticEnv picks it up during
	// Unmarshal even when no config file mentions it.
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("advisor_timeout", 20*time.Second)
	v.SetDefault("scan_fan_out", 4)

	v.SetEnvPrefix("TENANT_OPTIMIZER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &settings, nil
}
