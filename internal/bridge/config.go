package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Node    NodeConfig    `mapstructure:"node"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Poll    PollConfig    `mapstructure:"poll"`
}

type NodeConfig struct {
	Address string `mapstructure:"address"`
}

type GatewayConfig struct {
	URL string `mapstructure:"url"`
}

type PollConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	BatchSize       int `mapstructure:"batch_size"`
}

// Load reads the bridge configuration from a YAML file, with environment
// variable overrides.
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		// Look for config in common locations
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(home, ".tengen-bridge"))
	}

	// Set defaults
	viper.SetDefault("node.address", "")
	viper.SetDefault("gateway.url", "http://localhost:8080")
	viper.SetDefault("poll.interval_seconds", 10)
	viper.SetDefault("poll.batch_size", 10)

	// Read from environment variables (with priority)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("BRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Allow environment variable overrides
	if url := os.Getenv("GATEWAY_ADDR"); url != "" {
		viper.Set("gateway.url", url)
	}
	if addr := os.Getenv("NODE_ADDRESS"); addr != "" {
		viper.Set("node.address", addr)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Node.Address == "" {
		return nil, fmt.Errorf("node.address is required (set NODE_ADDRESS or node.address in config)")
	}

	return &cfg, nil
}
