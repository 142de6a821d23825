package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".avulto"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for avulto settings.
const envPrefix = "AVULTO"

// Config holds the settings shared by every command. Flags win over the
// environment, which wins over the config file.
type Config struct {
	DB         string `mapstructure:"db"`
	Format     string `mapstructure:"format"`
	ScriptsDir string `mapstructure:"scripts_dir"`
	Verbose    bool   `mapstructure:"verbose"`
	NoColor    bool   `mapstructure:"no_color"`
}

// flagKeys maps persistent flag names onto config keys.
var flagKeys = map[string]string{
	"db":          "db",
	"format":      "format",
	"scripts-dir": "scripts_dir",
	"verbose":     "verbose",
	"no-color":    "no_color",
}

// LoadConfig loads configuration from file, env vars and flags.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	viperCfg := viper.New()

	viperCfg.SetDefault("format", "json")

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viperCfg.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := viperCfg.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}
	return &cfg, nil
}
