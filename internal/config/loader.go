package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joacominatel/dbd/internal/format"
	"github.com/joacominatel/dbd/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configDir  = ".dbd"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "dbd"
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"driver":         "driver",
	"params":         "params",
	"log-level":      "log_level",
	"end-of-column":  "output.end_of_column",
	"end-of-line":    "output.end_of_line",
	"header":         "output.header",
	"no-end-of-line": "output.no_end_of_line",
	"encoding":       "output.encoding",
}

// Load reads the configuration from ~/.dbd/config.yaml, the DBD_*
// environment and the given flags. A missing file is not an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	return LoadFrom(afero.NewOsFs(), dir, flags)
}

// LoadFrom is Load with an explicit filesystem and config directory.
func LoadFrom(fs afero.Fs, dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("driver", "")
	v.SetDefault("params", "")
	v.SetDefault("log_level", logger.DefaultLevel)
	v.SetDefault("output.end_of_column", format.DefaultColumnSeparator)
	v.SetDefault("output.end_of_line", format.DefaultLineSeparator)
	v.SetDefault("output.header", false)
	v.SetDefault("output.no_end_of_line", false)
	v.SetDefault("output.encoding", format.DefaultEncoding)
	v.SetDefault("preferences.default_connection", "")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Dir returns the directory the config file is read from.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
