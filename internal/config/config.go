package config

import (
	"fmt"
	"strings"

	"github.com/joacominatel/dbd/internal/format"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the keyring service connection secrets are stored under.
	KeyringService = "dbd"

	// PasswordToken is replaced by the keyring secret in profile params.
	PasswordToken = "{password}"
)

// Config represents the application configuration.
type Config struct {
	Driver      string       `mapstructure:"driver" yaml:"driver"`
	Params      string       `mapstructure:"params" yaml:"params"`
	LogLevel    string       `mapstructure:"log_level" yaml:"log_level"`
	Output      Output       `mapstructure:"output" yaml:"output"`
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
}

// Output holds the result rendering settings.
type Output struct {
	EndOfColumn string `mapstructure:"end_of_column" yaml:"end_of_column"`
	EndOfLine   string `mapstructure:"end_of_line" yaml:"end_of_line"`
	Header      bool   `mapstructure:"header" yaml:"header"`
	NoEndOfLine bool   `mapstructure:"no_end_of_line" yaml:"no_end_of_line"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding"`
}

// Connection represents a saved database connection profile.
type Connection struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Driver  string `mapstructure:"driver" yaml:"driver"`
	Params  string `mapstructure:"params" yaml:"params"`
	Keyring bool   `mapstructure:"keyring" yaml:"keyring"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
}

// FormatOptions converts the output settings into formatter options.
func (cfg *Config) FormatOptions() format.Options {
	return format.Options{
		ColumnSeparator: cfg.Output.EndOfColumn,
		LineSeparator:   cfg.Output.EndOfLine,
		Header:          cfg.Output.Header,
		NoEndOfLine:     cfg.Output.NoEndOfLine,
		Encoding:        cfg.Output.Encoding,
	}
}

// Connection returns the named profile, or the default profile when name
// is empty. It returns nil when no name is given and there is no default.
func (cfg *Config) Connection(name string) (*Connection, error) {
	if name == "" {
		name = cfg.Preferences.DefaultConnection
	}
	if name == "" {
		return nil, nil
	}

	for i := range cfg.Connections {
		if cfg.Connections[i].Name == name {
			return &cfg.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("unknown connection '%s'", name)
}

// Target returns the driver and params to connect with. Values set by
// flag, environment or the top level of the config file win over the
// selected profile.
func (cfg *Config) Target(profile string) (driver, params string, err error) {
	driver, params = cfg.Driver, cfg.Params
	if driver != "" && params != "" {
		return driver, params, nil
	}

	conn, err := cfg.Connection(profile)
	if err != nil || conn == nil {
		return driver, params, err
	}

	if driver == "" {
		driver = conn.Driver
	}
	if params == "" {
		params, err = conn.ResolveParams()
		if err != nil {
			return "", "", err
		}
	}
	return driver, params, nil
}

// ResolveParams returns the profile params with the password token
// replaced by the secret stored in the OS keyring.
func (c Connection) ResolveParams() (string, error) {
	if !c.Keyring || !strings.Contains(c.Params, PasswordToken) {
		return c.Params, nil
	}

	secret, err := keyring.Get(KeyringService, c.Name)
	if err != nil {
		return "", fmt.Errorf("keyring secret for '%s': %w", c.Name, err)
	}
	return strings.ReplaceAll(c.Params, PasswordToken, secret), nil
}
