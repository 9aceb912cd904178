package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Keychain KeychainConfig `mapstructure:"keychain"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Update   UpdateConfig   `mapstructure:"update"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds Umzug API connection details. The password is never
// stored here; it lives in the keychain.
type ServerConfig struct {
	Scheme   string `mapstructure:"scheme"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
}

// APIConfig contains request settings
type APIConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// KeychainConfig contains credential storage settings
type KeychainConfig struct {
	Service string `mapstructure:"service"`
}

// FilterConfig contains named filter presets
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// UpdateConfig contains self-update settings
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
