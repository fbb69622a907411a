package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ledger backends
const (
	BackendSQLite = "sqlite"
	BackendCSV    = "csv"
)

// Config holds the application configuration
type Config struct {
	Database  string        `yaml:"database,omitempty"` // SQLite file (fallback: data.db)
	Ledger    LedgerConfig  `yaml:"ledger,omitempty"`
	UrbanMode bool          `yaml:"urban_mode,omitempty"` // Default for record --urban
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	MQTT      MQTTConfig    `yaml:"mqtt,omitempty"`
}

// LedgerConfig selects where monthly totals are kept
type LedgerConfig struct {
	Backend string `yaml:"backend,omitempty"`  // "sqlite" or "csv"
	CSVPath string `yaml:"csv_path,omitempty"` // Used by the csv backend
}

// LoggingConfig controls the zerolog output
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // console or json
}

// MQTTConfig holds broker settings for publishing emissions
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	ClientID    string `yaml:"client_id,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Default returns a config with every default spelled out
func Default() *Config {
	return &Config{
		Database: DefaultDatabasePath(),
		Ledger: LedgerConfig{
			Backend: BackendSQLite,
			CSVPath: DefaultCSVPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		MQTT: MQTTConfig{
			Broker:      "localhost:1883",
			TopicPrefix: "vehicalc",
		},
	}
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// DefaultDatabasePath returns the default SQLite file (local directory)
func DefaultDatabasePath() string {
	return "data.db"
}

// DefaultCSVPath returns the default ledger table for the csv backend
func DefaultCSVPath() string {
	return "emission_history.csv"
}

// Validate checks enumerated fields
func (c *Config) Validate() error {
	switch c.GetLedgerBackend() {
	case BackendSQLite, BackendCSV:
	default:
		return fmt.Errorf("invalid ledger backend %q (available: sqlite, csv)", c.Ledger.Backend)
	}

	switch c.GetLogFormat() {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging format %q (available: console, json)", c.Logging.Format)
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("MQTT broker address is required when enabled")
	}
	return nil
}

// GetDatabasePath returns the SQLite path, falling back to data.db
func (c *Config) GetDatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return DefaultDatabasePath()
}

// GetLedgerBackend returns the ledger backend with a default of sqlite
func (c *Config) GetLedgerBackend() string {
	if c.Ledger.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Ledger.Backend)
}

// GetCSVPath returns the csv ledger path, falling back to emission_history.csv
func (c *Config) GetCSVPath() string {
	if c.Ledger.CSVPath != "" {
		return c.Ledger.CSVPath
	}
	return DefaultCSVPath()
}

// GetLogLevel returns the log level with a default of info
func (c *Config) GetLogLevel() string {
	if c.Logging.Level == "" {
		return "info"
	}
	return c.Logging.Level
}

// GetLogFormat returns the log format with a default of console
func (c *Config) GetLogFormat() string {
	if c.Logging.Format == "" {
		return "console"
	}
	return strings.ToLower(c.Logging.Format)
}

// GetTopicPrefix returns the MQTT topic prefix with a default of vehicalc
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "vehicalc"
	}
	return c.MQTT.TopicPrefix
}

// GetClientID returns the MQTT client id with a default of vehicalc
func (c *Config) GetClientID() string {
	if c.MQTT.ClientID == "" {
		return "vehicalc"
	}
	return c.MQTT.ClientID
}
