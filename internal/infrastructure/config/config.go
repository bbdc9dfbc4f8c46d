package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported device kinds.
const (
	DeviceKindMotionSwitch = "motion_switch"
	DeviceKindEventLog     = "event_log"
)

// Config is the root configuration structure for the agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Device   DeviceConfig   `yaml:"device"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MQTTConfig contains broker connection and discovery namespace settings.
//
// Zero values are resolved by the connector: port 8883 with TLS or 1883
// without, a random client id, topic base "homeassistant", and 5 second
// keep-alive and reconnect delay.
type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	TopicBase  string `yaml:"topic_base"`
	DisableTLS bool   `yaml:"disable_tls"`

	KeepAlive      time.Duration `yaml:"keep_alive"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	// AvailabilityTopic receives a retained online/offline marker. Empty disables it.
	AvailabilityTopic string `yaml:"availability_topic"`
}

// DeviceConfig describes the device this agent exposes.
type DeviceConfig struct {
	// Kind selects the implementation: "motion_switch" or "event_log".
	Kind string `yaml:"kind"`

	// ID is the prefix of the entity object ids.
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	NodeID string `yaml:"node_id"`

	Identifiers []string `yaml:"identifiers"`
	SWVersion   string   `yaml:"sw_version"`
	SupportURL  string   `yaml:"support_url"`

	// ToggleInterval is how often the motion state flips while the switch is on.
	ToggleInterval time.Duration `yaml:"toggle_interval"`
}

// DatabaseConfig contains SQLite database settings for the entity ledger.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains status API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HASS_AGENT_SECTION_KEY
// For example: HASS_AGENT_MQTT_HOST, HASS_AGENT_DATABASE_PATH
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Host: "localhost",
		},
		Device: DeviceConfig{
			Kind:           DeviceKindMotionSwitch,
			ID:             "hass-agent",
			Name:           "Home Assistant Agent",
			ToggleInterval: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:     true,
			Path:        "./data/hass-agent.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8099,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HASS_AGENT_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// MQTT
	if v := os.Getenv("HASS_AGENT_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("HASS_AGENT_MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HASS_AGENT_MQTT_PORT: %w", err)
		}
		cfg.MQTT.Port = port
	}
	if v := os.Getenv("HASS_AGENT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("HASS_AGENT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("HASS_AGENT_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}
	if v := os.Getenv("HASS_AGENT_MQTT_TOPIC_BASE"); v != "" {
		cfg.MQTT.TopicBase = v
	}

	// Database
	if v := os.Getenv("HASS_AGENT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("HASS_AGENT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Host == "" {
		errs = append(errs, "mqtt.host is required")
	}
	if c.MQTT.Port < 0 || c.MQTT.Port > 65535 {
		errs = append(errs, "mqtt.port must be between 0 and 65535")
	}
	if c.MQTT.Password != "" && c.MQTT.Username == "" {
		errs = append(errs, "mqtt.password requires mqtt.username")
	}
	if strings.ContainsAny(c.MQTT.TopicBase, "+#") || strings.HasSuffix(c.MQTT.TopicBase, "/") {
		errs = append(errs, "mqtt.topic_base must not contain wildcards or a trailing slash")
	}

	// Device validation
	switch c.Device.Kind {
	case DeviceKindMotionSwitch, DeviceKindEventLog:
	default:
		errs = append(errs, fmt.Sprintf("device.kind %q is not supported", c.Device.Kind))
	}
	if c.Device.Kind == DeviceKindMotionSwitch && c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the database is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
