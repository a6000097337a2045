package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Bridge backend types.
const (
	BridgeMemory = "memory"
	BridgeMQTT   = "mqtt"
	BridgeHue    = "hue"
)

// Config is the root configuration structure for homecast.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Stream    StreamConfig    `yaml:"stream"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	URLScheme URLSchemeConfig `yaml:"url_scheme"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Groups    []GroupConfig   `yaml:"groups"`
}

// APIConfig contains HTTP control server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
// Stream connections are exempt from the write timeout.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// StreamConfig contains settings for the /events and /ws change streams.
type StreamConfig struct {
	// SendBuffer is the number of events queued per listener before
	// further events are dropped for that listener.
	SendBuffer int `yaml:"send_buffer"`

	// KeepaliveInterval is the SSE comment interval in seconds.
	KeepaliveInterval int `yaml:"keepalive_interval"`

	// WebSocket keepalive, in seconds, and inbound frame limit in bytes.
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
	MaxMessageSize int `yaml:"max_message_size"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// BridgeConfig selects and configures the device backend.
type BridgeConfig struct {
	// Type is one of "memory", "mqtt" or "hue".
	Type string `yaml:"type"`

	// SnapshotFile is the YAML or JSON snapshot loaded by the memory backend.
	SnapshotFile string `yaml:"snapshot_file"`

	// TopicPrefix is the MQTT topic root used by the mqtt backend.
	TopicPrefix string `yaml:"topic_prefix"`

	Hue HueConfig `yaml:"hue"`
}

// HueConfig contains Philips Hue bridge settings.
type HueConfig struct {
	Host         string `yaml:"host"`
	Username     string `yaml:"username"`
	PollInterval int    `yaml:"poll_interval"` // seconds
}

// URLSchemeConfig contains the URL scheme accepted by GET /open.
type URLSchemeConfig struct {
	Scheme string `yaml:"scheme"`
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// GroupConfig declares a device group seeded into the group store at startup.
type GroupConfig struct {
	Name    string   `yaml:"name"`
	Slug    string   `yaml:"slug"`
	Icon    string   `yaml:"icon"`
	RoomID  string   `yaml:"room_id"`
	Members []string `yaml:"members"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOMECAST_SECTION_KEY
// For example: HOMECAST_DATABASE_PATH, HOMECAST_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied. It is used when no config file exists.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8420,
			Timeouts: APITimeoutConfig{
				Read:  15,
				Write: 15,
				Idle:  60,
			},
		},
		Stream: StreamConfig{
			SendBuffer:        64,
			KeepaliveInterval: 15,
			PingInterval:      30,
			PongTimeout:       10,
			MaxMessageSize:    4096,
		},
		Database: DatabaseConfig{
			Path:        "./data/homecast.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homecast",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Bridge: BridgeConfig{
			Type:         BridgeMemory,
			SnapshotFile: "./configs/snapshot.yaml",
			TopicPrefix:  "homecast",
			Hue: HueConfig{
				PollInterval: 5,
			},
		},
		URLScheme: URLSchemeConfig{
			Scheme: "homecast",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOMECAST_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("HOMECAST_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HOMECAST_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Database
	if v := os.Getenv("HOMECAST_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("HOMECAST_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMECAST_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMECAST_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Bridge
	if v := os.Getenv("HOMECAST_BRIDGE_TYPE"); v != "" {
		cfg.Bridge.Type = v
	}
	if v := os.Getenv("HOMECAST_BRIDGE_SNAPSHOT_FILE"); v != "" {
		cfg.Bridge.SnapshotFile = v
	}
	if v := os.Getenv("HOMECAST_HUE_HOST"); v != "" {
		cfg.Bridge.Hue.Host = v
	}
	if v := os.Getenv("HOMECAST_HUE_USERNAME"); v != "" {
		cfg.Bridge.Hue.Username = v
	}

	// Logging
	if v := os.Getenv("HOMECAST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.TLS.Enabled && (c.API.TLS.CertFile == "" || c.API.TLS.KeyFile == "") {
		errs = append(errs, "api.tls requires cert_file and key_file")
	}

	if c.Stream.SendBuffer < 1 {
		errs = append(errs, "stream.send_buffer must be at least 1")
	}
	if c.Stream.PingInterval > 0 && c.Stream.PongTimeout <= 0 {
		errs = append(errs, "stream.pong_timeout must be positive when ping_interval is set")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	switch c.Bridge.Type {
	case BridgeMemory:
		if c.Bridge.SnapshotFile == "" {
			errs = append(errs, "bridge.snapshot_file is required for the memory bridge")
		}
	case BridgeMQTT:
		if c.Bridge.TopicPrefix == "" {
			errs = append(errs, "bridge.topic_prefix is required for the mqtt bridge")
		}
	case BridgeHue:
		if c.Bridge.Hue.Host == "" || c.Bridge.Hue.Username == "" {
			errs = append(errs, "bridge.hue.host and bridge.hue.username are required for the hue bridge")
		}
	default:
		errs = append(errs, fmt.Sprintf("bridge.type %q must be memory, mqtt, or hue", c.Bridge.Type))
	}

	for i, g := range c.Groups {
		if strings.TrimSpace(g.Name) == "" {
			errs = append(errs, fmt.Sprintf("groups[%d].name is required", i))
		}
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
