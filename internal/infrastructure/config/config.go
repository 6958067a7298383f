package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for shade-bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Hub       HubConfig       `yaml:"hub"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Callback  CallbackConfig  `yaml:"callback"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// HubConfig contains settings for reaching the shade hub.
type HubConfig struct {
	// Host is the hub address. When empty, the hub is located via
	// multicast DNS and tracked across address changes.
	Host string `yaml:"host"`

	// PollInterval is the period between full reconciliation passes,
	// in seconds. Each pass re-enumerates the inventory and re-announces
	// every entity. Default: 300.
	PollInterval int `yaml:"poll_interval"`

	// RequestTimeout bounds every hub REST call, in seconds. The hub is
	// a small embedded device; a stuck call must not stall the event
	// loop forever. Default: 60.
	RequestTimeout int `yaml:"request_timeout"`
}

// DiscoveryConfig contains Home Assistant MQTT discovery settings.
type DiscoveryConfig struct {
	// Prefix is the discovery topic root the downstream consumer
	// watches. Default: "homeassistant".
	Prefix string `yaml:"prefix"`
}

// CallbackConfig contains settings for the embedded HTTP listener that
// receives hub-pushed motion events.
type CallbackConfig struct {
	// ListenAddress is the local address to bind. Default: "0.0.0.0".
	ListenAddress string `yaml:"listen_address"`

	// Port is the listener port, also advertised to the hub. Default: 20121.
	Port int `yaml:"port"`

	// AdvertiseAddress is the address the hub should push events to.
	// When empty, the listener address is advertised as-is.
	AdvertiseAddress string `yaml:"advertise_address"`
}

// InfluxDBConfig contains InfluxDB connection settings for the optional
// position/battery history recorder.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
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
// Environment variables follow the pattern: SHADEBRIDGE_SECTION_KEY
// For example: SHADEBRIDGE_MQTT_HOST, SHADEBRIDGE_HUB_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
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

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "shade-bridge",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Hub: HubConfig{
			PollInterval:   300,
			RequestTimeout: 60,
		},
		Discovery: DiscoveryConfig{
			Prefix: "homeassistant",
		},
		Callback: CallbackConfig{
			ListenAddress: "0.0.0.0",
			Port:          20121,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SHADEBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("SHADEBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SHADEBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("SHADEBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SHADEBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Hub
	if v := os.Getenv("SHADEBRIDGE_HUB_HOST"); v != "" {
		cfg.Hub.Host = v
	}

	// Discovery
	if v := os.Getenv("SHADEBRIDGE_DISCOVERY_PREFIX"); v != "" {
		cfg.Discovery.Prefix = v
	}

	// InfluxDB
	if v := os.Getenv("SHADEBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Hub.PollInterval < 1 {
		errs = append(errs, "hub.poll_interval must be at least 1 second")
	}
	if c.Hub.RequestTimeout < 1 {
		errs = append(errs, "hub.request_timeout must be at least 1 second")
	}
	if c.Discovery.Prefix == "" {
		errs = append(errs, "discovery.prefix is required")
	}
	if strings.ContainsAny(c.Discovery.Prefix, "+#") {
		errs = append(errs, "discovery.prefix must not contain MQTT wildcards")
	}
	if c.Callback.Port < 1 || c.Callback.Port > 65535 {
		errs = append(errs, "callback.port must be between 1 and 65535")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPollInterval returns the reconciliation poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Hub.PollInterval) * time.Second
}

// GetRequestTimeout returns the hub request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Hub.RequestTimeout) * time.Second
}
