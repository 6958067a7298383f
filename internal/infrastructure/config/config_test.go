package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
hub:
  host: "192.168.1.50"
  poll_interval: 120
discovery:
  prefix: "homeassistant"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}

	if cfg.Hub.Host != "192.168.1.50" {
		t.Errorf("Hub.Host = %q, want %q", cfg.Hub.Host, "192.168.1.50")
	}

	if cfg.Hub.PollInterval != 120 {
		t.Errorf("Hub.PollInterval = %d, want 120", cfg.Hub.PollInterval)
	}

	// Unset values keep their defaults.
	if cfg.Hub.RequestTimeout != 60 {
		t.Errorf("Hub.RequestTimeout = %d, want default 60", cfg.Hub.RequestTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Hub.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.Hub.RequestTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "empty discovery prefix",
			mutate:  func(c *Config) { c.Discovery.Prefix = "" },
			wantErr: true,
		},
		{
			name:    "wildcard in discovery prefix",
			mutate:  func(c *Config) { c.Discovery.Prefix = "home/#" },
			wantErr: true,
		},
		{
			name:    "invalid callback port",
			mutate:  func(c *Config) { c.Callback.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SHADEBRIDGE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SHADEBRIDGE_MQTT_PORT", "8883")
	t.Setenv("SHADEBRIDGE_MQTT_USERNAME", "testuser")
	t.Setenv("SHADEBRIDGE_MQTT_PASSWORD", "testpass")
	t.Setenv("SHADEBRIDGE_HUB_HOST", "10.0.0.5")
	t.Setenv("SHADEBRIDGE_DISCOVERY_PREFIX", "ha")
	t.Setenv("SHADEBRIDGE_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.Hub.Host != "10.0.0.5" {
		t.Errorf("Hub.Host = %q, want %q", cfg.Hub.Host, "10.0.0.5")
	}

	if cfg.Discovery.Prefix != "ha" {
		t.Errorf("Discovery.Prefix = %q, want %q", cfg.Discovery.Prefix, "ha")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.Discovery.Prefix != "homeassistant" {
		t.Errorf("defaultConfig Discovery.Prefix = %q, want %q", cfg.Discovery.Prefix, "homeassistant")
	}

	if cfg.Callback.Port != 20121 {
		t.Errorf("defaultConfig Callback.Port = %d, want 20121", cfg.Callback.Port)
	}

	if got := cfg.GetPollInterval().Seconds(); got != 300 {
		t.Errorf("GetPollInterval() = %v, want 300", got)
	}
}
