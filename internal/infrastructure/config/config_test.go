package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  host: "broker.local"
  port: 1883
  disable_tls: true
  client_id: "agent-test"
  topic_base: "ha"
  keep_alive: 10s
  reconnect_delay: 2s
  availability_topic: "hass-agent/availability"
device:
  kind: motion_switch
  id: "hallway"
  name: "Hallway"
  identifiers: ["hallway-01"]
  toggle_interval: 3s
database:
  path: "/tmp/test.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Host != "broker.local" {
		t.Errorf("MQTT.Host = %q, want %q", cfg.MQTT.Host, "broker.local")
	}
	if !cfg.MQTT.DisableTLS {
		t.Error("MQTT.DisableTLS = false, want true")
	}
	if cfg.MQTT.KeepAlive != 10*time.Second {
		t.Errorf("MQTT.KeepAlive = %v, want 10s", cfg.MQTT.KeepAlive)
	}
	if cfg.MQTT.ReconnectDelay != 2*time.Second {
		t.Errorf("MQTT.ReconnectDelay = %v, want 2s", cfg.MQTT.ReconnectDelay)
	}
	if cfg.MQTT.AvailabilityTopic != "hass-agent/availability" {
		t.Errorf("MQTT.AvailabilityTopic = %q", cfg.MQTT.AvailabilityTopic)
	}
	if cfg.Device.Name != "Hallway" || len(cfg.Device.Identifiers) != 1 {
		t.Errorf("Device = %+v, want Hallway with one identifier", cfg.Device)
	}
	if cfg.Device.ToggleInterval != 3*time.Second {
		t.Errorf("Device.ToggleInterval = %v, want 3s", cfg.Device.ToggleInterval)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.Database.WALMode {
		t.Error("Database.WALMode default lost after load")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  host: ""
device:
  kind: toaster
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"mqtt.host", "device.kind"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %v, want mention of %s", err, want)
		}
	}
}

func TestLoad_InvalidEnvPort(t *testing.T) {
	t.Setenv("HASS_AGENT_MQTT_PORT", "not-a-port")

	_, err := Load(writeConfig(t, "mqtt:\n  host: broker\n"))
	if err == nil {
		t.Error("Load() expected error for invalid HASS_AGENT_MQTT_PORT, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.MQTT.Host = "broker"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing host", func(c *Config) { c.MQTT.Host = "" }, true},
		{"mqtt port high", func(c *Config) { c.MQTT.Port = 70000 }, true},
		{"password without username", func(c *Config) { c.MQTT.Password = "secret" }, true},
		{"wildcard topic base", func(c *Config) { c.MQTT.TopicBase = "ha/#" }, true},
		{"trailing slash topic base", func(c *Config) { c.MQTT.TopicBase = "ha/" }, true},
		{"unknown device kind", func(c *Config) { c.Device.Kind = "toaster" }, true},
		{"missing device id", func(c *Config) { c.Device.ID = "" }, true},
		{"event log without id", func(c *Config) { c.Device.Kind = DeviceKindEventLog; c.Device.ID = "" }, false},
		{"database path missing", func(c *Config) { c.Database.Path = "" }, true},
		{"database disabled without path", func(c *Config) { c.Database.Enabled = false; c.Database.Path = "" }, false},
		{"influxdb without url", func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "b" }, true},
		{"api port zero", func(c *Config) { c.API.Port = 0 }, true},
		{"api disabled port zero", func(c *Config) { c.API.Enabled = false; c.API.Port = 0 }, false},
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

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("HASS_AGENT_MQTT_HOST", "mqtt.example.com")
	t.Setenv("HASS_AGENT_MQTT_PORT", "8884")
	t.Setenv("HASS_AGENT_MQTT_USERNAME", "testuser")
	t.Setenv("HASS_AGENT_MQTT_PASSWORD", "testpass")
	t.Setenv("HASS_AGENT_MQTT_CLIENT_ID", "agent-7")
	t.Setenv("HASS_AGENT_MQTT_TOPIC_BASE", "ha")
	t.Setenv("HASS_AGENT_DATABASE_PATH", "/custom/path.db")
	t.Setenv("HASS_AGENT_INFLUXDB_TOKEN", "secret-token")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	tests := []struct {
		field string
		got   any
		want  any
	}{
		{"MQTT.Host", cfg.MQTT.Host, "mqtt.example.com"},
		{"MQTT.Port", cfg.MQTT.Port, 8884},
		{"MQTT.Username", cfg.MQTT.Username, "testuser"},
		{"MQTT.Password", cfg.MQTT.Password, "testpass"},
		{"MQTT.ClientID", cfg.MQTT.ClientID, "agent-7"},
		{"MQTT.TopicBase", cfg.MQTT.TopicBase, "ha"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.field, tt.got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Device.Kind != DeviceKindMotionSwitch {
		t.Errorf("defaultConfig Device.Kind = %q, want %q", cfg.Device.Kind, DeviceKindMotionSwitch)
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Port != 0 {
		t.Errorf("defaultConfig MQTT.Port = %d, want 0 (resolved by TLS mode)", cfg.MQTT.Port)
	}

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("defaultConfig API.Host = %q, want loopback", cfg.API.Host)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig Validate() error = %v", err)
	}
}
