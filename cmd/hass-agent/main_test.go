package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/hass-agent/internal/infrastructure/config"
	"github.com/nerrad567/hass-agent/internal/infrastructure/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with a missing config file.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HASS_AGENT_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_UnreachableBrokerStopsOnCancel verifies run keeps retrying an
// unreachable broker and returns cleanly once the context is cancelled.
func TestRun_UnreachableBrokerStopsOnCancel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "agent.db")
	t.Setenv("HASS_AGENT_CONFIG", writeConfig(t, `
mqtt:
  host: "127.0.0.1"
  port: 1
  disable_tls: true
  reconnect_delay: 50ms
  availability_topic: "hass-agent/test/availability"

device:
  kind: motion_switch
  id: test-agent
  name: "Test Agent"
  toggle_interval: 1s

database:
  enabled: true
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5

influxdb:
  enabled: false

api:
  enabled: false

logging:
  level: error
  format: text
`))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v, want nil after cancel", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not return after the context was cancelled")
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("ledger database not created: %v", err)
	}
}

// TestGetConfigPath verifies the default and the environment override.
func TestGetConfigPath(t *testing.T) {
	t.Setenv("HASS_AGENT_CONFIG", "")
	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}

	t.Setenv("HASS_AGENT_CONFIG", "/custom/path/config.yaml")
	if path := getConfigPath(); path != "/custom/path/config.yaml" {
		t.Errorf("getConfigPath() = %q, want %q", path, "/custom/path/config.yaml")
	}
}

func TestConnectorOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Host:              "broker.local",
		Port:              8883,
		ClientID:          "agent",
		Username:          "user",
		Password:          "secret",
		TopicBase:         "ha",
		KeepAlive:         10 * time.Second,
		ReconnectDelay:    2 * time.Second,
		AvailabilityTopic: "agent/availability",
	}

	opts := connectorOptions(cfg)
	if opts.Host != cfg.Host || opts.Port != cfg.Port || opts.ClientID != cfg.ClientID {
		t.Errorf("broker fields = %s:%d/%s, want %s:%d/%s", opts.Host, opts.Port, opts.ClientID, cfg.Host, cfg.Port, cfg.ClientID)
	}
	if opts.Username != cfg.Username || opts.Password != cfg.Password {
		t.Error("credentials not copied")
	}
	if opts.TopicBase != "ha" || opts.DisableTLS {
		t.Errorf("TopicBase = %q DisableTLS = %v, want ha false", opts.TopicBase, opts.DisableTLS)
	}
	if opts.KeepAlive != cfg.KeepAlive || opts.ReconnectDelay != cfg.ReconnectDelay {
		t.Error("timing fields not copied")
	}
	if opts.AvailabilityTopic != cfg.AvailabilityTopic {
		t.Errorf("AvailabilityTopic = %q, want %q", opts.AvailabilityTopic, cfg.AvailabilityTopic)
	}
}

func TestNewDevice(t *testing.T) {
	tests := []struct {
		name            string
		cfg             config.DeviceConfig
		wantIdentifiers []string
	}{
		{
			name:            "identifiers default to id",
			cfg:             config.DeviceConfig{ID: "agent-1", Name: "Agent"},
			wantIdentifiers: []string{"agent-1"},
		},
		{
			name:            "explicit identifiers",
			cfg:             config.DeviceConfig{ID: "agent-1", Name: "Agent", Identifiers: []string{"a", "b"}},
			wantIdentifiers: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDevice(tt.cfg)
			if d.DisplayName() != "Agent" {
				t.Errorf("DisplayName() = %q, want Agent", d.DisplayName())
			}
			if len(d.Identifiers) != len(tt.wantIdentifiers) {
				t.Fatalf("Identifiers = %v, want %v", d.Identifiers, tt.wantIdentifiers)
			}
			for i := range tt.wantIdentifiers {
				if d.Identifiers[i] != tt.wantIdentifiers[i] {
					t.Errorf("Identifiers = %v, want %v", d.Identifiers, tt.wantIdentifiers)
				}
			}
		})
	}
}

func TestDeviceFactory_UnknownKind(t *testing.T) {
	f := newDeviceFactory(context.Background(), config.DeviceConfig{Kind: "lamp"}, nil, logging.Default())
	defer f.close(logging.Default())

	if h := f.build(nil); h != nil {
		t.Errorf("build() = %v, want nil", h)
	}
	if f.err == nil {
		t.Error("err = nil, want unknown kind error")
	}
}
