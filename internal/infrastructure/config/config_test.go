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
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  host: "0.0.0.0"
  port: 9000
database:
  path: "/tmp/test.db"
bridge:
  type: mqtt
  topic_prefix: "house"
groups:
  - name: "Downstairs"
    members: ["s1", "s2"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.Bridge.Type != BridgeMQTT || cfg.Bridge.TopicPrefix != "house" {
		t.Errorf("Bridge = %+v, want mqtt/house", cfg.Bridge)
	}
	if len(cfg.Groups) != 1 || len(cfg.Groups[0].Members) != 2 {
		t.Errorf("Groups = %+v, want one group with two members", cfg.Groups)
	}

	// Defaults survive for unset sections
	if cfg.Stream.SendBuffer != 64 {
		t.Errorf("Stream.SendBuffer = %d, want default 64", cfg.Stream.SendBuffer)
	}
	if cfg.URLScheme.Scheme != "homecast" {
		t.Errorf("URLScheme.Scheme = %q, want homecast", cfg.URLScheme.Scheme)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.API.Port = 0 }, "api.port"},
		{"tls without files", func(c *Config) { c.API.TLS.Enabled = true }, "api.tls"},
		{"zero send buffer", func(c *Config) { c.Stream.SendBuffer = 0 }, "stream.send_buffer"},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"unknown bridge", func(c *Config) { c.Bridge.Type = "zigbee" }, "bridge.type"},
		{"memory without file", func(c *Config) { c.Bridge.SnapshotFile = "" }, "snapshot_file"},
		{"hue without credentials", func(c *Config) { c.Bridge.Type = BridgeHue }, "bridge.hue"},
		{"unnamed group", func(c *Config) { c.Groups = []GroupConfig{{Slug: "x"}} }, "groups[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("HOMECAST_API_PORT", "9100")
	t.Setenv("HOMECAST_DATABASE_PATH", "/var/lib/homecast.db")
	t.Setenv("HOMECAST_BRIDGE_TYPE", "hue")
	t.Setenv("HOMECAST_HUE_HOST", "192.168.1.2")
	t.Setenv("HOMECAST_HUE_USERNAME", "secret")

	cfg := Default()

	if cfg.API.Port != 9100 {
		t.Errorf("API.Port = %d, want 9100", cfg.API.Port)
	}
	if cfg.Database.Path != "/var/lib/homecast.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Bridge.Type != BridgeHue || cfg.Bridge.Hue.Host != "192.168.1.2" {
		t.Errorf("Bridge = %+v", cfg.Bridge)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	t.Setenv("HOMECAST_API_PORT", "not-a-port")
	if got := Default().API.Port; got != 8420 {
		t.Errorf("API.Port = %d, want default 8420", got)
	}
}

func TestTimeoutGetters(t *testing.T) {
	cfg := defaultConfig()
	if cfg.GetReadTimeout() != 15*time.Second {
		t.Errorf("GetReadTimeout() = %v", cfg.GetReadTimeout())
	}
	if cfg.GetWriteTimeout() != 15*time.Second {
		t.Errorf("GetWriteTimeout() = %v", cfg.GetWriteTimeout())
	}
	if cfg.GetIdleTimeout() != time.Minute {
		t.Errorf("GetIdleTimeout() = %v", cfg.GetIdleTimeout())
	}
}
