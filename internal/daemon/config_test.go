package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
credentials:
  email: user@example.com
  password: secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Poll.Interval != Duration(5*time.Minute) {
		t.Fatalf("unexpected poll interval: %s", cfg.Poll.Interval)
	}
	if cfg.MQTT.Enabled {
		t.Fatalf("mqtt must default to disabled")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %s", cfg.Logging.Format)
	}
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	path := writeConfig(t, `
credentials:
  email: file@example.com
  password: file-secret
`)
	t.Setenv("MELCLOUDHOME_EMAIL", "env@example.com")
	t.Setenv("MELCLOUDHOME_PASSWORD", "env-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Credentials.Email != "env@example.com" {
		t.Fatalf("env must win, got %s", cfg.Credentials.Email)
	}
	if cfg.Credentials.Password != "env-secret" {
		t.Fatalf("env must win, got %s", cfg.Credentials.Password)
	}
}

func TestLoadRejectsMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
credentials:
  email: user@example.com
  password: secret
poll:
  interval: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestLoadRejectsBadMQTT(t *testing.T) {
	path := writeConfig(t, `
credentials:
  email: user@example.com
  password: secret
mqtt:
  enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("mqtt without broker host must fail validation")
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
credentials:
  email: user@example.com
  password: secret
http:
  addr: ":9100"
poll:
  interval: 1m
browser:
  chromium_path: /usr/bin/chromium
mqtt:
  enabled: true
  broker:
    host: broker.local
    port: 8883
    tls: true
    client_id: melcloud-exporter
  auth:
    username: mqtt-user
    password: mqtt-pass
  topic_prefix: home/hvac
  qos: 1
logging:
  level: debug
  format: text
  output: stderr
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Poll.Interval != Duration(time.Minute) {
		t.Fatalf("unexpected interval: %s", cfg.Poll.Interval)
	}
	if cfg.Browser.ChromiumPath != "/usr/bin/chromium" {
		t.Fatalf("unexpected chromium path: %s", cfg.Browser.ChromiumPath)
	}
	if !cfg.MQTT.Broker.TLS || cfg.MQTT.Broker.Port != 8883 {
		t.Fatalf("unexpected broker config: %+v", cfg.MQTT.Broker)
	}
	if cfg.MQTT.TopicPrefix != "home/hvac" || cfg.MQTT.QoS != 1 {
		t.Fatalf("unexpected mqtt config: %+v", cfg.MQTT)
	}
}
