// Package daemon holds the configuration, logging and MQTT plumbing for
// melcloudhomed, the metrics/state exporter built on the melcloudhome client.
package daemon

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for melcloudhomed, loaded from YAML.
// Credentials may be left out of the file and supplied through the
// MELCLOUDHOME_EMAIL / MELCLOUDHOME_PASSWORD environment variables instead.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	HTTP        HTTPConfig        `yaml:"http"`
	Poll        PollConfig        `yaml:"poll"`
	Browser     BrowserConfig     `yaml:"browser"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type CredentialsConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type PollConfig struct {
	Interval Duration `yaml:"interval"`
}

// Duration parses Go duration strings ("30s", "5m") from YAML.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// BrowserConfig points the login flow at a system Chromium when the default
// lookup will not work (ARM boards).
type BrowserConfig struct {
	ChromiumPath string `yaml:"chromium_path"`
}

type MQTTConfig struct {
	Enabled     bool         `yaml:"enabled"`
	Broker      BrokerConfig `yaml:"broker"`
	Auth        AuthConfig   `yaml:"auth"`
	TopicPrefix string       `yaml:"topic_prefix"`
	QoS         byte         `yaml:"qos"`
}

type BrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the config file, applies defaults and environment overrides,
// and validates the result.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if email := os.Getenv("MELCLOUDHOME_EMAIL"); email != "" {
		cfg.Credentials.Email = email
	}
	if password := os.Getenv("MELCLOUDHOME_PASSWORD"); password != "" {
		cfg.Credentials.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		HTTP: HTTPConfig{Addr: ":8080"},
		Poll: PollConfig{Interval: Duration(5 * time.Minute)},
		MQTT: MQTTConfig{
			Broker:      BrokerConfig{Port: 1883, ClientID: "melcloudhomed"},
			TopicPrefix: "melcloudhome",
		},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

func (c Config) Validate() error {
	if c.Credentials.Email == "" || c.Credentials.Password == "" {
		return fmt.Errorf("credentials are required (config or MELCLOUDHOME_EMAIL/MELCLOUDHOME_PASSWORD)")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			return fmt.Errorf("mqtt enabled but broker host not set")
		}
		if c.MQTT.Broker.Port <= 0 || c.MQTT.Broker.Port > 65535 {
			return fmt.Errorf("mqtt broker port out of range: %d", c.MQTT.Broker.Port)
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos must be 0, 1 or 2")
		}
	}
	return nil
}
