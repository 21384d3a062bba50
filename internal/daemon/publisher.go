package daemon

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	melcloudhome "github.com/joshp123/melcloudhome-golang"
)

const connectTimeout = 10 * time.Second

// Publisher pushes device state documents to an MQTT broker, one retained
// message per device under <prefix>/<device-id>/state.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
}

type statePayload struct {
	DeviceID    string            `json:"deviceId"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	IsConnected bool              `json:"isConnected"`
	IsInError   bool              `json:"isInError"`
	Settings    map[string]string `json:"settings"`
}

func NewPublisher(cfg MQTTConfig) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)
	opts.SetUsername(cfg.Auth.Username)
	opts.SetPassword(cfg.Auth.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &Publisher{client: client, prefix: cfg.TopicPrefix, qos: cfg.QoS}, nil
}

// PublishDevice publishes one device's current state. Messages are retained
// so late subscribers see the last known state.
func (p *Publisher) PublishDevice(device melcloudhome.Device) error {
	payload, err := json.Marshal(statePayload{
		DeviceID:    device.ID,
		Name:        device.GivenDisplayName,
		Category:    string(device.Category),
		IsConnected: device.IsConnected,
		IsInError:   device.IsInError,
		Settings:    melcloudhome.ExtractState(device),
	})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/state", p.prefix, device.ID)
	if token := p.client.Publish(topic, p.qos, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
