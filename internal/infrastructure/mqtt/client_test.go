package mqtt

import (
	"errors"
	"strings"
	"testing"

	"github.com/180254/razerctl/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "razerctl-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

// disconnectedClient returns a client that was never connected, for
// exercising validation paths without a broker.
func disconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

func TestPublish_Validation(t *testing.T) {
	c := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", TopicChangeEvent, []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", TopicChangeEvent, make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", TopicChangeEvent, []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishJSON_MarshalFailure(t *testing.T) {
	c := disconnectedClient()

	// Channels cannot be marshalled.
	err := c.PublishJSON(TopicChangeEvent, make(chan int), false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishJSON() error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := disconnectedClient()

	if err := c.Subscribe("", 1, func(string, []byte) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe(TopicCommand, 3, func(string, []byte) error { return nil }); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe(TopicCommand, 1, func(string, []byte) error { return nil }); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "razer"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("servers = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://localhost:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://localhost:1883")
	}
	if opts.ClientID != "razerctl-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "razerctl-test")
	}
	if opts.Username != "razer" {
		t.Errorf("Username = %q, want %q", opts.Username, "razer")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme = %q, want %q", got, "ssl")
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig not set for TLS broker")
	}
}

func TestDeviceStateTopic(t *testing.T) {
	got := DeviceStateTopic("PM2023H12345678")
	want := "razerctl/state/PM2023H12345678"
	if got != want {
		t.Errorf("DeviceStateTopic() = %q, want %q", got, want)
	}
}

func TestOnlinePayload(t *testing.T) {
	payload := buildOnlinePayload("razerctl-test")
	if !strings.Contains(payload, `"status":"online"`) {
		t.Errorf("online payload = %s, want status online", payload)
	}
	if !strings.Contains(payload, "razerctl-test") {
		t.Errorf("online payload = %s, want client id", payload)
	}
}
