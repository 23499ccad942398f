// internal/writer/mqtt/options.go
package mqtt

import (
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultTimeout           = 5 * time.Second
	defaultKeepAlive         = 60 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	maxReconnectInterval     = 30 * time.Second

	maxQoS = 2

	// availability payloads, retained on Config.AvailabilityTopic
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// Config is the broker connection config.
type Config struct {
	Broker   string // tcp://host:1883, ssl://host:8883
	ClientID string
	Username string
	Password string

	// Timeout bounds connect, publish and subscribe acknowledgements.
	Timeout time.Duration

	// AvailabilityTopic, when set, carries a retained online/offline flag.
	// The broker publishes offline as last will on unexpected disconnect.
	AvailabilityTopic string
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// buildClientOptions maps Config onto paho options.
// Auto-reconnect is on; subscriptions are restored by the client.
func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(cfg.timeout())
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.AvailabilityTopic != "" {
		opts.SetWill(cfg.AvailabilityTopic, payloadOffline, 1, true)
	}

	return opts
}
