// internal/writer/mqtt/client.go
package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Maximum payload size accepted by Publish.
const maxPayloadSize = 1 << 20

// MessageHandler receives one inbound message.
// Returned errors are logged.
type MessageHandler = func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client wraps a paho client.
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    Config
	log    zerolog.Logger

	subMu         sync.RWMutex
	subscriptions map[string]subscription
}

// Connect dials the broker and waits for the connection acknowledgement.
func Connect(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("%w: broker required", ErrConnectionFailed)
	}

	opts := buildClientOptions(cfg)
	c := newClient(nil, cfg, log)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.log.Warn().Err(err).Msg("mqtt connection lost")
	})

	c.client = pahomqtt.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(cfg.timeout()) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, cfg.timeout())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	return c, nil
}

func newClient(pc pahomqtt.Client, cfg Config, log zerolog.Logger) *Client {
	return &Client{
		client:        pc,
		cfg:           cfg,
		log:           log.With().Str("component", "mqtt").Logger(),
		subscriptions: make(map[string]subscription),
	}
}

// handleConnect runs on every (re)connect.
func (c *Client) handleConnect() {
	c.subMu.RLock()
	for topic, sub := range c.subscriptions {
		c.client.Subscribe(topic, sub.qos, c.wrapHandler(sub.handler))
	}
	c.subMu.RUnlock()

	if c.cfg.AvailabilityTopic != "" {
		c.client.Publish(c.cfg.AvailabilityTopic, 1, true, payloadOnline)
	}
}

// IsConnected reports the paho connection state.
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Publish sends payload and waits for the acknowledgement.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.cfg.timeout()) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, c.cfg.timeout())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe registers handler for topic (wildcards allowed).
// Subscriptions are restored after reconnect.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{qos: qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	var err error
	switch {
	case !token.WaitTimeout(c.cfg.timeout()):
		err = fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, c.cfg.timeout())
	case token.Error() != nil:
		err = fmt.Errorf("%w: %w", ErrSubscribeFailed, token.Error())
	}
	if err != nil {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return err
	}
	return nil
}

// Close publishes offline (when configured) and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.cfg.AvailabilityTopic != "" && c.IsConnected() {
		token := c.client.Publish(c.cfg.AvailabilityTopic, 1, true, payloadOffline)
		token.WaitTimeout(c.cfg.timeout())
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// wrapHandler adds panic recovery and error logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Str("topic", msg.Topic()).Interface("panic", r).Msg("mqtt handler panic recovered")
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("mqtt handler returned error")
		}
	}
}
