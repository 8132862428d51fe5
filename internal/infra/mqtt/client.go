// Package mqtt provides a thin wrapper around the paho MQTT client.
package mqtt

import (
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	zlog "github.com/rs/zerolog/log"
)

var (
	ErrConnectionFailed = errors.New("mqtt connection failed")
	ErrNotConnected     = errors.New("mqtt client not connected")
	ErrPublishFailed    = errors.New("mqtt publish failed")
	ErrSubscribeFailed  = errors.New("mqtt subscribe failed")
	ErrInvalidTopic     = errors.New("invalid mqtt topic")
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
	reconnectInitial  = 1 * time.Second
	reconnectMax      = 60 * time.Second

	// Payload cap aligned with typical broker limits.
	maxPayloadSize = 1 << 20
)

// Config represents MQTT broker connection settings.
type Config struct {
	Host     string // Broker host
	Port     int    // Broker port
	TLS      bool   // Use ssl:// scheme with TLS 1.2+
	ClientID string // Client identifier
	Username string // Optional credentials
	Password string
	QoS      byte // QoS for all publishes and subscribes

	// Optional Last Will and Testament, published by the broker if this
	// client disconnects unexpectedly.
	WillTopic   string
	WillPayload string
}

// MessageHandler is the callback signature for received messages.
// Handlers run on paho's goroutines and must not block for long.
type MessageHandler func(topic string, payload []byte)

type subscription struct {
	topic   string
	handler MessageHandler
}

// Client wraps a paho MQTT connection with auto-reconnect and
// re-subscription. All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    Config

	subMu         sync.RWMutex
	subscriptions map[string]subscription

	connMu    sync.RWMutex
	connected bool
}

// Connect establishes a connection to the broker and returns the client.
func Connect(cfg Config) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}

	opts := buildOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleDisconnect(err) })

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.Wrapf(ErrConnectionFailed, "timeout after %v", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Mark(err, ErrConnectionFailed)
	}

	// The OnConnect handler runs asynchronously; mark connected here so
	// IsConnected is true as soon as Connect returns.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

// buildOptions creates paho client options from the config.
func buildOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInitial)
	opts.SetMaxReconnectInterval(reconnectMax)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)

	if cfg.WillTopic != "" {
		opts.SetWill(cfg.WillTopic, cfg.WillPayload, cfg.QoS, true)
	}

	return opts
}

// handleConnect restores subscriptions after the initial connect and
// every reconnect.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, c.cfg.QoS, c.wrapHandler(sub.handler))
	}
	if len(c.subscriptions) > 0 {
		zlog.Debug().Msgf("MQTT reconnected, restored %d subscriptions", len(c.subscriptions))
	}
}

func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()
	zlog.Warn().Err(err).Msg("MQTT connection lost, reconnecting")
}

// Publish sends a payload to topic with the configured QoS.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return errors.Wrapf(ErrPublishFailed, "payload size %d exceeds maximum %d", len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, c.cfg.QoS, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Wrapf(ErrPublishFailed, "timeout after %v", publishTimeout)
	}
	if err := token.Error(); err != nil {
		return errors.Mark(err, ErrPublishFailed)
	}
	return nil
}

// Subscribe registers a handler for topic. The subscription is tracked
// and restored automatically after reconnects.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, c.cfg.QoS, c.wrapHandler(handler))
	if !token.WaitTimeout(publishTimeout) {
		return errors.Wrapf(ErrSubscribeFailed, "timeout subscribing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return errors.Mark(err, ErrSubscribeFailed)
	}
	return nil
}

// wrapHandler adapts a MessageHandler to paho's signature with panic recovery.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				zlog.Error().Msgf("panic in MQTT handler for %s: %v", msg.Topic(), r)
			}
		}()
		handler(msg.Topic(), msg.Payload())
	}
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Close disconnects from the broker after a short quiesce for pending
// operations.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	c.client.Disconnect(disconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()
	return nil
}
