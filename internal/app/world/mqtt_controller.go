package world

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/domain/scene"
	"github.com/mkaji/scenebox/internal/infra/mqtt"
)

func init() {
	register("mqtt", newMQTTController)
}

type mqttSettings struct {
	BrokerHost  string `mapstructure:"broker_host" validate:"required"`
	BrokerPort  int    `mapstructure:"broker_port" default:"1883" validate:"gte=1,lte=65535"`
	TLS         bool   `mapstructure:"tls"`
	ClientID    string `mapstructure:"client_id" default:"scenebox"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         int    `mapstructure:"qos" default:"1" validate:"gte=0,lte=2"`
	TopicPrefix string `mapstructure:"topic_prefix" default:"scenebox"`
}

// placeCommand is the JSON payload published for placements.
type placeCommand struct {
	Scene  string       `json:"scene"`
	Data   []byte       `json:"data"` // snapshot bytes, base64 on the wire
	Bounds scene.Region `json:"bounds"`
	At     *scene.Vec3  `json:"at,omitempty"`
}

// clearCommand is the JSON payload published for clears.
type clearCommand struct {
	Region scene.Region `json:"region"`
}

// mqttController drives a world agent over an MQTT broker. Commands are
// published to <prefix>/place and <prefix>/clear; the agent reports its own
// presence on <prefix>/agent/status.
type mqttController struct {
	client   *mqtt.Client
	prefix   string
	clientID string
}

func newMQTTController(settings map[string]any) (Controller, error) {
	var cfg mqttSettings
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}

	c := &mqttController{prefix: cfg.TopicPrefix, clientID: cfg.ClientID}

	client, err := mqtt.Connect(mqtt.Config{
		Host:     cfg.BrokerHost,
		Port:     cfg.BrokerPort,
		TLS:      cfg.TLS,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
		QoS:      byte(cfg.QoS),
		// Agents watch our presence topic and may clean up content if we
		// vanish without a graceful shutdown.
		WillTopic:   c.topic("presence"),
		WillPayload: presencePayload(cfg.ClientID, "offline"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to broker")
	}
	c.client = client

	if err := client.Publish(c.topic("presence"), []byte(presencePayload(cfg.ClientID, "online")), true); err != nil {
		zlog.Warn().Err(err).Msg("failed to publish presence")
	}
	if err := client.Subscribe(c.topic("agent/status"), c.onAgentStatus); err != nil {
		zlog.Warn().Err(err).Msg("failed to subscribe to agent status")
	}

	return c, nil
}

func (c *mqttController) PlaceContent(ctx context.Context, sc *scene.Scene, opts PlaceOptions) error {
	payload, err := json.Marshal(placeCommand{
		Scene:  sc.Name,
		Data:   sc.Data,
		Bounds: sc.Bounds,
		At:     opts.At,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode place command")
	}
	return errors.Wrapf(c.client.Publish(c.topic("place"), payload, false), "failed to publish place for %s", sc.Name)
}

func (c *mqttController) ClearRegion(ctx context.Context, region scene.Region) error {
	payload, err := json.Marshal(clearCommand{Region: region})
	if err != nil {
		return errors.Wrap(err, "failed to encode clear command")
	}
	return errors.Wrap(c.client.Publish(c.topic("clear"), payload, false), "failed to publish clear")
}

func (c *mqttController) Close() error {
	if c.client.IsConnected() {
		if err := c.client.Publish(c.topic("presence"), []byte(presencePayload(c.clientID, "offline")), true); err != nil {
			zlog.Warn().Err(err).Msg("failed to publish offline presence")
		}
	}
	return c.client.Close()
}

// onAgentStatus logs presence changes of the world agent.
func (c *mqttController) onAgentStatus(topic string, payload []byte) {
	zlog.Info().Msgf("world agent status: %s", string(payload))
}

func (c *mqttController) topic(suffix string) string {
	return c.prefix + "/" + suffix
}

func presencePayload(clientID, status string) string {
	return fmt.Sprintf(`{"client_id":%q,"status":%q,"timestamp":%q}`,
		clientID, status, time.Now().UTC().Format(time.RFC3339))
}
