package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/jgoulah/vehicalc/internal/config"
	"github.com/jgoulah/vehicalc/internal/logging"
	"github.com/jgoulah/vehicalc/pkg/models"
)

const publishTimeout = 10 * time.Second

// client is the subset of mqtt.Client used for publishing
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher sends emission events and monthly totals to an MQTT broker
type Publisher struct {
	client      client
	topicPrefix string
	log         zerolog.Logger
}

// New connects to the broker described by cfg
func New(cfg *config.Config, log zerolog.Logger) (*Publisher, error) {
	if !cfg.MQTT.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.MQTT.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.MQTT.Broker))
	opts.SetClientID(cfg.GetClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
	}
	if cfg.MQTT.Password != "" {
		opts.SetPassword(cfg.MQTT.Password)
	}

	// Create and connect client
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return newWithClient(c, cfg.GetTopicPrefix(), log), nil
}

func newWithClient(c client, topicPrefix string, log zerolog.Logger) *Publisher {
	return &Publisher{
		client:      c,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
		log:         logging.Component(log, "publisher"),
	}
}

// EventTopic is where individual events for a user are published
func (p *Publisher) EventTopic(username string) string {
	return fmt.Sprintf("%s/%s/events", p.topicPrefix, username)
}

// MonthTopic is the retained topic holding one month's total
func (p *Publisher) MonthTopic(username string, m models.Month) string {
	return fmt.Sprintf("%s/%s/monthly/%s", p.topicPrefix, username, m)
}

// PublishEvent sends one emission event as JSON
func (p *Publisher) PublishEvent(ev models.EmissionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return p.publish(p.EventTopic(ev.Username), false, body)
}

// PublishTotals sends each month's total as a retained message
func (p *Publisher) PublishTotals(username string, totals models.MonthlyTotals) error {
	for _, m := range models.Months() {
		payload := fmt.Sprintf("%.2f", totals[m])
		if err := p.publish(p.MonthTopic(username, m), true, []byte(payload)); err != nil {
			return err
		}
	}
	p.log.Debug().Str("username", username).Msg("monthly totals published")
	return nil
}

func (p *Publisher) publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
