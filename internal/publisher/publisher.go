package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/config"
)

// Event types.
const (
	ArticleCreated       = "article.created"
	ArticleUpdated       = "article.updated"
	ArticleDeleted       = "article.deleted"
	ArticlePublished     = "article.published"
	ArticleUnpublished   = "article.unpublished"
	CalculationCompleted = "calculation.completed"
)

// Event is a JSON message sent to <prefix>/<type>.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ArticleID string `json:"article_id,omitempty"`
	Title     string `json:"title,omitempty"`

	Devices     int     `json:"devices"`
	MonthlyKWh  float64 `json:"monthly_kwh"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Publisher sends domain events to subscribers.
type Publisher interface {
	Publish(e Event) error
	Close()
}

// New returns an MQTT publisher when enabled, otherwise a no-op one.
func New(cfg config.MQTTConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "hemat"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return newMQTT(client, cfg.TopicPrefix, logger), nil
}

// client is the subset of mqtt.Client used for publishing.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// MQTT publishes events to a broker.
type MQTT struct {
	client      client
	topicPrefix string
	timeout     time.Duration
	logger      *zap.Logger
}

func newMQTT(c client, prefix string, logger *zap.Logger) *MQTT {
	if prefix == "" {
		prefix = "hemat"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MQTT{
		client:      c,
		topicPrefix: strings.TrimSuffix(prefix, "/"),
		timeout:     5 * time.Second,
		logger:      logger,
	}
}

// Topic returns the topic an event type is published on.
func (p *MQTT) Topic(eventType string) string {
	return p.topicPrefix + "/" + eventType
}

func (p *MQTT) Publish(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	topic := p.Topic(e.Type)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publishing to %s: timed out after %s", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	p.logger.Debug("event published", zap.String("topic", topic))
	return nil
}

// Close disconnects from the broker.
func (p *MQTT) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(Event) error { return nil }
func (Noop) Close()              {}
