// FilePath: internal/source/mqtt.go
package source

import (
	"context"
	"encoding/json"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/internal/config"
	"github.com/blitt001/ha-opensensemap/internal/models"
)

// mqttPayload is the expected message shape on a sensor topic. Plain
// numeric payloads are also accepted, with an empty unit.
type mqttPayload struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// MQTT caches the latest reading per subscribed topic. The reference is
// the topic itself; a topic that has not delivered a message yet is
// unavailable. Topics referenced after startup (config reload) are
// subscribed lazily on first lookup.
type MQTT struct {
	client mqtt.Client

	mu         sync.RWMutex
	readings   map[string]models.Reading
	subscribed map[string]bool
}

// NewMQTT connects to the broker and subscribes the initial topics.
func NewMQTT(cfg config.MQTTConfig, topics []string) (*MQTT, error) {
	s := &MQTT{
		readings:   make(map[string]models.Reading),
		subscribed: make(map[string]bool),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	for _, topic := range topics {
		if err := s.subscribe(topic); err != nil {
			s.client.Disconnect(250)
			return nil, err
		}
	}

	return s, nil
}

func (s *MQTT) subscribe(topic string) error {
	s.mu.Lock()
	if s.subscribed[topic] {
		s.mu.Unlock()
		return nil
	}
	s.subscribed[topic] = true
	s.mu.Unlock()

	token := s.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		s.store(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		// Forget the topic so the next lookup retries instead of
		// reporting unavailable until restart.
		s.mu.Lock()
		delete(s.subscribed, topic)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MQTT) store(topic string, payload []byte) {
	var p mqttPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Value == "" {
		// Not the structured form, treat the raw payload as the value.
		p = mqttPayload{Value: string(payload)}
	}

	reading := models.Reading{
		Value:     p.Value,
		Unit:      p.Unit,
		Available: usable(p.Value),
	}

	s.mu.Lock()
	s.readings[topic] = reading
	s.mu.Unlock()
}

// Get returns the cached reading for a topic.
func (s *MQTT) Get(_ context.Context, topic string) (models.Reading, error) {
	s.mu.RLock()
	reading, ok := s.readings[topic]
	known := s.subscribed[topic]
	s.mu.RUnlock()

	if !known {
		if err := s.subscribe(topic); err != nil {
			nuts.L.Warnf("[Source] MQTT subscribe %s failed: %v", topic, err)
			return models.Reading{}, err
		}
	}
	if !ok {
		return models.Reading{Available: false}, nil
	}
	return reading, nil
}

// Close disconnects from the broker.
func (s *MQTT) Close() error {
	s.client.Disconnect(250)
	return nil
}
