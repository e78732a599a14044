// Package mqtt bridges monitoring events to an MQTT broker so external
// consumers (dashboards, automation) can subscribe without holding a
// websocket open.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"NetMonitorAPI/internal/config"
	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
)

const (
	publishWait = 5 * time.Second
	queueSize   = 64
)

// Publisher forwards monitoring events to topics under the configured
// prefix, one topic per event type: <prefix>/events/<type>. Publishing
// happens on a dedicated goroutine behind a bounded queue so a slow or
// hung broker never stalls the event fan-out.
type Publisher struct {
	client    mqtt.Client
	cfg       *config.MQTTConfig
	log       *logger.Logger
	queue     chan models.Event
	done      chan struct{}
	mu        sync.RWMutex
	connected bool
}

func NewPublisher(cfg *config.MQTTConfig, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	p := &Publisher{
		cfg:   cfg,
		log:   log,
		queue: make(chan models.Event, queueSize),
		done:  make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(p.onConnect)
	opts.SetConnectionLostHandler(p.onConnectionLost)

	p.client = mqtt.NewClient(opts)

	return p, nil
}

func (p *Publisher) Connect() error {
	p.log.Info("Connecting to MQTT broker: %s:%d", p.cfg.Broker, p.cfg.Port)

	token := p.client.Connect()
	if !token.WaitTimeout(p.cfg.ConnectTimeout) {
		return fmt.Errorf("connection timeout after %v", p.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()

	go p.sendLoop()

	p.log.Info("Successfully connected to MQTT broker")
	return nil
}

func (p *Publisher) Disconnect() {
	p.log.Info("Disconnecting from MQTT broker")

	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	close(p.done)
	p.client.Disconnect(250)
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.client.IsConnected()
}

// Handle implements notify.Observer. Events are queued for the send loop
// and the call returns immediately; when the queue is full the event is
// dropped with a warning. Broker trouble is reported through logging, not
// an error, so a flapping broker does not permanently evict the publisher
// from the fan-out.
func (p *Publisher) Handle(event models.Event) error {
	select {
	case p.queue <- event:
	default:
		p.log.Warn("MQTT publish queue full; dropping %s event", event.Type)
	}
	return nil
}

func (p *Publisher) sendLoop() {
	for {
		select {
		case event := <-p.queue:
			p.publish(event)
		case <-p.done:
			return
		}
	}
}

func (p *Publisher) publish(event models.Event) {
	if !p.IsConnected() {
		p.log.Debug("MQTT broker not connected; dropping %s event", event.Type)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal %s event: %v", event.Type, err)
		return
	}

	topic := fmt.Sprintf("%s/events/%s", p.cfg.TopicPrefix, event.Type)
	token := p.client.Publish(topic, p.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishWait) {
		p.log.Warn("Publish timeout for topic: %s", topic)
		return
	}
	if err := token.Error(); err != nil {
		p.log.Warn("Publish failed for topic %s: %v", topic, err)
	}
}

func (p *Publisher) onConnect(client mqtt.Client) {
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	p.log.Info("MQTT connection established")
}

func (p *Publisher) onConnectionLost(client mqtt.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.log.Warn("MQTT connection lost: %v", err)
}
