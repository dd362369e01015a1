package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"motor_dashboard/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	mqttQoS        = 0
	mqttQuiesceMS  = 250
	mqttOpTimeout  = 10 * time.Second
	clientIDPrefix = "motordash-"
)

// MQTTOptions selects the broker and the topic readings are published on.
type MQTTOptions struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

// MQTTChannel delivers every message on the reading topic as a new_reading
// event.
type MQTTChannel struct {
	emitter

	opts MQTTOptions
	log  *logger.Logger

	mu     sync.Mutex
	client mqtt.Client
	closed bool
	done   chan struct{}
}

// NewMQTT returns an unconnected channel.
func NewMQTT(opts MQTTOptions, log *logger.Logger) *MQTTChannel {
	if log == nil {
		log = logger.Nop()
	}
	return &MQTTChannel{opts: opts, log: log, done: make(chan struct{})}
}

func (c *MQTTChannel) clientOptions() *mqtt.ClientOptions {
	o := mqtt.NewClientOptions().
		AddBroker(c.opts.Broker).
		SetClientID(clientIDPrefix + uuid.NewString()).
		SetCleanSession(true)
	if c.opts.Username != "" {
		o.SetUsername(c.opts.Username)
		o.SetPassword(c.opts.Password)
	}
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.log.Warnw("push_mqtt_connection_lost", "err", err)
	})
	return o
}

// Run connects, subscribes and blocks until ctx is cancelled or Close is called.
func (c *MQTTChannel) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	client := mqtt.NewClient(c.clientOptions())
	c.client = client
	c.mu.Unlock()

	connect := client.Connect()
	if err := waitToken(ctx, connect); err != nil {
		if ctx.Err() != nil {
			// The connect attempt keeps going in paho; drop it once it settles.
			go func() {
				if connect.WaitTimeout(mqttOpTimeout) && connect.Error() == nil {
					client.Disconnect(0)
				}
			}()
		}
		return fmt.Errorf("connect mqtt broker %s: %w", c.opts.Broker, err)
	}
	defer c.Close()

	token := client.Subscribe(c.opts.Topic, mqttQoS, func(_ mqtt.Client, msg mqtt.Message) {
		c.emit(EventNewReading, json.RawMessage(msg.Payload()))
	})
	if err := waitToken(ctx, token); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.opts.Topic, err)
	}
	c.log.Debugw("push_mqtt_subscribed", "topic", c.opts.Topic)

	select {
	case <-ctx.Done():
	case <-c.done:
	}
	return nil
}

// Close disconnects from the broker. Safe to call repeatedly.
func (c *MQTTChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.client != nil && c.client.IsConnected() {
		c.client.Unsubscribe(c.opts.Topic)
		c.client.Disconnect(mqttQuiesceMS)
	}
	return nil
}

// waitToken waits for t to complete, for ctx to end or for mqttOpTimeout,
// whichever comes first.
func waitToken(ctx context.Context, t mqtt.Token) error {
	timer := time.NewTimer(mqttOpTimeout)
	defer timer.Stop()
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", mqttOpTimeout)
	}
}
