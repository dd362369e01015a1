// Package push connects to the server's live reading channel.
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"motor_dashboard/internal/config"
	"motor_dashboard/internal/logger"
)

// EventNewReading is emitted for every sensor reading the server broadcasts.
const EventNewReading = "new_reading"

// Handler receives the raw JSON payload of one event.
type Handler func(payload json.RawMessage)

// Channel is one live connection. It is owned by a single consumer, which
// must call Close when done. Handlers run one at a time in arrival order.
type Channel interface {
	On(event string, h Handler)
	// Run connects and delivers events until ctx is cancelled, Close is
	// called, or the connection is lost.
	Run(ctx context.Context) error
	Close() error
}

// Factory builds unconnected channels. header carries the browser session
// for transports that authenticate over HTTP.
type Factory interface {
	New(header http.Header) Channel
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(header http.Header) Channel

func (f FactoryFunc) New(header http.Header) Channel { return f(header) }

// NewFactory returns the factory for the configured transport.
func NewFactory(cfg config.Push, log *logger.Logger) Factory {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Transport {
	case config.TransportMQTT:
		return FactoryFunc(func(http.Header) Channel {
			return NewMQTT(MQTTOptions{
				Broker:   cfg.MQTT.Broker,
				Topic:    cfg.MQTT.Topic,
				Username: cfg.MQTT.Username,
				Password: cfg.MQTT.Password,
			}, log.Named("mqtt"))
		})
	default:
		return FactoryFunc(func(header http.Header) Channel {
			return NewSocketIO(cfg.URL, header, log.Named("socketio"))
		})
	}
}

// emitter keeps the per-event handler lists shared by the transports.
type emitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func (e *emitter) On(event string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[string][]Handler)
	}
	e.handlers[event] = append(e.handlers[event], h)
}

func (e *emitter) emit(event string, payload json.RawMessage) {
	e.mu.RLock()
	hs := e.handlers[event]
	e.mu.RUnlock()
	for _, h := range hs {
		h(payload)
	}
}
