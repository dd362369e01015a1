package push

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Engine.IO v4 packet types (first byte of a text frame).
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// Socket.IO v5 packet types (second byte of an Engine.IO message).
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

var (
	errEmptyPacket = errors.New("socketio: empty packet")
	errNotAnEvent  = errors.New("socketio: not an event packet")
)

// openPacket is the handshake sent by the server right after the upgrade.
type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"` // ms
	PingTimeout  int    `json:"pingTimeout"`  // ms
}

// readDeadline is how long to wait for the next server ping.
func (o openPacket) readDeadline() time.Duration {
	d := time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
	if d <= 0 {
		return defaultReadDeadline
	}
	return d
}

func parseOpen(frame []byte) (openPacket, error) {
	var o openPacket
	if len(frame) == 0 || frame[0] != eioOpen {
		return o, fmt.Errorf("socketio: expected open packet, got %q", truncate(frame))
	}
	if err := json.Unmarshal(frame[1:], &o); err != nil {
		return o, fmt.Errorf("socketio: decode open packet: %w", err)
	}
	return o, nil
}

// decodeEvent extracts the event name and first argument from a
// `42[/nsp,][ackid]["name",payload]` frame.
func decodeEvent(frame []byte) (string, json.RawMessage, error) {
	if len(frame) < 2 || frame[0] != eioMessage || frame[1] != sioEvent {
		return "", nil, errNotAnEvent
	}
	rest := frame[2:]
	if len(rest) > 0 && rest[0] == '/' {
		i := bytes.IndexByte(rest, ',')
		if i < 0 {
			return "", nil, fmt.Errorf("socketio: malformed namespace in %q", truncate(frame))
		}
		rest = rest[i+1:]
	}
	for len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
		rest = rest[1:]
	}

	var args []json.RawMessage
	if err := json.Unmarshal(rest, &args); err != nil {
		return "", nil, fmt.Errorf("socketio: decode event args: %w", err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("socketio: event without name")
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("socketio: event name: %w", err)
	}
	var payload json.RawMessage
	if len(args) > 1 {
		payload = args[1]
	}
	return name, payload, nil
}

func truncate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
