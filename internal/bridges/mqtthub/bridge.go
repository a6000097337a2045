// Package mqtthub implements a backend that mirrors a home graph
// published on an MQTT broker by a companion hub process.
//
// Topic layout under the configured prefix P:
//
//	P/snapshot                    retained snapshot JSON (hub → homecast)
//	P/state/<characteristicId>    value JSON (hub → homecast)
//	P/reachability/<accessoryId>  "true" or "false" (hub → homecast)
//	P/set/<characteristicId>      value JSON (homecast → hub)
//	P/scene/<sceneId>/execute     scene trigger (homecast → hub)
package mqtthub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nerrad567/homecast/internal/home"
	"github.com/nerrad567/homecast/internal/infrastructure/mqtt"
)

// eventBuffer is the capacity of the event channel.
const eventBuffer = 256

// Errors returned by the bridge.
var (
	ErrNoTransport = errors.New("mqtthub: transport is required")
	ErrClosed      = errors.New("mqtthub: bridge closed")
)

// Transport is the broker connection used by the bridge. It is
// satisfied by *mqtt.Client.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Close() error
}

// Logger is the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Options configures a Bridge.
type Options struct {
	Transport Transport
	Topics    mqtt.Topics
	QoS       byte
	Logger    Logger
}

// Bridge is a home.Backend backed by MQTT topics.
//
// Thread Safety: All methods are safe for concurrent use. Message
// handlers run on transport goroutines.
type Bridge struct {
	transport Transport
	topics    mqtt.Topics
	qos       byte
	logger    Logger

	mu       sync.RWMutex
	snapshot []byte // latest snapshot payload
	ready    chan struct{}
	done     chan struct{}
	values   map[string]any
	events   chan home.Event
	closed   bool
}

// New subscribes to the hub topics and returns the bridge.
func New(opts Options) (*Bridge, error) {
	if opts.Transport == nil {
		return nil, ErrNoTransport
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	b := &Bridge{
		transport: opts.Transport,
		topics:    opts.Topics,
		qos:       opts.QoS,
		logger:    opts.Logger,
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
		values:    make(map[string]any),
		events:    make(chan home.Event, eventBuffer),
	}

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{b.topics.Snapshot(), b.handleSnapshot},
		{b.topics.AllStates(), b.handleState},
		{b.topics.AllReachability(), b.handleReachability},
	}
	for _, s := range subs {
		if err := b.transport.Subscribe(s.topic, b.qos, s.handler); err != nil {
			return nil, fmt.Errorf("mqtthub: subscribing to %s: %w", s.topic, err)
		}
	}
	return b, nil
}

// LoadSnapshot decodes the latest snapshot published by the hub. It
// blocks until the first snapshot arrives or ctx is done.
func (b *Bridge) LoadSnapshot(ctx context.Context) (*home.Snapshot, error) {
	select {
	case <-b.ready:
	case <-b.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("mqtthub: waiting for snapshot: %w", ctx.Err())
	}

	b.mu.RLock()
	data, closed := b.snapshot, b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	var snap home.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("mqtthub: parsing snapshot: %w", err)
	}
	return &snap, nil
}

// WriteCharacteristic publishes value to the set topic. Publish
// failures are reported as error events.
func (b *Bridge) WriteCharacteristic(id string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("encoding value for %s: %v", id, err)})
		return
	}
	if err := b.transport.Publish(b.topics.Set(id), payload, b.qos, false); err != nil {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("writing %s: %v", id, err)})
		return
	}
	b.logger.Debug("characteristic write published", "characteristic_id", id)
}

// CharacteristicValue returns the last value seen on the state topic.
func (b *Bridge) CharacteristicValue(id string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[id]
	return v, ok
}

// ExecuteScene publishes the scene trigger.
func (b *Bridge) ExecuteScene(id string) {
	if err := b.transport.Publish(b.topics.SceneExecute(id), []byte("{}"), b.qos, false); err != nil {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("executing scene %s: %v", id, err)})
	}
}

// Events returns the event channel. It is closed by Close.
func (b *Bridge) Events() <-chan home.Event {
	return b.events
}

// Close closes the event channel and the transport.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.events)
	close(b.done)
	b.mu.Unlock()
	return b.transport.Close()
}

func (b *Bridge) handleSnapshot(_ string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("mqtthub: snapshot payload is not JSON")
	}

	b.mu.Lock()
	first := b.snapshot == nil
	b.snapshot = append([]byte(nil), payload...)
	b.mu.Unlock()

	if first {
		close(b.ready)
		return nil
	}
	b.emit(home.Event{Kind: home.EventSnapshotChanged})
	return nil
}

func (b *Bridge) handleState(topic string, payload []byte) error {
	id, ok := b.topics.ParseState(topic)
	if !ok {
		return nil
	}
	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return fmt.Errorf("mqtthub: state %s: %w", id, err)
	}

	b.mu.Lock()
	b.values[id] = value
	b.mu.Unlock()

	b.emit(home.Event{Kind: home.EventCharacteristicChanged, CharacteristicID: id, Value: value})
	return nil
}

func (b *Bridge) handleReachability(topic string, payload []byte) error {
	id, ok := b.topics.ParseReachability(topic)
	if !ok {
		return nil
	}
	reachable, err := strconv.ParseBool(strings.TrimSpace(string(payload)))
	if err != nil {
		return fmt.Errorf("mqtthub: reachability %s: %w", id, err)
	}
	b.emit(home.Event{Kind: home.EventReachabilityChanged, AccessoryID: id, Reachable: reachable})
	return nil
}

// emit queues ev without blocking. Events are dropped when the channel
// is full.
func (b *Bridge) emit(ev home.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
		b.logger.Warn("event channel full, dropping event", "kind", string(ev.Kind))
	}
}

var _ home.Backend = (*Bridge)(nil)
