// Package memory implements an in-process backend whose home graph is
// read from a YAML or JSON snapshot file.
//
// Writes land in an internal value cache and are echoed back on the
// event channel as if a device had confirmed them.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/homecast/internal/home"
)

// eventBuffer is the capacity of the event channel.
const eventBuffer = 256

// ErrClosed is returned by LoadSnapshot after Close.
var ErrClosed = errors.New("memory: bridge closed")

// Logger is the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// document is the on-disk snapshot layout. Values seeds the cache for
// characteristics that have not been written yet.
type document struct {
	home.Snapshot `yaml:",inline"`
	Values        map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
}

// Bridge is an in-memory home.Backend.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	load   func() ([]byte, error)
	isJSON bool
	logger Logger

	mu        sync.RWMutex
	values    map[string]any
	known     map[string]bool
	scenes    map[string][]home.SceneAction
	reachable map[string]bool // accessory overrides set by SetReachable
	events    chan home.Event
	closed    bool
}

// New returns a bridge reading the snapshot file at path on every
// LoadSnapshot. Files ending in .json are decoded as JSON, everything
// else as YAML.
func New(path string, logger Logger) *Bridge {
	b := newBridge(logger)
	b.load = func() ([]byte, error) { return os.ReadFile(path) }
	b.isJSON = strings.EqualFold(filepath.Ext(path), ".json")
	return b
}

// NewFromSnapshot returns a bridge serving copies of snap. values seeds
// the cache and may be nil.
func NewFromSnapshot(snap *home.Snapshot, values map[string]any, logger Logger) (*Bridge, error) {
	data, err := json.Marshal(document{Snapshot: *snap, Values: values})
	if err != nil {
		return nil, fmt.Errorf("memory: encoding snapshot: %w", err)
	}
	b := newBridge(logger)
	b.load = func() ([]byte, error) { return data, nil }
	b.isJSON = true
	return b, nil
}

func newBridge(logger Logger) *Bridge {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Bridge{
		logger:    logger,
		values:    make(map[string]any),
		known:     make(map[string]bool),
		scenes:    make(map[string][]home.SceneAction),
		reachable: make(map[string]bool),
		events:    make(chan home.Event, eventBuffer),
	}
}

// LoadSnapshot decodes a fresh snapshot. Seed values are applied only to
// characteristics without a cached value, so runtime state survives
// reloads.
func (b *Bridge) LoadSnapshot(ctx context.Context) (*home.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := b.load()
	if err != nil {
		return nil, fmt.Errorf("memory: reading snapshot: %w", err)
	}
	doc, err := b.decode(data)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	b.known = make(map[string]bool)
	for i := range doc.Accessories {
		acc := &doc.Accessories[i]
		if r, ok := b.reachable[acc.ID]; ok {
			acc.IsReachable = r
		}
		for _, svc := range acc.Services {
			for _, id := range svc.Characteristics {
				b.known[id] = true
			}
		}
	}
	b.scenes = make(map[string][]home.SceneAction, len(doc.Scenes))
	for _, sc := range doc.Scenes {
		b.scenes[sc.ID] = sc.Actions
	}
	for id, v := range doc.Values {
		if _, ok := b.values[id]; !ok {
			b.values[id] = v
		}
	}

	snap := doc.Snapshot
	return &snap, nil
}

func (b *Bridge) decode(data []byte) (*document, error) {
	var doc document
	if b.isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("memory: parsing snapshot: %w", err)
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("memory: parsing snapshot: %w", err)
	}
	return &doc, nil
}

// WriteCharacteristic stores value and emits a change event. Writes to
// characteristics absent from the last snapshot are reported as errors.
func (b *Bridge) WriteCharacteristic(id string, value any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if !b.known[id] {
		b.mu.Unlock()
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("unknown characteristic %s", id)})
		return
	}
	b.values[id] = value
	b.mu.Unlock()

	b.logger.Debug("characteristic written", "characteristic_id", id, "value", value)
	b.emit(home.Event{Kind: home.EventCharacteristicChanged, CharacteristicID: id, Value: value})
}

// CharacteristicValue returns the cached value.
func (b *Bridge) CharacteristicValue(id string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[id]
	return v, ok
}

// ExecuteScene applies each scene action as a write.
func (b *Bridge) ExecuteScene(id string) {
	b.mu.RLock()
	actions, ok := b.scenes[id]
	b.mu.RUnlock()
	if !ok {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("unknown scene %s", id)})
		return
	}
	for _, a := range actions {
		b.WriteCharacteristic(a.CharacteristicID, sceneValue(a))
	}
}

// sceneValue converts a numeric scene value to the representation used
// for the action's kind.
func sceneValue(a home.SceneAction) any {
	switch a.Kind {
	case home.CharPowerState, home.CharMotionDetected:
		return a.Value != 0
	default:
		if a.Value == float64(int(a.Value)) {
			return int(a.Value)
		}
		return a.Value
	}
}

// Set simulates a device-originated value change.
func (b *Bridge) Set(id string, value any) {
	b.WriteCharacteristic(id, value)
}

// SetReachable simulates an accessory going on or offline. The override
// is applied to every later snapshot.
func (b *Bridge) SetReachable(accessoryID string, reachable bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.reachable[accessoryID] = reachable
	b.mu.Unlock()
	b.emit(home.Event{Kind: home.EventReachabilityChanged, AccessoryID: accessoryID, Reachable: reachable})
}

// NotifySnapshotChanged asks the consumer to reload the snapshot.
func (b *Bridge) NotifySnapshotChanged() {
	b.emit(home.Event{Kind: home.EventSnapshotChanged})
}

// Events returns the event channel. It is closed by Close.
func (b *Bridge) Events() <-chan home.Event {
	return b.events
}

// Close closes the event channel. Further writes are ignored.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
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
