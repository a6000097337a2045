// Package hue implements a backend for a Philips Hue bridge using the
// Hue v1 REST API.
//
// Lights become accessories with one service each, "Room" groups become
// rooms and bridge scenes are exposed without their action lists. Light
// state is polled and changes are emitted as events.
package hue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/amimof/huego"

	"github.com/nerrad567/homecast/internal/home"
)

const (
	eventBuffer         = 256
	requestTimeout      = 5 * time.Second
	defaultPollInterval = 5 * time.Second
	groupTypeRoom       = "Room"
)

// ErrClosed is returned by LoadSnapshot after Close.
var ErrClosed = errors.New("hue: bridge closed")

// Client is the subset of the Hue API used by the bridge. It is
// satisfied by *huego.Bridge.
type Client interface {
	GetLightsContext(ctx context.Context) ([]huego.Light, error)
	GetGroupsContext(ctx context.Context) ([]huego.Group, error)
	GetScenesContext(ctx context.Context) ([]huego.Scene, error)
	SetLightStateContext(ctx context.Context, id int, state huego.State) (*huego.Response, error)
	RecallSceneContext(ctx context.Context, id string, group int) (*huego.Response, error)
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
	Client Client

	// Host names the Hue bridge. It seeds the home id.
	Host string

	// PollInterval between state polls. Zero uses five seconds.
	PollInterval time.Duration

	Logger Logger
}

// charRef locates a characteristic on a Hue light.
type charRef struct {
	light int
	kind  home.CharacteristicKind
}

// lightRef is the per-light mapping built from the last snapshot.
type lightRef struct {
	accessoryID string
	reachable   bool
	chars       map[home.CharacteristicKind]string
}

// sceneRef locates a Hue scene and the group it is recalled on.
type sceneRef struct {
	id    string
	group int
}

// Bridge is a home.Backend for one Hue bridge.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	client   Client
	host     string
	interval time.Duration
	logger   Logger

	mu     sync.RWMutex
	chars  map[string]charRef
	lights map[string]lightRef // by lightKey
	scenes map[string]sceneRef
	values map[string]any
	events chan home.Event
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	pollOnce  sync.Once
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New returns a bridge. Polling starts with the first LoadSnapshot.
func New(opts Options) (*Bridge, error) {
	if opts.Client == nil {
		return nil, errors.New("hue: client is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		client:   opts.Client,
		host:     opts.Host,
		interval: opts.PollInterval,
		logger:   opts.Logger,
		chars:    make(map[string]charRef),
		lights:   make(map[string]lightRef),
		scenes:   make(map[string]sceneRef),
		values:   make(map[string]any),
		events:   make(chan home.Event, eventBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// LoadSnapshot reads lights, rooms and scenes from the Hue bridge.
func (b *Bridge) LoadSnapshot(ctx context.Context) (*home.Snapshot, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	lights, err := b.client.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("hue: listing lights: %w", err)
	}
	groups, err := b.client.GetGroupsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("hue: listing groups: %w", err)
	}
	scenes, err := b.client.GetScenesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("hue: listing scenes: %w", err)
	}

	snap, m := buildSnapshot(b.host, lights, groups, scenes)

	b.mu.Lock()
	b.chars, b.lights, b.scenes = m.chars, m.lights, m.scenes
	for id, v := range m.values {
		b.values[id] = v
	}
	b.mu.Unlock()

	b.pollOnce.Do(func() {
		b.wg.Add(1)
		go b.pollLoop()
	})
	return snap, nil
}

// mapping holds the lookup tables derived alongside a snapshot.
type mapping struct {
	chars  map[string]charRef
	lights map[string]lightRef
	scenes map[string]sceneRef
	values map[string]any
}

func buildSnapshot(host string, lights []huego.Light, groups []huego.Group, scenes []huego.Scene) (*home.Snapshot, mapping) {
	m := mapping{
		chars:  make(map[string]charRef),
		lights: make(map[string]lightRef),
		scenes: make(map[string]sceneRef),
		values: make(map[string]any),
	}
	snap := &home.Snapshot{
		Homes: []home.Home{{ID: stableID("home", host), Name: "Hue", IsPrimary: true}},
	}

	roomOf := make(map[string]string) // light number → room id
	for _, g := range groups {
		if g.Type != groupTypeRoom {
			continue
		}
		id := stableID("room", host, strconv.Itoa(g.ID))
		snap.Rooms = append(snap.Rooms, home.Room{ID: id, Name: g.Name})
		for _, l := range g.Lights {
			roomOf[l] = id
		}
	}

	minCT, maxCT := minMired, maxMired
	for _, l := range lights {
		key := lightKey(l)
		state := l.State
		if state == nil {
			state = &huego.State{}
		}

		ref := lightRef{
			accessoryID: stableID("accessory", key),
			reachable:   state.Reachable,
			chars:       make(map[home.CharacteristicKind]string),
		}
		svc := home.Service{
			ID:              stableID("service", key),
			Name:            l.Name,
			Type:            serviceType(l.Type),
			Characteristics: make(map[home.CharacteristicKind]string),
		}
		for _, kind := range capabilities(l.Type) {
			id := stableID(key, string(kind))
			svc.Characteristics[kind] = id
			ref.chars[kind] = id
			m.chars[id] = charRef{light: l.ID, kind: kind}
			m.values[id] = stateValue(state, kind)
		}
		if svc.Has(home.CharColorTemperature) {
			svc.ColorTemperatureMin, svc.ColorTemperatureMax = &minCT, &maxCT
		}

		acc := home.Accessory{
			ID:          ref.accessoryID,
			Name:        l.Name,
			Services:    []home.Service{svc},
			IsReachable: state.Reachable,
		}
		if room, ok := roomOf[strconv.Itoa(l.ID)]; ok {
			acc.RoomID = &room
		}
		snap.Accessories = append(snap.Accessories, acc)
		m.lights[key] = ref
	}

	for _, s := range scenes {
		id := stableID("scene", host, s.ID)
		group, _ := strconv.Atoi(s.Group)
		snap.Scenes = append(snap.Scenes, home.Scene{ID: id, Name: s.Name})
		m.scenes[id] = sceneRef{id: s.ID, group: group}
	}
	return snap, m
}

// WriteCharacteristic sends the value to the light. Failures are
// reported as error events.
func (b *Bridge) WriteCharacteristic(id string, value any) {
	b.mu.RLock()
	ref, ok := b.chars[id]
	var powered bool
	if p, found := b.values[b.powerID(ref.light)]; found {
		powered, _ = p.(bool)
	}
	b.mu.RUnlock()
	if !ok {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("unknown characteristic %s", id)})
		return
	}

	// On is always sent by the Hue API client, so carry the current power
	// state on non-power writes.
	state := huego.State{On: powered}
	var cached any
	n := home.AsNumber(value)
	switch ref.kind {
	case home.CharPowerState:
		state.On = home.AsBool(value)
		cached = state.On
	case home.CharBrightness:
		state.Bri = percentToBri(n)
		cached = briToPercent(state.Bri)
	case home.CharHue:
		state.Hue = degreesToHue(n)
		cached = hueToDegrees(state.Hue)
	case home.CharSaturation:
		state.Sat = percentToSat(n)
		cached = satToPercent(state.Sat)
	case home.CharColorTemperature:
		state.Ct = clampMired(n)
		cached = int(state.Ct)
	}

	ctx, cancel := context.WithTimeout(b.ctx, requestTimeout)
	defer cancel()
	if _, err := b.client.SetLightStateContext(ctx, ref.light, state); err != nil {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("writing %s: %v", ref.kind, err)})
		return
	}

	b.mu.Lock()
	b.values[id] = cached
	b.mu.Unlock()
	b.emit(home.Event{Kind: home.EventCharacteristicChanged, CharacteristicID: id, Value: cached})
}

// powerID returns the power characteristic id of a light. Callers hold mu.
func (b *Bridge) powerID(light int) string {
	for id, ref := range b.chars {
		if ref.light == light && ref.kind == home.CharPowerState {
			return id
		}
	}
	return ""
}

// CharacteristicValue returns the last polled or written value.
func (b *Bridge) CharacteristicValue(id string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[id]
	return v, ok
}

// ExecuteScene recalls the scene on its group.
func (b *Bridge) ExecuteScene(id string) {
	b.mu.RLock()
	ref, ok := b.scenes[id]
	b.mu.RUnlock()
	if !ok {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("unknown scene %s", id)})
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, requestTimeout)
	defer cancel()
	if _, err := b.client.RecallSceneContext(ctx, ref.id, ref.group); err != nil {
		b.emit(home.Event{Kind: home.EventError, Message: fmt.Sprintf("recalling scene: %v", err)})
	}
}

// Events returns the event channel. It is closed by Close.
func (b *Bridge) Events() <-chan home.Event {
	return b.events
}

// Close stops polling and closes the event channel.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.cancel()
		b.wg.Wait()

		b.mu.Lock()
		b.closed = true
		close(b.events)
		b.mu.Unlock()
	})
	return nil
}

func (b *Bridge) pollLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.poll()
		}
	}
}

// poll fetches light state and emits the differences from the cache.
// A light set that no longer matches the snapshot triggers a reload.
func (b *Bridge) poll() {
	ctx, cancel := context.WithTimeout(b.ctx, requestTimeout)
	defer cancel()

	lights, err := b.client.GetLightsContext(ctx)
	if err != nil {
		b.logger.Warn("hue poll failed", "error", err)
		return
	}

	var events []home.Event
	b.mu.Lock()
	if len(lights) != len(b.lights) {
		events = append(events, home.Event{Kind: home.EventSnapshotChanged})
	}
	for _, l := range lights {
		ref, ok := b.lights[lightKey(l)]
		if !ok {
			events = append(events, home.Event{Kind: home.EventSnapshotChanged})
			continue
		}
		if l.State == nil {
			continue
		}
		if l.State.Reachable != ref.reachable {
			ref.reachable = l.State.Reachable
			b.lights[lightKey(l)] = ref
			events = append(events, home.Event{
				Kind:        home.EventReachabilityChanged,
				AccessoryID: ref.accessoryID,
				Reachable:   ref.reachable,
			})
		}
		for kind, id := range ref.chars {
			v := stateValue(l.State, kind)
			if b.values[id] == v {
				continue
			}
			b.values[id] = v
			events = append(events, home.Event{
				Kind:             home.EventCharacteristicChanged,
				CharacteristicID: id,
				Value:            v,
			})
		}
	}
	b.mu.Unlock()

	reload := false
	for _, ev := range events {
		if ev.Kind == home.EventSnapshotChanged {
			if reload {
				continue
			}
			reload = true
		}
		b.emit(ev)
	}
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
