// Package app wires a bridge backend to the executor and the control
// server.
//
// It owns snapshot generations: every reload loads a fresh snapshot from
// the backend, normalizes it, rebuilds the characteristic index and only
// then hands it to the executor. Backend events drive change publishing
// and further reloads.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/nerrad567/homecast/internal/executor"
	"github.com/nerrad567/homecast/internal/home"
)

// Logger defines the logging interface used by the App.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher receives index rebuilds and characteristic changes. It is
// satisfied by *api.Server.
type Publisher interface {
	RebuildIndex(snap *home.Snapshot)
	PublishCharacteristicChange(characteristicID string, value any)
}

// Options configures an App.
type Options struct {
	Backend   home.Backend
	Executor  *executor.Executor
	Publisher Publisher

	// ErrorSink receives backend error messages. Nil logs them.
	ErrorSink home.ErrorSink

	// Reload triggers a full reload on every receive, typically SIGHUP.
	Reload <-chan os.Signal

	Logger Logger
}

// App is the runtime loop.
//
// Thread Safety:
//   - Reload is serialised; concurrent calls run one after another.
type App struct {
	backend   home.Backend
	executor  *executor.Executor
	publisher Publisher
	sink      home.ErrorSink
	reload    <-chan os.Signal
	logger    Logger

	reloadMu sync.Mutex
}

// New validates opts and installs the executor write observer.
func New(opts Options) (*App, error) {
	if opts.Backend == nil {
		return nil, errors.New("app: backend is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("app: executor is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("app: publisher is required")
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.ErrorSink == nil {
		opts.ErrorSink = LogSink{Logger: opts.Logger}
	}

	a := &App{
		backend:   opts.Backend,
		executor:  opts.Executor,
		publisher: opts.Publisher,
		sink:      opts.ErrorSink,
		reload:    opts.Reload,
		logger:    opts.Logger,
	}
	a.executor.SetBridge(opts.Backend)
	a.executor.SetWriteObserver(a.publisher.PublishCharacteristicChange)
	return a, nil
}

// Reload installs a fresh snapshot generation. On failure the previous
// generation stays in place.
func (a *App) Reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	snap, err := a.backend.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if err := snap.Normalize(); err != nil {
		return fmt.Errorf("normalizing snapshot: %w", err)
	}

	a.publisher.RebuildIndex(snap)
	a.executor.SetSnapshot(snap)

	a.logger.Info("snapshot loaded",
		"rooms", len(snap.Rooms),
		"services", len(snap.Services()),
		"scenes", len(snap.Scenes),
		"characteristics", snap.CharacteristicCount(),
	)
	return nil
}

// Run consumes backend events until ctx is done or the event channel
// closes.
func (a *App) Run(ctx context.Context) error {
	events := a.backend.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.reload:
			a.logger.Info("reload requested")
			a.reloadLogged(ctx)
		case ev, ok := <-events:
			if !ok {
				return errors.New("app: backend event channel closed")
			}
			a.handle(ctx, ev)
		}
	}
}

func (a *App) handle(ctx context.Context, ev home.Event) {
	switch ev.Kind {
	case home.EventCharacteristicChanged:
		a.publisher.PublishCharacteristicChange(ev.CharacteristicID, ev.Value)
	case home.EventReachabilityChanged:
		a.logger.Debug("accessory reachability changed", "accessory_id", ev.AccessoryID, "reachable", ev.Reachable)
		a.reloadLogged(ctx)
	case home.EventSnapshotChanged:
		a.reloadLogged(ctx)
	case home.EventError:
		a.sink.ShowError(ev.Message)
	default:
		a.logger.Warn("unknown backend event", "kind", string(ev.Kind))
	}
}

func (a *App) reloadLogged(ctx context.Context) {
	if err := a.Reload(ctx); err != nil {
		a.logger.Error("reload failed, keeping previous snapshot", "error", err)
	}
}

// LogSink is an ErrorSink that logs each message at warn level.
type LogSink struct {
	Logger Logger
}

// ShowError implements home.ErrorSink.
func (s LogSink) ShowError(message string) {
	s.Logger.Warn("bridge error", "message", message)
}
