// Package executor carries out parsed actions against resolved targets.
//
// The Executor holds the current snapshot and a Bridge. Each action is
// mapped onto whichever characteristics the target service actually has;
// the service type is never consulted. Multi-characteristic actions such
// as SetColor are not atomic: a failure between writes leaves the device
// partly updated, as the underlying protocols offer no transactions.
package executor

import (
	"sync"
	"sync/atomic"

	"github.com/nerrad567/homecast/internal/command"
	"github.com/nerrad567/homecast/internal/home"
	"github.com/nerrad567/homecast/internal/resolver"
)

// Logger defines the logging interface used by the Executor.
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

// GroupSource supplies the user-defined device groups.
type GroupSource interface {
	Groups() []home.DeviceGroup
}

// WriteObserver is called after every characteristic write.
type WriteObserver func(characteristicID string, value any)

// Executor executes actions against the current snapshot.
//
// Thread Safety:
//   - The snapshot is swapped atomically; an Execute call sees exactly one generation.
//   - Bridge, groups and observer are guarded by a RWMutex.
type Executor struct {
	snapshot atomic.Pointer[home.Snapshot]

	mu       sync.RWMutex
	bridge   home.Bridge
	groups   GroupSource
	observer WriteObserver
	logger   Logger
}

// New creates an Executor. bridge and groups may be nil.
func New(bridge home.Bridge, groups GroupSource) *Executor {
	return &Executor{
		bridge: bridge,
		groups: groups,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the executor.
func (e *Executor) SetLogger(logger Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// SetBridge replaces the bridge.
func (e *Executor) SetBridge(bridge home.Bridge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bridge = bridge
}

// SetWriteObserver registers fn to be called after each write. nil removes it.
func (e *Executor) SetWriteObserver(fn WriteObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = fn
}

// SetSnapshot adopts a normalized snapshot generation.
func (e *Executor) SetSnapshot(s *home.Snapshot) {
	e.snapshot.Store(s)
}

// Snapshot returns the current generation, or nil before the first load.
func (e *Executor) Snapshot() *home.Snapshot {
	return e.snapshot.Load()
}

// Groups returns the current device groups.
func (e *Executor) Groups() []home.DeviceGroup {
	e.mu.RLock()
	groups := e.groups
	e.mu.RUnlock()
	if groups == nil {
		return nil
	}
	return groups.Groups()
}

// Resolve resolves target against the current snapshot and groups.
func (e *Executor) Resolve(target string) resolver.Outcome {
	return resolver.Resolve(target, e.Snapshot(), e.Groups())
}

// CharacteristicValue reads the bridge's cached value for id. It reports
// false when there is no bridge or no cached value.
func (e *Executor) CharacteristicValue(id string) (any, bool) {
	e.mu.RLock()
	bridge := e.bridge
	e.mu.RUnlock()
	if bridge == nil {
		return nil, false
	}
	return bridge.CharacteristicValue(id)
}

// session is the state captured for one Execute call.
type session struct {
	bridge   home.Bridge
	observer WriteObserver
	logger   Logger
}

func (e *Executor) session() (*session, *home.Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	snap := e.Snapshot()
	if e.bridge == nil || snap == nil {
		return nil, nil, false
	}
	return &session{bridge: e.bridge, observer: e.observer, logger: e.logger}, snap, true
}

// Execute resolves target and applies action to the result.
//
// Scenes always report success. For services the action is applied to
// each one independently: all applied is success, none applied is an
// UnsupportedAction error and anything in between is partial.
func (e *Executor) Execute(target string, action command.Action) Result {
	sess, snap, ok := e.session()
	if !ok {
		return failure(&ActionError{Kind: BridgeUnavailable})
	}

	out := resolver.Resolve(target, snap, e.Groups())
	switch out.Kind {
	case resolver.Scene:
		sess.logger.Debug("executing scene", "scene_id", out.Scene.ID, "scene", out.Scene.Name)
		sess.bridge.ExecuteScene(out.Scene.ID)
		return success(1)

	case resolver.Ambiguous:
		return failure(&ActionError{Kind: AmbiguousTarget, Query: target, Candidates: out.Names()})

	case resolver.NotFound:
		return failure(&ActionError{Kind: TargetNotFound, Query: target})
	}

	succeeded, failed := 0, 0
	for _, svc := range out.Services {
		if sess.apply(svc, action) {
			succeeded++
			continue
		}
		failed++
		sess.logger.Debug("action not supported by service",
			"service_id", svc.ID, "service", svc.Name, "action", action.String())
	}

	switch {
	case failed == 0:
		return success(succeeded)
	case succeeded == 0:
		return failure(&ActionError{
			Kind:   UnsupportedAction,
			Reason: action.String() + " on " + target,
		})
	default:
		return partial(succeeded, failed)
	}
}

// ExecuteMultiple runs Execute for each target in order and aggregates the
// outcomes. Counts are per target: only a fully successful target counts as
// succeeded, partial and failed targets count as failed. A partial target
// still carried out writes, so it keeps the aggregate from being an error.
func (e *Executor) ExecuteMultiple(targets []string, action command.Action) Result {
	if _, _, ok := e.session(); !ok {
		return failure(&ActionError{Kind: BridgeUnavailable})
	}
	if len(targets) == 0 {
		return failure(&ActionError{Kind: ExecutionFailed, Reason: "no targets"})
	}

	succeeded, failed := 0, 0
	anyPartial := false
	var lastErr *ActionError
	for _, t := range targets {
		r := e.Execute(t, action)
		switch r.Status {
		case StatusSuccess:
			succeeded++
		case StatusPartial:
			failed++
			anyPartial = true
		default:
			failed++
			lastErr = r.Err
		}
	}

	switch {
	case failed == 0:
		return success(succeeded)
	case succeeded == 0 && !anyPartial:
		reason := "all targets failed"
		if lastErr != nil {
			reason = lastErr.Error()
		}
		return failure(&ActionError{Kind: ExecutionFailed, Reason: reason})
	default:
		return partial(succeeded, failed)
	}
}
