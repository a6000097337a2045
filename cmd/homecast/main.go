// homecast exposes a smart-home graph over HTTP.
//
// It loads rooms, accessories and scenes from a bridge backend, accepts
// device commands as URL paths, text or scheme URLs and streams
// characteristic changes to SSE and WebSocket listeners.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amimof/huego"

	"github.com/nerrad567/homecast/internal/api"
	"github.com/nerrad567/homecast/internal/app"
	"github.com/nerrad567/homecast/internal/bridges/hue"
	"github.com/nerrad567/homecast/internal/bridges/memory"
	"github.com/nerrad567/homecast/internal/bridges/mqtthub"
	"github.com/nerrad567/homecast/internal/executor"
	"github.com/nerrad567/homecast/internal/groups"
	"github.com/nerrad567/homecast/internal/home"
	"github.com/nerrad567/homecast/internal/infrastructure/config"
	"github.com/nerrad567/homecast/internal/infrastructure/database"
	"github.com/nerrad567/homecast/internal/infrastructure/logging"
	"github.com/nerrad567/homecast/internal/infrastructure/mqtt"
	"github.com/nerrad567/homecast/migrations"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// initialLoadTimeout bounds the first snapshot load. The mqtt backend
	// waits for the hub's retained snapshot.
	initialLoadTimeout = 30 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting homecast", "version", version, "commit", commit, "build_date", date)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "bridge", cfg.Bridge.Type)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}

	store, err := groups.NewStore(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("loading groups: %w", err)
	}
	store.SetLogger(log)
	created, err := store.Seed(ctx, groupSeeds(cfg.Groups))
	if err != nil {
		return fmt.Errorf("seeding groups: %w", err)
	}
	log.Info("device groups loaded", "groups", len(store.Groups()), "seeded", created)

	backend, err := newBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("starting %s bridge: %w", cfg.Bridge.Type, err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			log.Error("error closing bridge", "error", closeErr)
		}
	}()

	exec := executor.New(backend, store)
	exec.SetLogger(log)

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Stream:    cfg.Stream,
		Metrics:   cfg.Metrics,
		URLScheme: cfg.URLScheme.Scheme,
		Logger:    log,
		Executor:  exec,
		Groups:    store,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating control server: %w", err)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	loop, err := app.New(app.Options{
		Backend:   backend,
		Executor:  exec,
		Publisher: server,
		Reload:    hup,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating runtime: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting control server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing control server", "error", closeErr)
		}
	}()

	loadCtx, cancelLoad := context.WithTimeout(ctx, initialLoadTimeout)
	if loadErr := loop.Reload(loadCtx); loadErr != nil {
		// Queries answer 503 until a later reload succeeds.
		log.Error("initial snapshot load failed", "error", loadErr)
	}
	cancelLoad()

	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	if err := loop.Run(ctx); err != nil {
		return err
	}
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns HOMECAST_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("HOMECAST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newBackend builds the configured bridge backend.
func newBackend(cfg *config.Config, log *logging.Logger) (home.Backend, error) {
	switch cfg.Bridge.Type {
	case config.BridgeMemory:
		return memory.New(cfg.Bridge.SnapshotFile, log), nil

	case config.BridgeMQTT:
		client, err := mqtt.Connect(cfg.MQTT, mqtt.Topics{Prefix: cfg.Bridge.TopicPrefix})
		if err != nil {
			return nil, err
		}
		client.SetLogger(log)
		client.SetOnConnect(func() { log.Info("MQTT reconnected") })
		client.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		b, err := mqtthub.New(mqtthub.Options{
			Transport: client,
			Topics:    client.Topics(),
			QoS:       client.QoS(),
			Logger:    log,
		})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return b, nil

	case config.BridgeHue:
		b, err := hue.New(hue.Options{
			Client:       huego.New(cfg.Bridge.Hue.Host, cfg.Bridge.Hue.Username),
			Host:         cfg.Bridge.Hue.Host,
			PollInterval: time.Duration(cfg.Bridge.Hue.PollInterval) * time.Second,
			Logger:       log,
		})
		if err != nil {
			return nil, err
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unknown bridge type %q", cfg.Bridge.Type)
	}
}

// groupSeeds converts configured groups into store seeds.
func groupSeeds(cfgs []config.GroupConfig) []home.DeviceGroup {
	seeds := make([]home.DeviceGroup, 0, len(cfgs))
	for i, c := range cfgs {
		g := home.DeviceGroup{
			Name:      c.Name,
			Slug:      c.Slug,
			Members:   c.Members,
			SortOrder: i,
		}
		if c.Icon != "" {
			icon := c.Icon
			g.Icon = &icon
		}
		if c.RoomID != "" {
			room := c.RoomID
			g.RoomID = &room
		}
		seeds = append(seeds, g)
	}
	return seeds
}

// healthCheck verifies the database and control server are healthy.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("control server: %w", err)
	}
	return nil
}
