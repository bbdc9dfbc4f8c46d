// hass-agent publishes devices to Home Assistant over MQTT discovery.
//
// It connects to the broker Home Assistant uses, announces its entities on
// the discovery topics, re-announces them whenever Home Assistant restarts,
// and keeps their state current. A local SQLite ledger, InfluxDB telemetry
// and an HTTP status API are optional.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/hass-agent/internal/api"
	"github.com/nerrad567/hass-agent/internal/connector"
	"github.com/nerrad567/hass-agent/internal/devices"
	"github.com/nerrad567/hass-agent/internal/entity"
	"github.com/nerrad567/hass-agent/internal/infrastructure/config"
	"github.com/nerrad567/hass-agent/internal/infrastructure/database"
	"github.com/nerrad567/hass-agent/internal/infrastructure/influxdb"
	"github.com/nerrad567/hass-agent/internal/infrastructure/logging"
	"github.com/nerrad567/hass-agent/internal/model"
	"github.com/nerrad567/hass-agent/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// Entity object id suffixes of the motion switch device.
const (
	switchSuffix = "-switch"
	motionSuffix = "-motion"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component from the configuration and runs the connector
// until ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting hass-agent",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	var observers connector.Observers

	var ledger *entity.SQLiteRepository
	if cfg.Database.Enabled {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", db.Path())

		ledger = entity.NewSQLiteRepository(db.DB)
		recorder := entity.NewRecorder(ledger, log.Component("entity"))
		defer recorder.Close()
		observers = append(observers, recorder)
	} else {
		log.Info("entity ledger disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		observers = append(observers, influxdb.NewTelemetry(influxClient))
	} else {
		log.Info("InfluxDB disabled")
	}

	opts := connectorOptions(cfg.MQTT)

	var apiServer *api.Server
	if cfg.API.Enabled {
		deps := api.Deps{
			Config:  cfg.API,
			Logger:  log.Component("api"),
			Version: version,
		}
		if ledger != nil {
			deps.Entities = ledger
		}
		apiServer, err = api.New(deps)
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		observers = append(observers, apiServer.Observer())
	}

	dev := newDeviceFactory(ctx, cfg.Device, ledger, log.Component("device"))
	conn, err := connector.New(opts, dev.build,
		connector.WithLogger(log.Component("connector")),
		connector.WithObserver(observers),
	)
	defer dev.close(log)
	if err != nil {
		if dev.err != nil {
			return fmt.Errorf("creating device: %w", dev.err)
		}
		return fmt.Errorf("creating connector: %w", err)
	}

	if apiServer != nil {
		apiServer.SetConnectorInfo(conn.ClientID(), conn.Client().Topics().Base())
		if err := apiServer.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	log.Info("connector starting",
		"broker", opts.BrokerURL(),
		"client_id", conn.ClientID(),
		"device", cfg.Device.Kind,
	)
	if err := conn.Run(ctx); err != nil {
		return fmt.Errorf("running connector: %w", err)
	}

	log.Info("hass-agent stopped")
	return nil
}

// getConfigPath returns the configuration file path. The HASS_AGENT_CONFIG
// environment variable overrides the default.
func getConfigPath() string {
	if path := os.Getenv("HASS_AGENT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openDatabase opens the ledger database and applies the embedded migrations.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("database: %w", err)
	}
	return db, nil
}

// connectorOptions maps the mqtt config section onto connector options.
func connectorOptions(cfg config.MQTTConfig) connector.Options {
	return connector.Options{
		Host:              cfg.Host,
		Port:              cfg.Port,
		ClientID:          cfg.ClientID,
		Username:          cfg.Username,
		Password:          cfg.Password,
		TopicBase:         cfg.TopicBase,
		DisableTLS:        cfg.DisableTLS,
		KeepAlive:         cfg.KeepAlive,
		ReconnectDelay:    cfg.ReconnectDelay,
		AvailabilityTopic: cfg.AvailabilityTopic,
	}
}

// newDevice builds the Home Assistant device block from config.
func newDevice(cfg config.DeviceConfig) *model.Device {
	identifiers := cfg.Identifiers
	if len(identifiers) == 0 {
		identifiers = []string{cfg.ID}
	}
	d := model.NewDevice(cfg.Name, identifiers...)
	d.SWVersion = cfg.SWVersion
	if d.SWVersion == "" && version != "dev" {
		d.SWVersion = version
	}
	d.SupportURL = cfg.SupportURL
	return d
}

// deviceFactory builds the configured device handler for connector.New and
// remembers what it built so run can report errors and shut it down.
type deviceFactory struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.DeviceConfig
	lookup devices.StateLookup
	logger *logging.Logger

	err       error
	forwarder *devices.Forwarder
	motion    *devices.MotionSwitch
}

func newDeviceFactory(ctx context.Context, cfg config.DeviceConfig, ledger *entity.SQLiteRepository, logger *logging.Logger) *deviceFactory {
	f := &deviceFactory{cfg: cfg, logger: logger}
	f.ctx, f.cancel = context.WithCancel(ctx)
	if ledger != nil {
		f.lookup = ledger
	}
	return f
}

// build returns nil when the device cannot be created; f.err holds the cause.
func (f *deviceFactory) build(client *connector.Client) connector.Handler {
	switch f.cfg.Kind {
	case config.DeviceKindEventLog:
		f.forwarder = devices.NewForwarder(f.ctx, client, devices.LogEvents(f.logger))
		return f.forwarder

	case config.DeviceKindMotionSwitch:
		m, err := devices.NewMotionSwitch(f.ctx, client, devices.MotionSwitchConfig{
			Device:         newDevice(f.cfg),
			SwitchID:       f.cfg.ID + switchSuffix,
			MotionID:       f.cfg.ID + motionSuffix,
			NodeID:         f.cfg.NodeID,
			ToggleInterval: f.cfg.ToggleInterval,
			Restore:        f.lookup,
			Logger:         f.logger,
		})
		if err != nil {
			f.err = err
			return nil
		}
		f.motion = m
		return m

	default:
		f.err = fmt.Errorf("unknown device kind %q", f.cfg.Kind)
		return nil
	}
}

// close stops the device and waits for its goroutine.
func (f *deviceFactory) close(log *logging.Logger) {
	f.cancel()
	if f.forwarder != nil {
		if err := f.forwarder.Close(); err != nil {
			log.Warn("event consumer stopped with error", "error", err)
		}
	}
	if f.motion != nil {
		<-f.motion.Done()
	}
}
