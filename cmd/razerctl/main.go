// razerctl - Razer mouse settings reconciler
//
// razerctl enforces a desired configuration on Razer mice exposed by the
// openrazer daemon. Each pass enumerates the connected devices, compares
// their current settings against the configured desired values, and
// writes only the properties that drifted. With --dry the drift is
// reported without writing; with --watch the pass repeats on an interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/180254/razerctl/migrations"

	"github.com/180254/razerctl/internal/daemon"
	"github.com/180254/razerctl/internal/history"
	"github.com/180254/razerctl/internal/infrastructure/config"
	"github.com/180254/razerctl/internal/infrastructure/database"
	"github.com/180254/razerctl/internal/infrastructure/influxdb"
	"github.com/180254/razerctl/internal/infrastructure/logging"
	"github.com/180254/razerctl/internal/infrastructure/mqtt"
	"github.com/180254/razerctl/internal/openrazer"
	"github.com/180254/razerctl/internal/reconcile"
	"github.com/180254/razerctl/internal/watch"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// options holds the parsed command-line flags.
type options struct {
	configPath string
	configSet  bool
	dry        bool
	watch      bool
}

func main() {
	fs := flag.NewFlagSet("razerctl", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	dry := fs.Bool("dry", false, "report drifted settings without writing")
	watchMode := fs.Bool("watch", false, "reconcile repeatedly on an interval")
	showVersion := fs.Bool("version", false, "print version and exit")
	_ = fs.Parse(os.Args[1:]) //nolint:errcheck // ExitOnError handles parse failures

	if *showVersion {
		fmt.Printf("razerctl %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	opts := options{
		configPath: *configPath,
		configSet:  *configPath != "",
		dry:        *dry,
		watch:      *watchMode,
	}

	// Context cancels on interrupt signals (Ctrl+C, SIGTERM) for
	// graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context, opts options) error {
	log := logging.Default()

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting razerctl",
		"version", version,
		"dry", opts.dry,
		"watch", opts.watch,
	)

	// Start the openrazer daemon if we manage it and nobody owns the
	// bus name yet.
	if cfg.Daemon.Managed && !openrazer.Available() {
		mgr := daemon.NewManager(cfg.Daemon.Binary, "--foreground")
		mgr.SetLogger(log)
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("starting openrazer daemon: %w", err)
		}
		defer func() {
			if stopErr := mgr.Stop(); stopErr != nil {
				log.Error("error stopping openrazer daemon", "error", stopErr)
			}
		}()
		if err := mgr.WaitReady(ctx, openrazer.Available, cfg.DaemonStartTimeout()); err != nil {
			return fmt.Errorf("waiting for openrazer daemon: %w", err)
		}
		log.Info("openrazer daemon started", "pid", mgr.PID())
	}

	// Connect to the daemon
	client, err := openrazer.Connect()
	if err != nil {
		return fmt.Errorf("connecting to openrazer: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing openrazer connection", "error", closeErr)
		}
	}()

	if v, verErr := client.Version(ctx); verErr == nil {
		log.Info("connected to openrazer daemon", "daemon_version", v)
	}

	// Run history (optional)
	var repo history.Repository
	if cfg.History.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening history database: %w", dbErr)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing history database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		repo = history.NewSQLiteRepository(db.DB)
		log.Info("run history enabled", "path", cfg.History.Path)
	}

	app := &app{
		devices: openrazerSource{client: client},
		table:   cfg.Table(),
		repo:    repo,
		log:     log,
		dry:     opts.dry,
	}

	if !opts.watch {
		return app.runPass(ctx)
	}

	return runWatch(ctx, cfg, app, log)
}

// runWatch wires up the watch-mode extras (MQTT, InfluxDB) and runs the
// reconciliation loop until the context is cancelled.
func runWatch(ctx context.Context, cfg *config.Config, app *app, log *logging.Logger) error {
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })

		app.mqtt = mqttClient
	}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		app.influx = influxClient
	}

	watcher := watch.New(cfg.WatchInterval(), app.runPass, log)

	if app.mqtt != nil {
		qos := byte(cfg.MQTT.QoS) //nolint:gosec // QoS validated to 0-2 in config
		err := app.mqtt.Subscribe(mqtt.TopicCommand, qos, func(_ string, payload []byte) error {
			if string(payload) == mqtt.CommandReconcile {
				watcher.Trigger()
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribing to command topic: %w", err)
		}
	}

	log.Info("watch mode started", "interval", cfg.WatchInterval())

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("razerctl stopped")
	return nil
}

// loadConfig resolves the config path and loads the configuration.
//
// An explicitly given --config path must exist; the default path (or
// RAZERCTL_CONFIG) falls back to built-in defaults when absent.
func loadConfig(opts options) (*config.Config, error) {
	if opts.configSet {
		return config.Load(opts.configPath)
	}
	path := os.Getenv("RAZERCTL_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	return config.LoadOrDefault(path)
}

// deviceState is the retained per-device MQTT state payload.
type deviceState struct {
	Serial    string    `json:"serial"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Battery   *float64  `json:"battery,omitempty"`
	Charging  *bool     `json:"charging,omitempty"`
	InSync    bool      `json:"in_sync"`
	UpdatedAt time.Time `json:"updated_at"`
}

// changeEvent is the MQTT payload published for each applied change.
type changeEvent struct {
	RunID     string    `json:"run_id,omitempty"`
	Serial    string    `json:"serial"`
	Name      string    `json:"name"`
	Property  string    `json:"property"`
	Previous  string    `json:"previous"`
	Applied   string    `json:"applied"`
	Timestamp time.Time `json:"timestamp"`
}

// device is the per-device surface a reconciliation pass needs.
// *openrazer.Device implements it; tests use a recording fake.
type device interface {
	reconcile.Mouse
	Type() string
	Firmware() (string, error)
	DriverVersion() (string, error)
	BatteryLevel() (float64, error)
	IsCharging() (bool, error)
}

// deviceSource enumerates the connected devices for a pass.
type deviceSource interface {
	Devices(ctx context.Context) ([]device, error)
}

// openrazerSource adapts *openrazer.Client to deviceSource.
type openrazerSource struct {
	client *openrazer.Client
}

func (s openrazerSource) Devices(ctx context.Context) ([]device, error) {
	devs, err := s.client.Devices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]device, len(devs))
	for i, d := range devs {
		out[i] = d
	}
	return out, nil
}

// app holds the wired collaborators for reconciliation passes.
type app struct {
	devices deviceSource
	table   reconcile.Table
	repo    history.Repository
	mqtt    *mqtt.Client
	influx  *influxdb.Client
	log     *logging.Logger
	dry     bool
}

// runPass executes one reconciliation pass over all connected devices.
//
// Any device read or write failure aborts the pass and propagates the
// error; in watch mode the watcher logs it and retries on the next tick.
func (a *app) runPass(ctx context.Context) error {
	devices, err := a.devices.Devices(ctx)
	if err != nil {
		return fmt.Errorf("enumerating devices: %w", err)
	}
	a.log.Info("devices enumerated", "count", len(devices))

	run := &history.Run{DryRun: a.dry, DevicesSeen: len(devices)}
	if a.repo != nil {
		if err := a.repo.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
	}

	for _, dev := range devices {
		if err := a.reconcileDevice(ctx, dev, run); err != nil {
			return err
		}
	}

	if a.repo != nil {
		if err := a.repo.FinishRun(ctx, run); err != nil {
			return fmt.Errorf("finishing run: %w", err)
		}
	}

	return nil
}

// reconcileDevice reports one device and, if it is a mouse, brings it in
// line with its desired settings.
func (a *app) reconcileDevice(ctx context.Context, dev device, run *history.Run) error {
	devLog := a.log.With("serial", dev.Serial(), "name", dev.Name())

	a.logIdentity(dev, devLog)
	battery, charging := a.logBattery(dev, devLog)
	devLog.Info("configurables", "properties", reconcile.Configurables(dev))

	if dev.Type() != "mouse" {
		devLog.Info("skipping non-mouse device", "type", dev.Type())
		a.publishState(dev, battery, charging, true)
		return nil
	}

	desired := a.table.Resolve(dev.Serial(), dev.Name())
	plan, err := reconcile.Diff(dev, desired)
	if err != nil {
		return fmt.Errorf("diffing %s: %w", dev.Serial(), err)
	}

	if plan.Empty() {
		devLog.Info("device in sync")
		a.publishState(dev, battery, charging, true)
		a.writeBatteryTelemetry(dev, battery, charging)
		return nil
	}

	if a.dry {
		devLog.Info("drift detected (dry run, not writing)", "plan", plan.Summary())
		a.publishState(dev, battery, charging, false)
		a.writeBatteryTelemetry(dev, battery, charging)
		return nil
	}

	devLog.Info("applying changes", "plan", plan.Summary())
	if err := reconcile.Apply(ctx, dev, plan); err != nil {
		return fmt.Errorf("applying to %s: %w", dev.Serial(), err)
	}
	run.ChangesApplied += len(plan.Changes)
	devLog.Info("configurables now", "properties", reconcile.AppliedConfigurables(dev, plan))

	a.recordChanges(ctx, dev, plan, run)
	a.publishChanges(dev, plan, run.ID)
	if a.influx != nil {
		for _, c := range plan.Changes {
			a.influx.WriteChangeEvent(dev.Serial(), c.Property)
		}
	}
	a.publishState(dev, battery, charging, true)
	a.writeBatteryTelemetry(dev, battery, charging)

	return nil
}

// logIdentity logs the device identity line, including firmware and
// driver versions where the device reports them.
func (a *app) logIdentity(dev device, devLog *logging.Logger) {
	args := []any{"type", dev.Type()}
	if fw, err := dev.Firmware(); err == nil {
		args = append(args, "firmware", fw)
	}
	if drv, err := dev.DriverVersion(); err == nil {
		args = append(args, "driver", drv)
	}
	devLog.Info("device found", args...)
}

// logBattery logs and returns the battery state for battery-capable
// devices. Returns nils for wired devices.
func (a *app) logBattery(dev device, devLog *logging.Logger) (*float64, *bool) {
	if !dev.Has(openrazer.CapGetBattery) {
		return nil, nil
	}
	level, err := dev.BatteryLevel()
	if err != nil {
		devLog.Warn("reading battery level failed", "error", err)
		return nil, nil
	}

	var charging *bool
	if dev.Has(openrazer.CapIsCharging) {
		if c, chErr := dev.IsCharging(); chErr == nil {
			charging = &c
		}
	}

	args := []any{"level", level}
	if charging != nil {
		args = append(args, "charging", *charging)
	}
	devLog.Info("battery", args...)

	return &level, charging
}

// recordChanges writes the applied changes to the run history.
func (a *app) recordChanges(ctx context.Context, dev device, plan *reconcile.Plan, run *history.Run) {
	if a.repo == nil {
		return
	}
	for _, c := range plan.Changes {
		change := &history.Change{
			RunID:        run.ID,
			DeviceSerial: dev.Serial(),
			DeviceName:   dev.Name(),
			Property:     c.Property,
			Previous:     c.Current,
			Applied:      c.Desired,
		}
		if err := a.repo.RecordChange(ctx, change); err != nil {
			a.log.Error("recording change failed", "property", c.Property, "error", err)
		}
	}
}

// publishChanges publishes one MQTT event per applied change.
func (a *app) publishChanges(dev device, plan *reconcile.Plan, runID string) {
	if a.mqtt == nil {
		return
	}
	for _, c := range plan.Changes {
		event := changeEvent{
			RunID:     runID,
			Serial:    dev.Serial(),
			Name:      dev.Name(),
			Property:  c.Property,
			Previous:  c.Current,
			Applied:   c.Desired,
			Timestamp: time.Now().UTC(),
		}
		if err := a.mqtt.PublishJSON(mqtt.TopicChangeEvent, event, false); err != nil {
			a.log.Error("publishing change event failed", "error", err)
		}
	}
}

// publishState publishes the retained per-device state topic.
func (a *app) publishState(dev device, battery *float64, charging *bool, inSync bool) {
	if a.mqtt == nil {
		return
	}
	state := deviceState{
		Serial:    dev.Serial(),
		Name:      dev.Name(),
		Type:      dev.Type(),
		Battery:   battery,
		Charging:  charging,
		InSync:    inSync,
		UpdatedAt: time.Now().UTC(),
	}
	if err := a.mqtt.PublishJSON(mqtt.DeviceStateTopic(dev.Serial()), state, true); err != nil {
		a.log.Error("publishing device state failed", "error", err)
	}
}

// writeBatteryTelemetry records battery level in InfluxDB.
func (a *app) writeBatteryTelemetry(dev device, battery *float64, charging *bool) {
	if a.influx == nil || battery == nil {
		return
	}
	isCharging := charging != nil && *charging
	a.influx.WriteBattery(dev.Serial(), dev.Name(), *battery, isCharging)
}
