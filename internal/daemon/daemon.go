// Package daemon wires discovery, the debugger connection, patching and
// the log watcher into the long-running orchestration loop.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/steampatch/steampatchd/internal/core"
	"github.com/steampatch/steampatchd/internal/db"
	"github.com/steampatch/steampatchd/internal/debugger"
	"github.com/steampatch/steampatchd/internal/device"
	"github.com/steampatch/steampatchd/internal/discovery"
	"github.com/steampatch/steampatchd/internal/patch"
	"github.com/steampatch/steampatchd/internal/steam"
	"github.com/steampatch/steampatchd/internal/watcher"
)

// Daemon runs connect, patch, reload cycles against the Steam client.
// One cycle runs at startup when Steam is already up; further cycles
// are driven by the bootstrap log watcher. The daemon is the single
// owner of the debugger connection, so cycles never overlap.
type Daemon struct {
	manager     *debugger.Manager
	applier     *patch.Applier
	device      device.Device
	watcher     *watcher.Watcher
	inspector   ProcessInspector
	history     *db.DB
	processName string
	scripts     []string
}

// New assembles a daemon from the global config. Configuration problems
// that make the daemon pointless (unresolvable log path, broken patch
// tables) are returned as errors and abort startup.
func New() (*Daemon, error) {
	disc := discovery.NewClient(core.GetDiscoveryURL(), steam.SharedJSContextTitle)

	if timeout, err := time.ParseDuration(core.GetDiscoveryTimeout()); err == nil {
		disc.Timeout = timeout
	} else {
		slog.Error(fmt.Sprintf("Invalid discovery.timeout config: %v, using default %s", err, discovery.DefaultTimeout))
	}
	if interval, err := time.ParseDuration(core.GetDiscoveryPollInterval()); err == nil {
		disc.Interval = interval
	} else {
		slog.Error(fmt.Sprintf("Invalid discovery.poll_interval config: %v, using default %s", err, discovery.DefaultInterval))
	}

	logPath := core.GetSteamLogPath()
	if logPath == "" {
		var err error
		logPath, err = steam.BootstrapLogPath()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve bootstrap log path (set steam.log_path in config): %w", err)
		}
	}

	dev, err := device.FromConfig(core.Config)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		slog.Warn("No patches configured, cycles will only reload the client UI")
	}

	return &Daemon{
		manager:     debugger.NewManager(disc),
		applier:     patch.New(),
		device:      dev,
		watcher:     watcher.New(logPath, steam.VerificationMarker),
		inspector:   NewProcessInspector(),
		processName: core.GetSteamProcessName(),
		scripts:     core.GetScripts(),
	}, nil
}

// SetupLogging installs the tint handler as the default logger.
func SetupLogging() {
	level := slog.LevelInfo
	if core.Config.GetInt("verbose") > 0 {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	})
	slog.SetDefault(slog.New(handler))
}

// Run executes the startup cycle if Steam is already up, then arms the
// log watcher and serves its triggers until the context is cancelled.
// The only fatal runtime error is a failed watch registration; without
// the watch the daemon cannot do its job.
func (d *Daemon) Run(ctx context.Context) error {
	d.openHistory()
	defer d.closeHistory()

	slog.Info("Starting steampatchd", "version", core.FormatVersion(core.Version))

	if d.inspector.IsRunning(d.processName) {
		d.runCycle(ctx, "startup")
	} else {
		slog.Info("Steam is not running, skipping startup patch", "process", d.processName)
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- d.watcher.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutdown signal received")
			d.recordDaemon("stop", "")
			d.manager.Close()
			return nil

		case err := <-watchErr:
			if err != nil {
				d.recordDaemon("fatal", err.Error())
				return fmt.Errorf("log watch failed: %w", err)
			}
			return nil

		case <-d.watcher.Triggers():
			d.runCycle(ctx, "verification-complete")
		}
	}
}

// RunOnce performs a single patch cycle and exits. Used by the apply
// command after editing patch tables.
func (d *Daemon) RunOnce(ctx context.Context) {
	d.openHistory()
	defer d.closeHistory()

	d.runCycle(ctx, "manual")
	d.manager.Close()
}

// runCycle is the connect, patch, reload sequence. Connection failure
// skips the whole cycle; a patch failure is logged but the reload still
// goes out so the client picks up whatever was written.
func (d *Daemon) runCycle(ctx context.Context, reason string) {
	slog.Info("Starting patch cycle", "trigger", reason)

	if err := d.manager.Connect(ctx); err != nil {
		slog.Warn("Debug target not reachable, skipping patch cycle", "error", err)
		d.recordCycle(reason, "skipped", err.Error())
		return
	}

	outcome, details := "ok", ""
	switch {
	case d.device == nil:
		details = "no patches configured"
	default:
		rules := d.device.Patches()
		if err := d.applier.Apply(rules); err != nil {
			slog.Error(fmt.Sprintf("Couldn't patch Steam: %v", err))
			outcome, details = "patch-failed", err.Error()
		} else {
			slog.Info("Steam patched", "device", d.device.Name(), "patches", len(rules))
			details = fmt.Sprintf("%d patches applied", len(rules))
		}
	}

	d.manager.Reload(ctx)
	for _, script := range d.scripts {
		d.manager.Evaluate(ctx, script)
	}
	d.recordCycle(reason, outcome, details)
}

// openHistory opens the event database. History is best-effort: any
// failure leaves the daemon running without it.
func (d *Daemon) openHistory() {
	if !core.GetHistoryEnabled() {
		return
	}

	history, err := db.Open(core.GetHistoryDBPath())
	if err != nil {
		slog.Warn("Failed to open history database, continuing without history", "error", err)
		return
	}
	d.history = history
	d.recordDaemon("start", fmt.Sprintf("version %s", core.FormatVersion(core.Version)))
}

func (d *Daemon) closeHistory() {
	if d.history == nil {
		return
	}
	if err := d.history.Close(); err != nil {
		slog.Debug("Failed to close history database", "error", err)
	}
	d.history = nil
}

func (d *Daemon) recordCycle(trigger, outcome, details string) {
	if d.history == nil {
		return
	}
	if err := d.history.LogPatchEvent(trigger, outcome, details); err != nil {
		slog.Debug("Failed to record patch event", "error", err)
	}
}

func (d *Daemon) recordDaemon(eventType, details string) {
	if d.history == nil {
		return
	}
	if err := d.history.LogDaemonEvent(eventType, details); err != nil {
		slog.Debug("Failed to record daemon event", "error", err)
	}
}
