// Package main is the entry point for the lmkd notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/lmk/internal/audio"
	"github.com/jmylchreest/lmk/internal/canvas"
	"github.com/jmylchreest/lmk/internal/config"
	"github.com/jmylchreest/lmk/internal/daemon"
	"github.com/jmylchreest/lmk/internal/dbus"
	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/server"
	"github.com/jmylchreest/lmk/internal/store"
	"github.com/jmylchreest/lmk/internal/surface"
	"github.com/jmylchreest/lmk/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.lmkd"
	appName = "lmkd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to lmkd.toml (default $XDG_CONFIG_HOME/lmk/lmkd.toml)")
	monitorMode := flag.Bool("monitor", false, "Mirror notifications sent to another daemon instead of claiming the D-Bus name")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("lmkd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	path := *configPath
	if path == "" {
		path = config.DaemonConfigPath()
	}
	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	if *monitorMode {
		cfg.DBus.Monitor = true
		cfg.DBus.ClaimNotifications = false
	}

	os.Exit(run(cfg, path, logger))
}

// components is everything started on activate. Fields are nil until
// started; stop tolerates that.
type components struct {
	logger *slog.Logger
	cancel context.CancelFunc

	store         *store.Store
	surface       *surface.Surface
	controller    *display.Controller
	controllerErr chan error
	daemon        *daemon.Daemon
	janitor       *daemon.Janitor
	audio         *audio.Manager
	http          *server.Server
	conn          *godbus.Conn
	control       *dbus.ControlServer
	notifications *dbus.NotificationServer
	monitor       *dbus.Monitor
	configWatcher *daemon.ConfigWatcher
	themeWatcher  *theme.Watcher
}

// run starts the GTK application and returns its exit status.
func run(cfg *config.DaemonConfig, configPath string, logger *slog.Logger) int {
	logger.Info("starting lmkd", "version", version)

	app := adw.NewApplication(appID, 0)

	var (
		c       = &components{logger: logger}
		running atomic.Bool
		failed  atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGUSR1 {
				if d := c.daemonIfRunning(&running); d != nil {
					logger.Debug("received SIGUSR1, toggling center")
					d.ToggleCenter()
				}
				continue
			}

			logger.Info("received signal, shutting down", "signal", sig)
			cancel()

			// Stop components in GTK main loop context
			glib.IdleAdd(func() {
				if running.Load() {
					c.stop()
					running.Store(false)
				}
				app.Quit()
			})
			return
		}
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}

		if err := c.start(ctx, app, cfg, configPath); err != nil {
			logger.Error("failed to start lmkd", "error", err)
			failed.Store(true)
			c.stop()
			app.Quit()
			return
		}
		running.Store(true)

		logger.Info("lmkd ready", "listen", cfg.Server.Listen, "dbus_control", cfg.DBus.Control)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if running.Load() {
			c.stop()
			running.Store(false)
		}
	})

	status := app.Run(os.Args)
	cancel()
	signal.Stop(sigCh)

	if status == 0 && failed.Load() {
		status = 1
	}
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("lmkd stopped")
	return 0
}

func (c *components) daemonIfRunning(running *atomic.Bool) *daemon.Daemon {
	if !running.Load() {
		return nil
	}
	return c.daemon
}

// start brings up every component. It runs on the GTK main loop.
func (c *components) start(ctx context.Context, app *adw.Application, cfg *config.DaemonConfig, configPath string) error {
	logger := c.logger

	opts, err := cfg.DisplayOptions()
	if err != nil {
		return err
	}

	c.surface = surface.New(&app.Application, cfg.Display.Monitor, logger)
	cv, err := canvas.New(c.surface, cfg.FontConfig())
	if err != nil {
		return fmt.Errorf("failed to load fonts: %w", err)
	}
	if err := c.surface.Start(); err != nil {
		return fmt.Errorf("failed to start surface: %w", err)
	}

	sizer := newEngineSizer(cv, cfg.WrapOptions())
	storeOpts := []store.Option{store.WithLogger(logger)}
	if cfg.Janitor.Archive {
		archive, err := store.OpenJSONLArchive(store.ArchivePath())
		if err != nil {
			logger.Warn("failed to open archive, pruned notifications will be dropped", "error", err)
		} else {
			storeOpts = append(storeOpts, store.WithArchive(archive))
			logger.Info("archiving pruned notifications", "path", archive.Path())
		}
	}
	c.store = store.NewStore(sizer, storeOpts...)

	c.controller = display.NewController(c.store, cv, opts, logger)
	c.controllerErr = make(chan error, 1)
	go func() { c.controllerErr <- c.controller.Run(ctx) }()
	c.surface.OnClick(c.controller.DismissAt)
	c.surface.OnExpose(c.controller.RedrawRequested)

	c.daemon = daemon.New(c.store, c.controller, logger)
	c.daemon.SetDefaults(cfg.DefaultRequest())

	notifier := daemon.NewInternalNotifier(logger)
	notifier.SetSubmitHandler(func(req model.Request) {
		if _, err := c.daemon.Submit(req); err != nil {
			logger.Debug("internal notification dropped", "title", req.Title, "error", err)
		}
	})

	c.audio = audio.NewManager(cfg, logger)
	if err := c.audio.Start(ctx); err != nil {
		logger.Warn("failed to start audio manager", "error", err)
	}
	c.daemon.SetSoundPlayer(c.audio)
	c.daemon.SetSoundErrorHandler(notifier.NotifyAudioError)

	c.janitor = daemon.NewJanitor(c.store, cfg.Janitor.Interval.Duration(), cfg.Janitor.Retention.Duration(), logger)
	if err := c.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}

	if cfg.Server.Listen != "" {
		c.http = server.New(cfg.Server.Listen, c.daemon, logger)
		if err := c.http.Start(); err != nil {
			return err
		}
	}

	c.startDBus(ctx, cfg)

	// Palette edits re-apply whatever config is current.
	reapply := func() { c.applyConfig(cfg, cfg, sizer, notifier) }
	c.watchTheme(ctx, cfg, reapply)

	c.configWatcher = daemon.NewConfigWatcher(configPath, logger)
	c.configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
		glib.IdleAdd(func() {
			c.applyConfig(cfg, newConfig, sizer, notifier)
			cfg = newConfig
			c.watchTheme(ctx, cfg, reapply)
		})
	})
	c.configWatcher.SetErrorCallback(notifier.NotifyConfigError)
	if err := c.configWatcher.Start(ctx, cfg); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	notifier.NotifyStartup(version, cfg.Server.Listen)
	return nil
}

// startDBus exports the session bus interfaces. A missing session bus is
// not fatal; HTTP keeps working.
func (c *components) startDBus(ctx context.Context, cfg *config.DaemonConfig) {
	logger := c.logger

	if cfg.DBus.Monitor {
		c.monitor = dbus.NewMonitor(logger)
		c.monitor.SetNotifyHandler(func(n *dbus.DBusNotification) {
			if _, err := c.daemon.Submit(n.Request(c.daemon.Defaults())); err != nil {
				logger.Warn("failed to mirror notification", "app", n.AppName, "error", err)
			}
		})
		if err := c.monitor.Start(); err != nil {
			logger.Warn("failed to start D-Bus monitor", "error", err)
			c.monitor = nil
		}
	}

	if !cfg.DBus.Control && !cfg.DBus.ClaimNotifications {
		return
	}

	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		logger.Warn("session bus unavailable, D-Bus interfaces disabled", "error", err)
		return
	}
	c.conn = conn

	if cfg.DBus.Control {
		control := dbus.NewControlServer(c.daemon, logger)
		if err := control.Start(conn); err != nil {
			logger.Warn("failed to export control interface", "error", err)
		} else {
			c.control = control
		}
	}

	if cfg.DBus.ClaimNotifications {
		ns := dbus.NewNotificationServer(logger)
		ns.SetServerInfo(dbus.ServerInfo{
			Name:        appName,
			Vendor:      "lmk",
			Version:     version,
			SpecVersion: "1.2",
		})
		ns.SetNotifyHandler(func(n *dbus.DBusNotification) (uint32, error) {
			created, err := c.daemon.Submit(n.Request(c.daemon.Defaults()))
			if err != nil {
				return 0, err
			}
			return created.ID, nil
		})
		ns.SetCloseHandler(c.daemon.Dismiss)
		if err := ns.Start(conn); err != nil {
			logger.Warn("failed to claim notification service", "error", err)
			return
		}
		c.notifications = ns
		go ns.WatchStore(ctx, c.store.Subscribe())
	}
}

// applyConfig pushes a reloaded config to the running components. Fonts,
// the listen address and the D-Bus settings only apply after a restart.
func (c *components) applyConfig(old, cfg *config.DaemonConfig, sizer *engineSizer, notifier *daemon.InternalNotifier) {
	opts, err := cfg.DisplayOptions()
	if err != nil {
		notifier.NotifyConfigError(err)
		return
	}

	sizer.SetWrap(cfg.WrapOptions())
	c.controller.SetOptions(opts)
	c.daemon.SetDefaults(cfg.DefaultRequest())
	c.janitor.SetRetention(cfg.Janitor.Retention.Duration())
	c.audio.UpdateConfig(cfg)

	if old.Fonts != cfg.Fonts || old.Server != cfg.Server || old.DBus != cfg.DBus || old.Display.Monitor != cfg.Display.Monitor {
		c.logger.Warn("some settings changed that only apply after a restart")
	}

	notifier.NotifyConfigReloaded()
}

// watchTheme follows edits to the active palette when it is a user file.
// It replaces any previous watcher.
func (c *components) watchTheme(ctx context.Context, cfg *config.DaemonConfig, onChange func()) {
	if c.themeWatcher != nil {
		c.themeWatcher.Stop()
		c.themeWatcher = nil
	}

	p, err := cfg.Palette()
	if err != nil || p.IsBundled() {
		return
	}

	w := theme.NewWatcher(cfg.ThemesDir(), p, c.logger)
	w.SetChangeCallback(func(*theme.Palette) {
		glib.IdleAdd(onChange)
	})
	if err := w.Start(ctx); err != nil {
		c.logger.Warn("failed to watch theme", "path", p.Path, "error", err)
		return
	}
	c.themeWatcher = w
}

// stop shuts everything down in reverse dependency order. It runs on the
// GTK main loop.
func (c *components) stop() {
	if c.configWatcher != nil {
		c.configWatcher.Stop()
	}
	if c.themeWatcher != nil {
		c.themeWatcher.Stop()
	}
	if c.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.http.Stop(ctx); err != nil {
			c.logger.Warn("error stopping HTTP server", "error", err)
		}
		cancel()
	}
	if c.monitor != nil {
		if err := c.monitor.Stop(); err != nil {
			c.logger.Warn("error stopping monitor", "error", err)
		}
	}
	if c.notifications != nil {
		_ = c.notifications.Stop()
	}
	if c.control != nil {
		c.control.Stop()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.janitor != nil {
		c.janitor.Stop()
	}
	if c.daemon != nil {
		c.daemon.Stop()
	}
	if c.audio != nil {
		c.audio.Stop()
	}

	if c.cancel != nil {
		c.cancel()
	}
	if c.controllerErr != nil {
		select {
		case err := <-c.controllerErr:
			if err != nil {
				c.logger.Warn("display controller stopped with error", "error", err)
			}
		case <-time.After(2 * time.Second):
			c.logger.Warn("display controller did not stop")
		}
		c.controllerErr = nil
	}

	if c.surface != nil {
		c.surface.Stop()
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Warn("error closing store", "error", err)
		}
	}
}
