// Package main is the entry point for the volumegridd HUD daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/euxx/volume-grid-sub001/internal/audio"
	"github.com/euxx/volume-grid-sub001/internal/config"
	"github.com/euxx/volume-grid-sub001/internal/dispatch"
	"github.com/euxx/volume-grid-sub001/internal/display"
	"github.com/euxx/volume-grid-sub001/internal/feedback"
	"github.com/euxx/volume-grid-sub001/internal/hud"
	"github.com/euxx/volume-grid-sub001/internal/keys"
	"github.com/euxx/volume-grid-sub001/internal/model"
	"github.com/euxx/volume-grid-sub001/internal/monitor"
	"github.com/euxx/volume-grid-sub001/internal/theme"
)

const appID = "io.github.euxx.volumegridd"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/volume-grid/config.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("volumegridd version", version)
		os.Exit(0)
	}

	// The level is a LevelVar so a config reload can change it
	var level slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: &level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(logLevel(cfg.Log.Level, *verbose))

	os.Exit(run(cfg, *configPath, *verbose, &level, logger))
}

// logLevel resolves the configured level; --verbose wins.
func logLevel(name string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	level, err := config.ParseLevel(name)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// hudConfig maps the [hud] section onto the coordinator settings.
func hudConfig(c config.HUDConfig) hud.Config {
	cfg := hud.DefaultConfig()
	cfg.AutoHide = c.AutoHide.Duration()
	cfg.FadeIn = c.FadeIn.Duration()
	cfg.FadeOut = c.FadeOut.Duration()
	cfg.Opacity = c.Opacity
	cfg.MinWidth = c.MinWidth
	return cfg
}

// keySource picks the hardware key filter, or nothing when keys are disabled.
func keySource(cfg config.KeysConfig, f *keys.Filter) monitor.Keys {
	if !cfg.Enabled {
		return disabledKeys{}
	}
	return f
}

// disabledKeys satisfies monitor.Keys without installing any tap.
type disabledKeys struct{}

func (disabledKeys) Start(func()) error { return nil }
func (disabledKeys) Stop()              {}

// run starts the application and blocks until it quits.
func run(cfg *config.Config, configPath string, verbose bool, level *slog.LevelVar, logger *slog.Logger) int {
	logger.Info("starting volumegridd", "version", version)

	app := adw.NewApplication(appID, 0)
	ui := display.MainLoop{}

	// Shared state between GTK main loop and signal handlers
	var (
		displayManager *display.Manager
		themeLoader    *theme.Loader
		appearance     *display.Appearance
		coordinator    *hud.Coordinator
		worker         *dispatch.Worker
		keyFilter      *keys.Filter
		volumeMonitor  *monitor.Monitor
		player         *feedback.Player
		configWatcher  *config.Watcher
		running        atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stop tears everything down. It runs on the GTK main loop.
	stop := func() {
		if !running.Swap(false) {
			return
		}
		cancel()
		if configWatcher != nil {
			_ = configWatcher.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if volumeMonitor != nil {
			// Listener removal talks to the hardware
			dispatch.Do(worker, volumeMonitor.Close)
		}
		if worker != nil {
			worker.Close()
		}
		if coordinator != nil {
			coordinator.Close()
		}
		if player != nil {
			player.Close()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		glib.IdleAdd(func() {
			stop()
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		displayManager = display.NewManager(&app.Application, logger)
		if err := displayManager.Start(); err != nil {
			logger.Error("failed to start display manager", "error", err)
			app.Quit()
			return
		}

		if err := theme.CreateThemesDir(); err != nil {
			logger.Warn("failed to create themes directory", "error", err)
		}
		themeLoader = theme.NewLoader(logger)
		if err := themeLoader.LoadTheme(cfg.HUD.Theme); err != nil {
			logger.Warn("failed to load theme, using default", "error", err)
		}
		themeLoader.Apply(displayManager.Display())
		themeLoader.StartHotReload(ctx, ui)

		appearance = display.NewAppearance(config.ColorScheme(cfg.HUD.ColorScheme))
		coordinator = hud.NewCoordinator(displayManager.HUDDeps(appearance), hudConfig(cfg.HUD))
		coordinator.SyncWithDisplays()
		displayManager.Monitors().OnChange(coordinator.DisplaysChanged)

		hal, err := audio.NewSystemHAL()
		if err != nil {
			logger.Error("failed to open audio backend", "error", err)
			stop()
			app.Quit()
			return
		}
		adapter := audio.NewAdapter(hal, logger)
		worker = dispatch.NewWorker("audio", logger)

		player = feedback.NewPlayer(nil, logger)
		player.Configure(cfg.Feedback)

		keyFilter = keys.NewFilter(keys.Options{
			UI:             ui,
			DebounceWindow: cfg.Keys.DebounceWindow.Duration(),
			Logger:         logger,
		})

		volumeMonitor = monitor.New(adapter, keySource(cfg.Keys, keyFilter), monitor.Options{
			Worker: worker,
			UI:     ui,
			OnKeyPress: func() {
				go func() {
					if err := player.Blip(); err != nil {
						logger.Debug("failed to play feedback", "error", err)
					}
				}()
			},
			Logger: logger,
		})
		volumeMonitor.OnHUD(func(hc model.HUDContext) {
			coordinator.Show(hc)
		})
		worker.Post(volumeMonitor.StartListening)

		go func() {
			if err := volumeMonitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("volume monitor stopped", "error", err)
			}
		}()

		configWatcher, err = config.NewWatcher(configPath, func(newCfg *config.Config) {
			ui.Post(func() {
				if !running.Load() {
					return
				}
				coordinator.SetConfig(hudConfig(newCfg.HUD))
				appearance.SetScheme(config.ColorScheme(newCfg.HUD.ColorScheme))
				keyFilter.SetDebounceWindow(newCfg.Keys.DebounceWindow.Duration())
				player.Configure(newCfg.Feedback)
				level.Set(logLevel(newCfg.Log.Level, verbose))

				if newCfg.HUD.Theme != cfg.HUD.Theme {
					if err := themeLoader.LoadTheme(newCfg.HUD.Theme); err != nil {
						logger.Warn("failed to load new theme", "theme", newCfg.HUD.Theme, "error", err)
					} else {
						themeLoader.StartHotReload(ctx, ui)
					}
				}
				if newCfg.Keys.Enabled != cfg.Keys.Enabled {
					logger.Info("keys.enabled takes effect after a restart")
				}

				cfg = newCfg
				logger.Info("configuration reloaded")
			})
		}, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else if err := configWatcher.Start(); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		logger.Info("volumegridd ready", "displays", len(coordinator.Windows()))

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
		stop()
	})

	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("volumegridd stopped")
	return 0
}
