// goxkey is a background daemon that turns plain keystrokes into
// Vietnamese text system-wide. It intercepts key events before they
// reach the foreground application, composes words under the Telex
// typing method, and replays corrections with synthetic backspaces and
// inserts. A control socket exposes status and toggling to goxkeyctl.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hongmd/goxkey/internal/config"
	"github.com/hongmd/goxkey/internal/engine"
	"github.com/hongmd/goxkey/internal/hotkey"
	"github.com/hongmd/goxkey/internal/ipc"
	"github.com/hongmd/goxkey/internal/logging"
	"github.com/hongmd/goxkey/internal/platform"
	"github.com/hongmd/goxkey/internal/telex"
)

// version is stamped at build time.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("goxkey", version)
		return
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}

	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer logger.Close()

	logging.Info("starting", "version", version, "config", path)

	eng := engine.New(telex.New(), platform.NewSink(), engineOptions(cfg, logger))

	// Hot reload: a changed file on disk swaps the engine tables in place.
	loader.OnChange(func(c *config.Config) {
		eng.ApplyOptions(engineOptions(c, logger))
		logging.Info("configuration reloaded")
	})
	if err := loader.Watch(); err != nil {
		logging.Warn("config watch unavailable", "error", err)
	}
	go func() {
		for err := range loader.Errors() {
			logging.Warn("config watch", "error", err)
		}
	}()

	if !platform.EnsureAccessibilityPermission() {
		logging.Error("accessibility permission not granted; keystroke interception disabled")
		fmt.Fprintln(os.Stderr, `goxkey needs permission to monitor keyboard input.
Grant it under System Settings > Privacy & Security > Accessibility,
then restart goxkey.`)
	}

	source := platform.NewSource()
	if ok, reason := source.Available(); !ok {
		logging.Warn("event source unavailable", "reason", reason)
	} else {
		go func() {
			err := source.Run(eng.HandleEvent)
			if err != nil && err != platform.ErrNotAvailable {
				logging.Error("event source stopped", "error", err)
			}
		}()
	}

	watcher := platform.NewAppWatcher()
	if err := watcher.Watch(eng.SetActiveApp); err != nil {
		logging.Warn("app watcher unavailable", "error", err)
	}

	// State-change notifications for the desktop.
	go func() {
		for range eng.Notifier().C() {
			notifyStateChange(eng.Enabled())
		}
	}()

	ctl := &controller{
		engine: eng,
		loader: loader,
		logger: logger,
		done:   make(chan struct{}),
	}

	var server *ipc.Server
	if cfg.IPC.Enabled {
		socketPath := cfg.IPC.SocketPath
		if socketPath == "" {
			socketPath = config.DefaultSocketPath()
		}
		server = ipc.NewServer(ipc.ServerConfig{SocketPath: socketPath, Logger: logger}, ctl)
		if err := server.Start(); err != nil {
			logging.Error("control socket failed", "error", err)
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-sigChan:
		logging.Info("signal received", "signal", sig.String())
	case <-ctl.done:
		logging.Info("shutdown requested over control socket")
	}

	if server != nil {
		server.Stop()
	}
	source.Stop()
	watcher.Stop()
	loader.Close()
	logging.Info("stopped")
}

// setupLogging builds the logger from the validated configuration.
func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		Component: "goxkey",
	})
}

// engineOptions converts a validated configuration into engine options.
func engineOptions(cfg *config.Config, logger *logging.Logger) engine.Options {
	chord, err := hotkey.Parse(cfg.Input.Hotkey)
	if err != nil {
		// Validation has already run; fall back rather than crash.
		chord, _ = hotkey.Parse("ctrl")
	}

	quirks := engine.DefaultQuirks()
	for _, app := range cfg.Apps.DismissSelection {
		quirks[app] = engine.Quirks{DismissSelection: true}
	}

	return engine.Options{
		Enabled:      cfg.Input.Enabled,
		AutoToggle:   cfg.Input.AutoToggle,
		Hotkey:       chord,
		Macros:       cfg.Macros,
		AllowedWords: cfg.Input.AllowedWords,
		AppEnabled:   cfg.Apps.Enabled,
		AppQuirks:    quirks,
		Logger:       logger.Logger,
	}
}

// controller exposes the engine over the control socket.
type controller struct {
	engine *engine.Engine
	loader *config.Loader
	logger *logging.Logger

	done     chan struct{}
	doneOnce sync.Once
}

func (c *controller) Status() ipc.StatusResponse {
	st := c.engine.Status()
	return ipc.StatusResponse{
		Version:    version,
		Enabled:    st.Enabled,
		AutoToggle: st.AutoToggle,
		ActiveApp:  st.ActiveApp,
		Hotkey:     st.Hotkey,
		MacroCount: st.MacroCount,
		Uptime:     st.Uptime,
	}
}

func (c *controller) Toggle() bool {
	c.engine.Toggle()
	return c.engine.Enabled()
}

func (c *controller) SetEnabled(enabled bool) {
	c.engine.SetEnabled(enabled)
}

func (c *controller) Reload() error {
	cfg, err := c.loader.Load()
	if err != nil {
		return err
	}
	c.engine.ApplyOptions(engineOptions(cfg, c.logger))
	logging.Info("configuration reloaded")
	return nil
}

func (c *controller) Shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}
