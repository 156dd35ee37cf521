//go:build linux

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/casement/internal/config"
	"github.com/1broseidon/casement/internal/hotkeys"
	"github.com/1broseidon/casement/internal/ipc"
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/wm"
	"github.com/1broseidon/casement/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// Name is advertised to EWMH clients as the window manager name.
const Name = "casement"

// Config wires a Daemon.
type Config struct {
	// ConfigPath is the main configuration file; empty means the default.
	ConfigPath string
	// Display overrides both $DISPLAY and the display configuration key.
	Display string
	// SocketPath for IPC; empty disables the IPC server.
	SocketPath string
	Logger     *slog.Logger
	// Level, when set, follows log_level across reloads.
	Level *slog.LevelVar
	// ReloadRequests triggers a reload per receive, for SIGHUP.
	ReloadRequests <-chan struct{}
}

// Daemon runs the window manager against one display.
type Daemon struct {
	cfg    Config
	logger *slog.Logger

	backend    *platform.LinuxBackend
	keys       *hotkeys.Handler
	loop       *Loop
	reconciler *Reconciler
	watcher    *ConfigWatcher
}

// New creates a daemon; nothing touches the display until Run.
func New(cfg Config) *Daemon {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{cfg: cfg, logger: logger}
}

func (d *Daemon) configPath() (string, error) {
	if d.cfg.ConfigPath != "" {
		return d.cfg.ConfigPath, nil
	}
	return config.DefaultConfigPath()
}

func (d *Daemon) load() (*config.LoadResult, error) {
	path, err := d.configPath()
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

// watchedFiles is every file read plus the main path, which may not exist
// yet.
func (d *Daemon) watchedFiles(res *config.LoadResult) []string {
	files := append([]string(nil), res.Files...)
	if path, err := d.configPath(); err == nil {
		files = append(files, path)
	}
	return files
}

// Run manages the display until ctx is cancelled or the connection fails.
// Every framed client is handed back to the root before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	res, err := d.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config
	if d.cfg.Level != nil {
		d.cfg.Level.Set(cfg.SlogLevel())
	}

	display := d.cfg.Display
	if display == "" {
		display = cfg.Display
	}
	conn, err := x11.NewConnection(display)
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer conn.Close()

	if err := conn.BecomeWM(); err != nil {
		return err
	}
	check, err := conn.AnnounceWM(Name)
	if err != nil {
		d.logger.Warn("failed to announce window manager", "error", err)
	}
	if err := conn.WatchScreen(); err != nil {
		d.logger.Warn("screen change notifications unavailable", "error", err)
	}

	opts := OptionsFromConfig(cfg)
	backend, err := platform.NewLinuxBackend(conn, ThemeFromConfig(cfg), DecorFor(opts))
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	d.backend = backend
	m := wm.NewManager(backend, backend, opts, d.logger)

	d.keys = hotkeys.NewHandler(conn.XUtil, d.logger)
	if err := d.keys.Bind(HotkeySpec(cfg)); err != nil {
		d.logger.Warn("some hotkeys could not be bound", "error", err)
	}

	if err := m.AdoptExisting(); err != nil {
		m.Teardown()
		return err
	}
	for _, w := range m.Windows() {
		m.Rename(w.Client, backend.Title(w.Client))
	}
	m.EndBatch()
	if err := backend.Flush(); err != nil {
		d.logger.Debug("flush failed", "error", err)
	}

	dispatcher := NewDispatcher(DispatcherConfig{
		Manager:    m,
		Display:    backend,
		Keys:       d.keys,
		NameAtoms:  []xproto.Atom{conn.Atom(x11.AtomWMName), conn.Atom(x11.AtomNetWMName)},
		ReloadAtom: conn.Atom(x11.AtomReload),
		ActiveAtom: conn.Atom(x11.AtomActiveWindow),
		CloseAtom:  conn.Atom(x11.AtomCloseWindow),
		Reload:     d.Reload,
		Ignore:     []platform.WindowID{platform.WindowID(check)},
		Logger:     d.logger,
	})
	d.loop = NewLoop(m, dispatcher, backend.Flush, d.logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan Batch)
	go func() {
		defer close(events)
		for {
			batch, ok := conn.ReadEvents()
			if !ok {
				return
			}
			select {
			case events <- batch:
			case <-runCtx.Done():
				return
			}
		}
	}()

	var server *ipc.Server
	if d.cfg.SocketPath != "" {
		server, err = ipc.NewServer(ipc.ServerConfig{
			SocketPath: d.cfg.SocketPath,
			Executor:   d.loop,
			Reload:     d.Reload,
			Logger:     d.logger,
		})
		if err == nil {
			err = server.Start()
		}
		if err != nil {
			d.logger.Warn("IPC server unavailable", "error", err)
			server = nil
		}
	}

	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval: cfg.ReconcileInterval(),
		Logger:   d.logger,
	}, d.loop, backend.Alive)
	go d.reconciler.Run(runCtx)

	if cfg.WatchConfig {
		d.startWatcher(runCtx, res)
	}
	if d.cfg.ReloadRequests != nil {
		go d.forwardReloads(runCtx, d.cfg.ReloadRequests)
	}

	d.logger.Info("window manager running", "display", display, "windows", len(m.Windows()))
	err = d.loop.Run(runCtx, events)

	cancel()
	if server != nil {
		server.Stop()
	}
	d.keys.Unbind()
	m.Teardown()

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDisconnected):
		return err
	default:
		return fmt.Errorf("window manager stopped: %w", err)
	}
}

func (d *Daemon) forwardReloads(ctx context.Context, requests <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			d.requestReload(ctx, "signal")
		}
	}
}

func (d *Daemon) requestReload(ctx context.Context, origin string) {
	d.logger.Info("reload requested", "origin", origin)
	if err := d.loop.Do(ctx, d.Reload); err != nil && ctx.Err() == nil {
		d.logger.Error("reload failed; keeping current configuration", "error", err)
	}
}

func (d *Daemon) startWatcher(ctx context.Context, res *config.LoadResult) {
	w, err := NewConfigWatcher(d.watchedFiles(res), DefaultDebounce, func() {
		d.requestReload(ctx, "file change")
	}, d.logger)
	if err != nil {
		d.logger.Warn("config watcher unavailable", "error", err)
		return
	}
	d.watcher = w
	go w.Run(ctx)
}

// Reload re-reads the configuration and applies it to m. It must run on the
// loop goroutine. On error the running configuration is kept.
func (d *Daemon) Reload(m *wm.Manager) error {
	res, err := d.load()
	if err != nil {
		return err
	}
	cfg := res.Config

	m.SetOptions(OptionsFromConfig(cfg))
	if d.backend != nil {
		if err := d.backend.SetAppearance(ThemeFromConfig(cfg), DecorFor(m.Options())); err != nil {
			d.logger.Warn("failed to apply theme", "error", err)
		}
	}
	if d.keys != nil {
		if err := d.keys.Bind(HotkeySpec(cfg)); err != nil {
			d.logger.Warn("some hotkeys could not be bound", "error", err)
		}
	}
	if d.cfg.Level != nil {
		d.cfg.Level.Set(cfg.SlogLevel())
	}
	if d.reconciler != nil {
		d.reconciler.SetInterval(cfg.ReconcileInterval())
	}
	if d.watcher != nil {
		d.watcher.SetFiles(d.watchedFiles(res))
	}
	m.MarkAllDirty()

	d.logger.Info("configuration reloaded", "files", len(res.Files))
	return nil
}
