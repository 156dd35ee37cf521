package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/wm"
)

// Executor runs a function on the goroutine that owns the manager.
type Executor interface {
	Do(ctx context.Context, fn func(*wm.Manager) error) error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	// Interval between sweeps. Zero disables sweeping until SetInterval
	// enables it.
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops tracked windows the server no longer knows.
// Destroy notifications can be lost when a client dies while the manager is
// between selecting input and reparenting it.
type Reconciler struct {
	exec     Executor
	alive    func(platform.WindowID) bool
	interval time.Duration
	update   chan time.Duration
	logger   *slog.Logger
}

// NewReconciler creates a reconciler that sweeps through exec.
func NewReconciler(cfg ReconcilerConfig, exec Executor, alive func(platform.WindowID) bool) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval < 0 {
		interval = 0
	}
	return &Reconciler{
		exec:     exec,
		alive:    alive,
		interval: interval,
		update:   make(chan time.Duration, 1),
		logger:   logger,
	}
}

// SetInterval changes the sweep period of a running reconciler.
func (r *Reconciler) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	// Only the latest value matters.
	select {
	case <-r.update:
	default:
	}
	r.update <- d
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	var ticker *time.Ticker
	var tick <-chan time.Time
	reset := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
		r.interval = d
	}
	reset(r.interval)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case d := <-r.update:
			if d != r.interval {
				r.logger.Info("reconciler interval changed", "interval", d)
				reset(d)
			}
		case <-tick:
			r.ReconcileNow(ctx)
		}
	}
}

// ReconcileNow performs a single sweep and returns how many windows were
// removed.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	removed := 0
	err := r.exec.Do(ctx, func(m *wm.Manager) error {
		n, err := m.Sweep(r.alive)
		removed = n
		return err
	})
	switch {
	case err == nil:
		if removed > 0 {
			r.logger.Info("reconciler removed vanished windows", "count", removed)
		}
	case ctx.Err() != nil:
	default:
		r.logger.Warn("reconciler: sweep failed", "error", err)
	}
	return removed
}
