package daemon

import (
	"context"
	"errors"
	"log/slog"

	"github.com/1broseidon/casement/internal/wm"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgbutil"
)

var (
	// ErrDisconnected means the display connection closed under the loop.
	ErrDisconnected = errors.New("display connection closed")
	// ErrStopped is returned by Do once the loop has exited.
	ErrStopped = errors.New("event loop stopped")
)

// Batch is every event that was queued when the reader woke up.
type Batch []xgbutil.EventOrError

// EventHandler applies display events to the manager.
type EventHandler interface {
	HandleEvent(ev xgb.Event) error
	HandleError(err xgb.Error)
}

type command struct {
	fn    func(*wm.Manager) error
	reply chan error
}

// Loop is the single goroutine that owns the Manager. Display events and
// commands from other goroutines are serialised through it, and the redraw
// queue is drained after each batch.
type Loop struct {
	m        *wm.Manager
	handler  EventHandler
	flush    func() error
	logger   *slog.Logger
	commands chan command
	done     chan struct{}
}

// NewLoop creates a loop. flush is called after each batch has been painted.
func NewLoop(m *wm.Manager, handler EventHandler, flush func() error, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		m:        m,
		handler:  handler,
		flush:    flush,
		logger:   logger,
		commands: make(chan command),
		done:     make(chan struct{}),
	}
}

// Run processes batches and commands until ctx is cancelled, the event
// channel closes, or a fatal error occurs. Fatal errors are returned as is.
func (l *Loop) Run(ctx context.Context, events <-chan Batch) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return nil

		case batch, ok := <-events:
			if !ok {
				return ErrDisconnected
			}
			for _, item := range batch {
				if item.Err != nil {
					l.handler.HandleError(item.Err)
					continue
				}
				if err := l.handler.HandleEvent(item.Event); wm.IsFatal(err) {
					return err
				}
			}
			l.endBatch()

		case cmd := <-l.commands:
			err := cmd.fn(l.m)
			cmd.reply <- err
			if wm.IsFatal(err) {
				return err
			}
			l.endBatch()
		}
	}
}

func (l *Loop) endBatch() {
	l.m.EndBatch()
	if l.flush == nil {
		return
	}
	if err := l.flush(); err != nil {
		l.logger.Debug("flush failed", "error", err)
	}
}

// Do runs fn on the loop goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*wm.Manager) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case l.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
	// A received command is always answered before the loop can exit.
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
