//go:build linux

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/casement/internal/daemon"
	"github.com/1broseidon/casement/internal/runtimepath"
	"github.com/1broseidon/casement/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/casement/config.yaml)")
	display := fs.String("display", "", "X display to manage (default: config display, then $DISPLAY)")
	noIPC := fs.Bool("no-ipc", false, "Do not listen on the IPC socket")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: casement run [--path PATH] [--display DISPLAY] [--no-ipc]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager in the foreground. SIGHUP reloads the")
		fmt.Fprintln(os.Stderr, "configuration; SIGINT and SIGTERM hand every window back to the root")
		fmt.Fprintln(os.Stderr, "and exit.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return exitUsage
	}

	level := new(slog.LevelVar)
	logger := newLogger(os.Stderr, level)
	slog.SetDefault(logger)

	socket := ""
	if !*noIPC {
		var err error
		socket, err = runtimepath.SocketPath(*display)
		if err != nil {
			logger.Warn("IPC disabled", "error", err)
			socket = ""
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	reloads := make(chan struct{}, 1)
	go func() {
		for range hup {
			select {
			case reloads <- struct{}{}:
			default:
			}
		}
	}()

	d := daemon.New(daemon.Config{
		ConfigPath:     *path,
		Display:        *display,
		SocketPath:     socket,
		Logger:         logger,
		Level:          level,
		ReloadRequests: reloads,
	})

	err := d.Run(ctx)
	switch {
	case err == nil:
		logger.Info("window manager exited")
	case errors.Is(err, x11.ErrOtherWM):
		fmt.Fprintln(os.Stderr, err)
	default:
		logger.Error("window manager failed", "error", err)
	}
	return exitCode(err)
}
