package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SocketEnv overrides the IPC socket location for every display.
const SocketEnv = "CASEMENT_SOCKET"

// Dir returns the directory holding IPC sockets: $XDG_RUNTIME_DIR, then
// /run/user/<uid>, then a private directory under /tmp.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}

	dir := fmt.Sprintf("/tmp/casement-runtime-%d", uid)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SocketPath returns the IPC socket of the manager running on display.
// An empty display means $DISPLAY. One manager runs per display, so each
// display gets its own socket.
func SocketPath(display string) (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	return filepath.Join(dir, SocketName(display)), nil
}

// SocketName maps a display name to a socket file name. The screen number
// is dropped since a manager owns the whole display:
//
//	":0"          -> casement-0.sock
//	":1.0"        -> casement-1.sock
//	"host:10.0"   -> casement-host_10.sock
//	""            -> casement.sock
func SocketName(display string) string {
	host, num, ok := strings.Cut(display, ":")
	if !ok {
		return "casement.sock"
	}
	num, _, _ = strings.Cut(num, ".")
	if num == "" {
		return "casement.sock"
	}
	id := num
	if host != "" {
		host = strings.NewReplacer("/", "_", ":", "_").Replace(host)
		id = host + "_" + num
	}
	return "casement-" + id + ".sock"
}
