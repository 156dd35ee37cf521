//go:build !linux

package main

import (
	"fmt"
	"os"
)

func runDaemon([]string) int {
	fmt.Fprintln(os.Stderr, "casement run is only supported on Linux/X11")
	return exitError
}
