package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/casement/internal/ipc"
	"github.com/1broseidon/casement/internal/x11"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: casement status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show window manager status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return exitUsage
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	if *asJSON {
		return printJSON(os.Stdout, status)
	}
	fmt.Printf("pid:            %d\n", status.PID)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("screen:         %dx%d\n", status.ScreenWidth, status.ScreenHeight)
	fmt.Printf("windows:        %d\n", status.Stacked)
	fmt.Printf("frames:         %d\n", status.Frames)
	fmt.Printf("nodes:          %d\n", status.Nodes)
	if status.Focused != 0 {
		fmt.Printf("focused:        %#x\n", status.Focused)
	}
	fmt.Printf("interaction:    %s\n", status.Interaction)
	return exitOK
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: casement windows [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List managed windows, topmost first.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "windows takes no arguments")
		fs.Usage()
		return exitUsage
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	if *asJSON {
		return printJSON(os.Stdout, data)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(styleWindowTable(data.Windows))
		return exitOK
	}
	writeWindowTable(os.Stdout, data.Windows)
	return exitOK
}

// styleWindowTable highlights the header and the focused row. Styling is
// applied after alignment so escape codes do not skew the columns.
func styleWindowTable(windows []ipc.WindowData) string {
	var buf strings.Builder
	writeWindowTable(&buf, windows)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = headerStyle.Render(line)
		case windows[i-1].Focused:
			lines[i] = focusedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func writeWindowTable(w io.Writer, windows []ipc.WindowData) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tFRAME\tKIND\tSTATE\tGEOMETRY\tTITLE")
	for _, win := range windows {
		frame := "-"
		if win.Frame != 0 {
			frame = fmt.Sprintf("%#x", win.Frame)
		}
		title := win.Title
		if win.Focused {
			title = "* " + title
		}
		fmt.Fprintf(tw, "%#x\t%s\t%s\t%s\t%dx%d+%d+%d\t%s\n",
			win.Client, frame, win.Kind, win.State, win.Width, win.Height, win.X, win.Y, title)
	}
	tw.Flush()
}

func runWindowCommand(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: casement %s <window>\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "<window> is a client or frame id in hex (0x1a00007) or decimal,")
		fmt.Fprintln(os.Stderr, "as printed by 'casement windows'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	id, err := parseWindowArg(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	client := ipc.NewClient()
	if name == "raise" {
		err = client.Raise(id)
	} else {
		err = client.Close(id)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	return exitOK
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.String("display", "", "X display whose manager to reload (default: $DISPLAY)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: casement reload [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reload configuration via IPC. When the socket is unreachable a")
		fmt.Fprintf(os.Stderr, "%s client message is sent to the root window instead.\n", x11.AtomReload)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return exitUsage
	}

	ipcErr := ipc.NewClientFor(*display).Reload()
	if ipcErr == nil {
		fmt.Println("reload: ok")
		return exitOK
	}
	if !errors.Is(ipcErr, ipc.ErrNoDaemon) {
		// The daemon answered; the new configuration was rejected.
		fmt.Fprintln(os.Stderr, ipcErr)
		return exitError
	}

	if err := sendReloadMessage(*display); err != nil {
		fmt.Fprintln(os.Stderr, ipcErr)
		fmt.Fprintf(os.Stderr, "client message fallback failed: %v\n", err)
		return exitError
	}
	fmt.Println("reload: requested via client message")
	return exitOK
}

func sendReloadMessage(display string) error {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.SendRootMessage(conn.Atom(x11.AtomReload), [5]uint32{}); err != nil {
		return err
	}
	conn.Sync()
	return nil
}

// parseWindowArg accepts hex with a 0x prefix or decimal.
func parseWindowArg(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window id %q: use hex (0x1a00007) or decimal", s)
	}
	return uint32(v), nil
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	return exitOK
}
