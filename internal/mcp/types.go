package mcp

// StatusInput is the input for the wm_status tool.
type StatusInput struct{}

// StatusOutput is the output for the wm_status tool.
type StatusOutput struct {
	PID           int    `json:"pid"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Screen        string `json:"screen"`
	Windows       int    `json:"windows"`
	Frames        int    `json:"frames"`
	Focused       string `json:"focused,omitempty"`
	Interaction   string `json:"interaction"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Title string `json:"title,omitempty" jsonschema:"Optional case-insensitive substring to filter window titles"`
}

// WindowInfo describes one managed window.
type WindowInfo struct {
	Window  string `json:"window" jsonschema:"Client window id in hex, usable with raise_window and close_window"`
	Frame   string `json:"frame,omitempty"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	State   string `json:"state"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Focused bool   `json:"focused"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowInput names a window for raise_window and close_window.
type WindowInput struct {
	Window string `json:"window" jsonschema:"required,Window id as hex (0x1a00007) or decimal, from list_windows"`
}

// WindowOutput is the output for raise_window and close_window.
type WindowOutput struct {
	Window string `json:"window"`
	Done   bool   `json:"done"`
}

// ReloadInput is the input for the reload_config tool.
type ReloadInput struct{}
