package tree

import (
	"unicode/utf8"

	"github.com/1broseidon/casement/internal/platform"
)

// MaxTitleLen is the longest title a node keeps, in bytes.
const MaxTitleLen = 255

// DefaultTitle is the title of a node whose client never named itself.
const DefaultTitle = "untitled"

// Kind identifies what a node represents.
type Kind int

const (
	KindRoot Kind = iota
	KindClient
	KindFrame
	KindGroup
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindClient:
		return "client"
	case KindFrame:
		return "frame"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// WindowState mirrors the ICCCM WM_STATE values.
type WindowState uint32

const (
	StateWithdrawn WindowState = 0
	StateIconic    WindowState = 1
	StateNormal    WindowState = 3
)

// String returns the string representation of the window state
func (s WindowState) String() string {
	switch s {
	case StateWithdrawn:
		return "withdrawn"
	case StateIconic:
		return "iconic"
	case StateNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Management records how the window manager has taken a window in.
type Management int

const (
	ManagementInit Management = iota
	ManagementNoRedirect
	ManagementReparented
	ManagementChild
	ManagementTransient
)

// String returns the string representation of the management state
func (m Management) String() string {
	switch m {
	case ManagementInit:
		return "init"
	case ManagementNoRedirect:
		return "no-redirect"
	case ManagementReparented:
		return "reparented"
	case ManagementChild:
		return "child"
	case ManagementTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Node is one tracked window. Relations to other nodes are handles resolved
// through the Registry that owns them.
type Node struct {
	Kind   Kind
	Window platform.WindowID
	Geom   platform.Rect
	Title  string

	WindowState WindowState
	Management  Management

	// Parent is None only for the root.
	Parent   platform.WindowID
	Children *List

	// ParentMapped tells a real map/unmap apart from the synthetic pair the
	// server generates when a mapped window is reparented.
	ParentMapped bool
}

// NewNode returns a node with an empty child set and default title.
func NewNode(kind Kind, window platform.WindowID, geom platform.Rect, childLimit int) *Node {
	return &Node{
		Kind:        kind,
		Window:      window,
		Geom:        geom,
		Title:       DefaultTitle,
		WindowState: StateWithdrawn,
		Management:  ManagementInit,
		Children:    NewList(childLimit),
	}
}

// SetTitle replaces the title, truncating to MaxTitleLen bytes on a rune boundary.
func (n *Node) SetTitle(title string) {
	n.Title = TruncateTitle(title)
}

// SetManagement moves the node to state m. Returning to Init is refused.
func (n *Node) SetManagement(m Management) bool {
	if m == ManagementInit && n.Management != ManagementInit {
		return false
	}
	n.Management = m
	return true
}

// PrimaryChild returns the first child, which for a frame is its client.
func (n *Node) PrimaryChild() platform.WindowID {
	return n.Children.Front()
}

// TruncateTitle limits s to MaxTitleLen bytes without splitting a rune.
func TruncateTitle(s string) string {
	if len(s) <= MaxTitleLen {
		return s
	}
	cut := MaxTitleLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
