package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// None is the zero window handle.
const None WindowID = 0

// CurrentTime is the timestamp placeholder carried by protocol messages.
const CurrentTime uint32 = 0

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ConfigMask selects which geometry fields a Configure call applies.
type ConfigMask uint8

const (
	ConfigX ConfigMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight

	ConfigPosition = ConfigX | ConfigY
	ConfigSize     = ConfigWidth | ConfigHeight
	ConfigAll      = ConfigPosition | ConfigSize
)

// Has reports whether every bit of flag is set.
func (m ConfigMask) Has(flag ConfigMask) bool { return m&flag == flag }

// Interest names the event sets the window manager asks for on a window.
type Interest int

const (
	// InterestClient: property changes, exposure and substructure of a managed client.
	InterestClient Interest = iota
	// InterestFrame: pointer input, exposure and substructure of a frame.
	InterestFrame
)

// ExistingWindow is a top-level window found while enumerating the root at startup.
type ExistingWindow struct {
	ID               WindowID
	Bounds           Rect
	OverrideRedirect bool
	Viewable         bool
}

// Atoms carries the protocol identifiers used to compose close requests.
type Atoms struct {
	Protocols    uint32
	DeleteWindow uint32
}

// ClientMessage is a 32-bit format client message addressed to a window.
type ClientMessage struct {
	Window WindowID
	Type   uint32
	Data   [5]uint32
}

// FrameView is everything a renderer needs to paint one frame.
type FrameView struct {
	Frame      WindowID
	Width      int
	Height     int
	Title      string
	Active     bool
	CloseHover bool
}

// Backend abstracts the display-server operations the window manager issues.
// Calls against windows that have already vanished may fail; callers treat
// those failures as noise because a destroy notification follows.
type Backend interface {
	Root() WindowID
	Screen() Rect
	Atoms() Atoms
	CreateFrame(bounds Rect) (WindowID, error)
	Destroy(id WindowID) error
	Map(id WindowID) error
	Unmap(id WindowID) error
	Reparent(id, parent WindowID, x, y int) error
	Configure(id WindowID, mask ConfigMask, bounds Rect) error
	Raise(id WindowID) error
	SelectInput(id WindowID, interest Interest) error
	Focus(id WindowID) error
	SendMessage(msg ClientMessage) error
	SetWMState(id WindowID, state uint32) error
	// PublishClients advertises the managed clients, topmost first.
	PublishClients(stacking []WindowID) error
	QueryTree() ([]ExistingWindow, error)
	Flush() error
}

// Renderer paints frame decorations.
type Renderer interface {
	PaintFrame(view FrameView) error
}
