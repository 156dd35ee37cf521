package tree

import (
	"errors"
	"fmt"

	"github.com/1broseidon/casement/internal/platform"
)

// ErrCapacity is returned when a list would have to grow past its limit.
// Callers treat it as fatal.
var ErrCapacity = errors.New("window list capacity exhausted")

// blockSize is the growth and shrink step of a List.
const blockSize = 4

// List is an ordered set of window handles. Index 0 is the front.
//
// Storage grows in blocks of four and shrinks only once usage has dropped a
// full block below capacity, so add/remove cycles at a block edge do not
// reallocate every time.
type List struct {
	items []platform.WindowID
	limit int
}

// NewList returns an empty list. A limit of zero means unbounded.
func NewList(limit int) *List {
	return &List{
		items: make([]platform.WindowID, 0, blockSize),
		limit: limit,
	}
}

// Len returns the number of handles in the list.
func (l *List) Len() int { return len(l.items) }

// Cap returns the current storage capacity.
func (l *List) Cap() int { return cap(l.items) }

// At returns the handle at index i, or None when i is out of range.
func (l *List) At(i int) platform.WindowID {
	if i < 0 || i >= len(l.items) {
		return platform.None
	}
	return l.items[i]
}

// Front returns the first handle, or None when empty.
func (l *List) Front() platform.WindowID { return l.At(0) }

// Index returns the position of id, or -1.
func (l *List) Index(id platform.WindowID) int {
	for i, item := range l.items {
		if item == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is in the list.
func (l *List) Contains(id platform.WindowID) bool { return l.Index(id) >= 0 }

// Items returns a copy of the handles in order.
func (l *List) Items() []platform.WindowID {
	out := make([]platform.WindowID, len(l.items))
	copy(out, l.items)
	return out
}

// Add appends id. Adding a handle already present is a no-op.
func (l *List) Add(id platform.WindowID) error {
	if l.Contains(id) {
		return nil
	}
	if err := l.reserve(); err != nil {
		return err
	}
	l.items = append(l.items, id)
	return nil
}

// Remove deletes id, shifting later entries left. It reports whether id was present.
func (l *List) Remove(id platform.WindowID) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	copy(l.items[i:], l.items[i+1:])
	l.items[len(l.items)-1] = platform.None
	l.items = l.items[:len(l.items)-1]
	l.shrink()
	return true
}

// MoveToFront moves id to index 0, shifting the entries before it down one
// slot. It reports false when id is not in the list.
func (l *List) MoveToFront(id platform.WindowID) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	copy(l.items[1:i+1], l.items[:i])
	l.items[0] = id
	return true
}

// InsertAt places id at index i (clamped to the list bounds). A handle
// already present is left where it is.
func (l *List) InsertAt(i int, id platform.WindowID) error {
	if l.Contains(id) {
		return nil
	}
	if err := l.reserve(); err != nil {
		return err
	}
	if i < 0 {
		i = 0
	}
	if i > len(l.items) {
		i = len(l.items)
	}
	l.items = append(l.items, platform.None)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = id
	return nil
}

// Clear empties the list and releases its storage down to one block.
func (l *List) Clear() {
	l.items = make([]platform.WindowID, 0, blockSize)
}

func (l *List) reserve() error {
	if l.limit > 0 && len(l.items) >= l.limit {
		return fmt.Errorf("list holds %d entries (limit %d): %w", len(l.items), l.limit, ErrCapacity)
	}
	if len(l.items) < cap(l.items) {
		return nil
	}
	grown := make([]platform.WindowID, len(l.items), cap(l.items)+blockSize)
	copy(grown, l.items)
	l.items = grown
	return nil
}

func (l *List) shrink() {
	c := cap(l.items)
	if c <= blockSize || len(l.items) >= c-blockSize {
		return
	}
	shrunk := make([]platform.WindowID, len(l.items), c-blockSize)
	copy(shrunk, l.items)
	l.items = shrunk
}
