// Package window abstracts the native windowing system that hosts the
// auxiliary windows.
package window

import (
	"github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/host"
)

type Options struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

type EventKind int

const (
	EventSizeChanged EventKind = iota + 1
	EventMoved
	EventFocusGained
	EventFocusLost
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventSizeChanged:
		return "size-changed"
	case EventMoved:
		return "moved"
	case EventFocusGained:
		return "focus-gained"
	case EventFocusLost:
		return "focus-lost"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// Event is a window-scoped notification. X and Y carry the new size for
// EventSizeChanged and the new position for EventMoved.
type Event struct {
	Kind     EventKind
	WindowID uint32
	X, Y     int
}

type Window interface {
	// ID is the identifier carried by this window's events.
	ID() uint32
	// Surface is the drawable the shared context is bound to when rendering.
	Surface() gl.Surface
	// NativeHandle is the OS window handle (XID or HWND).
	NativeHandle() uintptr
	Position() (x, y int)
	SetPosition(x, y int)
	Close()
}

type System interface {
	New(opts Options) (Window, error)
	// Poll returns the next pending window event. It never blocks.
	Poll() (Event, bool)
	// Mouse returns the pointer relative to the focused window.
	Mouse() (x, y int, buttons host.ButtonMask)
	Close()
}
