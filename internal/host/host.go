// Package host defines the contract between the window manager and the
// application embedding it.
package host

// Handle identifies a window to the host. Zero is the null handle; handles
// are never reused within a manager.
type Handle uint64

// ButtonMask is a set of pressed mouse buttons, using the host's bit layout.
type ButtonMask uint32

const (
	ButtonLeft   ButtonMask = 1
	ButtonMiddle ButtonMask = 2
	ButtonRight  ButtonMask = 4
)

// Bridge receives lifecycle and input notifications. All methods are called
// synchronously from the manager's tick on the host's thread, so they may
// call back into the manager (for example to dispose the window on close).
type Bridge interface {
	// OnMessage receives diagnostics.
	OnMessage(message string)

	// OnClose reports that the user asked to close a window. The window stays
	// registered until the host disposes it.
	OnClose(h Handle)

	// OnResize reports new client dimensions and returns the texture the
	// window should sample from now on. Returning 0 keeps the current one.
	OnResize(h Handle, width, height int) uint32

	// OnMouseUpdate reports the pointer in window coordinates while the
	// window has focus.
	OnMouseUpdate(h Handle, x, y int, buttons ButtonMask)

	// OnMove reports the pointer position while a window is being dragged,
	// and whether it is over the host's own window.
	OnMove(h Handle, x, y int, inside bool)
}

// Callbacks adapts plain functions to Bridge. Any field may be nil.
type Callbacks struct {
	Message     func(message string)
	Close       func(h Handle)
	Resize      func(h Handle, width, height int) uint32
	MouseUpdate func(h Handle, x, y int, buttons ButtonMask)
	Move        func(h Handle, x, y int, inside bool)
}

var _ Bridge = (*Callbacks)(nil)

func (c *Callbacks) OnMessage(message string) {
	if c.Message != nil {
		c.Message(message)
	}
}

func (c *Callbacks) OnClose(h Handle) {
	if c.Close != nil {
		c.Close(h)
	}
}

func (c *Callbacks) OnResize(h Handle, width, height int) uint32 {
	if c.Resize == nil {
		return 0
	}
	return c.Resize(h, width, height)
}

func (c *Callbacks) OnMouseUpdate(h Handle, x, y int, buttons ButtonMask) {
	if c.MouseUpdate != nil {
		c.MouseUpdate(h, x, y, buttons)
	}
}

func (c *Callbacks) OnMove(h Handle, x, y int, inside bool) {
	if c.Move != nil {
		c.Move(h, x, y, inside)
	}
}

// WantsMouse reports whether mouse updates are consumed, letting the manager
// skip sampling input when nobody listens.
func (c *Callbacks) WantsMouse() bool {
	return c.MouseUpdate != nil
}

// MouseListener is implemented by bridges that can opt out of mouse updates.
type MouseListener interface {
	WantsMouse() bool
}

// WantsMouse reports whether b should receive OnMouseUpdate calls.
func WantsMouse(b Bridge) bool {
	if l, ok := b.(MouseListener); ok {
		return l.WantsMouse()
	}
	return true
}
