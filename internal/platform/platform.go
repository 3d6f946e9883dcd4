// Package platform queries the desktop for the state the drag session needs:
// the host's own window, the global pointer, and pointer capture.
package platform

import (
	"errors"
	"slices"
	"strings"

	"github.com/tinyrange/multiwin/internal/host"
)

var (
	ErrUnsupported  = errors.New("platform: not supported on this OS")
	ErrNoHostWindow = errors.New("platform: host window not found")
)

// Rect is a screen-space rectangle in pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Inset shrinks r by n on every side. Sizes never go negative.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

type Platform interface {
	// HostWindow returns the frame of the host application's main window.
	// Windows in exclude, the caller's own, are never taken for the host.
	HostWindow(exclude []uintptr) (Rect, error)
	// Pointer returns the pointer in screen coordinates and the held buttons.
	Pointer() (x, y int, buttons host.ButtonMask, err error)
	// Capture routes pointer input to the given native window until Release.
	Capture(native uintptr) error
	Release() error
	Close()
}

// candidate is a top-level window considered for the host window.
type candidate struct {
	id       uintptr
	pid      uint
	class    string
	instance string
}

// pickHost returns the first candidate owned by pid whose class or instance
// matches class (any when class is empty) and which is not excluded.
func pickHost(cands []candidate, pid uint, class string, exclude []uintptr) (uintptr, bool) {
	for _, c := range cands {
		if c.pid != pid || slices.Contains(exclude, c.id) {
			continue
		}
		if class != "" && !strings.EqualFold(c.class, class) && !strings.EqualFold(c.instance, class) {
			continue
		}
		return c.id, true
	}
	return 0, false
}
