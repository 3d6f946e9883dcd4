package graphics

import (
	"fmt"

	glpkg "github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/host"
	"github.com/tinyrange/multiwin/internal/window"
)

// Window is one auxiliary OS window presenting a host texture. Windows are
// owned by their Manager and only reachable through it.
type Window struct {
	m *Manager

	handle    host.Handle
	title     string
	width     int
	height    int
	resizable bool
	texture   uint32

	native   window.Window
	focused  bool
	dragging bool
	disposed bool

	// Set after a failed MakeCurrent so the warning is logged once.
	surfaceLost bool
}

func (w *Window) Handle() host.Handle { return w.handle }
func (w *Window) Title() string       { return w.title }
func (w *Window) Resizable() bool     { return w.resizable }
func (w *Window) Texture() uint32     { return w.texture }
func (w *Window) Focused() bool       { return w.focused }
func (w *Window) Dragging() bool      { return w.dragging }
func (w *Window) Disposed() bool      { return w.disposed }

func (w *Window) Size() (width, height int) {
	return w.width, w.height
}

// ID returns the native identifier events for this window carry, or 0 before
// CreateContext.
func (w *Window) ID() uint32 {
	if w.native == nil {
		return 0
	}
	return w.native.ID()
}

// CreateContext opens the OS window and acquires its drawable. On failure the
// window must be discarded.
func (w *Window) CreateContext() error {
	if w.native != nil {
		return nil
	}
	if w.width <= 0 || w.height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	native, err := w.m.system.New(window.Options{
		Title:     w.title,
		Width:     w.width,
		Height:    w.height,
		Resizable: w.resizable,
	})
	if err != nil {
		return fmt.Errorf("create window %q: %w", w.title, err)
	}
	w.native = native
	return nil
}

// Render draws the window's texture over its whole client area using the
// host's shared context, then waits for the GPU. It reports whether the
// host's drawable binding was touched and needs restoring.
func (w *Window) Render() bool {
	m := w.m
	if w.disposed || w.native == nil || !m.Ready() {
		return false
	}

	if w.focused && host.WantsMouse(m.bridge) {
		x, y, buttons := m.system.Mouse()
		m.bridge.OnMouseUpdate(w.handle, x, y, buttons)
		if w.disposed {
			return false
		}
	}

	surface := w.native.Surface()
	if err := m.ctx.MakeCurrent(surface); err != nil {
		if !w.surfaceLost {
			m.log.Warn("failed to make shared context current", "window", w.handle, "error", err)
			w.surfaceLost = true
		}
		return true
	}
	w.surfaceLost = false

	gl := m.gl
	m.surfaces.Bind()
	gl.ActiveTexture(glpkg.Texture0)
	gl.BindTexture(glpkg.Texture2D, w.texture)
	gl.TexParameteri(glpkg.Texture2D, glpkg.TextureWrapS, glpkg.ClampToEdge)
	gl.TexParameteri(glpkg.Texture2D, glpkg.TextureWrapT, glpkg.ClampToEdge)
	gl.TexParameteri(glpkg.Texture2D, glpkg.TextureMinFilter, glpkg.Linear)
	gl.TexParameteri(glpkg.Texture2D, glpkg.TextureMagFilter, glpkg.Linear)
	gl.Viewport(0, 0, int32(w.width), int32(w.height))
	m.surfaces.Draw()

	m.ctx.Swap(surface)
	gl.Finish()
	m.checkErrors("render", w.handle)
	return true
}

// HandleEvent applies one native event addressed to this window.
func (w *Window) HandleEvent(ev window.Event) {
	m := w.m
	switch ev.Kind {
	case window.EventSizeChanged:
		w.width, w.height = ev.X, ev.Y
		if tex := m.bridge.OnResize(w.handle, w.width, w.height); tex != 0 {
			w.texture = tex
		} else {
			m.log.Debug("resize returned no texture, keeping previous", "window", w.handle, "texture", w.texture)
		}
	case window.EventFocusGained:
		w.focused = true
	case window.EventFocusLost:
		w.focused = false
	case window.EventMoved:
		if w.dragging {
			m.reportMove(w)
		}
	case window.EventClose:
		m.bridge.OnClose(w.handle)
	}
}

// SetPosition moves the OS window so its top-left corner is at x, y in
// screen coordinates.
func (w *Window) SetPosition(x, y int) {
	if w.disposed || w.native == nil {
		return
	}
	w.native.SetPosition(x, y)
}

// Drag starts a drag session that moves this window with the pointer until
// the left button is released.
func (w *Window) Drag() {
	w.m.DragWindow(w.handle)
}

// release closes the OS window. Shared surface resources are untouched.
func (w *Window) release() {
	if w.disposed {
		return
	}
	w.disposed = true
	w.focused = false
	w.dragging = false
	if w.native != nil {
		w.native.Close()
	}
}
