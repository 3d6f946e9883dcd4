// Package sdlwin implements window.System on SDL2.
package sdlwin

import (
	"fmt"
	"runtime"

	"github.com/tinyrange/multiwin/internal/config"
	"github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/host"
	"github.com/tinyrange/multiwin/internal/window"
	"github.com/veandco/go-sdl2/sdl"
)

type System struct {
	closed bool
}

var _ window.System = (*System)(nil)

// New initialises the SDL video subsystem and sets the GL attributes every
// auxiliary window is created with. The calling goroutine is locked to its
// OS thread, which must be the host's rendering thread.
func New(cfg config.GL) (*System, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	doubleBuffer := 0
	if cfg.DoubleBuffer {
		doubleBuffer = 1
	}
	attrs := []struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_CONTEXT_MAJOR_VERSION, cfg.Major},
		{sdl.GL_CONTEXT_MINOR_VERSION, cfg.Minor},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
		{sdl.GL_DEPTH_SIZE, cfg.DepthBits},
		{sdl.GL_STENCIL_SIZE, cfg.StencilBits},
		{sdl.GL_RED_SIZE, cfg.ColorBits},
		{sdl.GL_GREEN_SIZE, cfg.ColorBits},
		{sdl.GL_BLUE_SIZE, cfg.ColorBits},
		{sdl.GL_ALPHA_SIZE, cfg.AlphaBits},
		{sdl.GL_DOUBLEBUFFER, doubleBuffer},
	}
	for _, a := range attrs {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("SDL_GL_SetAttribute(%d) failed: %w", a.attr, err)
		}
	}

	return &System{}, nil
}

func (s *System) New(opts window.Options) (window.Window, error) {
	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_SHOWN)
	if opts.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}

	win, err := sdl.CreateWindow(
		opts.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(opts.Width),
		int32(opts.Height),
		flags,
	)
	if err != nil {
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	id, err := win.GetID()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("SDL_GetWindowID failed: %w", err)
	}

	info, err := win.GetWMInfo()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("SDL_GetWindowWMInfo failed: %w", err)
	}

	native, surface, err := nativeSurface(info)
	if err != nil {
		win.Destroy()
		return nil, err
	}

	return &Window{win: win, id: id, native: native, surface: surface}, nil
}

func (s *System) Poll() (window.Event, bool) {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return window.Event{}, false
		}
		we, ok := ev.(*sdl.WindowEvent)
		if !ok {
			continue
		}
		if out, ok := translate(we); ok {
			return out, true
		}
	}
}

func translate(we *sdl.WindowEvent) (window.Event, bool) {
	out := window.Event{WindowID: we.WindowID, X: int(we.Data1), Y: int(we.Data2)}
	switch we.Event {
	case sdl.WINDOWEVENT_SIZE_CHANGED:
		out.Kind = window.EventSizeChanged
	case sdl.WINDOWEVENT_MOVED:
		out.Kind = window.EventMoved
	case sdl.WINDOWEVENT_FOCUS_GAINED:
		out.Kind = window.EventFocusGained
	case sdl.WINDOWEVENT_FOCUS_LOST:
		out.Kind = window.EventFocusLost
	case sdl.WINDOWEVENT_CLOSE:
		out.Kind = window.EventClose
	default:
		return window.Event{}, false
	}
	return out, true
}

func (s *System) Mouse() (int, int, host.ButtonMask) {
	x, y, state := sdl.GetMouseState()
	var buttons host.ButtonMask
	if state&buttonMask(sdl.BUTTON_LEFT) != 0 {
		buttons |= host.ButtonLeft
	}
	if state&buttonMask(sdl.BUTTON_MIDDLE) != 0 {
		buttons |= host.ButtonMiddle
	}
	if state&buttonMask(sdl.BUTTON_RIGHT) != 0 {
		buttons |= host.ButtonRight
	}
	return int(x), int(y), buttons
}

func buttonMask(button uint32) uint32 {
	return 1 << (button - 1)
}

// Close shuts SDL down. Windows must already be closed.
func (s *System) Close() {
	if s.closed {
		return
	}
	s.closed = true
	sdl.Quit()
}

type Window struct {
	win     *sdl.Window
	id      uint32
	native  uintptr
	surface gl.Surface
}

var _ window.Window = (*Window)(nil)

func (w *Window) ID() uint32            { return w.id }
func (w *Window) Surface() gl.Surface   { return w.surface }
func (w *Window) NativeHandle() uintptr { return w.native }

func (w *Window) Position() (int, int) {
	x, y := w.win.GetPosition()
	return int(x), int(y)
}

func (w *Window) SetPosition(x, y int) {
	w.win.SetPosition(int32(x), int32(y))
}

func (w *Window) Close() {
	if w.win == nil {
		return
	}
	releaseSurface(w.native, w.surface)
	w.win.Destroy()
	w.win = nil
}
