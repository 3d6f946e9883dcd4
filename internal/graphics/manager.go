// Package graphics presents host textures in auxiliary OS windows that all
// render through the host's own GL context.
package graphics

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tinyrange/multiwin/internal/config"
	glpkg "github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/host"
	"github.com/tinyrange/multiwin/internal/platform"
	"github.com/tinyrange/multiwin/internal/surface"
	"github.com/tinyrange/multiwin/internal/window"
)

var (
	ErrShutdown = errors.New("graphics: manager is shut down")
	ErrNoSystem = errors.New("graphics: window system is required")
	ErrNoBridge = errors.New("graphics: host bridge is required")
)

type Options struct {
	System window.System
	// Platform enables drag sessions and move reports. May be nil.
	Platform platform.Platform
	Bridge   host.Bridge
	// Config defaults to config.Default().
	Config *config.Config
	// Logger defaults to one writing to the bridge's message sink.
	Logger *slog.Logger

	// LoadGL and CurrentContext default to gl.Load and gl.CurrentContext.
	LoadGL         func() (glpkg.OpenGL, error)
	CurrentContext func() (glpkg.Context, error)
}

// Manager owns every auxiliary window and the GL objects they share. It is
// driven from the host's render thread and is not safe for concurrent use.
type Manager struct {
	system   window.System
	platform platform.Platform
	bridge   host.Bridge
	cfg      *config.Config
	log      *slog.Logger

	loadGL         func() (glpkg.OpenGL, error)
	currentContext func() (glpkg.Context, error)

	renderer Renderer
	gl       glpkg.OpenGL
	ctx      glpkg.Context
	surfaces *surface.Registry

	windows []*Window
	next    host.Handle
	drag    *dragSession

	shutdown bool
}

type dragSession struct {
	win     *Window
	offsetX int
	offsetY int
}

func New(opts Options) (*Manager, error) {
	if opts.System == nil {
		return nil, ErrNoSystem
	}
	if opts.Bridge == nil {
		return nil, ErrNoBridge
	}

	m := &Manager{
		system:         opts.System,
		platform:       opts.Platform,
		bridge:         opts.Bridge,
		cfg:            opts.Config,
		log:            opts.Logger,
		loadGL:         opts.LoadGL,
		currentContext: opts.CurrentContext,
		renderer:       RendererNull,
	}
	if m.cfg == nil {
		m.cfg = config.Default()
	}
	if m.log == nil {
		level, err := m.cfg.Log.SlogLevel()
		if err != nil {
			return nil, err
		}
		m.log = slog.New(host.NewHandler(m.bridge, &slog.HandlerOptions{Level: level}))
	}
	if m.loadGL == nil {
		m.loadGL = glpkg.Load
	}
	if m.currentContext == nil {
		m.currentContext = glpkg.CurrentContext
	}
	return m, nil
}

// Ready reports whether the shared context and surface resources are in
// place, so windows will actually draw.
func (m *Manager) Ready() bool {
	return m.ctx != nil && m.surfaces != nil && m.surfaces.Loaded()
}

// Renderer returns the backend reported by the last initialize event.
func (m *Manager) Renderer() Renderer {
	return m.renderer
}

// DeviceEvent handles the host's graphics device lifecycle. It must be called
// on the host's render thread with the host's context current.
func (m *Manager) DeviceEvent(kind DeviceEventKind, r Renderer) {
	switch kind {
	case DeviceInitialize:
		m.renderer = r
		if r != RendererOpenGLCore {
			m.log.Info("renderer cannot share its context, auxiliary windows will not draw", "renderer", r)
			return
		}
		m.initialize()
	case DeviceShutdown:
		if m.renderer != RendererOpenGLCore {
			return
		}
		if m.surfaces != nil {
			m.surfaces.Unload()
		}
		m.ctx = nil
		m.renderer = RendererNull
	}
}

func (m *Manager) initialize() {
	if m.Ready() {
		return
	}

	ctx, err := m.currentContext()
	if err != nil {
		m.log.Error("failed to capture host context", "error", err)
		return
	}
	gl, err := m.loadGL()
	if err != nil {
		m.log.Error("failed to load GL entry points", "error", err)
		return
	}
	m.ctx = ctx
	m.gl = gl

	m.log.Info("sharing host context",
		"vendor", gl.GetString(glpkg.Vendor),
		"renderer", gl.GetString(glpkg.Renderer),
		"version", gl.GetString(glpkg.Version),
	)

	m.surfaces = surface.New(gl)
	if err := m.surfaces.Load(); err != nil {
		m.log.Error("failed to build surface program, windows will draw blank", "error", err)
	}
	m.checkErrors("load", 0)
}

// CreateWindow opens a window showing texture. On failure it returns the
// null handle and the registry is unchanged.
func (m *Manager) CreateWindow(title string, width, height int, resizable bool, texture uint32) (host.Handle, error) {
	if m.shutdown {
		return 0, ErrShutdown
	}

	w := &Window{
		m:         m,
		title:     title,
		width:     width,
		height:    height,
		resizable: resizable,
		texture:   texture,
	}
	if err := w.CreateContext(); err != nil {
		m.log.Error("failed to create window", "title", title, "error", err)
		w.release()
		return 0, err
	}

	m.next++
	w.handle = m.next
	m.windows = append(m.windows, w)

	m.log.Debug("window created", "window", w.handle, "title", title, "width", width, "height", height, "id", w.ID())
	return w.handle, nil
}

// DisposeWindow closes the window and forgets its handle. Null and unknown
// handles are ignored. It may be called from any bridge callback.
func (m *Manager) DisposeWindow(h host.Handle) {
	i := m.index(h)
	if i < 0 {
		return
	}
	w := m.windows[i]
	if m.drag != nil && m.drag.win == w {
		m.endDrag()
	}
	m.windows = slices.Delete(m.windows, i, i+1)
	w.release()
	m.log.Debug("window disposed", "window", h)
}

// UpdateWindows is the per-frame tick. Pending native events are routed to
// their windows, an active drag session is advanced, and then every live
// window renders once in creation order. A window asking to close does not
// stop the others from rendering.
func (m *Manager) UpdateWindows() {
	if m.shutdown {
		return
	}

	for {
		ev, ok := m.system.Poll()
		if !ok {
			break
		}
		m.route(ev)
	}

	m.advanceDrag()

	if !m.Ready() {
		return
	}

	// Callbacks run inside Render may dispose windows, so iterate a copy and
	// let Render skip anything released along the way.
	touched := false
	for _, w := range slices.Clone(m.windows) {
		if w.Render() {
			touched = true
		}
	}
	if touched {
		if err := m.ctx.Restore(); err != nil {
			m.log.Warn("failed to restore host context", "error", err)
		}
	}
}

func (m *Manager) route(ev window.Event) {
	for _, w := range m.windows {
		if w.disposed || w.ID() != ev.WindowID {
			continue
		}
		w.HandleEvent(ev)
		return
	}
	m.log.Debug("dropping event for unknown window", "id", ev.WindowID, "kind", ev.Kind)
}

func (m *Manager) SetWindowPosition(h host.Handle, x, y int) {
	if w := m.Window(h); w != nil {
		w.SetPosition(x, y)
	}
}

// DragWindow moves the window with the pointer, keeping the grab offset,
// until the left button is released. Starting a drag ends any previous one.
func (m *Manager) DragWindow(h host.Handle) {
	w := m.Window(h)
	if w == nil {
		return
	}
	if m.platform == nil {
		m.log.Warn("window drag is not available on this platform", "window", h)
		return
	}
	m.endDrag()

	px, py, _, err := m.platform.Pointer()
	if err != nil {
		m.log.Warn("failed to read pointer for drag", "window", h, "error", err)
		return
	}
	wx, wy := w.native.Position()
	if err := m.platform.Capture(w.native.NativeHandle()); err != nil {
		m.log.Warn("failed to capture pointer, dragging without capture", "window", h, "error", err)
	}

	m.drag = &dragSession{win: w, offsetX: px - wx, offsetY: py - wy}
	w.dragging = true
}

func (m *Manager) advanceDrag() {
	d := m.drag
	if d == nil {
		return
	}
	if d.win.disposed {
		m.endDrag()
		return
	}

	px, py, buttons, err := m.platform.Pointer()
	if err != nil {
		m.log.Warn("failed to read pointer, ending drag", "window", d.win.handle, "error", err)
		m.endDrag()
		return
	}
	if buttons&host.ButtonLeft != 0 {
		d.win.native.SetPosition(px-d.offsetX, py-d.offsetY)
		return
	}

	m.endDrag()
	// Final report so the host can decide where the window was dropped.
	m.reportMove(d.win)
}

func (m *Manager) endDrag() {
	d := m.drag
	if d == nil {
		return
	}
	m.drag = nil
	d.win.dragging = false
	if err := m.platform.Release(); err != nil {
		m.log.Warn("failed to release pointer capture", "error", err)
	}
}

// reportMove tells the host where the pointer is and whether it is over the
// host window, shrunk by the configured inset.
func (m *Manager) reportMove(w *Window) {
	if m.platform == nil || w.disposed {
		return
	}
	x, y, _, err := m.platform.Pointer()
	if err != nil {
		m.log.Warn("failed to read pointer", "window", w.handle, "error", err)
		return
	}
	inside := false
	if r, err := m.platform.HostWindow(m.nativeHandles()); err != nil {
		m.log.Debug("host window unavailable, reporting outside", "error", err)
	} else {
		inside = r.Inset(m.cfg.Drag.Inset).Contains(x, y)
	}
	m.bridge.OnMove(w.handle, x, y, inside)
}

// nativeHandles lists the OS windows of every live window so the host lookup
// never settles on one of them.
func (m *Manager) nativeHandles() []uintptr {
	out := make([]uintptr, 0, len(m.windows))
	for _, w := range m.windows {
		if w.native != nil {
			out = append(out, w.native.NativeHandle())
		}
	}
	return out
}

// checkErrors drains the GL error queue into the log.
func (m *Manager) checkErrors(op string, h host.Handle) {
	if m.gl == nil {
		return
	}
	// Bounded: without a current context some drivers report an error forever.
	for i := 0; i < 16; i++ {
		code := m.gl.GetError()
		if code == glpkg.NoError {
			return
		}
		m.log.Debug("GL error", "op", op, "window", h, "code", fmt.Sprintf("%#x", code))
	}
}

// Window returns the live window for h, or nil.
func (m *Manager) Window(h host.Handle) *Window {
	if i := m.index(h); i >= 0 {
		return m.windows[i]
	}
	return nil
}

func (m *Manager) index(h host.Handle) int {
	if h == 0 {
		return -1
	}
	return slices.IndexFunc(m.windows, func(w *Window) bool { return w.handle == h })
}

func (m *Manager) Len() int {
	return len(m.windows)
}

// Handles lists live windows in creation order.
func (m *Manager) Handles() []host.Handle {
	out := make([]host.Handle, len(m.windows))
	for i, w := range m.windows {
		out[i] = w.handle
	}
	return out
}

// Shutdown releases every window and the native backends. Surface resources
// belong to the device lifecycle and are released by DeviceShutdown.
func (m *Manager) Shutdown() {
	if m.shutdown {
		return
	}
	m.endDrag()
	for _, w := range m.windows {
		w.release()
	}
	m.windows = nil
	m.system.Close()
	if m.platform != nil {
		m.platform.Close()
	}
	m.shutdown = true
}
