package graphics

import (
	"errors"
	"testing"

	"github.com/tinyrange/multiwin/internal/config"
	glpkg "github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/gl/gltest"
	"github.com/tinyrange/multiwin/internal/host"
	"github.com/tinyrange/multiwin/internal/platform"
	"github.com/tinyrange/multiwin/internal/window"
)

type fakeWindow struct {
	id     uint32
	opts   window.Options
	x, y   int
	closed int
	moves  [][2]int
}

func (w *fakeWindow) ID() uint32             { return w.id }
func (w *fakeWindow) Surface() glpkg.Surface { return surfaceFor(w.id) }
func (w *fakeWindow) NativeHandle() uintptr  { return uintptr(0x1000 + w.id) }
func (w *fakeWindow) Position() (int, int)   { return w.x, w.y }
func (w *fakeWindow) Close()                 { w.closed++ }
func (w *fakeWindow) SetPosition(x, y int) {
	w.x, w.y = x, y
	w.moves = append(w.moves, [2]int{x, y})
}

func surfaceFor(id uint32) glpkg.Surface {
	return glpkg.Surface(0x100 + id)
}

type fakeSystem struct {
	windows []*fakeWindow
	events  []window.Event
	nextID  uint32
	failNew bool
	closed  int

	mouseX, mouseY int
	buttons        host.ButtonMask
	mouseReads     int
}

func (s *fakeSystem) New(opts window.Options) (window.Window, error) {
	if s.failNew {
		return nil, errors.New("no more windows")
	}
	s.nextID++
	w := &fakeWindow{id: s.nextID, opts: opts}
	s.windows = append(s.windows, w)
	return w, nil
}

func (s *fakeSystem) Poll() (window.Event, bool) {
	if len(s.events) == 0 {
		return window.Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}

func (s *fakeSystem) Mouse() (int, int, host.ButtonMask) {
	s.mouseReads++
	return s.mouseX, s.mouseY, s.buttons
}

func (s *fakeSystem) Close() { s.closed++ }

func (s *fakeSystem) push(ev window.Event) {
	s.events = append(s.events, ev)
}

type fakePlatform struct {
	x, y    int
	buttons host.ButtonMask
	host    platform.Rect
	hostErr error

	captured []uintptr
	excluded []uintptr
	released int
	closed   int
}

func (p *fakePlatform) HostWindow(exclude []uintptr) (platform.Rect, error) {
	p.excluded = exclude
	return p.host, p.hostErr
}

func (p *fakePlatform) Pointer() (int, int, host.ButtonMask, error) {
	return p.x, p.y, p.buttons, nil
}

func (p *fakePlatform) Capture(native uintptr) error {
	p.captured = append(p.captured, native)
	return nil
}

func (p *fakePlatform) Release() error {
	p.released++
	return nil
}

func (p *fakePlatform) Close() { p.closed++ }

type resizeCall struct {
	h             host.Handle
	width, height int
}

type moveCall struct {
	h      host.Handle
	x, y   int
	inside bool
}

type recordingBridge struct {
	messages []string
	closes   []host.Handle
	resizes  []resizeCall
	mice     []host.Handle
	moves    []moveCall

	resizeTexture uint32
	onClose       func(h host.Handle)
	onMouse       func(h host.Handle)
}

func (b *recordingBridge) OnMessage(message string) {
	b.messages = append(b.messages, message)
}

func (b *recordingBridge) OnClose(h host.Handle) {
	b.closes = append(b.closes, h)
	if b.onClose != nil {
		b.onClose(h)
	}
}

func (b *recordingBridge) OnResize(h host.Handle, width, height int) uint32 {
	b.resizes = append(b.resizes, resizeCall{h, width, height})
	return b.resizeTexture
}

func (b *recordingBridge) OnMouseUpdate(h host.Handle, x, y int, buttons host.ButtonMask) {
	b.mice = append(b.mice, h)
	if b.onMouse != nil {
		b.onMouse(h)
	}
}

func (b *recordingBridge) OnMove(h host.Handle, x, y int, inside bool) {
	b.moves = append(b.moves, moveCall{h, x, y, inside})
}

type harness struct {
	m        *Manager
	rec      *gltest.Recorder
	ctx      *gltest.Context
	system   *fakeSystem
	platform *fakePlatform
	bridge   *recordingBridge
}

// newHarness builds a manager over fakes. The device is initialised unless
// the test asks otherwise.
func newHarness(t *testing.T, initialize bool) *harness {
	t.Helper()

	h := &harness{
		rec:      gltest.New(),
		system:   &fakeSystem{},
		platform: &fakePlatform{host: platform.Rect{X: 0, Y: 0, Width: 800, Height: 600}},
		bridge:   &recordingBridge{},
	}
	h.ctx = gltest.NewContext(h.rec)

	cfg := config.Default()
	cfg.Log.Level = "debug"

	m, err := New(Options{
		System:         h.system,
		Platform:       h.platform,
		Bridge:         h.bridge,
		Config:         cfg,
		LoadGL:         func() (glpkg.OpenGL, error) { return h.rec, nil },
		CurrentContext: func() (glpkg.Context, error) { return h.ctx, nil },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.m = m

	if initialize {
		m.DeviceEvent(DeviceInitialize, RendererOpenGLCore)
		if !m.Ready() {
			t.Fatal("manager not ready after initialize")
		}
		h.rec.Reset()
	}
	return h
}

func (h *harness) create(t *testing.T, title string, width, height int, resizable bool, texture uint32) host.Handle {
	t.Helper()
	handle, err := h.m.CreateWindow(title, width, height, resizable, texture)
	if err != nil {
		t.Fatalf("CreateWindow(%q) failed: %v", title, err)
	}
	if handle == 0 {
		t.Fatalf("CreateWindow(%q) returned the null handle", title)
	}
	return handle
}

// nativeOf returns the fake OS window backing handle.
func (h *harness) nativeOf(t *testing.T, handle host.Handle) *fakeWindow {
	t.Helper()
	w := h.m.Window(handle)
	if w == nil {
		t.Fatalf("window %d not registered", handle)
	}
	return w.native.(*fakeWindow)
}
