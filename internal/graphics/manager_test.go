package graphics

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/tinyrange/multiwin/internal/config"
	glpkg "github.com/tinyrange/multiwin/internal/gl"
	"github.com/tinyrange/multiwin/internal/gl/gltest"
	"github.com/tinyrange/multiwin/internal/host"
	"github.com/tinyrange/multiwin/internal/window"
)

func renders(rec *gltest.Recorder, w *fakeWindow) int {
	return rec.Count(fmt.Sprintf("MakeCurrent(%d)", surfaceFor(w.id)))
}

func TestCreateDisposeTickRendersSurvivorOnly(t *testing.T) {
	h := newHarness(t, true)

	a := h.create(t, "A", 800, 600, true, 1)
	b := h.create(t, "B", 400, 300, false, 2)
	if h.m.Len() != 2 {
		t.Fatalf("expected 2 windows, got %d", h.m.Len())
	}
	nativeA := h.nativeOf(t, a)
	nativeB := h.nativeOf(t, b)
	if !nativeA.opts.Resizable || nativeB.opts.Resizable {
		t.Fatalf("resizable flags not passed through: A=%v B=%v", nativeA.opts.Resizable, nativeB.opts.Resizable)
	}

	h.m.DisposeWindow(a)
	if h.m.Len() != 1 {
		t.Fatalf("expected 1 window after dispose, got %d", h.m.Len())
	}
	if got := h.m.Handles(); !slices.Equal(got, []host.Handle{b}) {
		t.Fatalf("expected only B registered, got %v", got)
	}
	if nativeA.closed != 1 {
		t.Fatalf("expected A's OS window closed once, got %d", nativeA.closed)
	}

	h.m.UpdateWindows()

	if got := renders(h.rec, nativeB); got != 1 {
		t.Errorf("expected B rendered once, got %d", got)
	}
	if got := renders(h.rec, nativeA); got != 0 {
		t.Errorf("expected A not rendered, got %d", got)
	}
	if got := h.rec.Count("DrawElements("); got != 1 {
		t.Errorf("expected 1 draw, got %d", got)
	}
	if got := h.rec.Count("Restore()"); got != 1 {
		t.Errorf("expected host context restored once, got %d", got)
	}
}

func TestRenderSequence(t *testing.T) {
	h := newHarness(t, true)
	b := h.create(t, "B", 400, 300, false, 7)
	native := h.nativeOf(t, b)

	h.m.UpdateWindows()

	want := []string{
		fmt.Sprintf("MakeCurrent(%d)", native.Surface()),
		"ActiveTexture(0x84c0)",
		"BindTexture(0xde1, 7)",
		"TexParameteri(0xde1, 0x2802, 0x812f)",
		"TexParameteri(0xde1, 0x2803, 0x812f)",
		"TexParameteri(0xde1, 0x2801, 0x2601)",
		"TexParameteri(0xde1, 0x2800, 0x2601)",
		"Viewport(0, 0, 400, 300)",
		"DrawElements(0x4, 6, 0x1405, 0)",
		fmt.Sprintf("Swap(%d)", native.Surface()),
		"Finish()",
		"Restore()",
	}
	var got []string
	for _, c := range h.rec.Calls {
		if slices.Contains(want, c) {
			got = append(got, c)
		}
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected render order:\n got %v\nwant %v", got, want)
	}
}

func TestRegistrySizeTracksCreatesAndDisposes(t *testing.T) {
	h := newHarness(t, true)

	var live []host.Handle
	for i := 0; i < 4; i++ {
		live = append(live, h.create(t, fmt.Sprintf("w%d", i), 100, 100, true, 0))
	}

	h.system.failNew = true
	if handle, err := h.m.CreateWindow("broken", 100, 100, false, 0); err == nil || handle != 0 {
		t.Fatalf("expected failed create, got handle %d err %v", handle, err)
	}
	h.system.failNew = false

	h.m.DisposeWindow(live[1])
	h.m.DisposeWindow(live[1])
	h.m.DisposeWindow(0)
	h.m.DisposeWindow(999)

	if h.m.Len() != 3 {
		t.Fatalf("expected 3 windows, got %d", h.m.Len())
	}
	want := []host.Handle{live[0], live[2], live[3]}
	if got := h.m.Handles(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	h.create(t, "again", 100, 100, false, 0)
	if h.m.Len() != 4 {
		t.Fatalf("expected 4 windows, got %d", h.m.Len())
	}
}

func TestHandlesAreNotReused(t *testing.T) {
	h := newHarness(t, true)

	a := h.create(t, "A", 100, 100, false, 0)
	h.m.DisposeWindow(a)
	b := h.create(t, "B", 100, 100, false, 0)
	if a == b {
		t.Fatalf("handle %d reused", a)
	}
	if h.m.Window(a) != nil {
		t.Fatal("disposed handle still resolves")
	}
}

func TestCreateFailureIsReportedToMessageSink(t *testing.T) {
	h := newHarness(t, true)
	h.system.failNew = true

	handle, err := h.m.CreateWindow("A", 800, 600, true, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if handle != 0 {
		t.Fatalf("expected null handle, got %d", handle)
	}
	if h.m.Len() != 0 {
		t.Fatalf("failed window registered")
	}
	found := slices.ContainsFunc(h.bridge.messages, func(m string) bool {
		return strings.Contains(m, "failed to create window")
	})
	if !found {
		t.Fatalf("expected failure in message sink, got %q", h.bridge.messages)
	}
}

func TestCreateRejectsEmptySize(t *testing.T) {
	h := newHarness(t, true)

	if _, err := h.m.CreateWindow("A", 0, 600, true, 0); err == nil {
		t.Fatal("expected zero width to fail")
	}
	if len(h.system.windows) != 0 {
		t.Fatal("OS window created for invalid size")
	}
}

func TestResizeUpdatesSizeAndTexture(t *testing.T) {
	h := newHarness(t, true)
	b := h.create(t, "B", 400, 300, true, 2)
	native := h.nativeOf(t, b)
	h.bridge.resizeTexture = 42

	h.system.push(window.Event{Kind: window.EventSizeChanged, WindowID: native.id, X: 1024, Y: 768})
	h.m.UpdateWindows()

	w := h.m.Window(b)
	if width, height := w.Size(); width != 1024 || height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", width, height)
	}
	if want := []resizeCall{{b, 1024, 768}}; !slices.Equal(h.bridge.resizes, want) {
		t.Errorf("expected resize callbacks %v, got %v", want, h.bridge.resizes)
	}
	if w.Texture() != 42 {
		t.Errorf("expected texture 42, got %d", w.Texture())
	}
	if h.rec.Count("BindTexture(0xde1, 42)") != 1 || h.rec.Count("Viewport(0, 0, 1024, 768)") != 1 {
		t.Errorf("frame not drawn with new texture and size: %v", h.rec.Calls)
	}
}

func TestResizeWithoutTextureKeepsPrevious(t *testing.T) {
	h := newHarness(t, true)
	b := h.create(t, "B", 400, 300, true, 9)
	native := h.nativeOf(t, b)

	h.system.push(window.Event{Kind: window.EventSizeChanged, WindowID: native.id, X: 640, Y: 480})
	h.m.UpdateWindows()

	if got := h.m.Window(b).Texture(); got != 9 {
		t.Fatalf("expected texture 9 kept, got %d", got)
	}
}

func TestUnknownWindowEventsAreDropped(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 800, 600, true, 1)

	for _, kind := range []window.EventKind{
		window.EventSizeChanged,
		window.EventMoved,
		window.EventFocusGained,
		window.EventClose,
	} {
		h.system.push(window.Event{Kind: kind, WindowID: 999, X: 1, Y: 1})
	}
	h.m.UpdateWindows()

	w := h.m.Window(a)
	if width, height := w.Size(); width != 800 || height != 600 {
		t.Errorf("size changed to %dx%d", width, height)
	}
	if w.Focused() {
		t.Error("focus changed by foreign event")
	}
	if len(h.bridge.resizes) != 0 || len(h.bridge.closes) != 0 || len(h.bridge.moves) != 0 {
		t.Errorf("callbacks fired for unknown window: %+v", h.bridge)
	}
}

func TestCloseReportsOnceAndKeepsWindow(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 800, 600, true, 1)
	b := h.create(t, "B", 400, 300, false, 2)

	h.system.push(window.Event{Kind: window.EventClose, WindowID: h.nativeOf(t, a).id})
	h.m.UpdateWindows()

	if !slices.Equal(h.bridge.closes, []host.Handle{a}) {
		t.Fatalf("expected one close for A, got %v", h.bridge.closes)
	}
	if h.m.Window(a) == nil {
		t.Fatal("A removed without an explicit dispose")
	}
	// Closure does not stop other windows from rendering.
	if renders(h.rec, h.nativeOf(t, a)) != 1 || renders(h.rec, h.nativeOf(t, b)) != 1 {
		t.Fatalf("expected both windows rendered, calls %v", h.rec.Calls)
	}
}

func TestDisposeInsideCloseCallback(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 800, 600, true, 1)
	b := h.create(t, "B", 400, 300, false, 2)
	nativeA := h.nativeOf(t, a)
	nativeB := h.nativeOf(t, b)
	h.bridge.onClose = h.m.DisposeWindow

	h.system.push(window.Event{Kind: window.EventClose, WindowID: nativeA.id})
	h.system.push(window.Event{Kind: window.EventSizeChanged, WindowID: nativeA.id, X: 10, Y: 10})
	h.system.push(window.Event{Kind: window.EventFocusGained, WindowID: nativeB.id})
	h.m.UpdateWindows()

	if h.m.Len() != 1 || h.m.Window(b) == nil {
		t.Fatalf("expected only B left, got %v", h.m.Handles())
	}
	if nativeA.closed != 1 {
		t.Fatalf("expected A closed once, got %d", nativeA.closed)
	}
	if len(h.bridge.resizes) != 0 {
		t.Fatalf("event for disposed window delivered: %v", h.bridge.resizes)
	}
	if !h.m.Window(b).Focused() {
		t.Fatal("events after the dispose were not routed")
	}
	if renders(h.rec, nativeA) != 0 || renders(h.rec, nativeB) != 1 {
		t.Fatalf("unexpected renders: %v", h.rec.Calls)
	}
}

func TestDisposeDuringRenderSkipsWindow(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 800, 600, true, 1)
	b := h.create(t, "B", 400, 300, false, 2)
	nativeB := h.nativeOf(t, b)

	// A's mouse report disposes B, which has not rendered yet this tick.
	h.system.push(window.Event{Kind: window.EventFocusGained, WindowID: h.nativeOf(t, a).id})
	h.bridge.onMouse = func(host.Handle) { h.m.DisposeWindow(b) }
	h.m.UpdateWindows()

	if renders(h.rec, nativeB) != 0 {
		t.Fatalf("disposed window rendered: %v", h.rec.Calls)
	}
	if h.rec.Count("DrawElements(") != 1 {
		t.Fatalf("expected only A drawn, calls %v", h.rec.Calls)
	}
}

func TestMouseUpdatesOnlyWhileFocused(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 800, 600, true, 1)
	h.create(t, "B", 400, 300, false, 2)
	id := h.nativeOf(t, a).id

	h.m.UpdateWindows()
	if len(h.bridge.mice) != 0 {
		t.Fatalf("mouse reported without focus: %v", h.bridge.mice)
	}

	h.system.push(window.Event{Kind: window.EventFocusGained, WindowID: id})
	h.m.UpdateWindows()
	if !slices.Equal(h.bridge.mice, []host.Handle{a}) {
		t.Fatalf("expected one report for A, got %v", h.bridge.mice)
	}

	h.system.push(window.Event{Kind: window.EventFocusLost, WindowID: id})
	h.m.UpdateWindows()
	if len(h.bridge.mice) != 1 {
		t.Fatalf("mouse reported after focus lost: %v", h.bridge.mice)
	}
}

func TestMouseSkippedWhenBridgeOptsOut(t *testing.T) {
	system := &fakeSystem{}
	rec := gltest.New()
	ctx := gltest.NewContext(rec)
	m, err := New(Options{
		System:         system,
		Bridge:         &host.Callbacks{},
		LoadGL:         func() (glpkg.OpenGL, error) { return rec, nil },
		CurrentContext: func() (glpkg.Context, error) { return ctx, nil },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m.DeviceEvent(DeviceInitialize, RendererOpenGLCore)
	if _, err := m.CreateWindow("A", 100, 100, false, 1); err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}

	system.push(window.Event{Kind: window.EventFocusGained, WindowID: 1})
	m.UpdateWindows()
	if system.mouseReads != 0 {
		t.Fatalf("mouse sampled with no listener: %d reads", system.mouseReads)
	}
}

func TestMakeCurrentFailureSkipsWindowAndWarnsOnce(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 800, 600, true, 1)
	h.create(t, "B", 400, 300, false, 2)
	h.ctx.Fail[h.nativeOf(t, a).Surface()] = true

	h.m.UpdateWindows()
	h.m.UpdateWindows()

	if got := h.rec.Count("DrawElements("); got != 2 {
		t.Fatalf("expected B drawn twice, got %d draws", got)
	}
	warnings := 0
	for _, m := range h.bridge.messages {
		if strings.Contains(m, "failed to make shared context current") {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("expected one warning, got %d in %q", warnings, h.bridge.messages)
	}
}

func TestNothingRendersBeforeInitialize(t *testing.T) {
	h := newHarness(t, false)
	a := h.create(t, "A", 800, 600, true, 1)

	h.system.push(window.Event{Kind: window.EventClose, WindowID: h.nativeOf(t, a).id})
	h.m.UpdateWindows()

	if len(h.rec.Calls) != 0 {
		t.Fatalf("GL used before initialize: %v", h.rec.Calls)
	}
	if len(h.bridge.closes) != 1 {
		t.Fatal("events should still be routed before initialize")
	}
}

func TestNonOpenGLRendererIsInert(t *testing.T) {
	h := newHarness(t, false)

	h.m.DeviceEvent(DeviceInitialize, RendererD3D11)
	if h.m.Ready() {
		t.Fatal("manager ready on a D3D11 host")
	}
	h.m.DeviceEvent(DeviceShutdown, RendererD3D11)
	if len(h.rec.Calls) != 0 {
		t.Fatalf("GL touched for non-GL renderer: %v", h.rec.Calls)
	}
	if h.m.Renderer() != RendererD3D11 {
		t.Fatalf("expected renderer d3d11, got %v", h.m.Renderer())
	}
}

func TestDeviceLifecycleLoadsAndUnloadsOnce(t *testing.T) {
	h := newHarness(t, false)

	h.m.DeviceEvent(DeviceInitialize, RendererOpenGLCore)
	h.m.DeviceEvent(DeviceInitialize, RendererOpenGLCore)
	if got := len(h.rec.Allocated["program"]); got != 1 {
		t.Fatalf("expected 1 program, got %d", got)
	}

	h.m.DeviceEvent(DeviceShutdown, RendererOpenGLCore)
	if got := len(h.rec.Deleted["program"]); got != 1 {
		t.Fatalf("expected program deleted once, got %d", got)
	}
	if h.m.Ready() {
		t.Fatal("still ready after shutdown")
	}

	h.create(t, "A", 100, 100, false, 1)
	h.rec.Reset()
	h.m.UpdateWindows()
	if h.rec.Count("DrawElements(") != 0 {
		t.Fatal("rendered after device shutdown")
	}
}

func TestInitializeContextFailureLeavesManagerIdle(t *testing.T) {
	system := &fakeSystem{}
	bridge := &recordingBridge{}
	m, err := New(Options{
		System:         system,
		Bridge:         bridge,
		LoadGL:         func() (glpkg.OpenGL, error) { return gltest.New(), nil },
		CurrentContext: func() (glpkg.Context, error) { return nil, errors.New("no context current") },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m.DeviceEvent(DeviceInitialize, RendererOpenGLCore)
	if m.Ready() {
		t.Fatal("ready without a context")
	}
	found := slices.ContainsFunc(bridge.messages, func(s string) bool {
		return strings.Contains(s, "failed to capture host context")
	})
	if !found {
		t.Fatalf("expected diagnostic, got %q", bridge.messages)
	}
}

func TestShaderFailureIsReportedButWindowsStillRender(t *testing.T) {
	h := newHarness(t, false)
	h.rec.FailShader[glpkg.VertexShader] = true

	h.m.DeviceEvent(DeviceInitialize, RendererOpenGLCore)
	if !h.m.Ready() {
		t.Fatal("degraded surfaces should still count as loaded")
	}
	found := slices.ContainsFunc(h.bridge.messages, func(s string) bool {
		return strings.Contains(s, "level=ERROR") && strings.Contains(s, "vertex shader compilation failed")
	})
	if !found {
		t.Fatalf("expected shader diagnostic, got %q", h.bridge.messages)
	}

	h.create(t, "A", 100, 100, false, 1)
	h.m.UpdateWindows()
	if h.rec.Count("DrawElements(") != 1 {
		t.Fatal("degraded window did not draw")
	}
}

func TestShutdownReleasesEverythingOnce(t *testing.T) {
	h := newHarness(t, true)
	a := h.create(t, "A", 100, 100, false, 1)
	b := h.create(t, "B", 100, 100, false, 2)
	nativeA, nativeB := h.nativeOf(t, a), h.nativeOf(t, b)

	h.m.Shutdown()
	h.m.Shutdown()

	if nativeA.closed != 1 || nativeB.closed != 1 {
		t.Fatalf("expected each window closed once: A=%d B=%d", nativeA.closed, nativeB.closed)
	}
	if h.system.closed != 1 || h.platform.closed != 1 {
		t.Fatalf("expected backends closed once: system=%d platform=%d", h.system.closed, h.platform.closed)
	}
	if h.m.Len() != 0 {
		t.Fatalf("windows left after shutdown: %v", h.m.Handles())
	}
	if _, err := h.m.CreateWindow("late", 100, 100, false, 0); !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
	h.m.UpdateWindows()
}

func TestNewRequiresSystemAndBridge(t *testing.T) {
	if _, err := New(Options{Bridge: &host.Callbacks{}}); !errors.Is(err, ErrNoSystem) {
		t.Fatalf("expected ErrNoSystem, got %v", err)
	}
	if _, err := New(Options{System: &fakeSystem{}}); !errors.Is(err, ErrNoBridge) {
		t.Fatalf("expected ErrNoBridge, got %v", err)
	}
	cfg := config.Default()
	cfg.Log.Level = "chatty"
	if _, err := New(Options{System: &fakeSystem{}, Bridge: &host.Callbacks{}, Config: cfg}); err == nil {
		t.Fatal("expected bad log level to fail")
	}
}
