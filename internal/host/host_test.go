package host

import (
	"log/slog"
	"strings"
	"testing"
)

func TestCallbacksNilFieldsAreNoops(t *testing.T) {
	var c Callbacks

	c.OnMessage("hello")
	c.OnClose(1)
	c.OnMouseUpdate(1, 2, 3, ButtonLeft)
	c.OnMove(1, 2, 3, true)
	if got := c.OnResize(1, 640, 480); got != 0 {
		t.Errorf("expected 0 texture from nil resize, got %d", got)
	}
	if c.WantsMouse() {
		t.Error("nil MouseUpdate should not want mouse")
	}
}

func TestCallbacksForward(t *testing.T) {
	var closed Handle
	c := &Callbacks{
		Close: func(h Handle) { closed = h },
		Resize: func(h Handle, w, hh int) uint32 {
			return uint32(w + hh)
		},
		MouseUpdate: func(Handle, int, int, ButtonMask) {},
	}

	c.OnClose(7)
	if closed != 7 {
		t.Errorf("expected close for 7, got %d", closed)
	}
	if got := c.OnResize(7, 10, 20); got != 30 {
		t.Errorf("expected 30, got %d", got)
	}
	if !WantsMouse(c) {
		t.Error("expected WantsMouse with MouseUpdate set")
	}
}

type bareBridge struct{ Callbacks }

func (bareBridge) WantsMouse() bool { return false }

func TestWantsMouseDefaultsTrue(t *testing.T) {
	var b Bridge = struct{ Bridge }{&Callbacks{}}
	if !WantsMouse(b) {
		t.Error("bridges without MouseListener should receive mouse updates")
	}
	if WantsMouse(&bareBridge{}) {
		t.Error("MouseListener opt-out ignored")
	}
}

func TestHandlerForwardsToMessageSink(t *testing.T) {
	var lines []string
	b := &Callbacks{Message: func(m string) { lines = append(lines, m) }}
	log := slog.New(NewHandler(b, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Debug("hidden")
	log.Error("shader failed", "stage", "fragment")
	log.With("window", 3).Info("resized", "width", 1024)

	if len(lines) != 2 {
		t.Fatalf("expected 2 messages, got %d: %q", len(lines), lines)
	}
	if strings.Contains(lines[0], "time=") {
		t.Errorf("timestamp should be dropped: %q", lines[0])
	}
	if !strings.Contains(lines[0], "level=ERROR") || !strings.Contains(lines[0], `msg="shader failed"`) || !strings.Contains(lines[0], "stage=fragment") {
		t.Errorf("unexpected first message %q", lines[0])
	}
	if !strings.Contains(lines[1], "window=3") || !strings.Contains(lines[1], "width=1024") {
		t.Errorf("unexpected second message %q", lines[1])
	}
	if strings.HasSuffix(lines[1], "\n") {
		t.Errorf("trailing newline not trimmed: %q", lines[1])
	}
}
