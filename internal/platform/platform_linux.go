//go:build linux

package platform

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/tinyrange/multiwin/internal/config"
	"github.com/tinyrange/multiwin/internal/host"
)

type x11Platform struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	class string
	pid   uint

	hostWin xproto.Window
}

// New connects to the X server named by $DISPLAY.
func New(cfg config.Host) (Platform, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	return &x11Platform{
		xu:    xu,
		root:  xu.RootWin(),
		class: strings.TrimSpace(cfg.WindowClass),
		pid:   uint(os.Getpid()),
	}, nil
}

// hostWindow finds the first managed client owned by this process whose
// WM_CLASS matches and which is not one of exclude. The result is cached
// while it stays outside exclude.
func (p *x11Platform) hostWindow(exclude []uintptr) (xproto.Window, error) {
	if p.hostWin != 0 && !slices.Contains(exclude, uintptr(p.hostWin)) {
		return p.hostWin, nil
	}
	p.hostWin = 0
	clients, err := ewmh.ClientListGet(p.xu)
	if err != nil {
		return 0, fmt.Errorf("failed to list clients: %w", err)
	}
	cands := make([]candidate, 0, len(clients))
	for _, id := range clients {
		pid, err := ewmh.WmPidGet(p.xu, id)
		if err != nil || pid != p.pid {
			continue
		}
		c := candidate{id: uintptr(id), pid: pid}
		if wmClass, err := icccm.WmClassGet(p.xu, id); err == nil {
			c.class, c.instance = wmClass.Class, wmClass.Instance
		}
		cands = append(cands, c)
	}
	id, ok := pickHost(cands, p.pid, p.class, exclude)
	if !ok {
		return 0, ErrNoHostWindow
	}
	p.hostWin = xproto.Window(id)
	return p.hostWin, nil
}

func (p *x11Platform) HostWindow(exclude []uintptr) (Rect, error) {
	id, err := p.hostWindow(exclude)
	if err != nil {
		return Rect{}, err
	}
	geom, err := xwindow.New(p.xu, id).DecorGeometry()
	if err != nil {
		// The window may have been destroyed; look it up again next time.
		p.hostWin = 0
		return Rect{}, fmt.Errorf("failed to get host window geometry: %w", err)
	}
	return Rect{X: geom.X(), Y: geom.Y(), Width: geom.Width(), Height: geom.Height()}, nil
}

// drain discards queued events. Nothing here consumes X events, and xgb
// stops dispatching replies once its event buffer is full.
func (p *x11Platform) drain() {
	drainEvents(p.xu.Conn().PollForEvent)
}

// drainEvents calls poll until it reports an empty queue and returns how
// many events and errors it discarded.
func drainEvents(poll func() (xgb.Event, xgb.Error)) int {
	n := 0
	for {
		ev, xerr := poll()
		if ev == nil && xerr == nil {
			return n
		}
		n++
	}
}

func (p *x11Platform) Pointer() (int, int, host.ButtonMask, error) {
	p.drain()
	reply, err := xproto.QueryPointer(p.xu.Conn(), p.root).Reply()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	var buttons host.ButtonMask
	if reply.Mask&xproto.KeyButMaskButton1 != 0 {
		buttons |= host.ButtonLeft
	}
	if reply.Mask&xproto.KeyButMaskButton2 != 0 {
		buttons |= host.ButtonMiddle
	}
	if reply.Mask&xproto.KeyButMaskButton3 != 0 {
		buttons |= host.ButtonRight
	}
	return int(reply.RootX), int(reply.RootY), buttons, nil
}

func (p *x11Platform) Capture(native uintptr) error {
	reply, err := xproto.GrabPointer(
		p.xu.Conn(),
		false,
		xproto.Window(native),
		// The drag polls QueryPointer, so no grab events are needed.
		0,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		return fmt.Errorf("failed to grab pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("failed to grab pointer: status %d", reply.Status)
	}
	return nil
}

func (p *x11Platform) Release() error {
	p.drain()
	if err := xproto.UngrabPointerChecked(p.xu.Conn(), xproto.TimeCurrentTime).Check(); err != nil {
		return fmt.Errorf("failed to ungrab pointer: %w", err)
	}
	return nil
}

func (p *x11Platform) Close() {
	if p.xu == nil {
		return
	}
	p.xu.Conn().Close()
	p.xu = nil
}
