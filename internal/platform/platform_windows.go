//go:build windows

package platform

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unsafe"

	"github.com/tinyrange/multiwin/internal/config"
	"github.com/tinyrange/multiwin/internal/host"
	"golang.org/x/sys/windows"
)

const (
	vkLButton = 0x01
	vkRButton = 0x02
	vkMButton = 0x04
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumThreadWindows = user32.NewProc("EnumThreadWindows")
	procGetClassNameW     = user32.NewProc("GetClassNameW")
	procGetWindowRect     = user32.NewProc("GetWindowRect")
	procGetCursorPos      = user32.NewProc("GetCursorPos")
	procGetAsyncKeyState  = user32.NewProc("GetAsyncKeyState")
	procSetCapture        = user32.NewProc("SetCapture")
	procReleaseCapture    = user32.NewProc("ReleaseCapture")
)

type point struct {
	x int32
	y int32
}

type rect struct {
	left   int32
	top    int32
	right  int32
	bottom int32
}

type win32Platform struct {
	class   string
	thread  uint32
	pid     uint
	hostWin uintptr
	// missed stops repeated enumeration when no host window exists; it is
	// cleared when a drag ends.
	missed bool
}

// New binds to the calling thread, which must be the host's UI thread; the
// host window is searched among that thread's top-level windows.
func New(cfg config.Host) (Platform, error) {
	if err := procEnumThreadWindows.Find(); err != nil {
		return nil, fmt.Errorf("user32 unavailable: %w", err)
	}
	return &win32Platform{
		class:  strings.TrimSpace(cfg.WindowClass),
		thread: windows.GetCurrentThreadId(),
		pid:    uint(os.Getpid()),
	}, nil
}

// enumFound collects the windows seen by enumProc. Platform calls are made
// from the host's UI thread only, so one buffer serves every search.
var (
	enumFound []candidate
	enumProc  = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		var buf [256]uint16
		n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		enumFound = append(enumFound, candidate{
			id:    hwnd,
			pid:   uint(os.Getpid()),
			class: windows.UTF16ToString(buf[:n]),
		})
		return 1
	})
)

func (p *win32Platform) hostWindow(exclude []uintptr) (uintptr, error) {
	if p.hostWin != 0 && !slices.Contains(exclude, p.hostWin) {
		return p.hostWin, nil
	}
	if p.missed {
		return 0, ErrNoHostWindow
	}
	p.hostWin = 0
	enumFound = enumFound[:0]
	procEnumThreadWindows.Call(uintptr(p.thread), enumProc, 0)
	hwnd, ok := pickHost(enumFound, p.pid, p.class, exclude)
	if !ok {
		p.missed = true
		return 0, ErrNoHostWindow
	}
	p.hostWin = hwnd
	return hwnd, nil
}

func (p *win32Platform) HostWindow(exclude []uintptr) (Rect, error) {
	hwnd, err := p.hostWindow(exclude)
	if err != nil {
		return Rect{}, err
	}
	var r rect
	ok, _, callErr := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		p.hostWin = 0
		return Rect{}, fmt.Errorf("GetWindowRect failed: %w", callErr)
	}
	return Rect{
		X:      int(r.left),
		Y:      int(r.top),
		Width:  int(r.right - r.left),
		Height: int(r.bottom - r.top),
	}, nil
}

func (p *win32Platform) Pointer() (int, int, host.ButtonMask, error) {
	var pt point
	ok, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ok == 0 {
		return 0, 0, 0, fmt.Errorf("GetCursorPos failed: %w", err)
	}
	var buttons host.ButtonMask
	if keyDown(vkLButton) {
		buttons |= host.ButtonLeft
	}
	if keyDown(vkMButton) {
		buttons |= host.ButtonMiddle
	}
	if keyDown(vkRButton) {
		buttons |= host.ButtonRight
	}
	return int(pt.x), int(pt.y), buttons, nil
}

// GetAsyncKeyState sets the high bit of its SHORT result while the key is down.
func keyDown(vk uintptr) bool {
	state, _, _ := procGetAsyncKeyState.Call(vk)
	return state&0x8000 != 0
}

func (p *win32Platform) Capture(native uintptr) error {
	procSetCapture.Call(native)
	return nil
}

func (p *win32Platform) Release() error {
	p.missed = false
	ok, _, err := procReleaseCapture.Call()
	if ok == 0 {
		return fmt.Errorf("ReleaseCapture failed: %w", err)
	}
	return nil
}

func (p *win32Platform) Close() {}
