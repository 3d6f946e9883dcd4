//go:build windows

package sdlwin

import (
	"fmt"

	"github.com/tinyrange/multiwin/internal/gl"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sys/windows"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procGetDC     = user32.NewProc("GetDC")
	procReleaseDC = user32.NewProc("ReleaseDC")
)

// On Windows the WGL drawable is the window's device context, held until the
// window closes.
func nativeSurface(info *sdl.SysWMInfo) (uintptr, gl.Surface, error) {
	if info.Subsystem != sdl.SYSWM_WINDOWS {
		return 0, 0, fmt.Errorf("unsupported window subsystem %d, need Win32", info.Subsystem)
	}
	hwnd := uintptr(info.GetWindowsInfo().Window)
	hdc, _, err := procGetDC.Call(hwnd)
	if hdc == 0 {
		return 0, 0, fmt.Errorf("GetDC failed: %w", err)
	}
	return hwnd, gl.Surface(hdc), nil
}

func releaseSurface(hwnd uintptr, s gl.Surface) {
	procReleaseDC.Call(hwnd, uintptr(s))
}
