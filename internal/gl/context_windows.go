//go:build windows

package gl

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	gdi32 = windows.NewLazySystemDLL("gdi32.dll")

	procWglGetCurrentContext = opengl32.NewProc("wglGetCurrentContext")
	procWglGetCurrentDC      = opengl32.NewProc("wglGetCurrentDC")
	procWglMakeCurrent       = opengl32.NewProc("wglMakeCurrent")
	procSwapBuffers          = gdi32.NewProc("SwapBuffers")
)

// wglContext is the host's HGLRC together with the device context it was
// current on when captured.
type wglContext struct {
	hglrc uintptr
	hdc   uintptr
}

// CurrentContext captures the WGL context current on the calling thread.
func CurrentContext() (Context, error) {
	ctx, _, _ := procWglGetCurrentContext.Call()
	if ctx == 0 {
		return nil, errors.New("no WGL context is current on this thread")
	}
	dc, _, _ := procWglGetCurrentDC.Call()
	return &wglContext{hglrc: ctx, hdc: dc}, nil
}

func (c *wglContext) MakeCurrent(s Surface) error {
	ret, _, err := procWglMakeCurrent.Call(uintptr(s), c.hglrc)
	if ret == 0 {
		return fmt.Errorf("wglMakeCurrent failed: %w", err)
	}
	return nil
}

func (c *wglContext) Swap(s Surface) {
	procSwapBuffers.Call(uintptr(s))
}

func (c *wglContext) Restore() error {
	return c.MakeCurrent(Surface(c.hdc))
}
