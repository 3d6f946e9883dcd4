//go:build linux

package gl

import (
	"errors"

	"github.com/ebitengine/purego"
)

var (
	glxGetCurrentContext  func() uintptr
	glxGetCurrentDisplay  func() uintptr
	glxGetCurrentDrawable func() uintptr
	glxMakeCurrent        func(uintptr, uintptr, uintptr) int32
	glxSwapBuffers        func(uintptr, uintptr)

	glxRegistered bool
)

// glxContext is a GLX context captured from the host thread. The display is
// the host's connection; window XIDs created on other connections are valid
// drawables for it.
type glxContext struct {
	display  uintptr
	context  uintptr
	drawable uintptr
}

// CurrentContext captures the GLX context current on the calling thread.
func CurrentContext() (Context, error) {
	if err := registerGLX(); err != nil {
		return nil, err
	}
	ctx := glxGetCurrentContext()
	if ctx == 0 {
		return nil, errors.New("no GLX context is current on this thread")
	}
	dpy := glxGetCurrentDisplay()
	if dpy == 0 {
		return nil, errors.New("glXGetCurrentDisplay returned NULL")
	}
	return &glxContext{
		display:  dpy,
		context:  ctx,
		drawable: glxGetCurrentDrawable(),
	}, nil
}

func (c *glxContext) MakeCurrent(s Surface) error {
	if glxMakeCurrent(c.display, uintptr(s), c.context) == 0 {
		return errors.New("glXMakeCurrent failed")
	}
	return nil
}

func (c *glxContext) Swap(s Surface) {
	glxSwapBuffers(c.display, uintptr(s))
}

func (c *glxContext) Restore() error {
	return c.MakeCurrent(Surface(c.drawable))
}

func registerGLX() error {
	if glxRegistered {
		return nil
	}
	handle, err := openLibGL()
	if err != nil {
		return err
	}
	purego.RegisterLibFunc(&glxGetCurrentContext, handle, "glXGetCurrentContext")
	purego.RegisterLibFunc(&glxGetCurrentDisplay, handle, "glXGetCurrentDisplay")
	purego.RegisterLibFunc(&glxGetCurrentDrawable, handle, "glXGetCurrentDrawable")
	purego.RegisterLibFunc(&glxMakeCurrent, handle, "glXMakeCurrent")
	purego.RegisterLibFunc(&glxSwapBuffers, handle, "glXSwapBuffers")
	glxRegistered = true
	return nil
}
