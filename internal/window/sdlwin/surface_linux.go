//go:build linux

package sdlwin

import (
	"fmt"

	"github.com/tinyrange/multiwin/internal/gl"
	"github.com/veandco/go-sdl2/sdl"
)

// On X11 the GLX drawable is the window itself.
func nativeSurface(info *sdl.SysWMInfo) (uintptr, gl.Surface, error) {
	if info.Subsystem != sdl.SYSWM_X11 {
		return 0, 0, fmt.Errorf("unsupported window subsystem %d, need X11", info.Subsystem)
	}
	xid := uintptr(info.GetX11Info().Window)
	return xid, gl.Surface(xid), nil
}

func releaseSurface(uintptr, gl.Surface) {}
