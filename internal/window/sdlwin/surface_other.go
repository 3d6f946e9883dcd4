//go:build !linux && !windows

package sdlwin

import (
	"github.com/tinyrange/multiwin/internal/gl"
	"github.com/veandco/go-sdl2/sdl"
)

func nativeSurface(*sdl.SysWMInfo) (uintptr, gl.Surface, error) {
	return 0, 0, gl.ErrUnsupported
}

func releaseSurface(uintptr, gl.Surface) {}
