//go:build !linux && !windows

package gl

func Load() (OpenGL, error) {
	return nil, ErrUnsupported
}

func CurrentContext() (Context, error) {
	return nil, ErrUnsupported
}
