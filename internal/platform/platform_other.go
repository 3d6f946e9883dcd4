//go:build !linux && !windows

package platform

import "github.com/tinyrange/multiwin/internal/config"

func New(config.Host) (Platform, error) {
	return nil, ErrUnsupported
}
