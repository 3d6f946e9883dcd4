//go:build !windows

package config

// DefaultWindowClass is empty: without a known class the first top-level
// window of this process that is not an auxiliary window is the host.
const DefaultWindowClass = ""
