//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package display

import "fmt"

// ListMonitors is not supported on this platform.
func ListMonitors() ([]Monitor, error) {
	return nil, fmt.Errorf("monitor listing is not supported on this platform")
}

func probeDPI() (float64, error) {
	return 0, fmt.Errorf("display scale probe is not supported on this platform")
}
