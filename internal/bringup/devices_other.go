//go:build !linux || !cgo

package bringup

// Devices is unavailable on this build.
func Devices() ([]Device, error) {
	return nil, ErrUnsupported
}
