//go:build !unix

package stream

import (
	"os"
)

// Device is an open device node.
type Device struct {
	*os.File
}

// Open opens path read-only. Non-blocking mode is not available.
func Open(path string, opts Options) (*Device, error) {
	if opts.NonBlocking {
		return nil, ErrNonBlockingUnsupported
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Device{File: f}, nil
}

// Path returns the device node path.
func (d *Device) Path() string { return d.Name() }

// NonBlocking always reports false.
func (d *Device) NonBlocking() bool { return false }
