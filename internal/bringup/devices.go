package bringup

import (
	"errors"
)

// ErrUnsupported is returned by Devices on builds without udev.
var ErrUnsupported = errors.New("device enumeration requires linux with cgo")

// Device is a mouse input node known to udev.
type Device struct {
	Node    string `json:"node"`
	SysPath string `json:"sysPath"`
	Name    string `json:"name,omitempty"`
}
