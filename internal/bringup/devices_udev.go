//go:build linux && cgo

package bringup

import (
	"fmt"
	"sort"

	"github.com/jochenvg/go-udev"
)

// Devices lists mouse device nodes (ID_INPUT_MOUSE=1) under the input
// subsystem, sorted by node path.
func Devices() ([]Device, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("input"); err != nil {
		return nil, fmt.Errorf("match subsystem: %w", err)
	}
	if err := e.AddMatchProperty("ID_INPUT_MOUSE", "1"); err != nil {
		return nil, fmt.Errorf("match property: %w", err)
	}
	devs, err := e.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate input devices: %w", err)
	}

	var out []Device
	for _, d := range devs {
		node := d.Devnode()
		if node == "" {
			continue
		}
		dev := Device{Node: node, SysPath: d.Syspath()}
		if p := d.Parent(); p != nil {
			dev.Name = p.SysattrValue("name")
		}
		out = append(out, dev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out, nil
}
