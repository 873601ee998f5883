package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/Alia5/ps2cursor/internal/bringup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevicesPrint(t *testing.T) {
	devs := []bringup.Device{
		{Node: "/dev/input/event3", SysPath: "/sys/devices/platform/i8042/serio1/input/input3/event3", Name: "PS/2 Generic Mouse"},
		{Node: "/dev/input/mouse0", SysPath: "/sys/devices/platform/i8042/serio1/input/input3/mouse0"},
	}
	d := &Devices{list: func() ([]bringup.Device, error) { return devs, nil }}

	var out bytes.Buffer
	require.NoError(t, d.Print(&out, slog.New(slog.DiscardHandler)))
	assert.Contains(t, out.String(), "NODE")
	assert.Contains(t, out.String(), "/dev/input/event3  PS/2 Generic Mouse")
	assert.Contains(t, out.String(), "/dev/input/mouse0")
}

func TestDevicesPrintJSON(t *testing.T) {
	d := &Devices{JSON: true, list: func() ([]bringup.Device, error) { return nil, nil }}

	var out bytes.Buffer
	require.NoError(t, d.Print(&out, slog.New(slog.DiscardHandler)))

	var got []bringup.Device
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Empty(t, got)
	assert.Equal(t, "[]\n", out.String())
}

func TestDevicesError(t *testing.T) {
	d := &Devices{list: func() ([]bringup.Device, error) { return nil, bringup.ErrUnsupported }}

	err := d.Print(&bytes.Buffer{}, slog.New(slog.DiscardHandler))
	assert.True(t, errors.Is(err, bringup.ErrUnsupported))
}
