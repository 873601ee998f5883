package cmd_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alia5/ps2cursor/internal/cmd"
	"github.com/Alia5/ps2cursor/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWatch(device string) *cmd.Watch {
	return &cmd.Watch{
		Device:      device,
		Width:       100,
		Height:      50,
		Sensitivity: 1,
		Interval:    time.Millisecond,
		Frames:      3,
		SkipBringUp: true,
	}
}

func TestWatchPrintsAppliedReports(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "mice")
	require.NoError(t, os.WriteFile(dev, []byte{0x01, 0x05, 0xFB, 0x00, 0xFF, 0x01}, 0o600))

	var out, raw, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	w := testWatch(dev)

	require.NoError(t, w.Watch(context.Background(), logger, log.NewRaw(&raw), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "frame=1 result=updated buttons=left last=none x=55 y=30 dx=5 dy=-5", lines[0])
	assert.Equal(t, "frame=2 result=updated buttons=none last=left x=54 y=29 dx=-1 dy=1", lines[1])

	assert.Contains(t, raw.String(), "hex: 01 05 fb")
	assert.Contains(t, raw.String(), "hex: 00 ff 01")
	assert.Contains(t, logs.String(), `msg="Watching mouse device"`)
}

func TestWatchWithoutDevice(t *testing.T) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	w := testWatch(filepath.Join(t.TempDir(), "missing"))
	w.All = true
	w.Frames = 2

	require.NoError(t, w.Watch(context.Background(), logger, log.NewRaw(nil), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "frame=2 result=device-unavailable buttons=none last=none x=50 y=25 dx=0 dy=0", lines[1])
	assert.Contains(t, logs.String(), "Mouse device unavailable")
}

func TestWatchFallbackBounds(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "mice")
	require.NoError(t, os.WriteFile(dev, []byte{0x00, 0x7F, 0x80}, 0o600))

	var out bytes.Buffer
	w := testWatch(dev)
	w.Width, w.Height = 0, 0
	w.Frames = 1

	require.NoError(t, w.Watch(context.Background(), slog.New(slog.DiscardHandler), nil, &out))
	// Starts centred in the 640x480 fallback.
	assert.Equal(t, "frame=1 result=updated buttons=none last=none x=447 y=368 dx=127 dy=-128\n", out.String())
}
