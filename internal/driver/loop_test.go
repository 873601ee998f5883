package driver_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Alia5/ps2cursor/cursor"
	"github.com/Alia5/ps2cursor/internal/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(reports ...byte) *cursor.State {
	s := cursor.New(cursor.WithStream(bytes.NewReader(reports)))
	s.SetScreenWidth(100)
	s.SetScreenHeight(100)
	s.SetX(50)
	s.SetY(50)
	return s
}

func TestLoopDeliversFrames(t *testing.T) {
	s := newState(
		0x01, 0x02, 0x00,
		0x00, 0xFE, 0x03,
	)
	var frames []driver.Frame
	l := &driver.Loop{
		State:     s,
		Interval:  time.Millisecond,
		MaxFrames: 3,
		OnFrame: func(f driver.Frame) error {
			frames = append(frames, f)
			return nil
		},
	}

	require.NoError(t, l.Run(context.Background()))
	require.Len(t, frames, 3)

	assert.Equal(t, driver.Frame{Seq: 1, Result: cursor.Updated, Buttons: cursor.Left, X: 52, Y: 50, DX: 2}, frames[0])
	assert.Equal(t, driver.Frame{Seq: 2, Result: cursor.Updated, Buttons: cursor.None, LastButtons: cursor.Left, X: 50, Y: 47, DX: -2, DY: 3}, frames[1])
	assert.Equal(t, driver.Frame{Seq: 3, Result: cursor.NoData, Buttons: cursor.None, LastButtons: cursor.Left, X: 50, Y: 47}, frames[2])
}

func TestLoopStopsOnFrameError(t *testing.T) {
	boom := errors.New("renderer gone")
	calls := 0
	l := &driver.Loop{
		State:    newState(),
		Interval: time.Millisecond,
		OnFrame: func(driver.Frame) error {
			calls++
			if calls == 2 {
				return boom
			}
			return nil
		},
	}

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen uint64
	l := &driver.Loop{
		State:    newState(),
		Interval: time.Millisecond,
		OnFrame: func(f driver.Frame) error {
			seen = f.Seq
			if f.Seq == 5 {
				cancel()
			}
			return nil
		},
	}

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, uint64(5), seen)
}

func TestLoopLogsHealthOnStop(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := cursor.New(cursor.WithOpener(func(string) (io.ReadCloser, error) {
		return nil, errors.New("no device")
	}))
	l := &driver.Loop{
		State:     s,
		Interval:  time.Millisecond,
		MaxFrames: 2,
		Logger:    logger,
	}

	require.NoError(t, l.Run(context.Background()))
	out := buf.String()
	assert.Contains(t, out, `msg="cursor loop stopped"`)
	assert.Contains(t, out, "device_open=false")
	assert.Contains(t, out, "last=device-unavailable")
	assert.Contains(t, out, "unavailable=2")
}

func TestLoopNilState(t *testing.T) {
	l := &driver.Loop{}
	assert.Error(t, l.Run(context.Background()))
}

type failOnce struct {
	failed bool
	r      io.Reader
}

func (f *failOnce) Read(p []byte) (int, error) {
	if !f.failed {
		f.failed = true
		return 0, errors.New("transient")
	}
	return f.r.Read(p)
}

func TestLoopHealthOmitsRecoveredError(t *testing.T) {
	var buf bytes.Buffer
	s := cursor.New(cursor.WithStream(&failOnce{r: bytes.NewReader([]byte{0x01, 0x00, 0x00})}))
	l := &driver.Loop{
		State:     s,
		Interval:  time.Millisecond,
		MaxFrames: 2,
		Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
	}

	require.NoError(t, l.Run(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "last=updated")
	assert.Contains(t, out, "read_failed=1")
	assert.NotContains(t, out, "last_error")
}
