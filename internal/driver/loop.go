// Package driver runs the frame loop that polls a cursor.State once per tick.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/ps2cursor/cursor"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is one frame at 60 Hz.
const DefaultInterval = time.Second / 60

// Frame is the cursor state observed after one poll.
type Frame struct {
	Seq         uint64
	Result      cursor.PollResult
	Buttons     cursor.Button
	LastButtons cursor.Button
	X, Y        uint32
	// DX, DY are the consume-once deltas of the report applied in this
	// frame, zero when nothing new was applied.
	DX, DY int
}

// Loop drives a single cursor.State. The State must not be polled by
// anything else while Run is active.
type Loop struct {
	State *cursor.State
	// Interval between polls, DefaultInterval when zero.
	Interval time.Duration
	// StatusInterval enables periodic health logging when positive.
	StatusInterval time.Duration
	// MaxFrames stops the loop after that many frames when positive.
	MaxFrames uint64
	Logger    *slog.Logger
	// OnFrame receives every frame. Returning an error stops the loop.
	OnFrame func(Frame) error
}

// Run polls until ctx is cancelled, MaxFrames is reached or OnFrame fails.
// Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) error {
	if l.State == nil {
		return errors.New("driver: nil cursor state")
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return l.frames(groupCtx)
	})
	group.Go(func() error {
		return l.status(groupCtx, logger)
	})

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("frame loop failed: %w", err)
	}
	return nil
}

func (l *Loop) frames(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		res := l.State.Poll()
		seq++
		f := Frame{
			Seq:         seq,
			Result:      res,
			Buttons:     l.State.Buttons(),
			LastButtons: l.State.LastButtons(),
			X:           l.State.X(),
			Y:           l.State.Y(),
			DX:          l.State.TakeDeltaX(),
			DY:          l.State.TakeDeltaY(),
		}
		if l.OnFrame != nil {
			if err := l.OnFrame(f); err != nil {
				return err
			}
		}
		if l.MaxFrames > 0 && seq >= l.MaxFrames {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *Loop) status(ctx context.Context, logger *slog.Logger) error {
	var tick <-chan time.Time
	if l.StatusInterval > 0 {
		t := time.NewTicker(l.StatusInterval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			logHealth(logger, "cursor loop stopped", l.State.Health().Snapshot())
			return nil
		case <-tick:
			logHealth(logger, "cursor health", l.State.Health().Snapshot())
		}
	}
}

func logHealth(logger *slog.Logger, msg string, h cursor.HealthSnapshot) {
	last := "none"
	if h.Polled {
		last = h.LastResult.String()
	}
	attrs := []any{
		"device_open", h.DeviceOpen,
		"last", last,
		"updated", h.Updated,
		"no_data", h.NoData,
		"read_failed", h.ReadFailed,
		"unavailable", h.DeviceUnavailable,
	}
	if h.LastError != nil {
		attrs = append(attrs, "last_error", h.LastError)
	}
	logger.Info(msg, attrs...)
}
