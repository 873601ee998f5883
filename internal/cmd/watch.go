package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/ps2cursor/cursor"
	"github.com/Alia5/ps2cursor/internal/bringup"
	"github.com/Alia5/ps2cursor/internal/driver"
	"github.com/Alia5/ps2cursor/internal/log"
	"github.com/Alia5/ps2cursor/internal/stream"

	"golang.org/x/term"
)

// Bounds used when neither flags nor a terminal provide a screen size.
const (
	FallbackWidth  = 640
	FallbackHeight = 480
)

// Watch polls the mouse device once per frame and prints the cursor.
type Watch struct {
	Device         string        `help:"Mouse device node" default:"/dev/input/mice" env:"PS2CURSOR_DEVICE"`
	Width          uint32        `help:"Screen width; terminal columns when 0" default:"0" env:"PS2CURSOR_WIDTH"`
	Height         uint32        `help:"Screen height; terminal rows when 0" default:"0" env:"PS2CURSOR_HEIGHT"`
	Sensitivity    float32       `help:"Motion multiplier stored on the cursor" default:"1.0" env:"PS2CURSOR_SENSITIVITY"`
	Interval       time.Duration `help:"Frame interval" default:"16ms" env:"PS2CURSOR_INTERVAL"`
	StatusInterval time.Duration `help:"Interval for health log lines; 0 to disable" default:"0s" env:"PS2CURSOR_STATUS_INTERVAL"`
	Frames         uint64        `help:"Stop after this many frames; 0 runs until interrupted" default:"0"`
	Blocking       bool          `help:"Wait for a report on every frame instead of reading without blocking; interrupting closes the device" env:"PS2CURSOR_BLOCKING"`
	All            bool          `help:"Print every frame, not only frames that applied a report"`
	SkipBringUp    bool          `help:"Do not load kernel modules before opening the device" env:"PS2CURSOR_SKIP_BRINGUP"`
	Modprobe       string        `help:"modprobe binary used for bring-up" default:"modprobe" env:"PS2CURSOR_MODPROBE"`
	Modules        []string      `help:"Kernel modules loaded during bring-up" default:"mousedev,psmouse" env:"PS2CURSOR_MODULES"`
	BringUpTimeout time.Duration `help:"Upper bound for bring-up" default:"10s"`
}

// Run is called by Kong when the watch command is executed.
func (w *Watch) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Watch(ctx, logger, rawLogger, os.Stdout)
}

// Watch runs the frame loop until ctx ends, writing frames to out.
func (w *Watch) Watch(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, out io.Writer) error {
	var dev io.Closer
	opts := []cursor.Option{
		cursor.WithLogger(logger.With("component", "cursor")),
		cursor.WithDevicePath(w.Device),
		cursor.WithOpener(w.opener(rawLogger, &dev)),
	}
	if !w.SkipBringUp {
		loader := &bringup.Loader{
			Modprobe: w.Modprobe,
			Timeout:  w.BringUpTimeout,
			Logger:   logger.With("component", "bringup"),
		}
		opts = append(opts, cursor.WithBringUp(loader.BringUp(ctx, w.Modules...)))
	}

	state := cursor.New(opts...)
	defer func() { _ = state.Close() }()
	if dev != nil {
		// Wakes a poll blocked in read so the loop sees the cancellation.
		stop := context.AfterFunc(ctx, func() { _ = dev.Close() })
		defer stop()
	}
	if !state.Health().Snapshot().DeviceOpen {
		logger.Warn("Mouse device unavailable, cursor will not move", "device", w.Device)
	}

	width, height := w.bounds(out)
	state.SetScreenWidth(width)
	state.SetScreenHeight(height)
	state.SetX(width / 2)
	state.SetY(height / 2)
	state.SetSensitivity(w.Sensitivity)

	logger.Info("Watching mouse device", "device", w.Device, "width", width, "height", height, "blocking", w.Blocking)

	loop := &driver.Loop{
		State:          state,
		Interval:       w.Interval,
		StatusInterval: w.StatusInterval,
		MaxFrames:      w.Frames,
		Logger:         logger.With("component", "driver"),
		OnFrame: func(f driver.Frame) error {
			if !w.All && f.Result != cursor.Updated {
				return nil
			}
			_, err := fmt.Fprintf(out, "frame=%d result=%s buttons=%s last=%s x=%d y=%d dx=%d dy=%d\n",
				f.Seq, f.Result, f.Buttons, f.LastButtons, f.X, f.Y, f.DX, f.DY)
			return err
		},
	}
	return loop.Run(ctx)
}

func (w *Watch) opener(rawLogger log.RawLogger, opened *io.Closer) cursor.Opener {
	return func(path string) (io.ReadCloser, error) {
		d, err := stream.Open(path, stream.Options{NonBlocking: !w.Blocking})
		if err != nil {
			return nil, err
		}
		*opened = d
		if rawLogger == nil {
			return d, nil
		}
		return stream.Tap(d, rawLogger), nil
	}
}

// bounds resolves the screen size from flags, then from the terminal
// behind out, then from the fallback constants.
func (w *Watch) bounds(out io.Writer) (width, height uint32) {
	width, height = w.Width, w.Height
	if width != 0 && height != 0 {
		return width, height
	}
	cols, rows := FallbackWidth, FallbackHeight
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if c, r, err := term.GetSize(int(f.Fd())); err == nil && c > 0 && r > 0 {
			cols, rows = c, r
		}
	}
	if width == 0 {
		width = uint32(cols)
	}
	if height == 0 {
		height = uint32(rows)
	}
	return width, height
}
