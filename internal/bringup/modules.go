// Package bringup makes mouse input devices available before the cursor
// opens its stream: it loads kernel modules and enumerates mouse nodes.
package bringup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/Alia5/ps2cursor/cursor"
)

// DefaultModules are the kernel modules that expose /dev/input/mice for a
// PS/2 mouse.
var DefaultModules = []string{"mousedev", "psmouse"}

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Loader loads kernel modules with modprobe.
type Loader struct {
	// Modprobe is the modprobe binary, "modprobe" when empty.
	Modprobe string
	// Timeout bounds the whole bring-up, no bound when zero.
	Timeout time.Duration
	Logger *slog.Logger
	Run    Runner
}

// Load loads every module in names, or DefaultModules when names is empty.
// A failing module does not stop the others; all failures are joined.
func (l *Loader) Load(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = DefaultModules
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	bin := l.Modprobe
	if bin == "" {
		bin = "modprobe"
	}
	run := l.Run
	if run == nil {
		run = execRunner
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		output, err := run(ctx, bin, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s failed: %w: %s", bin, name, err, strings.TrimSpace(string(output))))
			continue
		}
		logger.Debug("kernel module loaded", "module", name)
	}
	return errors.Join(errs...)
}

// BringUp adapts Load to the cursor bring-up collaborator.
func (l *Loader) BringUp(ctx context.Context, names ...string) cursor.BringUp {
	return func() error {
		return l.Load(ctx, names...)
	}
}
