// Package cursor decodes a raw 3-byte PS/2 mouse report stream into button
// state and a clamped absolute cursor position.
//
// A State is driven by a single frame loop calling Poll once per tick.
// Cursor fields are not synchronized; only Health may be read concurrently.
package cursor

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
)

// DefaultDevicePath is the multiplexed mouse device on Linux.
const DefaultDevicePath = "/dev/input/mice"

// BringUp makes the input device available (e.g. loads kernel modules).
type BringUp func() error

// Opener opens the device stream for reading.
type Opener func(path string) (io.ReadCloser, error)

type options struct {
	logger     *slog.Logger
	bringUp    BringUp
	opener     Opener
	devicePath string
	stream     io.Reader
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger used for bring-up and poll diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBringUp sets the collaborator invoked once before the device is opened.
func WithBringUp(b BringUp) Option {
	return func(o *options) { o.bringUp = b }
}

// WithOpener replaces the default os.Open based device opener.
func WithOpener(op Opener) Option {
	return func(o *options) { o.opener = op }
}

// WithDevicePath overrides DefaultDevicePath.
func WithDevicePath(p string) Option {
	return func(o *options) { o.devicePath = p }
}

// WithStream uses r as the report stream and skips opening a device.
// Bring-up still runs.
func WithStream(r io.Reader) Option {
	return func(o *options) { o.stream = r }
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// State is the cursor state machine.
type State struct {
	logger *slog.Logger
	stream io.Reader
	closer io.Closer
	buf    [ReportSize]byte

	buttons     Button
	lastButtons Button

	x, y          uint32
	width, height uint32

	sensitivity float32
	scrollDelta int32

	// Latched per-axis motion of the last applied report, see TakeDeltaX.
	deltaX        int
	deltaY        int
	hasReadDeltaX bool
	hasReadDeltaY bool

	health Health
}

// New brings up the input device and opens its stream. Failures in either
// step are logged and discarded: the returned State is always usable and
// polls report DeviceUnavailable until a stream exists.
func New(opts ...Option) *State {
	o := options{
		opener:     openFile,
		devicePath: DefaultDevicePath,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	s := &State{
		logger:        o.logger,
		sensitivity:   1,
		hasReadDeltaX: true,
		hasReadDeltaY: true,
	}

	if o.bringUp != nil {
		if err := safeCall(o.bringUp); err != nil {
			s.logger.Debug("device bring-up failed", "error", err)
		}
	}

	if o.stream != nil {
		s.stream = o.stream
		if c, ok := o.stream.(io.Closer); ok {
			s.closer = c
		}
	} else {
		rc, err := safeOpen(o.opener, o.devicePath)
		if err != nil {
			s.logger.Debug("failed to open mouse device", "path", o.devicePath, "error", err)
		} else {
			s.stream = rc
			s.closer = rc
		}
	}
	s.health.opened.Store(s.stream != nil)
	return s
}

func safeCall(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f()
}

func safeOpen(op Opener, path string) (rc io.ReadCloser, err error) {
	err = safeCall(func() error {
		var oerr error
		rc, oerr = op(path)
		return oerr
	})
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("open %s: nil stream", path)
	}
	return rc, nil
}

// Poll reads exactly one report and applies it. It never fails: short
// reads and I/O errors leave the state untouched and are recorded in Health.
// Poll blocks only as long as the underlying read does.
func (s *State) Poll() PollResult {
	if s.stream == nil {
		s.health.record(DeviceUnavailable, nil)
		return DeviceUnavailable
	}

	n, err := s.read()
	if n == ReportSize {
		s.apply()
		s.health.record(Updated, nil)
		return Updated
	}
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		s.logger.Debug("short mouse report", "bytes", n)
		s.health.record(NoData, err)
		return NoData
	}
	s.logger.Debug("mouse read failed", "error", err)
	s.health.record(ReadFailed, err)
	return ReadFailed
}

func (s *State) read() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("read panic: %v", r)
		}
	}()
	return s.stream.Read(s.buf[:])
}

func (s *State) apply() {
	var r Report
	_ = r.UnmarshalBinary(s.buf[:])

	s.lastButtons = s.buttons
	s.buttons = r.Button()

	dx, dy := r.Motion()
	s.x = saturate(int64(s.x) + int64(dx))
	// Screen Y grows downward, device Y grows upward.
	s.y = saturate(int64(s.y) - int64(dy))

	// Clamps to the bound itself, unlike the bounds setters which use bound-1.
	if s.x > s.width {
		s.x = s.width
	}
	if s.y > s.height {
		s.y = s.height
	}

	s.deltaX, s.deltaY = dx, dy
	s.hasReadDeltaX, s.hasReadDeltaY = false, false
}

func saturate(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Close releases the device stream. Subsequent polls report
// DeviceUnavailable.
func (s *State) Close() error {
	s.stream = nil
	s.health.opened.Store(false)
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

// Buttons returns the button state of the current frame.
func (s *State) Buttons() Button { return s.buttons }

// SetButtons overrides the current button state.
func (s *State) SetButtons(b Button) { s.buttons = b }

// LastButtons returns the button state of the previous frame.
func (s *State) LastButtons() Button { return s.lastButtons }

// SetLastButtons overrides the previous-frame button state.
func (s *State) SetLastButtons(b Button) { s.lastButtons = b }

// X returns the absolute cursor column.
func (s *State) X() uint32 { return s.x }

// SetX sets the cursor column without clamping.
func (s *State) SetX(x uint32) { s.x = x }

// Y returns the absolute cursor row.
func (s *State) Y() uint32 { return s.y }

// SetY sets the cursor row without clamping.
func (s *State) SetY(y uint32) { s.y = y }

// ScreenWidth returns the horizontal bound.
func (s *State) ScreenWidth() uint32 { return s.width }

// SetScreenWidth sets the horizontal bound and moves X to w-1 if it lies
// outside.
func (s *State) SetScreenWidth(w uint32) {
	s.width = w
	s.x = clampToBound(s.x, w)
}

// ScreenHeight returns the vertical bound.
func (s *State) ScreenHeight() uint32 { return s.height }

// SetScreenHeight sets the vertical bound and moves Y to h-1 if it lies
// outside.
func (s *State) SetScreenHeight(h uint32) {
	s.height = h
	s.y = clampToBound(s.y, h)
}

func clampToBound(v, bound uint32) uint32 {
	if v < bound {
		return v
	}
	if bound == 0 {
		return 0
	}
	return bound - 1
}

// Sensitivity returns the motion multiplier. It is stored but not applied
// to motion.
func (s *State) Sensitivity() float32 { return s.sensitivity }

// SetSensitivity sets the motion multiplier.
func (s *State) SetSensitivity(v float32) { s.sensitivity = v }

// ScrollDelta returns the accumulated scroll ticks. Nothing feeds it yet.
func (s *State) ScrollDelta() int32 { return s.scrollDelta }

// SetScrollDelta overrides the accumulated scroll ticks.
func (s *State) SetScrollDelta(d int32) { s.scrollDelta = d }

// ResetScrollDelta sets the scroll delta to 0.
func (s *State) ResetScrollDelta() { s.scrollDelta = 0 }

// ScrollWheelPresent is always false: 3-byte reports carry no wheel.
func (s *State) ScrollWheelPresent() bool { return false }

// Health returns the poll health record.
func (s *State) Health() *Health { return &s.health }
