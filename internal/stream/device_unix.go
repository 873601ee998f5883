//go:build unix

package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Device is an open device node read with raw read(2) calls. The
// descriptor is always non-blocking: in non-blocking mode a read without
// data returns (0, nil), in blocking mode Read waits in poll(2) on the
// device and a wake pipe so that Close interrupts it.
type Device struct {
	path     string
	nonBlock bool

	mu     sync.Mutex
	fd     int
	wake   [2]int
	closed bool
}

// Open opens path read-only.
func Open(path string, opts Options) (*Device, error) {
	flags := unix.O_RDONLY | unix.O_CLOEXEC | unix.O_NOCTTY
	if opts.NonBlocking {
		flags |= unix.O_NONBLOCK
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	d := &Device{path: path, fd: fd, nonBlock: opts.NonBlocking, wake: [2]int{-1, -1}}
	if opts.NonBlocking {
		return d, nil
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	if err := unix.Pipe(d.wake[:]); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("open %s: wake pipe: %w", path, err)
	}
	for _, w := range d.wake {
		unix.CloseOnExec(w)
	}
	return d, nil
}

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// NonBlocking reports whether the device was opened with O_NONBLOCK.
func (d *Device) NonBlocking() bool { return d.nonBlock }

// Read performs a single read(2). In non-blocking mode EAGAIN yields
// (0, nil). End of stream yields io.EOF, a Close while waiting yields
// os.ErrClosed.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	fd, wake, closed := d.fd, d.wake[0], d.closed
	d.mu.Unlock()
	if closed {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	for {
		n, err := unix.Read(fd, p)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			if d.nonBlock {
				return 0, nil
			}
			if err := d.wait(fd, wake); err != nil {
				return 0, err
			}
			continue
		case err != nil:
			return 0, fmt.Errorf("read %s: %w", d.path, err)
		case n == 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

// wait blocks until fd is readable or Close writes to the wake pipe.
func (d *Device) wait(fd, wake int) error {
	fds := []unix.PollFd{
		{Fd: int32(fd), Events: unix.POLLIN},
		{Fd: int32(wake), Events: unix.POLLIN},
	}
	for {
		_, err := unix.Poll(fds, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll %s: %w", d.path, err)
		}
		break
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed || fds[1].Revents != 0 {
		return os.ErrClosed
	}
	return nil
}

// Close closes the descriptor and wakes a Read waiting on it. Closing twice
// is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.wake[1] >= 0 {
		_, _ = unix.Write(d.wake[1], []byte{0})
		_ = unix.Close(d.wake[1])
		_ = unix.Close(d.wake[0])
	}
	if err := unix.Close(d.fd); err != nil {
		return &os.PathError{Op: "close", Path: d.path, Err: err}
	}
	return nil
}
