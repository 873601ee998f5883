// Package stream opens raw mouse device nodes and adapts them to io.Reader.
package stream

import (
	"errors"
	"io"

	"github.com/Alia5/ps2cursor/internal/log"
)

// ErrNonBlockingUnsupported is returned by Open when the platform cannot
// open the device in non-blocking mode.
var ErrNonBlockingUnsupported = errors.New("non-blocking device reads are not supported on this platform")

// Options controls how a device node is opened.
type Options struct {
	// NonBlocking makes Read return (0, nil) instead of waiting for a report.
	NonBlocking bool
}

// Tap returns a reader that hands every chunk read from r to raw.
// Close is forwarded when r implements io.Closer.
func Tap(r io.Reader, raw log.RawLogger) io.ReadCloser {
	return &tapReader{r: r, raw: raw}
}

type tapReader struct {
	r   io.Reader
	raw log.RawLogger
}

func (t *tapReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 && t.raw != nil {
		t.raw.Log(p[:n])
	}
	return n, err
}

func (t *tapReader) Close() error {
	if c, ok := t.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
