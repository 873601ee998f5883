package cursor

import (
	"go.uber.org/atomic"
)

// PollResult is the outcome of a single Poll.
type PollResult uint8

const (
	// Updated means a full report was read and applied.
	Updated PollResult = iota
	// NoData means the stream returned fewer than ReportSize bytes.
	NoData
	// ReadFailed means the stream returned an I/O error.
	ReadFailed
	// DeviceUnavailable means no stream was opened.
	DeviceUnavailable
)

func (r PollResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case NoData:
		return "no-data"
	case ReadFailed:
		return "read-failed"
	case DeviceUnavailable:
		return "device-unavailable"
	default:
		return "unknown"
	}
}

// Health records poll outcomes. It may be read from another goroutine
// while the frame loop polls.
type Health struct {
	opened  atomic.Bool
	last    atomic.Uint32
	lastErr atomic.Error
	counts  [DeviceUnavailable + 1]atomic.Uint64
	polled  atomic.Bool
}

// HealthSnapshot is a point-in-time copy of Health.
type HealthSnapshot struct {
	DeviceOpen        bool
	Polled            bool
	LastResult        PollResult
	// LastError is the error of the most recent poll, nil when it had none.
	LastError         error
	Updated           uint64
	NoData            uint64
	ReadFailed        uint64
	DeviceUnavailable uint64
}

// LastPollSucceeded reports whether the most recent poll applied a report.
func (s HealthSnapshot) LastPollSucceeded() bool {
	return s.Polled && s.LastResult == Updated
}

func (h *Health) record(r PollResult, err error) {
	h.polled.Store(true)
	h.last.Store(uint32(r))
	h.counts[r].Inc()
	h.lastErr.Store(err)
}

// Snapshot copies the current counters.
func (h *Health) Snapshot() HealthSnapshot {
	return HealthSnapshot{
		DeviceOpen:        h.opened.Load(),
		Polled:            h.polled.Load(),
		LastResult:        PollResult(h.last.Load()),
		LastError:         h.lastErr.Load(),
		Updated:           h.counts[Updated].Load(),
		NoData:            h.counts[NoData].Load(),
		ReadFailed:        h.counts[ReadFailed].Load(),
		DeviceUnavailable: h.counts[DeviceUnavailable].Load(),
	}
}
