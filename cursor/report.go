package cursor

import (
	"io"
)

// ReportSize is the size of one raw device report.
const ReportSize = 3

// Report is one raw PS/2 style mouse report.
//
// Report layout (3 bytes):
//
//	Byte 0: Status (bit 0=Left, 1=Right, 2=Middle, bits 3-7 ignored)
//	Byte 1: X motion (two's complement, positive = right)
//	Byte 2: Y motion (two's complement, positive = up)
type Report struct {
	Status byte
	DX, DY int8
}

// Button returns the priority-collapsed button of the report.
func (r *Report) Button() Button {
	return ButtonFromStatus(r.Status)
}

// Motion returns the relative motion in device space.
func (r *Report) Motion() (dx, dy int) {
	return int(r.DX), int(r.DY)
}

// DecodeMotion converts a raw motion byte to a signed delta.
func DecodeMotion(v byte) int {
	if v > 127 {
		return int(v) - 256
	}
	return int(v)
}

// MarshalBinary encodes the report to 3 bytes.
func (r *Report) MarshalBinary() ([]byte, error) {
	return []byte{r.Status, byte(r.DX), byte(r.DY)}, nil
}

// UnmarshalBinary decodes the first 3 bytes of data into the report.
func (r *Report) UnmarshalBinary(data []byte) error {
	if len(data) < ReportSize {
		return io.ErrUnexpectedEOF
	}
	r.Status = data[0]
	r.DX = int8(DecodeMotion(data[1]))
	r.DY = int8(DecodeMotion(data[2]))
	return nil
}
