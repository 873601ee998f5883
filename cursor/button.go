package cursor

// Button is the single button value reported for a frame.
//
// The encoding is flag-like but only one value is ever held: simultaneous
// presses collapse to the highest-priority button (Left > Right > Middle).
type Button uint8

const (
	None         Button = 0x00
	Left         Button = 0x01
	Right        Button = 0x02
	Middle       Button = 0x04
	FourthButton Button = 0x08
	FifthButton  Button = 0x10
)

// Status byte bits of a 3-byte report.
const (
	BitLeft   = 0x01
	BitRight  = 0x02
	BitMiddle = 0x04
)

// ButtonFromStatus collapses the status byte to a single Button.
// FourthButton and FifthButton are never produced from a 3-byte report.
func ButtonFromStatus(status byte) Button {
	switch {
	case status&BitLeft != 0:
		return Left
	case status&BitRight != 0:
		return Right
	case status&BitMiddle != 0:
		return Middle
	default:
		return None
	}
}

func (b Button) String() string {
	switch b {
	case None:
		return "none"
	case Left:
		return "left"
	case Right:
		return "right"
	case Middle:
		return "middle"
	case FourthButton:
		return "fourth"
	case FifthButton:
		return "fifth"
	default:
		return "unknown"
	}
}
