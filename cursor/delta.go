package cursor

// TakeDeltaX returns the X motion of the last applied report the first time
// it is called after that report, and 0 afterwards until the next update.
// It does not affect TakeDeltaY, so an X reader and a Y reader can each
// consume the same report once.
func (s *State) TakeDeltaX() int {
	if s.hasReadDeltaX {
		return 0
	}
	s.hasReadDeltaX = true
	return s.deltaX
}

// TakeDeltaY is the Y counterpart of TakeDeltaX. The value is in device
// space: positive means upward motion.
func (s *State) TakeDeltaY() int {
	if s.hasReadDeltaY {
		return 0
	}
	s.hasReadDeltaY = true
	return s.deltaY
}
