package cvat

// sequencer owns the iteration cursor over [0, frameCount). Its states
// are ready(position) and exhausted; exhausted is terminal for next but
// a successful seek returns to ready.
type sequencer struct {
	position   int
	frameCount int
	exhausted  bool
}

func newSequencer(frameCount int) sequencer {
	return sequencer{frameCount: frameCount}
}

// seek moves the cursor to index, failing with a *RangeError when index
// is outside [0, frameCount). On failure the cursor is unchanged.
func (s *sequencer) seek(index int) error {
	if index < 0 || index >= s.frameCount {
		return &RangeError{Index: index, FrameCount: s.frameCount}
	}
	s.position = index
	s.exhausted = false
	return nil
}

// exhaust moves the cursor to end-of-stream.
func (s *sequencer) exhaust() {
	s.exhausted = true
}

// next yields the current position and advances by one. The explicit
// last-frame check keeps iteration from running past the final valid
// frame.
func (s *sequencer) next() (int, bool) {
	if s.exhausted || s.position >= s.frameCount {
		s.exhausted = true
		return 0, false
	}
	p := s.position
	s.position++
	return p, true
}
