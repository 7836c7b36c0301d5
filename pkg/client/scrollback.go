package client

import "sync"

// ScrollbackCapacity is the maximum number of display lines retained.
const ScrollbackCapacity = 600

// LineKind classifies a display line for rendering.
type LineKind int

const (
	LineChat LineKind = iota
	LineSystem
	LineDisconnect
	LineLocal // produced locally (command output, errors), never from the wire
	LineOther // unknown frame kind, rendered as an untyped system line
)

// DisplayLine is one row of scrollback. Lines are never mutated after
// insertion.
type DisplayLine struct {
	Time   string
	Author string
	Text   string
	Kind   LineKind
}

// Scrollback is the bounded, lock-guarded log of display lines backing the
// viewport. It is the only structure in the session mutated by more than one
// goroutine: the receive loop, the announcer loop, and local command handling
// all append to it.
type Scrollback struct {
	mu     sync.Mutex
	lines  []DisplayLine
	cap    int
	scroll int

	// notify requests a redraw after a mutation. It is fire-and-forget and
	// deliberately called outside the lock: the foreground loop also polls
	// on a timer, so a lost wakeup only delays a repaint.
	notify func()
}

// NewScrollback creates a scrollback with the given capacity. notify may be
// nil.
func NewScrollback(capacity int, notify func()) *Scrollback {
	if notify == nil {
		notify = func() {}
	}
	return &Scrollback{
		lines:  make([]DisplayLine, 0, capacity),
		cap:    capacity,
		notify: notify,
	}
}

// Append adds a line, evicting the oldest when at capacity. If the user has
// scrolled up, the offset grows by one so new arrivals never yank the visible
// window away from a manually scrolled view.
func (s *Scrollback) Append(line DisplayLine) {
	s.mu.Lock()
	if len(s.lines) >= s.cap {
		copy(s.lines, s.lines[1:])
		s.lines[len(s.lines)-1] = line
	} else {
		s.lines = append(s.lines, line)
	}
	if s.scroll > 0 {
		s.scroll++
	}
	s.mu.Unlock()
	s.notify()
}

// Len returns the number of retained lines.
func (s *Scrollback) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Scroll returns the current scroll offset (lines above the latest).
func (s *Scrollback) Scroll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll
}

// ScrollBy adjusts the scroll offset by delta, clamped to [0, len]. It
// reports whether the offset actually changed; no-ops must not trigger a
// redraw.
func (s *Scrollback) ScrollBy(delta int) bool {
	s.mu.Lock()
	next := s.scroll + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.lines) {
		next = len(s.lines)
	}
	changed := next != s.scroll
	s.scroll = next
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// View captures the window of up to height lines ending scroll lines above
// the latest, together with the totals the status line needs. The lines are
// copied out under the lock so a concurrent Append can never produce a torn
// read.
func (s *Scrollback) View(height int) (lines []DisplayLine, total, scroll int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total = len(s.lines)
	scroll = s.scroll

	start := total - height - scroll
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
	}

	lines = make([]DisplayLine, end-start)
	copy(lines, s.lines[start:end])
	return lines, total, scroll
}
