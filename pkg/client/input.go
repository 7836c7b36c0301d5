package client

// Input sizing. The buffer capacity matches the protocol body limit so a
// full line can always be sent as a single frame.
const (
	InputCapacity   = 1023
	HistoryCapacity = 64
)

// InputState is the line editor plus submission history. It is owned by the
// foreground goroutine exclusively and therefore needs no lock.
type InputState struct {
	buf     []byte
	history []string
	cursor  int // history cursor; len(history) is the end-of-history sentinel
}

// NewInputState returns an empty editor.
func NewInputState() *InputState {
	return &InputState{
		buf:     make([]byte, 0, InputCapacity),
		history: make([]string, 0, HistoryCapacity),
	}
}

// String returns the current buffer contents.
func (in *InputState) String() string {
	return string(in.buf)
}

// Len returns the current buffer length in bytes.
func (in *InputState) Len() int {
	return len(in.buf)
}

// Empty reports whether the buffer holds no text.
func (in *InputState) Empty() bool {
	return len(in.buf) == 0
}

// Clear empties the buffer.
func (in *InputState) Clear() {
	in.buf = in.buf[:0]
}

// Set replaces the buffer contents, truncating to capacity.
func (in *InputState) Set(s string) {
	if len(s) > InputCapacity {
		s = s[:InputCapacity]
	}
	in.buf = append(in.buf[:0], s...)
}

// Insert appends a printable byte if there is room, reporting whether the
// buffer changed.
func (in *InputState) Insert(b byte) bool {
	if b < 32 || b > 126 {
		return false
	}
	if len(in.buf) >= InputCapacity {
		return false
	}
	in.buf = append(in.buf, b)
	return true
}

// Backspace removes the last byte, reporting whether the buffer changed.
func (in *InputState) Backspace() bool {
	if len(in.buf) == 0 {
		return false
	}
	in.buf = in.buf[:len(in.buf)-1]
	return true
}

// Push records a submitted line. Empty lines and a line identical to the
// most recent entry are skipped; the oldest entry is evicted once the
// history is full. The cursor is reset to the end-of-history sentinel.
func (in *InputState) Push(s string) {
	defer func() { in.cursor = len(in.history) }()

	if s == "" {
		return
	}
	if n := len(in.history); n > 0 && in.history[n-1] == s {
		return
	}
	if len(in.history) >= HistoryCapacity {
		copy(in.history, in.history[1:])
		in.history[len(in.history)-1] = s
	} else {
		in.history = append(in.history, s)
	}
}

// HistoryPrev steps the cursor one slot toward the oldest entry, flooring
// there, and loads that entry into the buffer. It reports whether an entry
// was loaded.
func (in *InputState) HistoryPrev() bool {
	if len(in.history) == 0 {
		return false
	}
	if in.cursor > 0 {
		in.cursor--
	}
	in.Set(in.history[in.cursor])
	return true
}

// HistoryNext steps the cursor one slot toward the newest entry. At the
// end-of-history sentinel the buffer is cleared instead. Always changes the
// buffer when any history exists.
func (in *InputState) HistoryNext() bool {
	if len(in.history) == 0 {
		return false
	}
	if in.cursor < len(in.history) {
		in.cursor++
	}
	if in.cursor == len(in.history) {
		in.Clear()
	} else {
		in.Set(in.history[in.cursor])
	}
	return true
}

// ResetCursor moves the history cursor back to the end-of-history sentinel.
func (in *InputState) ResetCursor() {
	in.cursor = len(in.history)
}

// History returns a copy of the recorded submissions, oldest first. Editing
// and recall go through HistoryPrev/HistoryNext; this is an inspection
// accessor only.
func (in *InputState) History() []string {
	out := make([]string, len(in.history))
	copy(out, in.history)
	return out
}
