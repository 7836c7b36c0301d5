package client

import (
	"errors"
	"time"

	"mycord/pkg/protocol"
)

const (
	// foregroundPoll bounds how long a dirty flag or stop request can go
	// unnoticed between keystrokes.
	foregroundPoll = 75 * time.Millisecond

	// escByteTimeout is how long the parser waits for the next byte of an
	// escape sequence before treating the escape as bare.
	escByteTimeout = 10 * time.Millisecond

	// pageScrollStep is the viewport jump for PgUp/PgDn.
	pageScrollStep = 5
)

// foregroundLoop drives the start menu, keyboard interpretation, and the
// render step. Rendering is edge-triggered off the dirty flag; the ticker
// only bounds how long a lost wakeup can delay a repaint.
func (s *Session) foregroundLoop() {
	if s.startMenu {
		if !s.runStartMenu() {
			return
		}
	}
	s.menuDone.Store(true)

	for _, line := range bootLinesFor(s.Mode()) {
		s.scrollback.Append(line)
	}
	s.scrollback.Append(DisplayLine{Time: "SYSTEM", Author: "SYSTEM", Text: "Connected to server", Kind: LineSystem})
	s.scrollback.Append(DisplayLine{Time: "SYSTEM", Author: "CORTANA", Text: "Type '!help' for available commands", Kind: LineSystem})

	tick := time.NewTicker(foregroundPoll)
	defer tick.Stop()

	for s.running.Load() {
		if s.dirty.CompareAndSwap(true, false) {
			s.render()
		}

		select {
		case b, ok := <-s.keyCh:
			if !ok {
				s.Stop(StopInputClosed)
				return
			}
			s.handleKey(b)
		case <-tick.C:
		}
	}
}

// runStartMenu shows the splash screen until the user proceeds. Returns
// false when the session should end instead of entering the chat view.
func (s *Session) runStartMenu() bool {
	s.term.RenderStartMenu(s.Mode(), s.username)

	tick := time.NewTicker(foregroundPoll)
	defer tick.Stop()

	for s.running.Load() {
		select {
		case b, ok := <-s.keyCh:
			if !ok {
				s.Stop(StopInputClosed)
				return false
			}
			switch {
			case b == 27:
				// Only a bare escape toggles; arrows and other sequences
				// are consumed and ignored so they cannot flip the mode.
				if s.consumeEscapeSequence() {
					continue
				}
				s.toggleMode()
				s.term.RenderStartMenu(s.Mode(), s.username)
			case b == '\r' || b == '\n':
				s.markDirty()
				return true
			case b == 'q' || b == 'Q':
				s.Stop(StopLocalCommand)
				return false
			}
		case <-tick.C:
		}
	}
	return false
}

// handleKey interprets one raw keyboard byte. Only effective changes mark
// the dirty flag; no-ops never schedule a redraw.
func (s *Session) handleKey(b byte) {
	switch {
	case b == '\r' || b == '\n':
		s.submit()
	case b == 127 || b == 8:
		if s.input.Backspace() {
			s.markDirty()
		}
	case b == 27:
		s.handleEscape()
	case b >= 32 && b <= 126:
		if s.input.Insert(b) {
			s.markDirty()
		}
	}
}

// handleEscape consumes the remainder of an escape sequence. Bare escapes
// and unrecognized sequences are discarded outright so control bytes can
// never reach the input buffer.
func (s *Session) handleEscape() {
	s1, ok := s.readKeyTimeout(escByteTimeout)
	if !ok || s1 != '[' {
		return
	}
	s2, ok := s.readKeyTimeout(escByteTimeout)
	if !ok {
		return
	}

	switch s2 {
	case 'A': // up
		if s.input.Empty() {
			s.scrollback.ScrollBy(1)
		} else if s.input.HistoryPrev() {
			s.markDirty()
		}
	case 'B': // down
		if s.input.Empty() {
			s.scrollback.ScrollBy(-1)
		} else if s.input.HistoryNext() {
			s.markDirty()
		}
	case '5': // PgUp: ESC [ 5 ~
		s.readKeyTimeout(escByteTimeout)
		s.scrollback.ScrollBy(pageScrollStep)
	case '6': // PgDn: ESC [ 6 ~
		s.readKeyTimeout(escByteTimeout)
		s.scrollback.ScrollBy(-pageScrollStep)
	}
}

// submit handles Enter: local command, validation failure, or an outgoing
// SEND frame.
func (s *Session) submit() {
	text := s.input.String()
	if text == "" {
		return
	}

	if cmd, ok := localCommands[text]; ok {
		cmd(s)
		s.input.Clear()
		s.input.ResetCursor()
		s.markDirty()
		return
	}

	frame, err := protocol.NewSend(text)
	if err != nil {
		s.emit(DisplayLine{Time: "SYSTEM", Author: "ERROR", Text: validationMessage(err), Kind: LineLocal})
		s.input.Clear()
		s.input.ResetCursor()
		s.markDirty()
		return
	}

	if err := frame.EncodeTo(s.conn); err != nil {
		s.logf("write error: %v", err)
		s.emit(DisplayLine{Time: "SYSTEM", Author: "ERROR", Text: "Write error - connection lost", Kind: LineLocal})
		s.Stop(StopConnLost)
		return
	}

	s.input.Push(text)
	s.input.Clear()
	s.markDirty()
}

// validationMessage maps a codec validation error to the line shown to the
// user.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, protocol.ErrBodyTooLong):
		return "Message is too long to send"
	case errors.Is(err, protocol.ErrUnprintableByte):
		return "Cannot send non-ASCII characters"
	default:
		return "Message is too short to send"
	}
}

// consumeEscapeSequence drains the bytes of an escape sequence that follow
// an already-read ESC. It reports whether any follow-up byte arrived; a bare
// escape yields false.
func (s *Session) consumeEscapeSequence() bool {
	s1, ok := s.readKeyTimeout(escByteTimeout)
	if !ok {
		return false
	}
	if s1 == '[' {
		if s2, ok := s.readKeyTimeout(escByteTimeout); ok && s2 >= '0' && s2 <= '9' {
			s.readKeyTimeout(escByteTimeout) // trailing '~'
		}
	}
	return true
}

// readKeyTimeout waits briefly for the next keyboard byte, for escape
// sequence parsing.
func (s *Session) readKeyTimeout(d time.Duration) (byte, bool) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case b, ok := <-s.keyCh:
		if !ok {
			return 0, false
		}
		return b, true
	case <-t.C:
		return 0, false
	}
}

// readKeys pumps raw bytes from the keyboard into keyCh until the source
// ends or the session shuts down.
func (s *Session) readKeys() {
	defer s.wg.Done()
	defer close(s.keyCh)

	buf := make([]byte, 64)
	for {
		n, err := s.keys.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.keyCh <- b:
			case <-s.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// render paints the current scrollback window and input line. Runs only on
// the foreground goroutine.
func (s *Session) render() {
	_, rows := s.term.Size()
	lines, total, scroll := s.scrollback.View(messageHeight(rows))

	s.term.Render(RenderState{
		Lines:    lines,
		Total:    total,
		Scroll:   scroll,
		Input:    s.input.String(),
		Username: s.username,
		Quiet:    s.quiet,
		Mode:     s.Mode(),
	})
}
