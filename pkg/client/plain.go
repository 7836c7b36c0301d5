package client

import (
	"bufio"
	"fmt"

	"mycord/pkg/protocol"
)

// plainLoop is the line-oriented fallback for non-tty sessions. Frames are
// printed as they arrive and each input line becomes one message.
func (s *Session) plainLoop() {
	s.menuDone.Store(true)
	fmt.Fprintln(s.out, "Connected. Type '!disconnect' to disconnect.")

	sc := bufio.NewScanner(s.keys)
	sc.Buffer(make([]byte, 0, InputCapacity+1), InputCapacity+1)

	for s.running.Load() && sc.Scan() {
		text := sc.Text()
		if text == "" {
			continue
		}

		if cmd, ok := localCommands[text]; ok {
			cmd(s)
			continue
		}

		frame, err := protocol.NewSend(text)
		if err != nil {
			fmt.Fprintln(s.out, validationMessage(err))
			continue
		}
		if err := frame.EncodeTo(s.conn); err != nil {
			s.logf("write error: %v", err)
			fmt.Fprintln(s.out, "Write error - connection lost")
			s.Stop(StopConnLost)
			return
		}
	}

	// Scanner stopped: stdin closed or the cancel reader was cancelled.
	s.Stop(StopInputClosed)
}

// formatPlain renders one line for plain output.
func (s *Session) formatPlain(dl DisplayLine) string {
	switch dl.Kind {
	case LineChat:
		return fmt.Sprintf("[%s] %s: %s", dl.Time, dl.Author, dl.Text)
	case LineSystem:
		return fmt.Sprintf("[%s] %s", dl.Author, dl.Text)
	case LineDisconnect:
		return fmt.Sprintf("[%s] %s", dl.Author, dl.Text)
	case LineLocal:
		return dl.Text
	default:
		return fmt.Sprintf("[%s] %s: %s", dl.Time, dl.Author, dl.Text)
	}
}
