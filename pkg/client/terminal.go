package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Terminal owns the screen. All drawing goes through one buffered writer
// and is flushed per frame so partial paints never reach the terminal.
type Terminal struct {
	out    *termenv.Output
	buf    *bufio.Writer
	fd     int
	state  *term.State
	width  int
	height int
}

// RenderState is everything one repaint needs, captured before drawing so
// the renderer never reaches back into shared session state.
type RenderState struct {
	Lines    []DisplayLine
	Total    int
	Scroll   int
	Input    string
	Username string
	Quiet    bool
	Mode     Mode
}

// NewTerminal wraps w for rendering. fd is the tty descriptor used for raw
// mode and size queries; pass -1 when no real tty backs the writer.
func NewTerminal(w io.Writer, fd int) *Terminal {
	buf := bufio.NewWriter(w)
	return &Terminal{
		out: termenv.NewOutput(buf),
		buf: buf,
		fd:  fd,
	}
}

// EnterRaw switches the tty to raw mode and hides the cursor. Must be
// paired with Restore.
func (t *Terminal) EnterRaw() error {
	if t.fd >= 0 {
		state, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("enter raw mode: %w", err)
		}
		t.state = state
	}
	t.out.HideCursor()
	t.buf.Flush()
	return nil
}

// Restore undoes EnterRaw and clears the screen so the shell gets a clean
// prompt back.
func (t *Terminal) Restore() {
	t.out.ShowCursor()
	t.out.ClearScreen()
	t.out.MoveCursor(1, 1)
	t.buf.Flush()
	if t.state != nil {
		term.Restore(t.fd, t.state)
		t.state = nil
	}
}

// Size returns the terminal dimensions, falling back to 80x24 when the
// writer is not a tty.
func (t *Terminal) Size() (cols, rows int) {
	if t.fd >= 0 {
		if c, r, err := term.GetSize(t.fd); err == nil && c > 0 && r > 0 {
			return c, r
		}
	}
	return 80, 24
}

// messageHeight is the number of scrollback rows that fit above the input
// and status chrome.
func messageHeight(rows int) int {
	h := rows - 6
	if h < 5 {
		h = 5
	}
	return h
}

// Render repaints the whole chat view from scratch.
func (t *Terminal) Render(st RenderState) {
	theme := ThemeFor(st.Mode)
	cols, rows := t.Size()
	msgH := messageHeight(rows)

	t.out.ClearScreen()
	t.out.MoveCursor(1, 1)

	rule := theme.Border.Render(strings.Repeat("=", cols))
	t.line(rule)
	t.line(theme.Header.Render(center(fmt.Sprintf(theme.Header2, st.Username), cols)))
	t.line(rule)

	for _, dl := range st.Lines {
		t.line(t.formatLine(dl, theme, st))
	}
	for i := len(st.Lines); i < msgH; i++ {
		t.line("")
	}

	t.line(rule)
	t.line(theme.Prompt + st.Input)

	quiet := ""
	if st.Quiet {
		quiet = " | quiet"
	}
	status := fmt.Sprintf(" Messages: %d | Scroll: %d | Mode: %s%s | !help for commands",
		st.Total, st.Scroll, st.Mode, quiet)
	t.write(theme.Status.Render(status))
	t.buf.Flush()
}

// formatLine styles one scrollback line for the current theme.
func (t *Terminal) formatLine(dl DisplayLine, theme Theme, st RenderState) string {
	text := dl.Text
	switch dl.Kind {
	case LineChat:
		if st.Mode == ModeGravemind {
			text = gravemindFilter(text)
		}
		text = highlightMention(text, st.Username, theme)
		return fmt.Sprintf("%s %s %s",
			theme.Time.Render("["+dl.Time+"]"),
			theme.Name.Render(dl.Author+":"),
			text)
	case LineSystem:
		return theme.System.Render(fmt.Sprintf("[%s] %s", dl.Author, text))
	case LineDisconnect:
		return theme.Error.Render(fmt.Sprintf("[%s] %s", dl.Author, text))
	case LineLocal:
		return theme.Error.Render(text)
	default:
		return fmt.Sprintf("[%s] %s: %s", dl.Time, dl.Author, text)
	}
}

// highlightMention styles the @username token when the line addresses the
// local user. The match is token-bounded, like the notification check, so
// @alice never partially styles @alicia.
func highlightMention(text, username string, theme Theme) string {
	if username == "" || !mentionsUser(text, username) {
		return text
	}
	needle := "@" + username
	var b strings.Builder
	for start := 0; ; {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			b.WriteString(text[start:])
			return b.String()
		}
		end := start + idx + len(needle)
		b.WriteString(text[start : start+idx])
		if end == len(text) || !isNameByte(text[end]) {
			b.WriteString(theme.Mention.Render(needle))
		} else {
			b.WriteString(needle)
		}
		start = end
	}
}

// RenderStartMenu paints the splash screen shown before entering chat.
func (t *Terminal) RenderStartMenu(mode Mode, username string) {
	theme := ThemeFor(mode)
	cols, _ := t.Size()

	t.out.ClearScreen()
	t.out.MoveCursor(1, 1)

	rule := theme.Border.Render(strings.Repeat("=", cols))
	t.line(rule)
	t.line(theme.Header.Render(center(theme.Title, cols)))
	t.line(theme.System.Render(center(theme.Quote, cols)))
	t.line(rule)
	t.line("")
	t.line("  Operator: " + theme.Name.Render(username))
	t.line("  Interface: " + theme.Name.Render(mode.String()))
	t.line("")
	t.line("  [ENTER] connect    [ESC] switch interface    [Q] quit")
	t.buf.Flush()
}

// line writes one row and moves to the next. Raw mode needs the explicit
// carriage return.
func (t *Terminal) line(s string) {
	t.buf.WriteString(s)
	t.buf.WriteString("\r\n")
}

func (t *Terminal) write(s string) {
	t.buf.WriteString(s)
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
