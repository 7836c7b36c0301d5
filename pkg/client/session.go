package client

import (
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/muesli/cancelreader"

	"mycord/pkg/protocol"
)

// StopCause records what triggered session termination. Whichever trigger
// fires first wins; later triggers are no-ops.
type StopCause int32

const (
	StopNone StopCause = iota
	StopLocalCommand     // user typed !disconnect (or quit the start menu)
	StopRemoteDisconnect // server sent a DISCONNECT frame
	StopConnLost         // read/write failure or peer closed the stream
	StopSignal           // process interrupt
	StopInputClosed      // keyboard stream ended
)

func (c StopCause) String() string {
	switch c {
	case StopLocalCommand:
		return "local command"
	case StopRemoteDisconnect:
		return "remote disconnect"
	case StopConnLost:
		return "connection lost"
	case StopSignal:
		return "signal"
	case StopInputClosed:
		return "input closed"
	default:
		return "none"
	}
}

// Options configures a Session.
type Options struct {
	Username  string
	Quiet     bool      // suppress mention alerts and highlighting
	Mode      Mode      // initial flavor mode
	StartMenu bool      // show the start menu before the chat view
	Plain     bool      // line-oriented mode without the TUI
	Keyboard  io.Reader // raw keyboard source, normally os.Stdin
	Output    io.Writer // plain-mode sink, normally os.Stdout
	Terminal  *Terminal // required unless Plain
	Logger    *log.Logger
}

// Session owns one live connection to the server and the three loops that
// service it: the receive loop and announcer loop on their own goroutines,
// and the foreground input/render loop on the caller's. All shared state is
// either atomic (running, mode, dirty) or serialized by the scrollback lock.
//
// The connection is used full-duplex in split fashion: only the foreground
// goroutine writes frames and only the receive loop reads them.
type Session struct {
	conn     net.Conn
	username string
	quiet    bool

	startMenu bool
	plain     bool

	running  atomic.Bool
	cause    atomic.Int32
	mode     atomic.Int32
	dirty    atomic.Bool
	menuDone atomic.Bool

	scrollback *Scrollback
	input      *InputState
	term       *Terminal
	out        io.Writer

	keys  cancelreader.CancelReader
	keyCh chan byte
	done  chan struct{}
	once  sync.Once

	wg sync.WaitGroup

	logger   *log.Logger
	notifier func(sender, body string)
}

// NewSession wraps an established connection. The LOGIN frame is not written
// until Run.
func NewSession(conn net.Conn, opts Options) (*Session, error) {
	if opts.Keyboard == nil {
		return nil, fmt.Errorf("no keyboard source configured")
	}
	if !opts.Plain && opts.Terminal == nil {
		return nil, fmt.Errorf("no terminal configured")
	}

	keys, err := cancelreader.NewReader(opts.Keyboard)
	if err != nil {
		return nil, fmt.Errorf("keyboard reader: %w", err)
	}

	s := &Session{
		conn:      conn,
		username:  opts.Username,
		quiet:     opts.Quiet,
		startMenu: opts.StartMenu,
		plain:     opts.Plain,
		input:     NewInputState(),
		term:      opts.Terminal,
		out:       opts.Output,
		keys:      keys,
		keyCh:     make(chan byte, 128),
		done:      make(chan struct{}),
		logger:    opts.Logger,
		notifier:  desktopNotify,
	}
	s.mode.Store(int32(opts.Mode))
	s.scrollback = NewScrollback(ScrollbackCapacity, s.markDirty)
	return s, nil
}

// Run performs login, services the session until a termination trigger
// fires, then tears everything down. It returns an error only when the
// LOGIN write fails; every in-session failure is surfaced as a scrollback
// line and a normal shutdown instead.
func (s *Session) Run() error {
	if err := protocol.NewLogin(s.username).EncodeTo(s.conn); err != nil {
		return fmt.Errorf("send login: %w", err)
	}
	s.running.Store(true)
	s.logf("logged in as %q", s.username)

	s.wg.Add(2)
	go s.receiveLoop()
	go s.announceLoop()

	if s.plain {
		s.plainLoop()
	} else {
		s.wg.Add(1)
		go s.readKeys()
		s.foregroundLoop()
	}

	s.teardown()
	return nil
}

// Stop requests termination with the given cause. The first caller wins;
// racing triggers never double-close anything because teardown runs exactly
// once, after the foreground loop observes the flag.
func (s *Session) Stop(cause StopCause) {
	if s.running.CompareAndSwap(true, false) {
		s.cause.Store(int32(cause))
		s.dirty.Store(true)
		// Unblock any blocking keyboard read so the foreground loop can
		// observe the flag promptly.
		s.keys.Cancel()
		s.logf("stop requested (%v)", cause)
	}
}

// Running reports whether the session is still live.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Cause returns what terminated the session.
func (s *Session) Cause() StopCause {
	return StopCause(s.cause.Load())
}

// Mode returns the current flavor mode.
func (s *Session) Mode() Mode {
	return Mode(s.mode.Load())
}

func (s *Session) setMode(m Mode) {
	s.mode.Store(int32(m))
	s.markDirty()
}

func (s *Session) toggleMode() {
	if s.Mode() == ModeGravemind {
		s.setMode(ModeSpartan)
	} else {
		s.setMode(ModeGravemind)
	}
}

func (s *Session) markDirty() {
	s.dirty.Store(true)
}

// teardown runs once, after the foreground loop has exited: best-effort
// LOGOUT (unless the peer already ended the logical session), half-close,
// close, then wait for both background loops to observe the flag. Waiting
// before returning prevents a use-after-close read.
func (s *Session) teardown() {
	s.once.Do(func() {
		cause := s.Cause()
		s.logf("terminating (%v)", cause)

		if cause != StopRemoteDisconnect && cause != StopConnLost {
			if err := protocol.NewLogout(s.username).EncodeTo(s.conn); err != nil {
				s.logf("logout write failed: %v", err)
			}
		}

		if tc, ok := s.conn.(*net.TCPConn); ok {
			tc.CloseWrite()
		}
		close(s.done)
		s.keys.Cancel()
		s.conn.Close()
		s.wg.Wait()
		s.logf("session closed")
	})
}

// emit routes a display line to the scrollback (TUI) or straight to the
// output stream (plain mode).
func (s *Session) emit(line DisplayLine) {
	if s.plain {
		if s.out != nil {
			fmt.Fprintln(s.out, s.formatPlain(line))
		}
		return
	}
	s.scrollback.Append(line)
}

// SetLogger sets a logger for debugging session events.
func (s *Session) SetLogger(logger *log.Logger) {
	s.logger = logger
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
