package client

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycord/pkg/protocol"
)

// syncBuffer makes bytes.Buffer safe for the concurrent writes a plain-mode
// session produces.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// readFrame pulls one fixed-size frame off the server side of the pipe.
func readFrame(t *testing.T, conn net.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	f, err := protocol.DecodeFrame(conn)
	require.NoError(t, err)
	return f
}

func newPlainSession(t *testing.T, conn net.Conn, keyboard io.Reader, out io.Writer) *Session {
	t.Helper()
	s, err := NewSession(conn, Options{
		Username: "alice",
		Plain:    true,
		Keyboard: keyboard,
		Output:   out,
	})
	require.NoError(t, err)
	return s
}

func TestSessionLoginAndLocalDisconnect(t *testing.T) {
	clientConn, srv := net.Pipe()
	keyR, keyW := io.Pipe()
	out := &syncBuffer{}

	s := newPlainSession(t, clientConn, keyR, out)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	login := readFrame(t, srv)
	assert.Equal(t, protocol.TypeLogin, login.Type)
	assert.Equal(t, "alice", login.Sender)

	_, err := keyW.Write([]byte("!disconnect\n"))
	require.NoError(t, err)

	logout := readFrame(t, srv)
	assert.Equal(t, protocol.TypeLogout, logout.Type)
	assert.Equal(t, "alice", logout.Sender)
	assert.Equal(t, "User has disconnected", logout.Body)

	require.NoError(t, <-done)
	assert.Equal(t, StopLocalCommand, s.Cause())
	assert.False(t, s.Running())

	// The socket is closed after teardown.
	srv.SetReadDeadline(time.Now().Add(time.Second))
	_, err = srv.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestSessionRemoteDisconnect(t *testing.T) {
	clientConn, srv := net.Pipe()
	keyR, keyW := io.Pipe()
	out := &syncBuffer{}

	s := newPlainSession(t, clientConn, keyR, out)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	readFrame(t, srv) // login

	kick := &protocol.Frame{
		Type:      protocol.TypeDisconnect,
		Timestamp: uint32(time.Now().Unix()),
		Sender:    "server",
		Body:      "You have been kicked",
	}
	require.NoError(t, kick.EncodeTo(srv))

	// The keyboard pipe has to end for the plain loop to unblock.
	keyW.Close()

	require.NoError(t, <-done)
	assert.Equal(t, StopRemoteDisconnect, s.Cause())
	assert.Contains(t, out.String(), "You have been kicked")

	// No LOGOUT after a server-initiated disconnect: the next read on the
	// server side sees a closed stream, not a frame.
	srv.SetReadDeadline(time.Now().Add(time.Second))
	_, err := srv.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestSessionSendsChatFrame(t *testing.T) {
	clientConn, srv := net.Pipe()
	keyR, keyW := io.Pipe()
	out := &syncBuffer{}

	s := newPlainSession(t, clientConn, keyR, out)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	readFrame(t, srv) // login

	go keyW.Write([]byte("hello there\n!disconnect\n"))

	msg := readFrame(t, srv)
	assert.Equal(t, protocol.TypeSend, msg.Type)
	assert.Equal(t, "hello there", msg.Body)

	logout := readFrame(t, srv)
	assert.Equal(t, protocol.TypeLogout, logout.Type)
	require.NoError(t, <-done)
}

// startReceiveOnly runs just the receive loop against a session, for tests
// that drive inbound frames without a full Run.
func startReceiveOnly(t *testing.T, s *Session) {
	t.Helper()
	s.running.Store(true)
	s.menuDone.Store(true)
	s.wg.Add(1)
	go s.receiveLoop()
}

func TestReceiveDuplicateSuppression(t *testing.T) {
	clientConn, srv := net.Pipe()
	out := &syncBuffer{}
	s := newPlainSession(t, clientConn, strings.NewReader(""), out)

	startReceiveOnly(t, s)

	frame := &protocol.Frame{
		Type:      protocol.TypeReceive,
		Timestamp: 1700000000,
		Sender:    "bob",
		Body:      "echoed message",
	}
	raw := frame.Encode()
	for i := 0; i < 3; i++ {
		_, err := srv.Write(raw)
		require.NoError(t, err)
	}

	other := &protocol.Frame{
		Type:      protocol.TypeReceive,
		Timestamp: 1700000001,
		Sender:    "bob",
		Body:      "echoed message",
	}
	require.NoError(t, other.EncodeTo(srv))

	srv.Close()
	s.wg.Wait()

	got := out.String()
	assert.Equal(t, 2, strings.Count(got, "echoed message"),
		"identical adjacent frames collapse to one line; a differing timestamp breaks the run")
	assert.Contains(t, got, "Server has disconnected")
	assert.Equal(t, StopConnLost, s.Cause())
}

func TestReceiveClassification(t *testing.T) {
	clientConn, srv := net.Pipe()
	out := &syncBuffer{}
	s := newPlainSession(t, clientConn, strings.NewReader(""), out)

	startReceiveOnly(t, s)

	frames := []*protocol.Frame{
		{Type: protocol.TypeReceive, Timestamp: 1700000000, Sender: "bob", Body: "hi all"},
		{Type: protocol.TypeSystem, Timestamp: 1700000001, Body: "maintenance at noon"},
		{Type: 99, Timestamp: 1700000002, Sender: "x", Body: "future frame"},
	}
	for _, f := range frames {
		require.NoError(t, f.EncodeTo(srv))
	}
	srv.Close()
	s.wg.Wait()

	got := out.String()
	assert.Contains(t, got, "bob: hi all")
	assert.Contains(t, got, "[UNSC] maintenance at noon")
	assert.Contains(t, got, "future frame", "unknown kinds still display")
}

func TestMentionNotification(t *testing.T) {
	clientConn, _ := net.Pipe()
	defer clientConn.Close()
	out := &syncBuffer{}
	s := newPlainSession(t, clientConn, strings.NewReader(""), out)

	var gotSender, gotBody string
	s.notifier = func(sender, body string) {
		gotSender, gotBody = sender, body
	}

	s.maybeNotifyMention("bob", "ping @alice are you there")
	assert.Equal(t, "bob", gotSender)
	assert.Equal(t, "ping @alice are you there", gotBody)

	gotSender, gotBody = "", ""
	s.maybeNotifyMention("bob", "talking about @alicia instead")
	assert.Empty(t, gotSender)

	s.quiet = true
	s.maybeNotifyMention("bob", "hey @alice")
	assert.Empty(t, gotSender, "quiet sessions never notify")
}

func TestStopIsIdempotent(t *testing.T) {
	clientConn, _ := net.Pipe()
	defer clientConn.Close()
	s := newPlainSession(t, clientConn, strings.NewReader(""), &syncBuffer{})

	s.running.Store(true)
	s.Stop(StopConnLost)
	s.Stop(StopLocalCommand)
	s.Stop(StopSignal)

	assert.Equal(t, StopConnLost, s.Cause(), "first stop cause wins")
	assert.False(t, s.Running())
}

func TestLocalCommandsSwitchMode(t *testing.T) {
	clientConn, _ := net.Pipe()
	defer clientConn.Close()
	out := &syncBuffer{}
	s := newPlainSession(t, clientConn, strings.NewReader(""), out)

	require.Equal(t, ModeSpartan, s.Mode())

	localCommands["!gravemind"](s)
	assert.Equal(t, ModeGravemind, s.Mode())
	assert.Contains(t, out.String(), "Switching to Gravemind interface...")

	localCommands["!spartan"](s)
	assert.Equal(t, ModeSpartan, s.Mode())
	assert.Contains(t, out.String(), "Switching to Spartan interface...")

	localCommands["!help"](s)
	assert.Contains(t, out.String(), "Commands: !help !gravemind !spartan !disconnect")
}

func TestDisconnectAliasAccepted(t *testing.T) {
	_, ok := localCommands["!disconect"]
	assert.True(t, ok)
}

func TestPlainValidationMessages(t *testing.T) {
	assert.Equal(t, "Message is too long to send",
		validationMessage(protocol.ErrBodyTooLong))
	assert.Equal(t, "Cannot send non-ASCII characters",
		validationMessage(protocol.ErrUnprintableByte))
	assert.Equal(t, "Message is too short to send",
		validationMessage(protocol.ErrEmptyBody))
}
