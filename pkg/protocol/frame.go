package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// Message kinds. The values are fixed by the wire protocol and agreed with
// the server out of band.
const (
	TypeLogin      uint32 = 0
	TypeLogout     uint32 = 1
	TypeSend       uint32 = 2
	TypeReceive    uint32 = 10
	TypeDisconnect uint32 = 12
	TypeSystem     uint32 = 13
)

// Frame layout constants. Framing is purely positional: every frame is
// exactly FrameSize bytes on the wire, with no length prefix, so both peers
// must agree on the layout out of band.
const (
	// SenderLen is the fixed width of the sender field (null-padded text).
	SenderLen = 32

	// BodyLen is the fixed width of the body field (null-padded text).
	BodyLen = 1024

	// FrameSize is the total wire size: kind (4) + timestamp (4) + sender + body.
	FrameSize = 4 + 4 + SenderLen + BodyLen

	// MaxBodyLen is the longest body that still leaves room for the
	// terminating NUL inside the body field.
	MaxBodyLen = BodyLen - 1

	// MaxSenderLen is the longest sender that still leaves room for the
	// terminating NUL inside the sender field.
	MaxSenderLen = SenderLen - 1
)

// Validation errors (outgoing text rejected before anything is sent).
var (
	ErrEmptyBody       = errors.New("message body is empty")
	ErrBodyTooLong     = errors.New("message body exceeds 1023 bytes")
	ErrUnprintableByte = errors.New("message body contains bytes outside printable ASCII")
)

// ErrShortFrame is returned when fewer than FrameSize bytes are available.
var ErrShortFrame = errors.New("short frame read")

// Frame represents one protocol message.
// Wire format: [Kind (4 bytes, BE)][Timestamp (4 bytes, BE, Unix seconds)]
// [Sender (32 bytes, null-padded)][Body (1024 bytes, null-padded)]
type Frame struct {
	Type      uint32 // Message kind
	Timestamp uint32 // Unix seconds, truncated to 32 bits
	Sender    string // Display name of the originator
	Body      string // Message text
}

// NewLogin builds a LOGIN frame announcing the given display name.
func NewLogin(username string) *Frame {
	return &Frame{
		Type:      TypeLogin,
		Timestamp: now(),
		Sender:    username,
	}
}

// NewLogout builds the LOGOUT frame written during session teardown.
func NewLogout(username string) *Frame {
	return &Frame{
		Type:      TypeLogout,
		Timestamp: now(),
		Sender:    username,
		Body:      "User has disconnected",
	}
}

// NewSend builds an outgoing chat frame. The body is validated before
// anything is constructed; invalid text is never sent.
func NewSend(body string) (*Frame, error) {
	if err := ValidateBody(body); err != nil {
		return nil, err
	}
	return &Frame{
		Type:      TypeSend,
		Timestamp: now(),
		Body:      body,
	}, nil
}

// ValidateBody checks outgoing chat text: non-empty, at most MaxBodyLen
// bytes, and every byte within printable ASCII (32-126). The range excludes
// the escape byte 27, so chat text can never smuggle terminal control
// sequences to the receiving side.
func ValidateBody(body string) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if len(body) > MaxBodyLen {
		return ErrBodyTooLong
	}
	for i := 0; i < len(body); i++ {
		if body[i] < 32 || body[i] > 126 {
			return ErrUnprintableByte
		}
	}
	return nil
}

// Encode serializes the frame to its fixed wire layout. Text fields longer
// than their capacity are truncated; both always end with at least one NUL.
func (f *Frame) Encode() []byte {
	buf := make([]byte, FrameSize)
	binary.BigEndian.PutUint32(buf[0:4], f.Type)
	binary.BigEndian.PutUint32(buf[4:8], f.Timestamp)
	copy(buf[8:8+MaxSenderLen], f.Sender)
	copy(buf[8+SenderLen:8+SenderLen+MaxBodyLen], f.Body)
	return buf
}

// EncodeTo serializes the frame directly to a writer.
func (f *Frame) EncodeTo(w io.Writer) error {
	_, err := w.Write(f.Encode())
	return err
}

// Decode parses a frame from a byte slice. Returns ErrShortFrame if fewer
// than FrameSize bytes are available.
func Decode(data []byte) (*Frame, error) {
	if len(data) < FrameSize {
		return nil, ErrShortFrame
	}
	return &Frame{
		Type:      binary.BigEndian.Uint32(data[0:4]),
		Timestamp: binary.BigEndian.Uint32(data[4:8]),
		Sender:    cstring(data[8 : 8+SenderLen]),
		Body:      cstring(data[8+SenderLen : FrameSize]),
	}, nil
}

// DecodeFrame reads exactly one frame from the reader. io.EOF is returned
// unchanged when the stream ends cleanly before any byte of the frame; a
// partial frame yields ErrShortFrame.
func DecodeFrame(r io.Reader) (*Frame, error) {
	buf := make([]byte, FrameSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	return Decode(buf)
}

// cstring interprets a null-padded fixed-width field as a string, stopping
// at the first NUL.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func now() uint32 {
	return uint32(time.Now().Unix())
}
