package protocol

import (
	"testing"

	"pgregory.net/rapid"
)

// TestFrameRoundTrip tests that any frame with in-range fields survives an
// encode/decode cycle byte-for-byte.
func TestFrameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kinds := []uint32{TypeLogin, TypeLogout, TypeSend, TypeReceive, TypeDisconnect, TypeSystem}

		original := &Frame{
			Type:      rapid.SampledFrom(kinds).Draw(t, "type"),
			Timestamp: rapid.Uint32().Draw(t, "timestamp"),
			Sender:    printableString(t, "sender", MaxSenderLen),
			Body:      printableString(t, "body", MaxBodyLen),
		}

		encoded := original.Encode()
		if len(encoded) != FrameSize {
			t.Fatalf("encoded size %d, want %d", len(encoded), FrameSize)
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}

		if decoded.Type != original.Type {
			t.Fatalf("type mismatch: got %d, want %d", decoded.Type, original.Type)
		}
		if decoded.Timestamp != original.Timestamp {
			t.Fatalf("timestamp mismatch: got %d, want %d", decoded.Timestamp, original.Timestamp)
		}
		if decoded.Sender != original.Sender {
			t.Fatalf("sender mismatch: got %q, want %q", decoded.Sender, original.Sender)
		}
		if decoded.Body != original.Body {
			t.Fatalf("body mismatch: got %q, want %q", decoded.Body, original.Body)
		}
	})
}

// TestValidateBodyRejectsOutOfRange tests that any body containing a byte
// below 32 or above 126 fails validation.
func TestValidateBodyRejectsOutOfRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := printableString(t, "prefix", 50)
		suffix := printableString(t, "suffix", 50)

		bad := rapid.OneOf(
			rapid.ByteRange(0, 31),
			rapid.ByteRange(127, 255),
		).Draw(t, "bad")

		body := prefix + string([]byte{bad}) + suffix
		if err := ValidateBody(body); err != ErrUnprintableByte {
			t.Fatalf("ValidateBody(%q) = %v, want ErrUnprintableByte", body, err)
		}
	})
}

// TestValidateBodyAcceptsPrintable tests that any non-empty printable-ASCII
// body up to the limit passes validation.
func TestValidateBodyAcceptsPrintable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, MaxBodyLen).Draw(t, "len")
		body := make([]byte, n)
		for i := range body {
			body[i] = rapid.ByteRange(32, 126).Draw(t, "byte")
		}
		if err := ValidateBody(string(body)); err != nil {
			t.Fatalf("ValidateBody rejected printable body: %v", err)
		}
	})
}

func printableString(t *rapid.T, label string, maxLen int) string {
	n := rapid.IntRange(0, maxLen).Draw(t, label+"Len")
	b := make([]byte, n)
	for i := range b {
		b[i] = rapid.ByteRange(32, 126).Draw(t, label+"Byte")
	}
	return string(b)
}
