package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerAddress(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		network string
		target  string
	}{
		{"bare host", "chat.example.com", "tcp", "chat.example.com:8080"},
		{"host and port", "chat.example.com:9000", "tcp", "chat.example.com:9000"},
		{"localhost", "localhost:8080", "tcp", "localhost:8080"},
		{"ipv4", "10.0.0.5", "tcp", "10.0.0.5:8080"},
		{"ipv6 bracketed", "[::1]", "tcp", "[::1]:8080"},
		{"ipv6 with port", "[::1]:9000", "tcp", "[::1]:9000"},
		{"websocket", "ws://chat.example.com/sock", "ws", "ws://chat.example.com:8080/sock"},
		{"websocket with port", "ws://chat.example.com:9000/sock", "ws", "ws://chat.example.com:9000/sock"},
		{"secure websocket", "wss://chat.example.com:443/sock", "wss", "wss://chat.example.com:443/sock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseServerAddress(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.network, addr.Network)
			assert.Equal(t, tt.target, addr.Target)
		})
	}
}

func TestParseServerAddressErrors(t *testing.T) {
	for _, raw := range []string{"", "   ", "ws://", "[]"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			_, err := ParseServerAddress(raw)
			assert.Error(t, err)
		})
	}
}
