package client

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const defaultPort = "8080"

// ServerAddress is a parsed server target. Display is what status output
// shows, Network selects the transport, and Target is what gets dialed.
type ServerAddress struct {
	Display string
	Network string // "tcp", "ws", or "wss"
	Target  string // host:port for tcp, full URL for websockets
}

// ParseServerAddress accepts a bare host, host:port, or a ws:// / wss://
// URL, and normalizes it into a dialable target.
func ParseServerAddress(raw string) (ServerAddress, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ServerAddress{}, fmt.Errorf("empty server address")
	}

	if strings.HasPrefix(raw, "ws://") || strings.HasPrefix(raw, "wss://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ServerAddress{}, fmt.Errorf("parse server url %q: %w", raw, err)
		}
		if u.Host == "" {
			return ServerAddress{}, fmt.Errorf("server url %q has no host", raw)
		}
		if u.Port() == "" {
			u.Host = net.JoinHostPort(u.Hostname(), defaultPort)
		}
		return ServerAddress{
			Display: u.Host,
			Network: u.Scheme,
			Target:  u.String(),
		}, nil
	}

	hostPort, err := ensurePort(raw)
	if err != nil {
		return ServerAddress{}, err
	}
	return ServerAddress{
		Display: hostPort,
		Network: "tcp",
		Target:  hostPort,
	}, nil
}

// Dial opens a connection using the parsed transport.
func (a ServerAddress) Dial() (net.Conn, error) {
	switch a.Network {
	case "ws", "wss":
		return DialWebSocket(a.Target)
	default:
		conn, err := net.Dial("tcp", a.Target)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", a.Target, err)
		}
		return conn, nil
	}
}

// ensurePort appends the default port when raw has none.
func ensurePort(raw string) (string, error) {
	if _, _, err := net.SplitHostPort(raw); err == nil {
		return raw, nil
	}
	// Bracketed IPv6 literal without a port, or plain hostname
	host := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	if host == "" {
		return "", fmt.Errorf("invalid server address %q", raw)
	}
	return net.JoinHostPort(host, defaultPort), nil
}
