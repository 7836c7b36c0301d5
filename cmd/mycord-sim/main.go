// Command mycord-sim is a development peer for the mycord client. It
// listens for frame-protocol connections, broadcasts chat, announces joins
// and leaves, and can kick clients, so client behavior can be exercised
// without the production server.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"mycord/pkg/protocol"
)

// hub tracks connected clients and fans frames out to all of them.
type hub struct {
	mu      sync.Mutex
	clients map[net.Conn]string
}

func newHub() *hub {
	return &hub{clients: make(map[net.Conn]string)}
}

func (h *hub) add(conn net.Conn, name string) {
	h.mu.Lock()
	h.clients[conn] = name
	h.mu.Unlock()
}

func (h *hub) remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *hub) name(conn net.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients[conn]
}

// broadcast writes the frame to every connected client. Write failures are
// left for the client's own read loop to discover.
func (h *hub) broadcast(f *protocol.Frame) {
	raw := f.Encode()
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		conn.Write(raw)
	}
}

func main() {
	listen := flag.String("listen", ":8080", "Address to listen on")
	kickAfter := flag.Duration("kick-after", 0, "Disconnect every client this long after login (0 = never)")
	echoTwice := flag.Bool("echo-twice", false, "Send every chat broadcast twice, mimicking the upstream duplicate bug")
	flag.Parse()

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
	log.Printf("listening on %s", ln.Addr())

	h := newHub()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		h.broadcast(&protocol.Frame{
			Type:      protocol.TypeDisconnect,
			Timestamp: uint32(time.Now().Unix()),
			Sender:    "server",
			Body:      "Server shutting down",
		})
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept loop done: %v", err)
			return
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetNoDelay(true)
		}
		go handleClient(h, conn, *kickAfter, *echoTwice)
	}
}

func handleClient(h *hub, conn net.Conn, kickAfter time.Duration, echoTwice bool) {
	defer conn.Close()

	for {
		frame, err := protocol.DecodeFrame(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("%s: read: %v", conn.RemoteAddr(), err)
			}
			if name := h.name(conn); name != "" {
				h.remove(conn)
				announce(h, name+" has left")
			}
			return
		}

		switch frame.Type {
		case protocol.TypeLogin:
			name := frame.Sender
			if name == "" {
				name = "anonymous"
			}
			h.add(conn, name)
			log.Printf("%s: login as %q", conn.RemoteAddr(), name)
			announce(h, name+" has joined")
			if kickAfter > 0 {
				time.AfterFunc(kickAfter, func() { kick(conn) })
			}

		case protocol.TypeSend:
			name := h.name(conn)
			if name == "" {
				continue // not logged in
			}
			out := &protocol.Frame{
				Type:      protocol.TypeReceive,
				Timestamp: uint32(time.Now().Unix()),
				Sender:    name,
				Body:      frame.Body,
			}
			h.broadcast(out)
			if echoTwice {
				h.broadcast(out)
			}

		case protocol.TypeLogout:
			name := h.name(conn)
			h.remove(conn)
			log.Printf("%s: logout", conn.RemoteAddr())
			if name != "" {
				announce(h, name+" has left")
			}
			return
		}
	}
}

// announce broadcasts a system line. Bodies are sanitized to printable
// ASCII so every client accepts them.
func announce(h *hub, text string) {
	text = strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return ' '
		}
		return r
	}, text)
	h.broadcast(&protocol.Frame{
		Type:      protocol.TypeSystem,
		Timestamp: uint32(time.Now().Unix()),
		Sender:    "server",
		Body:      text,
	})
}

// kick sends a DISCONNECT to one client and closes it.
func kick(conn net.Conn) {
	f := &protocol.Frame{
		Type:      protocol.TypeDisconnect,
		Timestamp: uint32(time.Now().Unix()),
		Sender:    "server",
		Body:      "Session time limit reached",
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	conn.Write(f.Encode())
	time.AfterFunc(time.Second, func() { conn.Close() })
}
