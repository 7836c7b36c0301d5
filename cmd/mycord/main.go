// Command mycord is an interactive terminal chat client speaking a
// fixed-size binary frame protocol.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"mycord/pkg/client"
)

func main() {
	os.Exit(run())
}

func run() int {
	server := flag.String("server", "", "Server address (host, host:port, or ws:// / wss:// URL)")
	configPath := flag.String("config", "~/.mycord/config.toml", "Path to config file")
	name := flag.String("name", "", "Display name (default: current OS user)")
	quiet := flag.Bool("quiet", false, "Suppress desktop notifications for @mentions")
	plain := flag.Bool("plain", false, "Line-oriented output instead of the full-screen interface")
	gravemind := flag.Bool("gravemind", false, "Start in the Gravemind interface")
	noMenu := flag.Bool("no-menu", false, "Skip the start menu")
	debug := flag.Bool("debug", false, "Write debug logging to debug.log in the state directory")
	debugLog := flag.String("debug-log", "", "Write debug logging to this file instead of the state directory")
	flag.Parse()

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	state, stateErr := client.OpenState(statePath())
	if stateErr == nil {
		defer state.Close()
	} else {
		// Persistent state is a convenience, not a requirement.
		state = nil
	}

	logPath := *debugLog
	if logPath == "" && *debug {
		if state != nil {
			logPath = filepath.Join(state.GetStateDir(), "debug.log")
		} else {
			logPath = "debug.log"
		}
	}
	var logger *log.Logger
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open debug log: %v\n", err)
			return 1
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	}
	if stateErr != nil && logger != nil {
		logger.Printf("state unavailable: %v", stateErr)
	}

	addrRaw := cfg.Server.Address
	if state != nil && *server == "" {
		if last := state.GetLastServer(); last != "" {
			addrRaw = last
		}
	}
	if *server != "" {
		addrRaw = *server
	}
	addr, err := client.ParseServerAddress(addrRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	username := displayName(*name, state)
	mode := client.ModeSpartan
	if cfg.UI.Gravemind || *gravemind {
		mode = client.ModeGravemind
	} else if state != nil && !*gravemind {
		mode = state.GetLastMode()
	}

	useTUI := cfg.UI.TUI && !*plain && term.IsTerminal(int(os.Stdin.Fd()))

	conn, err := addr.Dial()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\n", addr.Display, err)
		return 1
	}

	opts := client.Options{
		Username:  username,
		Quiet:     cfg.UI.Quiet || *quiet,
		Mode:      mode,
		StartMenu: cfg.UI.StartMenu && !*noMenu,
		Plain:     !useTUI,
		Keyboard:  os.Stdin,
		Output:    os.Stdout,
		Logger:    logger,
	}

	var terminal *client.Terminal
	if useTUI {
		terminal = client.NewTerminal(os.Stdout, int(os.Stdout.Fd()))
		opts.Terminal = terminal
	}

	session, err := client.NewSession(conn, opts)
	if err != nil {
		conn.Close()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		session.Stop(client.StopSignal)
	}()

	if terminal != nil {
		if err := terminal.EnterRaw(); err != nil {
			conn.Close()
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}

	runErr := session.Run()

	if terminal != nil {
		terminal.Restore()
	}
	signal.Stop(sigCh)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		return 1
	}

	if state != nil {
		state.SetLastUsername(username)
		state.SetLastServer(addrRaw)
		state.SetLastMode(session.Mode())
		state.SaveSuccessfulConnection(addr.Display)
		if state.GetFirstRun() {
			state.SetFirstRunComplete()
		}
	}

	switch session.Cause() {
	case client.StopConnLost:
		fmt.Fprintln(os.Stderr, "Connection lost")
		return 1
	case client.StopRemoteDisconnect:
		fmt.Println("Disconnected by server")
		return 0
	default:
		fmt.Println("Disconnected")
		return 0
	}
}

// displayName picks the name announced to the server: the flag if given,
// then the last persisted name, then the OS user, then a fallback.
func displayName(flagName string, state *client.State) string {
	if flagName != "" {
		return flagName
	}
	if state != nil {
		if last := state.GetLastUsername(); last != "" {
			return last
		}
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if env := os.Getenv("USER"); env != "" {
		return env
	}
	return "anonymous"
}

// statePath returns the sqlite state location, honoring XDG_STATE_HOME.
func statePath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "mycord", "state.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mycord", "state.db")
	}
	return filepath.Join(home, ".local", "state", "mycord", "state.db")
}
