package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// State manages client-side persistent state
type State struct {
	db  *sql.DB
	dir string // Directory where state is stored
}

// OpenState opens or creates the client state database
func OpenState(path string) (*State, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// Client only needs one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	state := &State{
		db:  db,
		dir: dir,
	}

	if err := runStateMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return state, nil
}

// runStateMigrations creates the state schema if it does not exist
func runStateMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS Config (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ConnectionHistory (
			server_address  TEXT PRIMARY KEY,
			last_success_at INTEGER NOT NULL
		);
	`)
	return err
}

// Close closes the state database
func (s *State) Close() error {
	return s.db.Close()
}

// GetConfig retrieves a configuration value
func (s *State) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM Config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetConfig stores a configuration value
func (s *State) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO Config (key, value) VALUES (?, ?)
	`, key, value)
	return err
}

// GetLastUsername returns the last used username
func (s *State) GetLastUsername() string {
	username, _ := s.GetConfig("last_username")
	return username
}

// SetLastUsername stores the last used username
func (s *State) SetLastUsername(username string) error {
	return s.SetConfig("last_username", username)
}

// GetLastServer returns the last server address connected to
func (s *State) GetLastServer() string {
	addr, _ := s.GetConfig("last_server")
	return addr
}

// SetLastServer stores the last server address connected to
func (s *State) SetLastServer(addr string) error {
	return s.SetConfig("last_server", addr)
}

// GetLastMode returns the interface last used, or ModeSpartan when unset
func (s *State) GetLastMode() Mode {
	val, _ := s.GetConfig("last_mode")
	return ParseMode(val)
}

// SetLastMode stores the interface in use at exit
func (s *State) SetLastMode(mode Mode) error {
	return s.SetConfig("last_mode", mode.String())
}

// SaveSuccessfulConnection records a successful connection to a server
func (s *State) SaveSuccessfulConnection(serverAddress string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO ConnectionHistory (server_address, last_success_at)
		VALUES (?, ?)
	`, serverAddress, time.Now().Unix())
	return err
}

// GetFirstRun checks if this is the first time running the client
func (s *State) GetFirstRun() bool {
	val, _ := s.GetConfig("first_run_complete")
	return val != "true"
}

// SetFirstRunComplete marks first run as complete
func (s *State) SetFirstRunComplete() error {
	return s.SetConfig("first_run_complete", "true")
}

// GetStateDir returns the directory where state is stored
func (s *State) GetStateDir() string {
	return s.dir
}
