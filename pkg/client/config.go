package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// TOMLConfig represents the structure of the client config file
type TOMLConfig struct {
	Server ServerSection `toml:"server"`
	UI     UISection     `toml:"ui"`
}

type ServerSection struct {
	Address string `toml:"address"`
}

type UISection struct {
	TUI       bool `toml:"tui"`
	Gravemind bool `toml:"gravemind"`
	Quiet     bool `toml:"quiet"`
	StartMenu bool `toml:"start_menu"`
}

// DefaultTOMLConfig returns the default TOML configuration
func DefaultTOMLConfig() TOMLConfig {
	return TOMLConfig{
		Server: ServerSection{
			Address: "localhost:8080",
		},
		UI: UISection{
			TUI:       true,
			Gravemind: false,
			Quiet:     false,
			StartMenu: true,
		},
	}
}

// LoadConfig loads configuration from a TOML file, creates a default one if
// not found, and applies environment variable overrides
func LoadConfig(path string) (TOMLConfig, error) {
	// Expand ~ in path
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return TOMLConfig{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, create default config
		config := DefaultTOMLConfig()
		if err := writeDefaultConfig(path, config); err != nil {
			// If we can't write, just return defaults without error
			// (might be a permissions issue, but we can still run)
			return applyEnvOverrides(config), nil
		}
		return applyEnvOverrides(config), nil
	}

	var config TOMLConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return TOMLConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnvOverrides(config), nil
}

// applyEnvOverrides applies environment variable overrides to the config
// Environment variables follow the pattern: MYCORD_SECTION_KEY
// Example: MYCORD_SERVER_ADDRESS=chat.example.com:9000
func applyEnvOverrides(config TOMLConfig) TOMLConfig {
	if val := os.Getenv("MYCORD_SERVER_ADDRESS"); val != "" {
		config.Server.Address = val
	}
	if val := os.Getenv("MYCORD_UI_TUI"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.UI.TUI = b
		}
	}
	if val := os.Getenv("MYCORD_UI_GRAVEMIND"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.UI.Gravemind = b
		}
	}
	if val := os.Getenv("MYCORD_UI_QUIET"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.UI.Quiet = b
		}
	}
	if val := os.Getenv("MYCORD_UI_START_MENU"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.UI.StartMenu = b
		}
	}
	return config
}

// writeDefaultConfig writes the default config to a file with the options
// documented
func writeDefaultConfig(path string, config TOMLConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	content := fmt.Sprintf(`# mycord client configuration
# This file was auto-generated with default values
#
# Environment variables can override these settings:
#   MYCORD_SERVER_ADDRESS
#   MYCORD_UI_TUI, MYCORD_UI_GRAVEMIND, MYCORD_UI_QUIET, MYCORD_UI_START_MENU

[server]
# Server address. Plain host:port dials TCP; ws:// and wss:// URLs use
# a WebSocket transport.
address = %q

[ui]
# Full-screen terminal interface. Set to false for line-oriented output.
tui = %t

# Start in the Gravemind interface instead of the Spartan one.
gravemind = %t

# Suppress desktop notifications for @mentions.
quiet = %t

# Show the start menu before connecting.
start_menu = %t
`, config.Server.Address, config.UI.TUI, config.UI.Gravemind, config.UI.Quiet, config.UI.StartMenu)

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
