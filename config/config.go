// Package config handles application configuration.
//
// Configuration comes from three layers applied in order: built-in
// defaults, a simple key = value .conf file, and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds node runtime configuration.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Ledger bootstrap
	Ledger LedgerConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// LedgerConfig holds ledger bootstrap settings. Controller is only
// consulted on a fresh data directory; once a controller set exists in
// the store it wins over this value.
type LedgerConfig struct {
	Controller string `conf:"ledger.controller"` // Hex principal.
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `conf:"log.level"`
	File   string `conf:"log.file"`
	Pretty bool   `conf:"log.pretty"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.meridian
//	macOS:   ~/Library/Application Support/Meridian
//	Windows: %APPDATA%\Meridian
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".meridian"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Meridian")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Meridian")
		}
		return filepath.Join(home, "AppData", "Roaming", "Meridian")
	default:
		return filepath.Join(home, ".meridian")
	}
}

// LedgerDir returns the ledger database directory.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.DataDir, "ledger")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "meridian.conf")
}
