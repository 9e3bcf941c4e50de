package config

import (
	"fmt"
	"time"

	"github.com/muurk/wsrecv/internal/protocol"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// ServerConfig is the on-disk configuration of the WebSocket server
type ServerConfig struct {
	Version        int           `yaml:"version"`
	Host           string        `yaml:"host"`                       // Empty = all interfaces
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`            // Origins accepted during the handshake
	LogLevel       string        `yaml:"log_level,omitempty"`
	AnalysisDir    string        `yaml:"analysis_dir,omitempty"`     // Directory for JSONL message captures (empty = disabled)
	MaxMessageSize int           `yaml:"max_message_size,omitempty"` // 0 = unlimited
	IdleTimeout    time.Duration `yaml:"idle_timeout,omitempty"`     // 0 = no read deadline
	Advertise      bool          `yaml:"advertise"`                  // Publish the server over mDNS
	InstanceName   string        `yaml:"instance_name,omitempty"`    // mDNS instance name
}

// Default returns the configuration used when no file is given
func Default() *ServerConfig {
	return &ServerConfig{
		Version:        CurrentVersion,
		Port:           8080,
		AllowedOrigins: append([]string(nil), protocol.DefaultAllowedOrigins...),
		LogLevel:       "info",
		InstanceName:   "wsrecv",
	}
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration for values the server cannot run with
func (c *ServerConfig) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins must not be empty")
	}
	if c.MaxMessageSize < 0 {
		return fmt.Errorf("invalid max_message_size: %d", c.MaxMessageSize)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("invalid idle_timeout: %s", c.IdleTimeout)
	}
	return nil
}
