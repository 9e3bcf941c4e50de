// Package config loads the wsrecv server configuration.
//
// Configuration is layered, later layers winning:
//  1. Built-in defaults (Default)
//  2. A YAML file, either given explicitly or found at the default location
//  3. Environment variables (SERVER_PORT, WSRECV_ALLOWED_ORIGINS)
//  4. Command line flags, applied by the caller
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/wsrecv/config.yaml or $HOME/.config/wsrecv/config.yaml
//   - macOS: $HOME/.config/wsrecv/config.yaml
//   - Windows: %LOCALAPPDATA%\wsrecv\config.yaml
//
// # Example
//
//	version: 1
//	host: ""
//	port: 8080
//	allowed_origins:
//	  - http://localhost:5500
//	  - http://127.0.0.1:5500
//	log_level: debug
//	analysis_dir: ./captures
//	max_message_size: 1048576
//	idle_timeout: 60s
//	advertise: true
package config
