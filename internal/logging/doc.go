// Package logging provides structured logging for the wsrecv server.
//
// This package wraps a global zap logger with convenience functions for the
// events the server reports: connections, handshakes, HTTP exchanges and
// decoded WebSocket messages.
//
// # Log Levels
//
//   - Debug: Frame-level detail, raw bytes, hex dumps
//   - Info: Connections, accepted handshakes, messages
//   - Warn: Rejected handshakes, framing errors
//   - Error: Listener and I/O failures
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to WSRECV_LOG_LEVEL; if that is unset too,
// logging is silent.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialized.
package logging
