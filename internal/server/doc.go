// Package server implements the transport side of the WebSocket server.
//
// It owns the TCP listener and, for each connection:
//  1. Reads one HTTP/1.1 request
//  2. Answers plain requests with a fixed 200 response
//  3. Validates upgrade requests and writes the 101 or 400 response
//  4. Pumps every received chunk into a protocol.Parser bound to the connection
//
// # Handshake Responses
//
// Compliant upgrade requests receive:
//
//	HTTP/1.1 101 Switching Protocols\r\n
//	Upgrade: websocket\r\n
//	Connection: Upgrade\r\n
//	Sec-WebSocket-Accept: <key>\r\n
//	\r\n
//
// Non-compliant ones receive a 400 with "Connection: close", after which the
// connection is closed.
//
// # Message Handling
//
// Decoded messages are logged, optionally appended to a JSONL capture file
// (see Capture), and passed to the MessageHandler given to New. The server
// never writes to an upgraded connection. A close frame or a framing error
// ends the connection.
//
// # Usage Example
//
//	cfg := config.Default()
//	cfg.Port = 8080
//
//	srv, err := server.New(cfg, server.WithMessageHandler(func(addr string, m protocol.Message) {
//	    fmt.Printf("%s: %s\n", addr, m.Payload)
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until shutdown signal or error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Each connection runs in its own goroutine with its own parser. Nothing
// about a connection's stream state is shared with other connections.
package server
