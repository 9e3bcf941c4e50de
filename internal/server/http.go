package server

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/muurk/wsrecv/internal/logging"
	"github.com/muurk/wsrecv/internal/protocol"
	"go.uber.org/zap"
)

// PlainResponseBody is returned to clients that connect without asking for an upgrade
const PlainResponseBody = "Hello, I am server."

// WriteHTTP101Response completes the handshake.
// Header order and casing are fixed for client interoperability:
//
//	HTTP/1.1 101 Switching Protocols\r\n
//	Upgrade: websocket\r\n
//	Connection: Upgrade\r\n
//	Sec-WebSocket-Accept: <key>\r\n
//	\r\n
func WriteHTTP101Response(w io.Writer, remoteAddr string, acceptKey string) error {
	response := protocol.SwitchingProtocolsResponse(acceptKey)

	logging.LogRawBytes("HTTP 101 Response", response)

	n, err := w.Write(response)
	if err != nil {
		return fmt.Errorf("failed to write HTTP 101 response: %w", err)
	}

	logging.Debug("Sent HTTP 101 Switching Protocols response",
		zap.String("remote_addr", remoteAddr),
		zap.Int("bytes_written", n),
	)

	logging.LogHTTPResponse(remoteAddr, http.StatusSwitchingProtocols, map[string]string{
		"Upgrade":              "websocket",
		"Connection":           "Upgrade",
		"Sec-WebSocket-Accept": acceptKey,
	})

	return nil
}

// WriteHTTP400Response rejects a non-compliant upgrade request.
// The caller must close the connection afterwards.
func WriteHTTP400Response(w io.Writer, remoteAddr string) error {
	response := protocol.BadRequestResponse()

	logging.LogRawBytes("HTTP 400 Response", response)

	if _, err := w.Write(response); err != nil {
		return fmt.Errorf("failed to write HTTP 400 response: %w", err)
	}

	logging.LogHTTPResponse(remoteAddr, http.StatusBadRequest, map[string]string{
		"Connection":     "close",
		"Content-Type":   "text/plain",
		"Content-Length": strconv.Itoa(len(protocol.RejectionMessage)),
	})

	return nil
}

// WritePlainResponse answers an ordinary HTTP request
func WritePlainResponse(w io.Writer, remoteAddr string) error {
	response := "HTTP/1.1 200 OK\r\n" +
		"Connection: close\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: " + strconv.Itoa(len(PlainResponseBody)) + "\r\n" +
		"\r\n" +
		PlainResponseBody

	if _, err := io.WriteString(w, response); err != nil {
		return fmt.Errorf("failed to write HTTP 200 response: %w", err)
	}

	logging.LogHTTPResponse(remoteAddr, http.StatusOK, map[string]string{
		"Connection":   "close",
		"Content-Type": "text/plain",
	})

	return nil
}

// IsUpgradeRequest reports whether the client asked for a protocol upgrade.
// Whether the upgrade is acceptable is decided by the handshake validator.
func IsUpgradeRequest(req *http.Request) bool {
	return req.Header.Get("Upgrade") != ""
}

// ReadHTTPRequest reads an HTTP request from a raw connection
// This is used before we've upgraded to WebSocket
func ReadHTTPRequest(r *bufio.Reader) (*http.Request, error) {
	req, err := http.ReadRequest(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTTP request: %w", err)
	}
	return req, nil
}

// LogHTTPRequestDetails logs all details of an HTTP request
func LogHTTPRequestDetails(req *http.Request, remoteAddr string) {
	headers := make(map[string]string)
	for key, values := range req.Header {
		headers[key] = strings.Join(values, ", ")
	}

	logging.LogHTTPRequest(remoteAddr, req.Method, req.URL.Path, headers)

	logging.Debug("WebSocket upgrade request details",
		zap.String("remote_addr", remoteAddr),
		zap.String("host", req.Host),
		zap.String("origin", req.Header.Get("Origin")),
		zap.String("sec_websocket_key", req.Header.Get("Sec-WebSocket-Key")),
		zap.String("sec_websocket_version", req.Header.Get("Sec-WebSocket-Version")),
		zap.String("sec_websocket_protocol", req.Header.Get("Sec-WebSocket-Protocol")),
		zap.String("user_agent", req.Header.Get("User-Agent")),
	)
}
