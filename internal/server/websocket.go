package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/muurk/wsrecv/internal/logging"
	"github.com/muurk/wsrecv/internal/protocol"
	"go.uber.org/zap"
)

// readBufferSize is the largest chunk handed to the parser at once
const readBufferSize = 4096

// HandleWebSocketConnection pumps bytes from r into a frame parser until the
// peer closes, sends a close frame, or a framing error occurs.
// r must be the reader that consumed the HTTP request so no bytes are lost.
func (s *Server) HandleWebSocketConnection(conn net.Conn, r io.Reader, remoteAddr string) error {
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	defer func() {
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	messageNum := 0
	closeReceived := false

	parser := protocol.NewParser(
		protocol.WithMaxMessageSize(s.config.MaxMessageSize),
		protocol.WithFrameHandler(func(f *protocol.Frame) {
			logging.Debug("WebSocket frame received",
				zap.String("remote_addr", remoteAddr),
				zap.String("frame", f.String()),
			)
		}),
		protocol.WithMessageHandler(func(msg protocol.Message) {
			messageNum++
			s.dispatchMessage(remoteAddr, messageNum, msg)
			if msg.Opcode == protocol.OpcodeClose {
				closeReceived = true
			}
		}),
	)

	buf := make([]byte, readBufferSize)
	for {
		if s.config.IdleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout)); err != nil {
				return fmt.Errorf("failed to set read deadline: %w", err)
			}
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if err := parser.Feed(buf[:n]); err != nil {
				return fmt.Errorf("closing connection on framing error: %w", err)
			}
			if closeReceived {
				logging.Info("Received close frame from client",
					zap.String("remote_addr", remoteAddr),
				)
				return nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, net.ErrClosed) {
				logging.Info("Connection closed by client",
					zap.String("remote_addr", remoteAddr),
					zap.Int("buffered_bytes", parser.Buffered()),
					zap.String("parser_state", parser.State().String()),
				)
				return nil
			}
			return fmt.Errorf("read failed: %w", readErr)
		}
	}
}

// dispatchMessage logs, captures and forwards one decoded message
func (s *Server) dispatchMessage(remoteAddr string, messageNum int, msg protocol.Message) {
	switch msg.Opcode {
	case protocol.OpcodeText, protocol.OpcodeBinary:
		logging.LogWebSocketMessage(remoteAddr, "received", msg.Opcode, msg.Frames, msg.Payload)

	case protocol.OpcodePing, protocol.OpcodePong:
		// No keep-alive replies are sent
		logging.Debug("Received control frame",
			zap.String("remote_addr", remoteAddr),
			zap.String("opcode", protocol.OpcodeName(msg.Opcode)),
		)

	case protocol.OpcodeClose:
		// Close handled by the read loop

	default:
		logging.Warn("Received message with unknown opcode",
			zap.String("remote_addr", remoteAddr),
			zap.String("opcode", protocol.OpcodeName(msg.Opcode)),
			zap.Int("length", len(msg.Payload)),
		)
	}

	if s.capture != nil {
		if err := s.capture.Save(remoteAddr, messageNum, msg); err != nil {
			logging.Error("Failed to save message to analysis file",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
		}
	}

	if s.onMessage != nil {
		s.onMessage(remoteAddr, msg)
	}
}
