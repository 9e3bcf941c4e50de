package main

import (
	"bufio"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// Send command flags
var (
	sendURL     string
	sendOrigin  string
	sendBinary  bool
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send messages to a WebSocket server",
	Long: `Connect to a WebSocket server, send each argument as one message and close
the connection. With no arguments, each line read from stdin is sent.

Useful for checking a running 'wsrecv server' end to end.`,
	Example: `  # Send two text messages
  wsrecv send hello world

  # Pipe lines from a file
  wsrecv send --url ws://10.0.0.5:8080/ < messages.txt`,
	RunE: runSend,
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendURL, "url", "ws://localhost:8080/", "Server URL")
	f.StringVar(&sendOrigin, "origin", "http://localhost:5500", "Origin header to present")
	f.BoolVar(&sendBinary, "binary", false, "Send binary instead of text messages")
	f.DurationVar(&sendTimeout, "timeout", 5*time.Second, "Handshake and write timeout")
}

func runSend(cmd *cobra.Command, args []string) error {
	header := http.Header{}
	if sendOrigin != "" {
		header.Set("Origin", sendOrigin)
	}

	dialer := websocket.Dialer{HandshakeTimeout: sendTimeout}
	conn, resp, err := dialer.Dial(sendURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("handshake rejected (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("failed to connect to %s: %w", sendURL, err)
	}
	defer func() { _ = conn.Close() }()

	messageType := websocket.TextMessage
	if sendBinary {
		messageType = websocket.BinaryMessage
	}

	send := func(payload string) error {
		if err := conn.SetWriteDeadline(time.Now().Add(sendTimeout)); err != nil {
			return err
		}
		return conn.WriteMessage(messageType, []byte(payload))
	}

	sent := 0
	if len(args) > 0 {
		for _, arg := range args {
			if err := send(arg); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
			sent++
		}
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if err := send(scanner.Text()); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
			sent++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(sendTimeout)); err != nil {
		return fmt.Errorf("failed to send close frame: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d message(s) to %s\n", sent, sendURL)
	return nil
}
