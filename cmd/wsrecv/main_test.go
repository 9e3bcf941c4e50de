package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muurk/wsrecv/internal/config"
	"github.com/muurk/wsrecv/internal/protocol"
	"github.com/muurk/wsrecv/internal/server"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  protocol.Message
		want string
	}{
		{
			name: "text",
			msg:  protocol.Message{Opcode: protocol.OpcodeText, Payload: []byte("hi")},
			want: "1.2.3.4:5 text: hi",
		},
		{
			name: "binary",
			msg:  protocol.Message{Opcode: protocol.OpcodeBinary, Payload: []byte{0xde, 0xad}},
			want: "1.2.3.4:5 binary: 2 bytes dead",
		},
		{
			name: "close",
			msg:  protocol.Message{Opcode: protocol.OpcodeClose, Payload: []byte{0x03, 0xe8}},
			want: "1.2.3.4:5 close: 2 bytes 03e8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatMessage("1.2.3.4:5", tt.msg))
		})
	}
}

func TestServerBanner(t *testing.T) {
	cfg := config.Default()
	cfg.MaxMessageSize = 1024
	out := serverBanner(cfg).SetWidth(80).Render()

	require.Contains(t, out, ":8080")
	require.Contains(t, out, "http://localhost:5500")
	require.Contains(t, out, "1024 bytes")
	require.NotContains(t, out, "Idle timeout")
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Cleanup(func() { configOutput, configForce = "", false })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "init", "--output", path})
	require.NoError(t, rootCmd.Execute())
	require.True(t, strings.Contains(out.String(), path))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	// A second run refuses to overwrite
	rootCmd.SetArgs([]string{"config", "init", "--output", path})
	require.Error(t, rootCmd.Execute())

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestSummarize(t *testing.T) {
	s := summarize([]server.MessageAnalysis{
		{RemoteAddr: "a", MessageType: "text", PayloadLen: 3, Frames: 1},
		{RemoteAddr: "a", MessageType: "binary", PayloadLen: 10, Frames: 3},
		{RemoteAddr: "b", MessageType: "text", PayloadLen: 2, Frames: 1},
	})

	require.Equal(t, 3, s.Messages)
	require.Equal(t, 15, s.Bytes)
	require.Equal(t, 1, s.Fragment)
	require.Equal(t, map[string]int{"text": 2, "binary": 1}, s.ByType)
	require.Equal(t, map[string]int{"a": 2, "b": 1}, s.ByClient)
}
