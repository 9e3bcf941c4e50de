package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"github.com/muurk/wsrecv/internal/protocol"
)

func TestCapture_Path(t *testing.T) {
	c := &Capture{dir: "/tmp/analysis"}
	ts := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	require.Equal(t, filepath.Join("/tmp/analysis", "capture-20240307.jsonl"), c.Path(ts))
}

func TestNewCapture_RequiresDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := NewCapture(filepath.Join(dir, "missing"))
	require.Error(t, err)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = NewCapture(file)
	require.Error(t, err)

	c, err := NewCapture(dir)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestCapture_Save(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCapture(dir)
	require.NoError(t, err)

	fixed := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	require.NoError(t, c.Save("10.0.0.1:1234", 1, protocol.Message{
		Opcode:  protocol.OpcodeText,
		Payload: []byte("hello"),
		Frames:  2,
	}))
	require.NoError(t, c.Save("10.0.0.1:1234", 2, protocol.Message{
		Opcode:  protocol.OpcodeBinary,
		Payload: []byte{0x00, 0x41, 0xFF},
		Frames:  1,
	}))

	data, err := os.ReadFile(filepath.Join(dir, "capture-20240102.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var text MessageAnalysis
	require.NoError(t, sonnet.Unmarshal([]byte(lines[0]), &text))
	require.True(t, fixed.Equal(text.Timestamp))
	require.Equal(t, "text", text.MessageType)
	require.Equal(t, 2, text.Frames)
	require.Equal(t, 5, text.PayloadLen)
	require.Equal(t, "68656c6c6f", text.PayloadHex)
	require.Equal(t, "hello", text.PayloadText)

	var binary MessageAnalysis
	require.NoError(t, sonnet.Unmarshal([]byte(lines[1]), &binary))
	require.Equal(t, "binary", binary.MessageType)
	require.Equal(t, 2, binary.MessageNum)
	require.Equal(t, "0041ff", binary.PayloadHex)
	require.Equal(t, ".A.", binary.PayloadASCII)
	require.Empty(t, binary.PayloadText)
}

func TestReadCapture(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCapture(dir)
	require.NoError(t, err)
	fixed := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	for i, payload := range []string{"one", "two", "three"} {
		require.NoError(t, c.Save("peer", i+1, protocol.Message{
			Opcode:  protocol.OpcodeText,
			Payload: []byte(payload),
			Frames:  1,
		}))
	}

	records, err := ReadCapture(c.Path(fixed))
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "three", records[2].PayloadText)
	require.Equal(t, 3, records[2].MessageNum)

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"message_num\":1}\n\nnot json\n"), 0644))
	_, err = ReadCapture(bad)
	require.ErrorContains(t, err, "bad.jsonl:3")

	_, err = ReadCapture(filepath.Join(dir, "missing.jsonl"))
	require.Error(t, err)
}
