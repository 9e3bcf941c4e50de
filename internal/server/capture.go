package server

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/muurk/wsrecv/internal/logging"
	"github.com/muurk/wsrecv/internal/protocol"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"
)

// maxCaptureLine bounds one JSONL record when reading captures back
const maxCaptureLine = 64 << 20

// MessageAnalysis represents a captured message for analysis
type MessageAnalysis struct {
	Timestamp    time.Time `json:"timestamp"`
	MessageNum   int       `json:"message_num"`
	RemoteAddr   string    `json:"remote_addr"`
	Direction    string    `json:"direction"`
	MessageType  string    `json:"message_type"`
	Opcode       byte      `json:"opcode"`
	Frames       int       `json:"frames"`
	PayloadLen   int       `json:"payload_length"`
	PayloadHex   string    `json:"payload_hex"`
	PayloadASCII string    `json:"payload_ascii"`
	PayloadText  string    `json:"payload_text,omitempty"`
}

// Capture appends decoded messages to daily JSON Lines files
type Capture struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewCapture creates a Capture writing into dir, which must already exist
func NewCapture(dir string) (*Capture, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access analysis directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analysis path is not a directory: %s", dir)
	}
	return &Capture{dir: dir, now: time.Now}, nil
}

// Path returns the capture file used for messages received at t
func (c *Capture) Path(t time.Time) string {
	return filepath.Join(c.dir, fmt.Sprintf("capture-%s.jsonl", t.Format("20060102")))
}

// Save appends one message record
func (c *Capture) Save(remoteAddr string, messageNum int, msg protocol.Message) error {
	timestamp := c.now()

	record := MessageAnalysis{
		Timestamp:    timestamp,
		MessageNum:   messageNum,
		RemoteAddr:   remoteAddr,
		Direction:    "client->server",
		MessageType:  protocol.OpcodeName(msg.Opcode),
		Opcode:       msg.Opcode,
		Frames:       msg.Frames,
		PayloadLen:   len(msg.Payload),
		PayloadHex:   hex.EncodeToString(msg.Payload),
		PayloadASCII: logging.ASCII(msg.Payload),
	}
	if msg.IsText() && utf8.Valid(msg.Payload) {
		record.PayloadText = string(msg.Payload)
	}

	data, err := sonnet.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal message analysis: %w", err)
	}

	filename := c.Path(timestamp)

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open analysis file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to analysis file: %w", err)
	}

	logging.Debug("Saved message to analysis file",
		zap.String("filename", filename),
		zap.Int("message_num", messageNum),
	)
	return nil
}

// ReadCapture loads every record of a capture file.
// Blank lines are skipped; a malformed line is an error naming its line number.
func ReadCapture(path string) ([]MessageAnalysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []MessageAnalysis
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxCaptureLine)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record MessageAnalysis
		if err := sonnet.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}
	return records, nil
}
