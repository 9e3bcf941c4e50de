package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// State is the stage of the frame currently being decoded
type State int

const (
	StateHeader State = iota
	StateLength
	StateMask
	StatePayload
)

func (s State) String() string {
	switch s {
	case StateHeader:
		return "HEADER"
	case StateLength:
		return "LENGTH"
	case StateMask:
		return "MASK"
	case StatePayload:
		return "PAYLOAD"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Message is a complete, unmasked message reassembled from one or more frames
type Message struct {
	Opcode  byte // Opcode of the frame that started the message
	Payload []byte
	Frames  int
}

// IsText reports whether the payload should be read as UTF-8 text
func (m Message) IsText() bool {
	return m.Opcode == OpcodeText
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithMessageHandler sets the callback invoked for every complete message
func WithMessageHandler(fn func(Message)) ParserOption {
	return func(p *Parser) {
		p.onMessage = fn
	}
}

// WithFrameHandler sets a callback invoked for every decoded frame,
// before the frame is merged into its message
func WithFrameHandler(fn func(*Frame)) ParserOption {
	return func(p *Parser) {
		p.onFrame = fn
	}
}

// WithMaxMessageSize bounds the payload size of a single message.
// Zero means only the host int range applies.
func WithMaxMessageSize(n int) ParserOption {
	return func(p *Parser) {
		p.maxMessageSize = n
	}
}

// Parser incrementally decodes WebSocket frames from a byte stream delivered
// in arbitrary chunks. One Parser belongs to one connection; it is not safe
// for concurrent use.
type Parser struct {
	// Unconsumed input is buf[off:]
	buf []byte
	off int

	state State

	// Current frame
	fin             bool
	rsv             byte
	opcode          byte
	masked          bool
	lengthIndicator byte
	payloadLength   int
	maskKey         [4]byte

	// Current message
	fragments     [][]byte
	fragmentBytes int
	messageOpcode byte

	onMessage      func(Message)
	onFrame        func(*Frame)
	maxMessageSize int

	err error
}

// NewParser creates a Parser waiting for the first frame header
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{state: StateHeader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the stage the parser is waiting in
func (p *Parser) State() State {
	return p.state
}

// Buffered returns the number of received bytes not yet consumed
func (p *Parser) Buffered() int {
	return len(p.buf) - p.off
}

// Err returns the fatal error that stopped the parser, if any
func (p *Parser) Err() error {
	return p.err
}

// Feed appends chunk to the buffer and decodes as far as the buffered bytes
// allow. Running out of input is not an error: the parser keeps its state and
// resumes on the next call. A non-nil error is fatal for the connection and is
// returned again by every later call.
func (p *Parser) Feed(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	p.buf = append(p.buf, chunk...)

	for p.err == nil && p.step() {
	}

	p.compact()
	return p.err
}

// step runs the current stage once and reports whether it made progress
func (p *Parser) step() bool {
	switch p.state {
	case StateHeader:
		return p.parseHeader()
	case StateLength:
		return p.parseLength()
	case StateMask:
		return p.parseMaskKey()
	case StatePayload:
		return p.parsePayload()
	}
	return false
}

func (p *Parser) parseHeader() bool {
	header, ok := p.consume(MinFrameSize)
	if !ok {
		return false
	}

	p.fin = header[0]&finBit != 0
	p.rsv = header[0] & (rsv1Bit | rsv2Bit | rsv3Bit)
	p.opcode = header[0] & opcodeMask
	p.masked = header[1]&maskBit != 0
	p.lengthIndicator = header[1] & lengthMask

	p.state = StateLength
	return true
}

func (p *Parser) parseLength() bool {
	var length uint64

	switch p.lengthIndicator {
	case LengthIndicator16:
		ext, ok := p.consume(extendedLength16Size)
		if !ok {
			return false
		}
		length = uint64(binary.BigEndian.Uint16(ext))
	case LengthIndicator64:
		ext, ok := p.consume(extendedLength64Size)
		if !ok {
			return false
		}
		length = binary.BigEndian.Uint64(ext)
	default:
		length = uint64(p.lengthIndicator)
	}

	if !p.checkLength(length) {
		return false
	}
	p.payloadLength = int(length)

	if p.masked {
		p.state = StateMask
	} else {
		p.state = StatePayload
	}
	return true
}

// checkLength rejects lengths that do not fit an int or exceed the message limit
func (p *Parser) checkLength(length uint64) bool {
	if length > math.MaxInt {
		p.fail(length)
		return false
	}
	if p.maxMessageSize <= 0 {
		return true
	}

	total := length
	if !IsControlOpcode(p.opcode) {
		total += uint64(p.fragmentBytes)
	}
	if total > uint64(p.maxMessageSize) {
		p.fail(length)
		return false
	}
	return true
}

func (p *Parser) fail(length uint64) {
	p.err = &FrameError{Opcode: p.opcode, Length: length, Err: ErrOversizedLength}
}

func (p *Parser) parseMaskKey() bool {
	key, ok := p.consume(maskKeySize)
	if !ok {
		return false
	}
	copy(p.maskKey[:], key)
	p.state = StatePayload
	return true
}

func (p *Parser) parsePayload() bool {
	data, ok := p.consume(p.payloadLength)
	if !ok {
		return false
	}

	// The buffer is reused after compaction, so the payload gets its own storage
	payload := make([]byte, len(data))
	copy(payload, data)
	if p.masked {
		Mask(payload, p.maskKey)
	}

	if p.onFrame != nil {
		p.onFrame(&Frame{
			FIN:     p.fin,
			RSV1:    p.rsv&rsv1Bit != 0,
			RSV2:    p.rsv&rsv2Bit != 0,
			RSV3:    p.rsv&rsv3Bit != 0,
			Opcode:  p.opcode,
			Masked:  p.masked,
			Length:  p.payloadLength,
			MaskKey: p.maskKey,
			Payload: payload,
		})
	}

	p.state = StateHeader

	// Control frames may arrive between the fragments of a data message
	if IsControlOpcode(p.opcode) {
		p.emit(Message{Opcode: p.opcode, Payload: payload, Frames: 1})
		return true
	}

	if len(p.fragments) == 0 {
		p.messageOpcode = p.opcode
	}
	p.fragments = append(p.fragments, payload)
	p.fragmentBytes += len(payload)

	if p.fin {
		p.emit(Message{
			Opcode:  p.messageOpcode,
			Payload: p.joinFragments(),
			Frames:  len(p.fragments),
		})
		p.fragments = nil
		p.fragmentBytes = 0
		p.messageOpcode = 0
	}
	return true
}

func (p *Parser) joinFragments() []byte {
	if len(p.fragments) == 1 {
		return p.fragments[0]
	}
	out := make([]byte, 0, p.fragmentBytes)
	for _, f := range p.fragments {
		out = append(out, f...)
	}
	return out
}

func (p *Parser) emit(msg Message) {
	if p.onMessage != nil {
		p.onMessage(msg)
	}
}

// consume returns the next n buffered bytes, or false without consuming
// anything when fewer than n are available. The returned slice aliases the
// buffer and is only valid until the next Feed.
func (p *Parser) consume(n int) ([]byte, bool) {
	if len(p.buf)-p.off < n {
		return nil, false
	}
	b := p.buf[p.off : p.off+n]
	p.off += n
	return b, true
}

// compact drops consumed bytes from the front of the buffer
func (p *Parser) compact() {
	switch {
	case p.off == len(p.buf):
		p.buf = p.buf[:0]
		p.off = 0
	case p.off > 0 && p.off >= cap(p.buf)/2:
		n := copy(p.buf, p.buf[p.off:])
		p.buf = p.buf[:n]
		p.off = 0
	}
}
