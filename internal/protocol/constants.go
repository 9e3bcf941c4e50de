package protocol

// Handshake values required by RFC 6455 section 4.2.1
const (
	UpgradeHeaderValue    = "websocket"
	ConnectionHeaderValue = "upgrade"
	VersionHeaderValue    = "13"
	RequestMethodValue    = "GET"

	// HandshakeGUID is appended to the client key before hashing
	HandshakeGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
)

// DefaultAllowedOrigins is the origin allow-list used when none is configured
var DefaultAllowedOrigins = []string{
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

// Frame size thresholds (RFC 6455 section 5.2)
const (
	// MinFrameSize is the fixed two-byte header every frame starts with
	MinFrameSize = 2

	// MaxDirectLength is the largest length carried in the 7-bit indicator
	MaxDirectLength = 125

	// Length indicators selecting the extended length encodings
	LengthIndicator16 = 126
	LengthIndicator64 = 127

	extendedLength16Size = 2
	extendedLength64Size = 8
	maskKeySize          = 4
)

// WebSocket frame opcodes
const (
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA
)

// Frame header bits
const (
	finBit     = 0x80
	rsv1Bit    = 0x40
	rsv2Bit    = 0x20
	rsv3Bit    = 0x10
	opcodeMask = 0x0F
	maskBit    = 0x80
	lengthMask = 0x7F
)
