package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Handshake rejection reasons
var (
	ErrBadMethod        = errors.New("invalid request method")
	ErrBadUpgrade       = errors.New("invalid Upgrade header")
	ErrBadConnection    = errors.New("invalid Connection header")
	ErrBadVersion       = errors.New("invalid Sec-WebSocket-Version header")
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// RejectionMessage is the plain-text body of the 400 handshake response
const RejectionMessage = "Connection failed as the request does not comply with RFC6455"

// Decision is the verdict of a handshake check.
// ClientKey is only set when OK is true. Err explains a rejection and is
// meant for logs; the peer always receives the same 400 response.
type Decision struct {
	OK        bool
	ClientKey string
	Err       error
}

// Validator checks WebSocket upgrade requests against an origin allow-list
type Validator struct {
	AllowedOrigins []string
}

// NewValidator creates a Validator. An empty list selects DefaultAllowedOrigins.
func NewValidator(allowedOrigins []string) *Validator {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	return &Validator{AllowedOrigins: slices.Clone(allowedOrigins)}
}

// Validate reports whether the request is a conforming upgrade request
func (v *Validator) Validate(method string, header http.Header, origin string) bool {
	return v.Check(method, header, origin).OK
}

// Check validates the request and returns the full decision.
// Absent headers read as empty strings and fail their check.
func (v *Validator) Check(method string, header http.Header, origin string) Decision {
	if err := v.check(method, header, origin); err != nil {
		return Decision{Err: err}
	}
	return Decision{OK: true, ClientKey: header.Get("Sec-WebSocket-Key")}
}

func (v *Validator) check(method string, header http.Header, origin string) error {
	if upgrade := header.Get("Upgrade"); !strings.EqualFold(upgrade, UpgradeHeaderValue) {
		return fmt.Errorf("%w: %q (expected %s)", ErrBadUpgrade, upgrade, UpgradeHeaderValue)
	}
	if connection := header.Get("Connection"); !strings.EqualFold(connection, ConnectionHeaderValue) {
		return fmt.Errorf("%w: %q (expected %s)", ErrBadConnection, connection, ConnectionHeaderValue)
	}
	if version := header.Get("Sec-WebSocket-Version"); version != VersionHeaderValue {
		return fmt.Errorf("%w: %q (expected %s)", ErrBadVersion, version, VersionHeaderValue)
	}
	if method != RequestMethodValue {
		return fmt.Errorf("%w: %q (expected %s)", ErrBadMethod, method, RequestMethodValue)
	}
	if !slices.Contains(v.AllowedOrigins, origin) {
		return fmt.Errorf("%w: %q", ErrOriginNotAllowed, origin)
	}
	return nil
}

var defaultValidator = NewValidator(nil)

// ValidateUpgrade checks a request against DefaultAllowedOrigins
func ValidateUpgrade(method string, header http.Header, origin string) bool {
	return defaultValidator.Validate(method, header, origin)
}

// AcceptKey derives the Sec-WebSocket-Accept value for clientKey
func AcceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + HandshakeGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SwitchingProtocolsResponse builds the 101 response completing the handshake.
// Header order and casing are fixed.
func SwitchingProtocolsResponse(acceptKey string) []byte {
	return []byte("HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + acceptKey + "\r\n" +
		"\r\n")
}

// BadRequestResponse builds the fixed 400 response sent to non-compliant clients
func BadRequestResponse() []byte {
	return []byte("HTTP/1.1 400 Bad Request\r\n" +
		"Connection: close\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: " + strconv.Itoa(len(RejectionMessage)) + "\r\n" +
		"\r\n" +
		RejectionMessage)
}
