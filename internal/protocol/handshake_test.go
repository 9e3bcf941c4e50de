package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"testing"
)

func validHeader() http.Header {
	h := http.Header{}
	h.Set("Upgrade", "websocket")
	h.Set("Connection", "Upgrade")
	h.Set("Sec-WebSocket-Version", "13")
	h.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return h
}

func TestValidateUpgrade(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		mutate  func(h http.Header)
		origin  string
		want    bool
		wantErr error
	}{
		{
			name:   "compliant request",
			method: "GET",
			origin: "http://localhost:5500",
			want:   true,
		},
		{
			name:   "second allowed origin",
			method: "GET",
			origin: "http://127.0.0.1:5500",
			want:   true,
		},
		{
			name:   "header values are case-insensitive",
			method: "GET",
			mutate: func(h http.Header) {
				h.Set("Upgrade", "WebSocket")
				h.Set("Connection", "UPGRADE")
			},
			origin: "http://localhost:5500",
			want:   true,
		},
		{
			name:    "wrong upgrade",
			method:  "GET",
			mutate:  func(h http.Header) { h.Set("Upgrade", "h2c") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadUpgrade,
		},
		{
			name:    "missing upgrade",
			method:  "GET",
			mutate:  func(h http.Header) { h.Del("Upgrade") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadUpgrade,
		},
		{
			name:    "wrong connection",
			method:  "GET",
			mutate:  func(h http.Header) { h.Set("Connection", "keep-alive") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadConnection,
		},
		{
			name:    "missing connection",
			method:  "GET",
			mutate:  func(h http.Header) { h.Del("Connection") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadConnection,
		},
		{
			name:    "wrong version",
			method:  "GET",
			mutate:  func(h http.Header) { h.Set("Sec-WebSocket-Version", "8") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadVersion,
		},
		{
			name:    "version with whitespace",
			method:  "GET",
			mutate:  func(h http.Header) { h.Set("Sec-WebSocket-Version", "13 ") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadVersion,
		},
		{
			name:    "missing version",
			method:  "GET",
			mutate:  func(h http.Header) { h.Del("Sec-WebSocket-Version") },
			origin:  "http://localhost:5500",
			wantErr: ErrBadVersion,
		},
		{
			name:    "POST method",
			method:  "POST",
			origin:  "http://localhost:5500",
			wantErr: ErrBadMethod,
		},
		{
			name:    "lowercase method",
			method:  "get",
			origin:  "http://localhost:5500",
			wantErr: ErrBadMethod,
		},
		{
			name:    "foreign origin",
			method:  "GET",
			origin:  "http://evil.example",
			wantErr: ErrOriginNotAllowed,
		},
		{
			name:    "empty origin",
			method:  "GET",
			origin:  "",
			wantErr: ErrOriginNotAllowed,
		},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeader()
			if tt.mutate != nil {
				tt.mutate(h)
			}

			if got := ValidateUpgrade(tt.method, h, tt.origin); got != tt.want {
				t.Errorf("ValidateUpgrade() = %v, want %v", got, tt.want)
			}

			d := v.Check(tt.method, h, tt.origin)
			if d.OK != tt.want {
				t.Errorf("Check().OK = %v, want %v", d.OK, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(d.Err, tt.wantErr) {
				t.Errorf("Check().Err = %v, want %v", d.Err, tt.wantErr)
			}
			if tt.want && d.ClientKey != "dGhlIHNhbXBsZSBub25jZQ==" {
				t.Errorf("Check().ClientKey = %q", d.ClientKey)
			}
			if !tt.want && d.ClientKey != "" {
				t.Errorf("rejected decision carries client key %q", d.ClientKey)
			}
		})
	}
}

func TestValidateUpgrade_NilHeader(t *testing.T) {
	if ValidateUpgrade("GET", nil, "http://localhost:5500") {
		t.Error("request without headers should be rejected")
	}
}

func TestValidator_CustomOrigins(t *testing.T) {
	v := NewValidator([]string{"https://app.example"})
	h := validHeader()

	if !v.Validate("GET", h, "https://app.example") {
		t.Error("configured origin should be allowed")
	}
	if v.Validate("GET", h, "http://localhost:5500") {
		t.Error("default origin should not be allowed when a list is configured")
	}
}

func TestAcceptKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		// RFC 6455 section 1.3
		{key: "dGhlIHNhbXBsZSBub25jZQ==", want: "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="},
		{key: "x3JJHMbDL1EzLkh9GBhXDw==", want: "HSmrc0sMlYUkAGmm5OPpG2HaGWk="},
	}

	for _, tt := range tests {
		if got := AcceptKey(tt.key); got != tt.want {
			t.Errorf("AcceptKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
		if AcceptKey(tt.key) != AcceptKey(tt.key) {
			t.Errorf("AcceptKey(%q) is not deterministic", tt.key)
		}
	}
}

func TestSwitchingProtocolsResponse(t *testing.T) {
	got := string(SwitchingProtocolsResponse("s3pPLMBiTxaQ9kYGzzhZRbK+xOo="))
	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"\r\n"
	if got != want {
		t.Errorf("SwitchingProtocolsResponse() =\n%q\nwant\n%q", got, want)
	}
}

func TestBadRequestResponse(t *testing.T) {
	raw := BadRequestResponse()

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !resp.Close {
		t.Error("response should request connection close")
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != RejectionMessage {
		t.Errorf("body = %q, want %q", body, RejectionMessage)
	}
	if cl := resp.Header.Get("Content-Length"); cl != strconv.Itoa(len(body)) {
		t.Errorf("Content-Length = %s, body is %d bytes", cl, len(body))
	}
}
