package server

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsUpgradeRequest(t *testing.T) {
	tests := []struct {
		name    string
		upgrade string
		want    bool
	}{
		{name: "websocket", upgrade: "websocket", want: true},
		{name: "other protocol", upgrade: "h2c", want: true},
		{name: "absent", upgrade: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "http://localhost/", nil)
			require.NoError(t, err)
			if tt.upgrade != "" {
				req.Header.Set("Upgrade", tt.upgrade)
			}
			require.Equal(t, tt.want, IsUpgradeRequest(req))
		})
	}
}

func TestWriteHTTP101Response(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTTP101Response(&buf, "test", "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="))

	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"\r\n"
	require.Equal(t, want, buf.String())
}

func TestWritePlainResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlainResponse(&buf, "test"))

	resp, err := http.ReadResponse(bufio.NewReader(&buf), nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, resp.Close)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, PlainResponseBody, string(body))
}

func TestReadHTTPRequest(t *testing.T) {
	raw := "GET /chat HTTP/1.1\r\nHost: example\r\nUpgrade: websocket\r\n\r\n\x81\x00"
	r := bufio.NewReader(strings.NewReader(raw))

	req, err := ReadHTTPRequest(r)
	require.NoError(t, err)
	require.Equal(t, "/chat", req.URL.Path)
	require.True(t, IsUpgradeRequest(req))

	// Bytes after the request stay buffered for the frame parser
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0x00}, rest)

	_, err = ReadHTTPRequest(bufio.NewReader(strings.NewReader("not http\r\n\r\n")))
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteResponses_PropagateWriteErrors(t *testing.T) {
	require.ErrorIs(t, WriteHTTP101Response(failingWriter{}, "test", "key"), io.ErrClosedPipe)
	require.ErrorIs(t, WriteHTTP400Response(failingWriter{}, "test"), io.ErrClosedPipe)
	require.ErrorIs(t, WritePlainResponse(failingWriter{}, "test"), io.ErrClosedPipe)
}
