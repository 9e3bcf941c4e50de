// Package protocol implements the server side of the RFC 6455 WebSocket protocol:
// upgrade handshake validation, the handshake responses, and an incremental
// frame parser.
//
// # Handshake
//
// A request is a conforming upgrade request when all of the following hold:
//   - Upgrade header is "websocket" (case-insensitive)
//   - Connection header is "upgrade" (case-insensitive)
//   - Sec-WebSocket-Version header is exactly "13"
//   - Method is exactly "GET"
//   - Origin is in the allow-list
//
// Compliant clients receive:
//
//	HTTP/1.1 101 Switching Protocols\r\n
//	Upgrade: websocket\r\n
//	Connection: Upgrade\r\n
//	Sec-WebSocket-Accept: <base64(sha1(key + GUID))>\r\n
//	\r\n
//
// Everyone else receives a fixed 400 response and the connection is closed.
//
// # Frame Parsing
//
// Stream transports do not preserve frame boundaries, so the Parser is fed
// whatever chunks arrive and decodes as far as the buffered bytes allow:
//
//	HEADER -> LENGTH -> [MASK] -> PAYLOAD -> HEADER ...
//
// A stage without enough input waits for the next Feed call. Output does not
// depend on how the input was chunked.
//
//	p := protocol.NewParser(protocol.WithMessageHandler(func(m protocol.Message) {
//	    fmt.Printf("%s: %s\n", protocol.OpcodeName(m.Opcode), m.Payload)
//	}))
//	for {
//	    n, err := conn.Read(buf)
//	    if err != nil {
//	        return err
//	    }
//	    if err := p.Feed(buf[:n]); err != nil {
//	        return err // fatal for this connection
//	    }
//	}
//
// Fragmented messages are reassembled and delivered once the FIN frame
// arrives. Control frames are delivered as single-frame messages and never
// disturb a data message being reassembled.
package protocol
