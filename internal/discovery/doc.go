// Package discovery advertises and finds wsrecv servers over mDNS.
//
// A running server registers itself as a "_websocket._tcp" service in the
// "local." domain. The TXT record carries the request path and the protocol
// version:
//
//	path=/
//	version=13
//
// # Usage Example
//
//	adv, err := discovery.Advertise("wsrecv", 8080)
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	endpoints, err := discovery.NewScanner().Scan(ctx)
//	for _, ep := range endpoints {
//	    fmt.Println(ep.URL())
//	}
//
// Live discovery needs multicast on the local network, so tests only cover
// entry parsing.
package discovery
