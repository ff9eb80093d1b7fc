// Package proxy defines the HTTP front of a node, used to read the state of
// the node without going through the CLI.
package proxy

import (
	"net"
	"net/http"
)

// Proxy defines the primitives to implement an http server that handles
// client side requests.
type Proxy interface {
	// Listen starts the proxy server. This call is assumed to be blocking.
	Listen()

	// Stop stops the proxy server.
	Stop()

	// RegisterHandler registers a new handler.
	RegisterHandler(path string, handler func(http.ResponseWriter, *http.Request))

	// GetAddr returns the address the server is listening on, or nil if it is
	// not listening.
	GetAddr() net.Addr
}
