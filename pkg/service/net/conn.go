// Package net holds the small set of connection-shaped types shared
// between a connecting client Service and the layers that decorate it —
// most importantly the PROXY protocol client layer in
// pkg/proxyproto/client, which needs to write a header to the connection
// before any application bytes are sent.
package net

import (
	"net"

	"mercator-hq/relay/pkg/service"
)

// Conn is the minimal surface a connecting Service's established
// connection must expose: enough to write a preamble and discover the
// remote peer address. Real implementations are typically a *net.TCPConn
// or *net.UDPConn; Conn lets layers depend on an interface instead of a
// concrete stream type.
type Conn interface {
	// WriteAll writes the entirety of p to the connection, looping
	// internally if the underlying transport performs a short write.
	WriteAll(p []byte) error

	// PeerAddr returns the remote address of the established connection.
	PeerAddr() net.Addr
}

// EstablishedClientConnection is the triple returned by a connecting
// Service: the (possibly mutated) context and request that produced the
// connection, plus the connection itself. Ownership of conn transfers to
// whoever receives the triple.
type EstablishedClientConnection[State, Req any] struct {
	Ctx  service.Context[State]
	Req  Req
	Conn Conn
}

// TCPConn adapts a *net.TCPConn to Conn.
type TCPConn struct {
	*net.TCPConn
}

// WriteAll implements Conn by looping write(2) until all of p is sent or
// an error occurs.
func (c TCPConn) WriteAll(p []byte) error {
	return writeAll(c.TCPConn, p)
}

// PeerAddr implements Conn.
func (c TCPConn) PeerAddr() net.Addr {
	return c.TCPConn.RemoteAddr()
}

// UDPConn adapts a connected *net.UDPConn to Conn.
type UDPConn struct {
	*net.UDPConn
	Peer net.Addr
}

// WriteAll implements Conn.
func (c UDPConn) WriteAll(p []byte) error {
	return writeAll(c.UDPConn, p)
}

// PeerAddr implements Conn.
func (c UDPConn) PeerAddr() net.Addr {
	return c.Peer
}

func writeAll(w interface {
	Write([]byte) (int, error)
}, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
