package net

import "net"

// SocketInfo is the context-carried record of the local peer address of an
// established outgoing connection. It is the fallback source of truth the
// PROXY client layer uses to determine the "source" address when no
// Forwarded extension is present (see pkg/proxyproto/client).
type SocketInfo struct {
	local net.Addr
	peer  net.Addr
}

// NewSocketInfo builds a SocketInfo. local may be nil when the local
// address of the connection is not known or not relevant.
func NewSocketInfo(local, peer net.Addr) SocketInfo {
	return SocketInfo{local: local, peer: peer}
}

// PeerAddr returns the remote peer address this SocketInfo was recorded
// for.
func (s SocketInfo) PeerAddr() net.Addr {
	return s.peer
}

// LocalAddr returns the local address of the connection, if known.
func (s SocketInfo) LocalAddr() net.Addr {
	return s.local
}
