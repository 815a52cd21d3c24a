// Package v1 implements the text (version 1) encoding of the PROXY
// protocol address header, as consumed by pkg/proxyproto/client.
//
// The wire format is documented in
// https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt; bit-exact
// output is covered by addresses_test.go.
package v1

import (
	"fmt"
	"net"
)

// Family identifies the transport family of a v1 address record. The
// core only ever needs TCP4/TCP6 — v1 has no UDP form, and "UNKNOWN" is a
// receiver-side accommodation the client encoder never emits.
type Family string

const (
	TCP4 Family = "TCP4"
	TCP6 Family = "TCP6"
)

// MaxLineLength is the maximum size in bytes of an encoded v1 line,
// including the trailing CRLF, per the PROXY protocol spec.
const MaxLineLength = 107

// Addresses is a v1 PROXY protocol address record.
type Addresses struct {
	Family           Family
	SrcIP, DstIP     net.IP
	SrcPort, DstPort uint16
}

// NewTCP4 builds a v1 TCP4 address record. Callers are responsible for
// passing 4-byte (or 4-in-16) IPv4 addresses; use NewTCP6 for IPv6.
func NewTCP4(src, dst net.IP, srcPort, dstPort uint16) Addresses {
	return Addresses{Family: TCP4, SrcIP: src, DstIP: dst, SrcPort: srcPort, DstPort: dstPort}
}

// NewTCP6 builds a v1 TCP6 address record.
func NewTCP6(src, dst net.IP, srcPort, dstPort uint16) Addresses {
	return Addresses{Family: TCP6, SrcIP: src, DstIP: dst, SrcPort: srcPort, DstPort: dstPort}
}

// Encode renders a as the single ASCII line:
//
//	"PROXY " <family> " " <src-ip> " " <dst-ip> " " <src-port> " " <dst-port> "\r\n"
//
// and rejects it with an error if the result would exceed MaxLineLength
// bytes.
func (a Addresses) Encode() ([]byte, error) {
	line := fmt.Sprintf("PROXY %s %s %s %d %d\r\n", a.Family, a.SrcIP.String(), a.DstIP.String(), a.SrcPort, a.DstPort)
	if len(line) > MaxLineLength {
		return nil, fmt.Errorf("proxyproto/v1: encoded line length %d exceeds maximum %d", len(line), MaxLineLength)
	}
	return []byte(line), nil
}

// String returns the encoded line as a string, or an empty string if
// Encode would fail. Prefer Encode when the error needs to propagate.
func (a Addresses) String() string {
	b, err := a.Encode()
	if err != nil {
		return ""
	}
	return string(b)
}
