package v2

import "net"

// Builder assembles a Header from source/destination endpoints plus an
// optional trailing payload, picking the right address family and byte
// layout automatically from the IP values supplied.
type Builder struct {
	command  Command
	protocol Protocol
	src      net.IP
	dst      net.IP
	srcPort  uint16
	dstPort  uint16
	payload  []byte
}

// NewBuilder starts a v2 header build for the given transport protocol.
// The address family is inferred later, from WithIPv4/WithIPv6, since the
// wire format encodes family and protocol independently.
func NewBuilder(protocol Protocol) *Builder {
	return &Builder{command: Proxy, protocol: protocol}
}

// WithIPv4 sets the source and destination as IPv4 endpoints.
func (b *Builder) WithIPv4(src, dst net.IP, srcPort, dstPort uint16) *Builder {
	b.src, b.dst, b.srcPort, b.dstPort = src, dst, srcPort, dstPort
	return b
}

// WithIPv6 sets the source and destination as IPv6 endpoints.
func (b *Builder) WithIPv6(src, dst net.IP, srcPort, dstPort uint16) *Builder {
	b.src, b.dst, b.srcPort, b.dstPort = src, dst, srcPort, dstPort
	return b
}

// WithPayload attaches an opaque trailing payload. A nil or zero-length
// payload is omitted from the header entirely; the declared length field
// then counts only the address block.
func (b *Builder) WithPayload(payload []byte) *Builder {
	if len(payload) == 0 {
		b.payload = nil
		return b
	}
	b.payload = payload
	return b
}

// Build resolves the address family from the IP values set via WithIPv4 /
// WithIPv6 and produces the final Header.
func (b *Builder) Build() (Header, error) {
	family := Unspec
	switch {
	case b.src.To4() != nil && b.dst.To4() != nil:
		family = IPv4
	case b.src != nil && b.dst != nil:
		family = IPv6
	}
	return Header{
		Command:  b.command,
		Family:   family,
		Protocol: b.protocol,
		SrcIP:    b.src,
		DstIP:    b.dst,
		SrcPort:  b.srcPort,
		DstPort:  b.dstPort,
		Payload:  b.payload,
	}, nil
}
