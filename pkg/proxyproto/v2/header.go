// Package v2 implements the binary (version 2) encoding of the PROXY
// protocol address header.
//
// The wire format is documented in
// https://www.haproxy.org/download/1.8/doc/proxy-protocol.txt; bit-exact
// output is covered by header_test.go.
package v2

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Signature is the fixed 12-byte preamble every v2 header begins with.
var Signature = [12]byte{0x0D, 0x0A, 0x0D, 0x0A, 0x00, 0x0D, 0x0A, 0x51, 0x55, 0x49, 0x54, 0x0A}

// MaxLength is the largest value the 16-bit length field can carry.
const MaxLength = 65535

// Command is the low nibble of the version/command byte.
type Command byte

const (
	Local Command = 0
	Proxy Command = 1
)

// AddressFamily is the high nibble of the family/protocol byte.
type AddressFamily byte

const (
	Unspec AddressFamily = 0
	IPv4   AddressFamily = 1
	IPv6   AddressFamily = 2
	Unix   AddressFamily = 3
)

// Protocol is the low nibble of the family/protocol byte.
type Protocol byte

const (
	ProtoUnspec   Protocol = 0
	ProtoStream   Protocol = 1
	ProtoDatagram Protocol = 2
)

// Header is a fully-populated v2 PROXY protocol header ready for encoding.
type Header struct {
	Command  Command
	Family   AddressFamily
	Protocol Protocol
	SrcIP    net.IP
	DstIP    net.IP
	SrcPort  uint16
	DstPort  uint16
	Payload  []byte
}

func addressBlockLen(family AddressFamily) (int, error) {
	switch family {
	case IPv4:
		return 12, nil
	case IPv6:
		return 36, nil
	case Unix:
		return 216, nil
	default:
		return 0, fmt.Errorf("proxyproto/v2: unsupported address family %v", family)
	}
}

// Encode renders h as the binary v2 header followed by its payload.
// It rejects headers whose declared length (address block plus payload)
// would exceed MaxLength, and headers whose address family does not match
// the length of SrcIP/DstIP.
func (h Header) Encode() ([]byte, error) {
	blockLen, err := addressBlockLen(h.Family)
	if err != nil {
		return nil, err
	}

	var addrBlock []byte
	switch h.Family {
	case IPv4:
		src := h.SrcIP.To4()
		dst := h.DstIP.To4()
		if src == nil || dst == nil {
			return nil, fmt.Errorf("proxyproto/v2: family IPv4 requires 4-byte addresses")
		}
		addrBlock = make([]byte, 0, blockLen)
		addrBlock = append(addrBlock, src...)
		addrBlock = append(addrBlock, dst...)
		addrBlock = binary.BigEndian.AppendUint16(addrBlock, h.SrcPort)
		addrBlock = binary.BigEndian.AppendUint16(addrBlock, h.DstPort)
	case IPv6:
		src := h.SrcIP.To16()
		dst := h.DstIP.To16()
		if src == nil || dst == nil || h.SrcIP.To4() != nil || h.DstIP.To4() != nil {
			return nil, fmt.Errorf("proxyproto/v2: family IPv6 requires 16-byte addresses")
		}
		addrBlock = make([]byte, 0, blockLen)
		addrBlock = append(addrBlock, src...)
		addrBlock = append(addrBlock, dst...)
		addrBlock = binary.BigEndian.AppendUint16(addrBlock, h.SrcPort)
		addrBlock = binary.BigEndian.AppendUint16(addrBlock, h.DstPort)
	default:
		return nil, fmt.Errorf("proxyproto/v2: unsupported address family %v for encoding", h.Family)
	}

	length := len(addrBlock) + len(h.Payload)
	if length > MaxLength {
		return nil, fmt.Errorf("proxyproto/v2: declared length %d exceeds maximum %d", length, MaxLength)
	}

	out := make([]byte, 0, 16+length)
	out = append(out, Signature[:]...)
	out = append(out, byte(2)<<4|byte(h.Command))
	out = append(out, byte(h.Family)<<4|byte(h.Protocol))
	out = binary.BigEndian.AppendUint16(out, uint16(length))
	out = append(out, addrBlock...)
	out = append(out, h.Payload...)
	return out, nil
}
