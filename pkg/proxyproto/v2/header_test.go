package v2

import (
	"bytes"
	"encoding/hex"
	"net"
	"strings"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

func TestEncodeTCPIPv4(t *testing.T) {
	h := Header{
		Command: Proxy, Family: IPv4, Protocol: ProtoStream,
		SrcIP: net.ParseIP("127.0.0.1"), DstIP: net.ParseIP("192.168.1.1"),
		SrcPort: 80, DstPort: 443,
		Payload: []byte{0x2A},
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := mustHex(t, "0D0A0D0A000D0A515549540A 21 11 000D 7F000001 C0A80101 0050 01BB 2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("got  % X\nwant % X", got, want)
	}
}

func TestEncodeUDPIPv4(t *testing.T) {
	h := Header{
		Command: Proxy, Family: IPv4, Protocol: ProtoDatagram,
		SrcIP: net.ParseIP("127.0.0.1"), DstIP: net.ParseIP("192.168.1.1"),
		SrcPort: 80, DstPort: 443,
		Payload: []byte{0x2A},
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got[13] != 0x12 {
		t.Fatalf("byte[13] = %#x, want 0x12", got[13])
	}
	want := mustHex(t, "0D0A0D0A000D0A515549540A 21 12 000D 7F000001 C0A80101 0050 01BB 2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("got  % X\nwant % X", got, want)
	}
}

func TestEncodeTCPIPv6(t *testing.T) {
	src := net.ParseIP("1234:5678:90ab:cdef:fedc:ba09:8765:4321")
	dst := net.ParseIP("4321:8765:ba09:fedc:cdef:90ab:5678:1234")
	h := Header{
		Command: Proxy, Family: IPv6, Protocol: ProtoStream,
		SrcIP: src, DstIP: dst,
		SrcPort: 80, DstPort: 443,
		Payload: []byte{0x2A},
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := mustHex(t,
		"0D0A0D0A000D0A515549540A"+
			"21 21 0025"+
			"12345678 90ABCDEF FEDCBA09 87654321"+
			"43218765 BA09FEDC CDEF90AB 56781234"+
			"0050 01BB 2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("got  % X\nwant % X", got, want)
	}
}

func TestEncodeUDPIPv6(t *testing.T) {
	src := net.ParseIP("1234:5678:90ab:cdef:fedc:ba09:8765:4321")
	dst := net.ParseIP("4321:8765:ba09:fedc:cdef:90ab:5678:1234")
	h := Header{
		Command: Proxy, Family: IPv6, Protocol: ProtoDatagram,
		SrcIP: src, DstIP: dst,
		SrcPort: 80, DstPort: 443,
		Payload: []byte{0x2A},
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got[13] != 0x22 {
		t.Fatalf("byte[13] = %#x, want 0x22", got[13])
	}
}

func TestEncodeBeginsWithSignatureAndVersionNibble(t *testing.T) {
	h := Header{
		Command: Proxy, Family: IPv4, Protocol: ProtoStream,
		SrcIP: net.ParseIP("127.0.0.1"), DstIP: net.ParseIP("192.168.1.1"),
		SrcPort: 1, DstPort: 2,
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got[:12], Signature[:]) {
		t.Fatalf("header does not begin with the fixed signature")
	}
	if got[12]>>4 != 2 {
		t.Fatalf("byte[12] high nibble = %d, want 2", got[12]>>4)
	}
}

func TestEncodeLengthEqualsAddressBlockPlusPayload(t *testing.T) {
	h := Header{
		Command: Proxy, Family: IPv4, Protocol: ProtoStream,
		SrcIP: net.ParseIP("127.0.0.1"), DstIP: net.ParseIP("192.168.1.1"),
		SrcPort: 1, DstPort: 2,
		Payload: []byte{1, 2, 3, 4, 5},
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	length := int(got[14])<<8 | int(got[15])
	if length != 12+5 {
		t.Fatalf("length field = %d, want %d", length, 17)
	}
}

func TestEncodeOmitsZeroLengthPayloadFromLength(t *testing.T) {
	h := Header{
		Command: Proxy, Family: IPv4, Protocol: ProtoStream,
		SrcIP: net.ParseIP("127.0.0.1"), DstIP: net.ParseIP("192.168.1.1"),
		SrcPort: 1, DstPort: 2,
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	length := int(got[14])<<8 | int(got[15])
	if length != 12 {
		t.Fatalf("length field = %d, want 12 (address block only)", length)
	}
	if len(got) != 16+12 {
		t.Fatalf("total encoded length = %d, want %d", len(got), 16+12)
	}
}

func TestEncodeRejectsPayloadOversize(t *testing.T) {
	h := Header{
		Command: Proxy, Family: IPv4, Protocol: ProtoStream,
		SrcIP: net.ParseIP("127.0.0.1"), DstIP: net.ParseIP("192.168.1.1"),
		SrcPort: 1, DstPort: 2,
		Payload: make([]byte, MaxLength),
	}
	if _, err := h.Encode(); err == nil {
		t.Fatalf("expected error for oversize payload")
	}
}

func TestBuilderInfersIPv4Family(t *testing.T) {
	h, err := NewBuilder(ProtoStream).
		WithIPv4(net.ParseIP("127.0.0.1"), net.ParseIP("192.168.1.1"), 80, 443).
		WithPayload([]byte{0x2A}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.Family != IPv4 {
		t.Fatalf("Family = %v, want IPv4", h.Family)
	}
	got, err := h.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := mustHex(t, "0D0A0D0A000D0A515549540A 21 11 000D 7F000001 C0A80101 0050 01BB 2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("got  % X\nwant % X", got, want)
	}
}

func TestBuilderOmitsZeroLengthPayload(t *testing.T) {
	h, err := NewBuilder(ProtoStream).
		WithIPv4(net.ParseIP("127.0.0.1"), net.ParseIP("192.168.1.1"), 80, 443).
		WithPayload(nil).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.Payload != nil {
		t.Fatalf("expected nil payload, got %v", h.Payload)
	}
}
