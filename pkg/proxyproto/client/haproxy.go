// Package client implements the client-side PROXY protocol layer: a
// service.Layer that wraps a connection-establishing Service and writes a
// v1 or v2 PROXY protocol header as the first bytes on the connection
// before returning it to the caller.
//
// Error messages carry a stable "PROXY client (vN): <operation>" prefix;
// operators match on it in logs, so the literal strings are load-bearing.
package client

import (
	"errors"
	"fmt"
	"net"

	"mercator-hq/relay/pkg/proxyproto/v1"
	"mercator-hq/relay/pkg/proxyproto/v2"
	"mercator-hq/relay/pkg/service"
	netx "mercator-hq/relay/pkg/service/net"
)

// Transport is the compile-time transport choice for a HaProxy layer.
type Transport int

const (
	TCP Transport = iota
	UDP
)

// Version is the PROXY protocol wire version a HaProxy layer encodes.
type Version int

const (
	V2 Version = iota
	V1
)

// Sentinel errors for the layer's failure modes. Serve wraps these with
// the "PROXY client (vN)" prefix rather than returning them bare, so
// errors.Is keeps working while log matching on the literal message stays
// stable across layer instances.
var (
	// ErrConfiguration is returned by Serve when the transport/version
	// combination is impossible (UDP has no v1 form).
	ErrConfiguration = errors.New("proxyproto/client: impossible configuration")

	// ErrMissingSource is returned when no source address is resolvable
	// from the context (neither Forwarded nor SocketInfo present).
	ErrMissingSource = errors.New("missing src socket address")

	// ErrFamilyMismatch is returned when the resolved source and
	// destination addresses are of different IP families.
	ErrFamilyMismatch = errors.New("family mismatch")
)

// HaProxy configures a PROXY protocol client layer for a given transport,
// wire version and optional trailing payload. Use NewTCP or NewUDP to start
// a configuration, then V1 and Payload to adjust it before calling NewLayer.
type HaProxy struct {
	transport Transport
	version   Version
	payload   []byte
}

// NewTCP starts a TCP HaProxy configuration, defaulting to v2.
func NewTCP() HaProxy {
	return HaProxy{transport: TCP, version: V2}
}

// NewUDP starts a UDP HaProxy configuration. UDP has no v1 form; calling
// V1 on a UDP-transport HaProxy has no effect.
func NewUDP() HaProxy {
	return HaProxy{transport: UDP, version: V2}
}

// V1 downgrades a TCP configuration to the v1 text format. It is a no-op
// on UDP configurations, since UDP+v1 is not a representable combination.
func (h HaProxy) V1() HaProxy {
	if h.transport == UDP {
		return h
	}
	h.version = V1
	return h
}

// Payload attaches a trailing opaque byte payload. Only meaningful for v2;
// silently ignored if the layer is later (or already) downgraded to v1,
// which has no payload section.
func (h HaProxy) Payload(p []byte) HaProxy {
	h.payload = p
	return h
}

func (h HaProxy) validate() error {
	if h.transport == UDP && h.version == V1 {
		return ErrConfiguration
	}
	return nil
}

// NewLayer turns h into a service.Layer that can be pushed onto a Stack
// alongside any other middleware. The resulting Layer decorates an inner
// Service producing an EstablishedClientConnection with PROXY protocol
// header encoding: the returned Service forwards the context and request
// unchanged, and conn has already had its header written by the time it
// is returned.
func NewLayer[State, Req any](h HaProxy) service.Layer[State, Req, netx.EstablishedClientConnection[State, Req]] {
	return service.LayerFunc[State, Req, netx.EstablishedClientConnection[State, Req]](
		func(inner service.Service[State, Req, netx.EstablishedClientConnection[State, Req]]) service.Service[State, Req, netx.EstablishedClientConnection[State, Req]] {
			return &haProxyService[State, Req]{config: h, inner: inner}
		},
	)
}

type haProxyService[State, Req any] struct {
	config HaProxy
	inner  service.Service[State, Req, netx.EstablishedClientConnection[State, Req]]
}

func (s *haProxyService[State, Req]) Serve(ctx service.Context[State], req Req) (netx.EstablishedClientConnection[State, Req], error) {
	var zero netx.EstablishedClientConnection[State, Req]

	prefix := fmt.Sprintf("PROXY client (%s)", versionLabel(s.config.version))

	if err := s.config.validate(); err != nil {
		return zero, fmt.Errorf("%s: %w", prefix, err)
	}

	conn, err := s.inner.Serve(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("proxyproto/client: inner: %w", err)
	}

	dst := conn.Conn.PeerAddr()
	src, ok := resolveSource(conn.Ctx)
	if !ok {
		return zero, fmt.Errorf("%s: %w", prefix, ErrMissingSource)
	}

	srcIP, srcPort, srcErr := splitHostPort(src)
	dstIP, dstPort, dstErr := splitHostPort(dst)
	if srcErr != nil || dstErr != nil {
		return zero, fmt.Errorf("%s: %w", prefix, ErrMissingSource)
	}

	if isIPv4(srcIP) != isIPv4(dstIP) {
		return zero, fmt.Errorf("%s: %w between %s and %s", prefix, ErrFamilyMismatch, src, dst)
	}

	header, err := encodeHeader(s.config, srcIP, dstIP, srcPort, dstPort)
	if err != nil {
		return zero, fmt.Errorf("%s: encode header: %w", prefix, err)
	}

	if err := conn.Conn.WriteAll(header); err != nil {
		return zero, fmt.Errorf("%s: write header: %w", prefix, err)
	}

	return conn, nil
}

func versionLabel(v Version) string {
	if v == V1 {
		return "v1"
	}
	return "v2"
}

// resolveSource resolves the address announced as the header's source:
// a Forwarded extension's client socket address wins when present,
// falling back to the SocketInfo extension's peer address.
func resolveSource[State any](ctx service.Context[State]) (net.Addr, bool) {
	if fwd, ok := service.Get[netx.Forwarded](ctx); ok {
		if addr, ok := fwd.ClientSocketAddr(); ok {
			return addr, true
		}
	}
	if info, ok := service.Get[netx.SocketInfo](ctx); ok {
		return info.PeerAddr(), true
	}
	return nil, false
}

func splitHostPort(addr net.Addr) (net.IP, uint16, error) {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP, uint16(a.Port), nil
	case *net.UDPAddr:
		return a.IP, uint16(a.Port), nil
	default:
		host, portStr, err := net.SplitHostPort(addr.String())
		if err != nil {
			return nil, 0, err
		}
		ip := net.ParseIP(host)
		if ip == nil {
			return nil, 0, fmt.Errorf("proxyproto/client: unparseable host %q", host)
		}
		var port uint16
		if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
			return nil, 0, err
		}
		return ip, port, nil
	}
}

func isIPv4(ip net.IP) bool {
	return ip.To4() != nil
}

func encodeHeader(h HaProxy, src, dst net.IP, srcPort, dstPort uint16) ([]byte, error) {
	if h.version == V1 {
		family := v1.TCP4
		if !isIPv4(src) {
			family = v1.TCP6
		}
		return v1.Addresses{Family: family, SrcIP: src, DstIP: dst, SrcPort: srcPort, DstPort: dstPort}.Encode()
	}

	protocol := v2.ProtoStream
	if h.transport == UDP {
		protocol = v2.ProtoDatagram
	}
	b := v2.NewBuilder(protocol)
	if isIPv4(src) {
		b.WithIPv4(src, dst, srcPort, dstPort)
	} else {
		b.WithIPv6(src, dst, srcPort, dstPort)
	}
	b.WithPayload(h.payload)
	header, err := b.Build()
	if err != nil {
		return nil, err
	}
	return header.Encode()
}
