//go:build integration

package test

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"mercator-hq/relay/pkg/proxyproto/client"
	"mercator-hq/relay/pkg/service"
	"mercator-hq/relay/pkg/service/middleware"
	netx "mercator-hq/relay/pkg/service/net"
)

type testState struct{}

type dialRequest struct {
	address string
}

// dialService dials the request's address over TCP and wraps the result
// the way cmd/relay's leaf service does.
func dialService() service.Service[testState, dialRequest, netx.EstablishedClientConnection[testState, dialRequest]] {
	return service.ServiceFunc[testState, dialRequest, netx.EstablishedClientConnection[testState, dialRequest]](
		func(ctx service.Context[testState], req dialRequest) (netx.EstablishedClientConnection[testState, dialRequest], error) {
			var zero netx.EstablishedClientConnection[testState, dialRequest]
			d := net.Dialer{Timeout: 5 * time.Second}
			conn, err := d.DialContext(ctx.Std(), "tcp", req.address)
			if err != nil {
				return zero, err
			}
			tcp := conn.(*net.TCPConn)
			return netx.EstablishedClientConnection[testState, dialRequest]{
				Ctx:  ctx,
				Req:  req,
				Conn: netx.TCPConn{TCPConn: tcp},
			}, nil
		},
	)
}

// startUpstream starts a TCP listener that reads everything its first
// connection sends until EOF and delivers the bytes on the returned
// channel.
func startUpstream(t *testing.T) (net.Addr, <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	return ln.Addr(), received
}

// TestProxyHeaderPrecedesApplicationBytes drives a real TCP dial through
// a Stack holding the PROXY v1 client layer and asserts the upstream sees
// the header as the very first bytes on the wire, ahead of anything the
// application writes.
func TestProxyHeaderPrecedesApplicationBytes(t *testing.T) {
	upstreamAddr, received := startUpstream(t)

	stack := service.NewStack[testState, dialRequest, netx.EstablishedClientConnection[testState, dialRequest]]().
		Push(middleware.Timeout[testState, dialRequest, netx.EstablishedClientConnection[testState, dialRequest]](5 * time.Second)).
		Push(client.NewLayer[testState, dialRequest](client.NewTCP().V1()))

	svc := stack.Then(dialService())

	ctx := service.New(context.Background(), testState{})
	service.Insert(&ctx, netx.NewSocketInfo(nil, &net.TCPAddr{IP: net.ParseIP("127.0.1.2"), Port: 80}))

	ecc, err := svc.Serve(ctx, dialRequest{address: upstreamAddr.String()})
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}

	if err := ecc.Conn.WriteAll([]byte("application payload")); err != nil {
		t.Fatalf("write application bytes: %v", err)
	}
	ecc.Conn.(netx.TCPConn).Close()

	var data []byte
	select {
	case data = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream never received any bytes")
	}

	upstreamPort := upstreamAddr.(*net.TCPAddr).Port
	wantPrefix := "PROXY TCP4 127.0.1.2 127.0.0.1 80 "
	got := string(data)
	if len(got) < len(wantPrefix) || got[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("upstream received %q, want prefix %q", got, wantPrefix)
	}
	wantLine := wantPrefix + strconv.Itoa(upstreamPort) + "\r\n"
	if got[:len(wantLine)] != wantLine {
		t.Fatalf("upstream received %q, want header line %q", got, wantLine)
	}
	if got[len(wantLine):] != "application payload" {
		t.Fatalf("application bytes corrupted: %q", got[len(wantLine):])
	}
}

// TestProxyV2HeaderOnRealConnection does the same over the binary v2
// format, checking the signature and the recovered source address.
func TestProxyV2HeaderOnRealConnection(t *testing.T) {
	upstreamAddr, received := startUpstream(t)

	svc := client.NewLayer[testState, dialRequest](client.NewTCP().Payload([]byte{0x2A})).
		Layer(dialService())

	ctx := service.New(context.Background(), testState{})
	service.Insert(&ctx, netx.NewSocketInfo(nil, &net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 443}))

	ecc, err := svc.Serve(ctx, dialRequest{address: upstreamAddr.String()})
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	ecc.Conn.(netx.TCPConn).Close()

	var data []byte
	select {
	case data = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream never received any bytes")
	}

	signature := []byte{0x0D, 0x0A, 0x0D, 0x0A, 0x00, 0x0D, 0x0A, 0x51, 0x55, 0x49, 0x54, 0x0A}
	if len(data) < 16+12+1 {
		t.Fatalf("header too short: %d bytes", len(data))
	}
	for i, b := range signature {
		if data[i] != b {
			t.Fatalf("signature byte %d = %#x, want %#x", i, data[i], b)
		}
	}
	if data[12] != 0x21 {
		t.Fatalf("version/command byte = %#x, want 0x21", data[12])
	}
	if data[13] != 0x11 {
		t.Fatalf("family/protocol byte = %#x, want 0x11 (IPv4|Stream)", data[13])
	}
	length := int(data[14])<<8 | int(data[15])
	if length != 13 {
		t.Fatalf("declared length = %d, want 13 (12-byte IPv4 block + 1-byte payload)", length)
	}
	srcIP := net.IPv4(data[16], data[17], data[18], data[19])
	if !srcIP.Equal(net.ParseIP("10.0.0.7")) {
		t.Fatalf("recovered src = %s, want 10.0.0.7", srcIP)
	}
	srcPort := int(data[24])<<8 | int(data[25])
	if srcPort != 443 {
		t.Fatalf("recovered src port = %d, want 443", srcPort)
	}
	if data[16+12] != 0x2A {
		t.Fatalf("payload byte = %#x, want 0x2A", data[16+12])
	}
}

