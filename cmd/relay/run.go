package main

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/proxyproto/client"
	"mercator-hq/relay/pkg/service"
	netx "mercator-hq/relay/pkg/service/net"
	"mercator-hq/relay/pkg/service/middleware"
	"mercator-hq/relay/pkg/telemetry/health"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay listener",
	Long: `Start the relay listener with the specified configuration.

relay accepts inbound connections, runs each through the configured stack of
middleware layers, and dials the configured upstream behind a client-side
PROXY protocol header.

Examples:
  # Start with default config
  relay run

  # Start with custom config
  relay run --config /etc/relay/config.yaml

  # Override listen address
  relay run --listen 0.0.0.0:8404

  # Validate config without starting the listener
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the listener")
}

// relayState is the shared State threaded through every Context in the
// connection-establishment Stack. It carries nothing today; it exists so
// the generic Service/Layer framework has a concrete State type to close
// over, and so a future layer needing shared, mutable-by-reference state
// (a connection counter, a shared rate limiter) has somewhere to put it.
type relayState struct{}

// upstreamRequest is the Req flowing through the connection-establishment
// Stack: enough to dial the configured upstream. The accepted downstream
// connection itself travels alongside it via the Context's SocketInfo
// extension, not as part of Req, since Req is what the PROXY client layer
// forwards unchanged once the upstream connection exists.
type upstreamRequest struct {
	network string
	address string
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Listen.Address = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:          cfg.Telemetry.Logging.Level,
		Format:         cfg.Telemetry.Logging.Format,
		AddSource:      cfg.Telemetry.Logging.AddSource,
		RedactPII:      cfg.Telemetry.Logging.RedactSensitive,
		BufferSize:     cfg.Telemetry.Logging.BufferSize,
		RedactPatterns: cfg.Telemetry.Logging.RedactPatterns,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initializing logger: %w", err))
	}
	defer logger.Shutdown()

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	printBanner(cfg)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	tracing.SetBuildVersion(Version)
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initializing tracer: %w", err))
	}
	defer tracer.Shutdown(context.Background())

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("upstream", upstreamHealthCheck(cfg))

	stack, err := buildStack(cfg, tracer)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	runCtx := cli.SetupSignalHandler()

	if cfg.Reload.Enabled {
		config.Subscribe(func(*config.Config) {
			logger.Info("configuration reloaded; upstream address, transport and PROXY settings take effect on the next connection",
				"generation", config.Generation())
		})
		watcher, err := config.NewWatcher(cfgFile, cfg.Reload.DebounceInterval, nil)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("starting config watcher: %w", err))
		}
		go func() {
			if err := watcher.Watch(runCtx); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	housekeeping := newHousekeeper(collector, logger)
	if err := housekeeping.Start(runCtx, &cfg.Housekeeping); err != nil {
		return cli.NewCommandError("run", err)
	}

	listener, err := net.Listen(cfg.Listen.Network, cfg.Listen.Address)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("listen on %s: %w", cfg.Listen.Address, err))
	}

	if cfg.Listen.TLS.Enabled {
		tlsConfig, err := buildTLSConfig(&cfg.Listen.TLS)
		if err != nil {
			listener.Close()
			return cli.NewCommandError("run", fmt.Errorf("configuring TLS: %w", err))
		}
		listener = tls.NewListener(listener, tlsConfig)
	}

	var telemetryServer *http.Server
	if cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Health.Enabled {
		telemetryServer = startTelemetryServer(cfg, collector, checker, logger)
	}

	logger.Info("relay listening",
		"address", cfg.Listen.Address,
		"network", cfg.Listen.Network,
		"tls", cfg.Listen.TLS.Enabled,
		"upstream", cfg.HaProxy.UpstreamAddress,
	)

	ctx := runCtx

	var wg sync.WaitGroup
	go acceptLoop(ctx, listener, cfg, stack, collector, logger, &wg)

	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections")

	listener.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Listen.ShutdownTimeout)
	defer cancel()

	if telemetryServer != nil {
		telemetryServer.Shutdown(shutdownCtx)
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		logger.Info("all connections drained")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, abandoning in-flight connections")
	}

	return nil
}

// buildStack assembles the connection-establishment Stack from the
// configured layer list, innermost layer last: the configured middleware
// layers wrap the dial in the order given, and the PROXY protocol client
// layer (if enabled) sits innermost since it must run directly against the
// freshly dialed upstream connection before any outer layer observes it.
func buildStack(cfg *config.Config, tracer *tracing.Tracer) (*service.Stack[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]], error) {
	stack := service.NewStack[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]]()

	for _, lc := range cfg.Stack.Layers {
		layer, err := buildLayer(lc, tracer)
		if err != nil {
			return nil, err
		}
		stack.Push(layer)
	}

	if cfg.HaProxy.Enabled {
		hp := client.NewTCP()
		if cfg.HaProxy.Transport == "udp" {
			hp = client.NewUDP()
		}
		if cfg.HaProxy.Version == "v1" {
			hp = hp.V1()
		}
		if cfg.HaProxy.Payload != "" {
			payload, err := hex.DecodeString(cfg.HaProxy.Payload)
			if err != nil {
				return nil, fmt.Errorf("haproxy.payload: invalid hex encoding: %w", err)
			}
			hp = hp.Payload(payload)
		}
		stack.Push(client.NewLayer[relayState, upstreamRequest](hp))
	}

	return stack, nil
}

type relayLayer = service.Layer[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]]

// buildLayer maps a declarative LayerConfig entry to a mounted middleware
// layer. Only layers whose behavior is fully expressible from YAML alone
// are mountable here: timeout, catch_panic and trace. The HTTP-body-shaped
// layers in pkg/service/middleware (compression, decompression, request_id,
// propagate_request_id, request_body_limit, sensitive_headers) and the
// layers that take a compiled predicate or value (filter, add_extension)
// remain available to anyone embedding pkg/service directly, but relay's
// own binary has nothing to drive them from config and rejects them at
// startup instead of silently no-opping.
func buildLayer(lc config.LayerConfig, tracer *tracing.Tracer) (relayLayer, error) {
	switch lc.Name {
	case "timeout":
		return middleware.Timeout[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]](lc.Timeout), nil
	case "catch_panic":
		return middleware.CatchPanic[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]](), nil
	case "trace":
		spanName := lc.SpanName
		if spanName == "" {
			spanName = "relay.dial"
		}
		return middleware.Trace[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]](tracer, spanName), nil
	case "filter", "add_extension", "request_id", "propagate_request_id",
		"compression", "decompression", "request_body_limit", "sensitive_headers":
		return nil, fmt.Errorf("stack layer %q is not mountable from configuration alone; see pkg/service/middleware", lc.Name)
	default:
		return nil, fmt.Errorf("unknown stack layer %q", lc.Name)
	}
}

// acceptLoop accepts downstream connections until ctx is cancelled or the
// listener is closed, handling each on its own goroutine.
func acceptLoop(ctx context.Context, listener net.Listener, cfg *config.Config, stack *service.Stack[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]], collector *metrics.Collector, logger *logging.Logger, wg *sync.WaitGroup) {
	leaf := dialUpstream(cfg, collector)
	svc := stack.Then(leaf)

	for {
		downstream, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Error("accept failed", "error", err)
				return
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			handleConnection(ctx, downstream, cfg, svc, collector, logger)
		}()
	}
}

func handleConnection(ctx context.Context, downstream net.Conn, cfg *config.Config, svc service.Service[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]], collector *metrics.Collector, logger *logging.Logger) {
	defer downstream.Close()

	sctx := service.New(ctx, relayState{})
	service.Insert(&sctx, netx.NewSocketInfo(downstream.LocalAddr(), downstream.RemoteAddr()))

	req := upstreamRequest{
		network: cfg.HaProxy.Transport,
		address: cfg.HaProxy.UpstreamAddress,
	}
	if req.network == "" {
		req.network = cfg.Listen.Network
	}

	start := time.Now()
	conn, err := svc.Serve(sctx, req)
	collector.RecordLayerDuration("stack", time.Since(start))

	if err != nil {
		collector.RecordLayerOutcome("stack", classifyOutcome(err))
		if cfg.HaProxy.Enabled {
			if reason := classifyHeaderError(err); reason != "" {
				collector.RecordHeaderError(cfg.HaProxy.Version, reason)
			}
		}
		logger.WarnContext(ctx, "connection rejected", "remote", downstream.RemoteAddr().String(), "error", err)
		return
	}
	collector.RecordLayerOutcome("stack", metrics.OutcomeSuccess)

	upstream, ok := conn.Conn.(interface {
		io.ReadWriter
		Close() error
	})
	if !ok {
		logger.ErrorContext(ctx, "upstream connection does not support bidirectional copy")
		return
	}

	relayBytes(downstream, upstream)

	family := "tcp4"
	if addr, ok := downstream.RemoteAddr().(*net.TCPAddr); ok && addr.IP.To4() == nil {
		family = "tcp6"
	}
	collector.RecordConnectionClosed(req.network, family)
}

// relayBytes splices bytes bidirectionally between a and b until both
// directions have finished, closing each side's write half as its peer's
// read half reaches EOF.
func relayBytes(a, b interface {
	io.ReadWriter
	Close() error
}) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		io.Copy(b, a)
		if c, ok := b.(interface{ CloseWrite() error }); ok {
			c.CloseWrite()
		}
	}()
	go func() {
		defer wg.Done()
		io.Copy(a, b)
		if c, ok := a.(interface{ CloseWrite() error }); ok {
			c.CloseWrite()
		}
	}()

	wg.Wait()
	a.Close()
	b.Close()
}

// dialUpstream is the leaf Service of the connection-establishment Stack:
// it dials the configured upstream and wraps the result in the shared
// netx.Conn adapters, recording connection and dial metrics along the way.
// The PROXY protocol client layer, pushed innermost in buildStack, wraps
// this leaf directly so it is the first thing to observe (and write to) the
// freshly dialed connection.
func dialUpstream(cfg *config.Config, collector *metrics.Collector) service.Service[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]] {
	return service.ServiceFunc[relayState, upstreamRequest, netx.EstablishedClientConnection[relayState, upstreamRequest]](
		func(ctx service.Context[relayState], req upstreamRequest) (netx.EstablishedClientConnection[relayState, upstreamRequest], error) {
			var zero netx.EstablishedClientConnection[relayState, upstreamRequest]

			dialer := net.Dialer{Timeout: cfg.HaProxy.DialTimeout}
			start := time.Now()
			conn, err := dialer.DialContext(ctx.Std(), req.network, req.address)
			collector.RecordDialLatency(req.network, time.Since(start))
			if err != nil {
				collector.RecordDialError(req.network)
				return zero, fmt.Errorf("dial upstream %s: %w", req.address, err)
			}

			var wrapped netx.Conn
			family := "tcp4"
			switch c := conn.(type) {
			case *net.TCPConn:
				wrapped = netx.TCPConn{TCPConn: c}
				if addr, ok := c.RemoteAddr().(*net.TCPAddr); ok && addr.IP.To4() == nil {
					family = "tcp6"
				}
			case *net.UDPConn:
				wrapped = netx.UDPConn{UDPConn: c, Peer: c.RemoteAddr()}
				if addr, ok := c.RemoteAddr().(*net.UDPAddr); ok && addr.IP.To4() == nil {
					family = "tcp6"
				}
			default:
				conn.Close()
				return zero, fmt.Errorf("dial upstream %s: unsupported connection type %T", req.address, conn)
			}

			collector.RecordConnectionEstablished(req.network, family)

			if cfg.HaProxy.Enabled {
				version := cfg.HaProxy.Version
				if version == "" {
					version = "v2"
				}
				wrapped = &observingConn{Conn: wrapped, raw: conn, onFirstWrite: func(n int) {
					collector.RecordHeaderWritten(version, req.network, family, n)
				}}
			}

			return netx.EstablishedClientConnection[relayState, upstreamRequest]{Ctx: ctx, Req: req, Conn: wrapped}, nil
		},
	)
}

// observingConn wraps a netx.Conn to record the size of the first WriteAll
// call (always the PROXY header, when the haproxy layer is mounted) while
// forwarding Read/Write/Close/CloseWrite to the underlying raw connection
// so relayBytes can still splice bytes after the header is written.
type observingConn struct {
	netx.Conn
	raw          net.Conn
	onFirstWrite func(n int)
}

func (c *observingConn) WriteAll(p []byte) error {
	err := c.Conn.WriteAll(p)
	if err == nil && c.onFirstWrite != nil {
		c.onFirstWrite(len(p))
		c.onFirstWrite = nil
	}
	return err
}

func (c *observingConn) Read(p []byte) (int, error)  { return c.raw.Read(p) }
func (c *observingConn) Write(p []byte) (int, error) { return c.raw.Write(p) }
func (c *observingConn) Close() error                { return c.raw.Close() }

func (c *observingConn) CloseWrite() error {
	if cw, ok := c.raw.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}

// classifyOutcome maps a Stack error to one of the layer outcome labels.
func classifyOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, service.ErrRejected):
		return metrics.OutcomeRejected
	case errors.Is(err, service.ErrInternal):
		return metrics.OutcomePanicked
	default:
		return metrics.OutcomeRejected
	}
}

// classifyHeaderError maps the literal error-context strings produced by
// pkg/proxyproto/client to a short metric label. Returns "" for errors
// that did not originate in the PROXY client layer (e.g. a dial failure).
func classifyHeaderError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "missing src socket address"):
		return "missing_source"
	case strings.Contains(msg, "family mismatch"):
		return "family_mismatch"
	case strings.Contains(msg, "encode header"):
		return "encode"
	case strings.Contains(msg, "write header"):
		return "io"
	case strings.Contains(msg, "impossible configuration"):
		return "configuration"
	default:
		return ""
	}
}

func buildTLSConfig(cfg *config.TLSConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading certificate pair: %w", err)
	}

	minVersion := uint16(tls.VersionTLS13)
	if cfg.MinVersion == "1.2" {
		minVersion = tls.VersionTLS12
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}, nil
}

// upstreamHealthCheck reports readiness by attempting a short-lived dial to
// the configured upstream.
func upstreamHealthCheck(cfg *config.Config) health.CheckFunc {
	return func(ctx context.Context) error {
		if !cfg.HaProxy.Enabled {
			return nil
		}
		d := net.Dialer{}
		conn, err := d.DialContext(ctx, cfg.HaProxy.Transport, cfg.HaProxy.UpstreamAddress)
		if err != nil {
			return fmt.Errorf("upstream unreachable: %w", err)
		}
		conn.Close()
		return nil
	}
}

// startTelemetryServer mounts the Prometheus metrics endpoint and health
// check endpoints on their own HTTP server, independent of the relay
// listener itself.
func startTelemetryServer(cfg *config.Config, collector *metrics.Collector, checker *health.Checker, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()

	if cfg.Telemetry.Metrics.Enabled {
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
	}
	if cfg.Telemetry.Health.Enabled {
		mux.HandleFunc(cfg.Telemetry.Health.LivenessPath, checker.LivenessHandler())
		mux.HandleFunc(cfg.Telemetry.Health.ReadinessPath, checker.ReadinessHandler())
		mux.HandleFunc(cfg.Telemetry.Health.VersionPath, health.VersionHandler(Version, GitCommit, BuildDate))
	}

	addr := fmt.Sprintf(":%d", cfg.Telemetry.Metrics.Port)
	if cfg.Telemetry.Metrics.Port == 0 {
		addr = "127.0.0.1:9404"
	}

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("telemetry server stopped", "error", err)
		}
	}()

	return srv
}

func printBanner(cfg *config.Config) {
	fmt.Printf("relay v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("configuration loaded")
	fmt.Printf("listen: %s %s\n", cfg.Listen.Network, cfg.Listen.Address)
	fmt.Printf("upstream: %s (haproxy enabled: %v)\n", cfg.HaProxy.UpstreamAddress, cfg.HaProxy.Enabled)
}
