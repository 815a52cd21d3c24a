// Relay is a composable PROXY-protocol-aware connection relay.
//
// It accepts inbound TCP connections, runs them through a configurable
// stack of request/response middleware layers, and dials an upstream
// behind a client-side PROXY protocol (v1 or v2) header so the upstream
// learns the original client's address without TCP option games.
//
// Usage:
//
//	# Start the relay with default configuration
//	relay run
//
//	# Start with a custom configuration file
//	relay run --config /path/to/config.yaml
//
//	# Validate a configuration file without starting the listener
//	relay config validate --config /path/to/config.yaml
//
//	# Validate and flag suspicious-but-valid configuration
//	relay config lint --config /path/to/config.yaml
//
//	# Show version information
//	relay version
//
// For complete documentation, see: https://github.com/mercator-hq/relay
package main

func main() {
	Execute()
}
