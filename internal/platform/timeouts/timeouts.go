// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single bookingctl request to the booking service.
const GRPCRequest = 10 * time.Second

// ProviderRequest caps one HTTP lookup against a fact provider.
const ProviderRequest = 5 * time.Second

// BrokerPublish caps one publish (including broker acknowledgment).
const BrokerPublish = 10 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second
