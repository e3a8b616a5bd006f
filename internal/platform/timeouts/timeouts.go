// Package timeouts defines shared timeout constants used by the site binaries.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// WebSocketWrite caps a single websocket frame write.
const WebSocketWrite = 10 * time.Second

// Maintenance caps one maintenance command run.
const Maintenance = time.Minute
