// Package server binds the routing engine to net/http. It adapts wire
// requests into the engine's request type, dispatches them, writes the
// structured response back, and runs the main listener plus a dedicated
// metrics listener with graceful shutdown.
package server
