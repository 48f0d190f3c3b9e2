// Package mcp implements the Model Context Protocol endpoint of mcpd.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over the streamable-http transport:
// a single POST endpoint carries requests, and responses come back in
// the HTTP body. Server-initiated streams (SSE) are not supported.
//
//   - POST /mcp - JSON-RPC requests (initialize, tools/list, tools/call)
//   - GET /health - liveness probe
//
// # Authentication
//
// Every POST is gated by a static bearer token:
//
//	Authorization: Bearer <token>
//
// Rejections use real HTTP statuses (401/403/500) because the client is
// not yet part of an established protocol session. Past the gate,
// protocol errors travel inside a 200 response as JSON-RPC error
// objects (-32600, -32601, -32602) with structured data for
// diagnostics.
//
// # Tool Execution
//
// tools/call looks the tool up in the registry, validates the
// arguments against the tool's JSON Schema, and invokes the handler.
// The protocol distinguishes two failure planes: a JSON-RPC error means
// the call mechanism failed (unknown tool, schema violation); a result
// with isError true means the tool ran and reported failure.
//
// # Notifications
//
// Requests without an id (or with a null id) are notifications: the
// method still executes for its side effects, but the response is an
// empty 202 acknowledgement.
//
// # Metrics
//
// Optional Prometheus counters cover request, auth rejection, and tool
// call totals. A nil Metrics records nothing.
package mcp
