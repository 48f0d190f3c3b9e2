// Package tools provides the tool registry and argument validation for
// the MCP server.
//
// # Registry
//
// The Registry maps tool names to descriptors. It is built during
// process startup by explicit Register calls from each tool module and
// frozen before the HTTP listener accepts connections; serving-time
// access is read-only. Duplicate names fail registration, making a
// name collision a startup error rather than a runtime surprise.
//
// tools/list enumerates descriptors in registration order.
//
// # Validation
//
// Each descriptor's input schema is compiled at registration time with
// gojsonschema, so malformed schemas abort startup. Call arguments are
// validated before the handler runs; failures produce a list of
// Violation values (property path plus reason) that the dispatcher
// forwards as JSON-RPC error data.
package tools
