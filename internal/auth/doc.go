// Package auth implements bearer token admission and OAuth discovery
// metadata for the MCP endpoint.
//
// # Admission
//
// Gate evaluates each request against a static bearer secret and an
// optional Origin allowlist. Failures map to real HTTP statuses rather
// than JSON-RPC errors because a rejected client is not yet part of an
// established protocol session:
//
//   - 500: the server has no configured secret (operator error)
//   - 403: the Origin header is present and not allowlisted
//   - 401: missing, malformed, or wrong bearer token, with a
//     WWW-Authenticate challenge pointing at the discovery document
//
// Token comparison is constant-time (crypto/subtle).
//
// # Discovery
//
// Metadata describes the protected resource per RFC 9728 and is served
// without authentication at:
//
//	GET /.well-known/oauth-protected-resource
//	GET /.well-known/oauth-protected-resource/mcp
//
// The document is built once at startup and never changes.
package auth
