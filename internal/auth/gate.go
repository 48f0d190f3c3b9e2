// ABOUTME: Bearer token admission checks for the MCP endpoint
// ABOUTME: Evaluates origin allowlists and the static bearer secret per request

package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// bearerPrefix is the case-sensitive scheme prefix required on the
// Authorization header.
const bearerPrefix = "Bearer "

// Decision is the outcome of evaluating one request's credentials.
// Computed fresh per request and never cached: the token is a static
// secret, not session state.
type Decision struct {
	Admitted bool

	// Status is the HTTP status to write when not admitted (401, 403, or 500).
	Status int

	// Challenge is the WWW-Authenticate header value to write verbatim
	// on 401 responses. Empty on 403 and 500.
	Challenge string
}

// Gate decides whether incoming MCP requests are admitted. It checks
// the Origin header against an allowlist and the Authorization header
// against the configured bearer secret. Read-only after construction.
type Gate struct {
	token          string
	allowedOrigins map[string]struct{}
	challenge      string
}

// NewGate creates a Gate for the given static bearer secret.
// An empty allowedOrigins list disables the origin check.
// resourceMetadataURL is advertised in the WWW-Authenticate challenge
// so OAuth-aware clients can locate the discovery document.
func NewGate(token string, allowedOrigins []string, resourceMetadataURL string) *Gate {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Gate{
		token:          token,
		allowedOrigins: origins,
		challenge:      fmt.Sprintf("Bearer realm=%q, resource_metadata=%q", "mcp", resourceMetadataURL),
	}
}

// Evaluate runs the admission checks in order, short-circuiting on the
// first failure:
//
//  1. no configured token -> 500 (operator error, no challenge)
//  2. origin present but not allowlisted -> 403 (checked before auth so
//     browser clients are rejected without leaking auth semantics)
//  3. missing or malformed Authorization header -> 401 + challenge
//  4. token mismatch -> 401 + challenge
//
// Wrong tokens get 401 rather than 403, matching OAuth bearer usage:
// 403 is reserved for origin rejection.
func (g *Gate) Evaluate(origin, authorizationHeader string) Decision {
	if g.token == "" {
		return Decision{Status: http.StatusInternalServerError}
	}

	if len(g.allowedOrigins) > 0 && origin != "" {
		if _, ok := g.allowedOrigins[origin]; !ok {
			return Decision{Status: http.StatusForbidden}
		}
	}

	if !strings.HasPrefix(authorizationHeader, bearerPrefix) {
		return Decision{Status: http.StatusUnauthorized, Challenge: g.challenge}
	}

	token := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, bearerPrefix))

	// Constant-time comparison to avoid timing side-channels on the secret.
	if subtle.ConstantTimeCompare([]byte(token), []byte(g.token)) != 1 {
		return Decision{Status: http.StatusUnauthorized, Challenge: g.challenge}
	}

	return Decision{Admitted: true}
}

// EvaluateRequest is a convenience wrapper extracting the relevant
// headers from an HTTP request.
func (g *Gate) EvaluateRequest(r *http.Request) Decision {
	return g.Evaluate(r.Header.Get("Origin"), r.Header.Get("Authorization"))
}

// Reject writes the HTTP response for a non-admitted decision: the
// status code, the WWW-Authenticate header when a challenge is set, and
// a small JSON error body.
func (g *Gate) Reject(w http.ResponseWriter, d Decision) {
	if d.Challenge != "" {
		w.Header().Set("WWW-Authenticate", d.Challenge)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.Status)

	var msg string
	switch d.Status {
	case http.StatusInternalServerError:
		msg = "server is not configured: auth token is missing"
	case http.StatusForbidden:
		msg = "origin not allowed"
	default:
		msg = "invalid or missing bearer token"
	}
	fmt.Fprintf(w, `{"error":%q}`+"\n", msg)
}
