// ABOUTME: OAuth protected-resource discovery metadata for the MCP endpoint
// ABOUTME: Serves static JSON at the well-known paths, no authentication required

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Well-known paths for protected-resource discovery (RFC 9728).
const (
	DiscoveryPath         = "/.well-known/oauth-protected-resource"
	ResourceDiscoveryPath = "/.well-known/oauth-protected-resource/mcp"
)

// Metadata describes the protected resource for OAuth-aware clients.
// Built once from configuration at startup and immutable for the
// process lifetime.
type Metadata struct {
	Resource              string   `json:"resource"`
	AuthorizationServers  []string `json:"authorization_servers"`
	BearerMethods         []string `json:"bearer_methods_supported"`
	ScopesSupported       []string `json:"scopes_supported,omitempty"`
	ResourceDocumentation string   `json:"resource_documentation,omitempty"`
}

// NewMetadata builds discovery metadata from startup configuration.
// Missing optional values degrade to empty lists and omitted fields,
// never an error: this is a pre-auth discovery surface and must be
// served even when the server is otherwise unconfigured.
func NewMetadata(resourceURL string, authorizationServers []string, requiredScope, documentationURL string) *Metadata {
	// Marshal as [] rather than null when no servers are configured.
	servers := make([]string, len(authorizationServers))
	copy(servers, authorizationServers)

	var scopes []string
	if requiredScope != "" {
		scopes = []string{requiredScope}
	}

	return &Metadata{
		Resource:              resourceURL,
		AuthorizationServers:  servers,
		BearerMethods:         []string{"header"},
		ScopesSupported:       scopes,
		ResourceDocumentation: documentationURL,
	}
}

// DiscoveryHandler serves the metadata document over HTTP.
type DiscoveryHandler struct {
	metadata *Metadata
	logger   *slog.Logger
}

// NewDiscoveryHandler creates a handler serving the given metadata.
func NewDiscoveryHandler(metadata *Metadata, logger *slog.Logger) *DiscoveryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoveryHandler{metadata: metadata, logger: logger}
}

// RegisterRoutes registers the discovery endpoints on the given ServeMux.
// Both the discovery root and the resource-scoped path serve the same
// document.
func (h *DiscoveryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(DiscoveryPath, h.serveMetadata)
	mux.HandleFunc(ResourceDiscoveryPath, h.serveMetadata)
}

func (h *DiscoveryHandler) serveMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.metadata); err != nil {
		h.logger.Warn("failed to encode discovery metadata", "error", err)
	}
}
