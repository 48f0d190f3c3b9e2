// ABOUTME: Tests for protected-resource discovery metadata serving
// ABOUTME: Covers both well-known paths, empty config degradation, and method handling

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDiscoveryMux(t *testing.T, metadata *Metadata) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewDiscoveryHandler(metadata, nil).RegisterRoutes(mux)
	return mux
}

func TestDiscovery_FullMetadata(t *testing.T) {
	metadata := NewMetadata(
		"https://mcp.example.com/mcp",
		[]string{"https://auth.example.com"},
		"mcp:tools",
		"https://example.com/docs",
	)
	mux := setupDiscoveryMux(t, metadata)

	for _, path := range []string{DiscoveryPath, ResourceDiscoveryPath} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var got map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, "https://mcp.example.com/mcp", got["resource"])
			assert.Equal(t, []any{"https://auth.example.com"}, got["authorization_servers"])
			assert.Equal(t, []any{"header"}, got["bearer_methods_supported"])
			assert.Equal(t, []any{"mcp:tools"}, got["scopes_supported"])
			assert.Equal(t, "https://example.com/docs", got["resource_documentation"])
		})
	}
}

func TestDiscovery_EmptyConfigDegradesGracefully(t *testing.T) {
	metadata := NewMetadata("http://127.0.0.1:8000/mcp", nil, "", "")
	mux := setupDiscoveryMux(t, metadata)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, DiscoveryPath, nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

	// Empty list, not null and not an error.
	assert.Equal(t, []any{}, got["authorization_servers"])

	// Optional fields omitted entirely.
	assert.NotContains(t, got, "scopes_supported")
	assert.NotContains(t, got, "resource_documentation")
}

func TestDiscovery_NoAuthRequired(t *testing.T) {
	metadata := NewMetadata("http://127.0.0.1:8000/mcp", nil, "", "")
	mux := setupDiscoveryMux(t, metadata)

	// No Authorization header at all.
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ResourceDiscoveryPath, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDiscovery_MethodNotAllowed(t *testing.T) {
	metadata := NewMetadata("http://127.0.0.1:8000/mcp", nil, "", "")
	mux := setupDiscoveryMux(t, metadata)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, DiscoveryPath, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Allow"))
}
