// ABOUTME: Tests for bearer token admission decisions
// ABOUTME: Covers missing config, origin rejection, malformed headers, and token matching

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMetadataURL = "https://mcp.example.com/.well-known/oauth-protected-resource/mcp"

func TestGate_MissingConfiguredToken(t *testing.T) {
	gate := NewGate("", nil, testMetadataURL)

	// Even a well-formed request is rejected when the server has no secret.
	d := gate.Evaluate("", "Bearer anything")
	assert.False(t, d.Admitted)
	assert.Equal(t, http.StatusInternalServerError, d.Status)
	assert.Empty(t, d.Challenge, "operator errors carry no challenge")
}

func TestGate_OriginRejection(t *testing.T) {
	gate := NewGate("secret", []string{"https://app.example.com"}, testMetadataURL)

	t.Run("unknown origin rejected before token check", func(t *testing.T) {
		// Correct token, wrong origin: origin wins.
		d := gate.Evaluate("https://evil.example.com", "Bearer secret")
		assert.False(t, d.Admitted)
		assert.Equal(t, http.StatusForbidden, d.Status)
		assert.Empty(t, d.Challenge)
	})

	t.Run("allowlisted origin admitted", func(t *testing.T) {
		d := gate.Evaluate("https://app.example.com", "Bearer secret")
		assert.True(t, d.Admitted)
	})

	t.Run("absent origin skips the check", func(t *testing.T) {
		d := gate.Evaluate("", "Bearer secret")
		assert.True(t, d.Admitted)
	})
}

func TestGate_EmptyAllowlistDisablesOriginCheck(t *testing.T) {
	gate := NewGate("secret", nil, testMetadataURL)

	d := gate.Evaluate("https://anywhere.example.com", "Bearer secret")
	assert.True(t, d.Admitted)
}

func TestGate_BearerHeader(t *testing.T) {
	gate := NewGate("secret", nil, testMetadataURL)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic c2VjcmV0"},
		{name: "lowercase scheme", header: "bearer secret"},
		{name: "no space after scheme", header: "Bearersecret"},
		{name: "empty token", header: "Bearer "},
		{name: "wrong token", header: "Bearer not-the-secret"},
		{name: "token with correct prefix", header: "Bearer secret-extended"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Evaluate("", tt.header)
			assert.False(t, d.Admitted)
			assert.Equal(t, http.StatusUnauthorized, d.Status)
			assert.Contains(t, d.Challenge, `Bearer realm="mcp"`)
			assert.Contains(t, d.Challenge, testMetadataURL)
		})
	}
}

func TestGate_CorrectToken(t *testing.T) {
	gate := NewGate("secret", nil, testMetadataURL)

	d := gate.Evaluate("", "Bearer secret")
	assert.True(t, d.Admitted)
	assert.Zero(t, d.Status)
	assert.Empty(t, d.Challenge)
}

func TestGate_TokenWhitespaceTrimmed(t *testing.T) {
	gate := NewGate("secret", nil, testMetadataURL)

	d := gate.Evaluate("", "Bearer secret ")
	assert.True(t, d.Admitted)
}

func TestGate_EvaluateRequest(t *testing.T) {
	gate := NewGate("secret", []string{"https://app.example.com"}, testMetadataURL)

	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	r.Header.Set("Authorization", "Bearer secret")
	r.Header.Set("Origin", "https://app.example.com")

	d := gate.EvaluateRequest(r)
	assert.True(t, d.Admitted)
}

func TestGate_Reject(t *testing.T) {
	gate := NewGate("secret", nil, testMetadataURL)

	t.Run("401 writes challenge header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		gate.Reject(rr, gate.Evaluate("", ""))

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Header().Get("WWW-Authenticate"), `Bearer realm="mcp"`)
		assert.Contains(t, rr.Body.String(), "bearer token")
	})

	t.Run("500 has no challenge header", func(t *testing.T) {
		unconfigured := NewGate("", nil, testMetadataURL)
		rr := httptest.NewRecorder()
		unconfigured.Reject(rr, unconfigured.Evaluate("", "Bearer secret"))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
	})
}
