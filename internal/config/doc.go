// Package config handles configuration loading for mcpd.
//
// # Overview
//
// Configuration is loaded from an optional YAML file with environment
// variable expansion, then overlaid with the MCP_* environment
// variables from the deployment contract. Environment values always
// win, so a container can run with no config file at all.
//
// # Environment Variables
//
//   - MCP_AUTH_TOKEN: static bearer secret (required for serving)
//   - HOST, PORT: bind address
//   - MCP_ALLOWED_ORIGINS: comma-separated Origin allowlist
//   - MCP_AUTHORIZATION_SERVERS: comma-separated authorization server URLs
//   - MCP_REQUIRED_SCOPE: scope advertised in discovery metadata
//   - MCP_RESOURCE_DOCUMENTATION: documentation URL for the resource
//
// # Configuration File
//
// Values can reference environment variables with ${VAR_NAME} syntax:
//
//	server:
//	  host: "0.0.0.0"
//	  port: "8000"
//	  public_url: "https://mcp.example.com"
//
//	auth:
//	  token: "${MCP_AUTH_TOKEN}"
//	  allowed_origins:
//	    - "https://app.example.com"
//
//	oauth:
//	  authorization_servers:
//	    - "https://auth.example.com"
//	  required_scope: "mcp:tools"
//	  resource_documentation: "https://example.com/docs"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
//	metrics:
//	  enabled: false
//	  path: "/metrics"
//
// # Validation
//
// Load() validates URL syntax and enum values but deliberately accepts
// a missing auth token: the server must start and serve discovery
// metadata even when unconfigured, answering MCP requests with 500
// until the operator provides the secret.
package config
