// ABOUTME: MCP-compatible HTTP server speaking JSON-RPC 2.0 over streamable HTTP.
// ABOUTME: Routes initialize, tools/list, and tools/call to the in-process tool registry.

package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/2389/mcpd/internal/auth"
	"github.com/2389/mcpd/internal/tools"
)

// protocolVersion is the MCP revision advertised in initialize
// responses. Client-supplied versions are tolerated, never rejected.
const protocolVersion = "2025-06-18"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response. Exactly one of
// Result and Error is set.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// MCP-specific types

// MCPToolInfo represents an MCP tool definition.
type MCPToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// MCPListToolsResult is the result for tools/list.
type MCPListToolsResult struct {
	Tools []MCPToolInfo `json:"tools"`
}

// MCPCallToolParams are the params for tools/call.
type MCPCallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Config holds configuration for the MCP server.
type Config struct {
	Registry      *tools.Registry
	Gate          *auth.Gate
	Logger        *slog.Logger
	Metrics       *Metrics // optional
	ServerName    string
	ServerVersion string
}

// Server implements the MCP streamable-http endpoint. It holds no
// per-client state: the registry and gate are read-only after startup,
// so requests are dispatched concurrently without locking.
type Server struct {
	registry      *tools.Registry
	gate          *auth.Gate
	logger        *slog.Logger
	metrics       *Metrics
	serverName    string
	serverVersion string
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Gate == nil {
		return nil, errors.New("auth gate is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serverName := cfg.ServerName
	if serverName == "" {
		serverName = "mcpd"
	}
	serverVersion := cfg.ServerVersion
	if serverVersion == "" {
		serverVersion = "dev"
	}

	return &Server{
		registry:      cfg.Registry,
		gate:          cfg.Gate,
		logger:        logger,
		metrics:       cfg.Metrics,
		serverName:    serverName,
		serverVersion: serverVersion,
	}, nil
}

// RegisterRoutes registers the MCP and health endpoints on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/health", s.handleHealth)
}

// handleHealth is an unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// handleMCP is the single MCP endpoint. Only POST carries JSON-RPC;
// the server does not open server-initiated SSE streams.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handlePost(w, r)
}

// handlePost processes one JSON-RPC message. Auth failures surface as
// real HTTP statuses; once past the gate, protocol errors travel inside
// a 200 response per JSON-RPC-over-HTTP convention.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	decision := s.gate.EvaluateRequest(r)
	if !decision.Admitted {
		s.metrics.observeAuthRejection(decision.Status)
		s.logger.Debug("request rejected", "status", decision.Status)
		s.gate.Reject(w, decision)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.respondError(w, "", nil, JSONRPCInvalidRequest, "failed to read request body", nil)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.respondError(w, "", nil, JSONRPCInvalidRequest, "request body too large", nil)
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, "", nil, JSONRPCInvalidRequest, "invalid request: body must be a JSON object", nil)
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.respondError(w, req.Method, req.ID, JSONRPCInvalidRequest, "invalid request: expected jsonrpc 2.0 with a method", nil)
		return
	}

	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	s.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", isNotification,
	)

	// Notifications still execute for their side effects; only the
	// response payload is suppressed.
	result, rpcErr := s.dispatch(r, req)

	if isNotification {
		s.metrics.observeRequest(req.Method, rpcErr == nil)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if rpcErr != nil {
		s.respondError(w, req.Method, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	s.metrics.observeRequest(req.Method, true)
	s.sendJSONRPCResult(w, req.ID, result)
}

// dispatch routes a request by method over the closed set of supported
// methods. Returns either a result value or a JSON-RPC error.
func (s *Server) dispatch(r *http.Request, req JSONRPCRequest) (any, *JSONRPCError) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req), nil
	case "notifications/initialized":
		// Stateless server: nothing to record, acknowledge only.
		return struct{}{}, nil
	case "tools/list":
		return s.handleToolsList(), nil
	case "tools/call":
		return s.handleToolsCall(r, req)
	default:
		return nil, &JSONRPCError{Code: JSONRPCMethodNotFound, Message: "method not found"}
	}
}

// handleInitialize answers the MCP handshake. The server keeps no
// session state, so client capabilities are accepted and discarded.
func (s *Server) handleInitialize(req JSONRPCRequest) any {
	s.logger.Info("MCP client initialized")

	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.serverName,
			"version": s.serverVersion,
		},
	}
}

// handleToolsList enumerates registered tools in registration order.
func (s *Server) handleToolsList() any {
	descriptors := s.registry.List()

	result := MCPListToolsResult{
		Tools: make([]MCPToolInfo, len(descriptors)),
	}
	for i, d := range descriptors {
		result.Tools[i] = MCPToolInfo{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		}
	}

	s.logger.Debug("tools/list", "count", len(result.Tools))

	return result
}

// handleToolsCall validates params and arguments, then invokes the
// tool handler. A handler failure is a tool-level error result inside a
// successful JSON-RPC response: the call mechanism worked, the tool did
// not.
func (s *Server) handleToolsCall(r *http.Request, req JSONRPCRequest) (any, *JSONRPCError) {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &JSONRPCError{Code: JSONRPCInvalidParams, Message: "invalid params"}
		}
	}

	if params.Name == "" {
		return nil, &JSONRPCError{Code: JSONRPCInvalidParams, Message: "tool name is required"}
	}

	descriptor := s.registry.Get(params.Name)
	if descriptor == nil {
		return nil, &JSONRPCError{
			Code:    JSONRPCInvalidParams,
			Message: "invalid params",
			Data:    map[string]any{"reason": "unknown tool"},
		}
	}

	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	if violations := descriptor.ValidateArguments(args); len(violations) > 0 {
		s.logger.Debug("tools/call schema violation",
			"tool_name", params.Name,
			"violation_count", len(violations),
		)
		return nil, &JSONRPCError{
			Code:    JSONRPCInvalidParams,
			Message: "invalid params",
			Data:    map[string]any{"violations": violations},
		}
	}

	// Correlation ID for log lines spanning the handler invocation.
	requestID := uuid.New().String()

	s.logger.Debug("tools/call",
		"tool_name", params.Name,
		"request_id", requestID,
	)

	result, err := descriptor.Handler(r.Context(), args)
	if err != nil {
		s.logger.Warn("tool execution failed",
			"tool_name", params.Name,
			"request_id", requestID,
			"error", err,
		)
		s.metrics.observeToolCall(params.Name, false)
		return tools.ErrorResult(err.Error()), nil
	}

	s.metrics.observeToolCall(params.Name, !result.IsError)

	s.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"request_id", requestID,
		"is_error", result.IsError,
	)

	return result, nil
}

// respondError records metrics and sends a JSON-RPC error response.
func (s *Server) respondError(w http.ResponseWriter, method string, id json.RawMessage, code int, message string, data any) {
	s.metrics.observeRequest(method, false)
	s.sendJSONRPCError(w, id, code, message, data)
}

// sendJSONRPCResult sends a successful JSON-RPC response.
func (s *Server) sendJSONRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendJSONRPCError sends a JSON-RPC error response.
func (s *Server) sendJSONRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string, data any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", err)
	}
}
