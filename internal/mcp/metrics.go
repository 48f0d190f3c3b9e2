// ABOUTME: Prometheus counters for MCP request handling.
// ABOUTME: Tracks JSON-RPC requests, auth rejections, and tool call outcomes.

package mcp

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters for the MCP endpoint. A nil *Metrics is
// valid and records nothing, so metrics stay optional at call sites.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	authRejections *prometheus.CounterVec
	toolCalls      *prometheus.CounterVec
}

// NewMetrics creates the counter set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpd_requests_total",
			Help: "JSON-RPC requests handled, by method and outcome.",
		}, []string{"method", "outcome"}),
		authRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpd_auth_rejections_total",
			Help: "Requests rejected before dispatch, by HTTP status.",
		}, []string{"status"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpd_tool_calls_total",
			Help: "Tool invocations, by tool name and outcome.",
		}, []string{"tool", "outcome"}),
	}
}

// Handler returns the HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (m *Metrics) observeRequest(method string, ok bool) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.requests.WithLabelValues(method, outcomeLabel(ok)).Inc()
}

func (m *Metrics) observeAuthRejection(status int) {
	if m == nil {
		return
	}
	m.authRejections.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeToolCall(tool string, ok bool) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcomeLabel(ok)).Inc()
}
