package handlers

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-tools-service/internal/server/middlewares"
)

// ToolMetrics counts tool calls by tool and outcome. It implements
// tools.MetricsRecorder.
type ToolMetrics struct {
	mutex sync.RWMutex
	calls map[string]map[string]int64
}

func NewToolMetrics() *ToolMetrics {
	return &ToolMetrics{calls: make(map[string]map[string]int64)}
}

// RecordToolCall records a single tool call outcome
func (m *ToolMetrics) RecordToolCall(_ context.Context, tool, outcome string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	byOutcome, ok := m.calls[tool]
	if !ok {
		byOutcome = make(map[string]int64)
		m.calls[tool] = byOutcome
	}
	byOutcome[outcome]++
}

// Count returns the number of recorded calls for tool with outcome.
func (m *ToolMetrics) Count(tool, outcome string) int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[tool][outcome]
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// escapeLabel quotes v for use as a Prometheus label value.
func escapeLabel(v string) string {
	return `"` + labelEscaper.Replace(v) + `"`
}

type MetricsHandler struct {
	http  *middlewares.MetricsMiddleware
	tools *ToolMetrics
}

func NewMetricsHandler(http *middlewares.MetricsMiddleware, tools *ToolMetrics) *MetricsHandler {
	return &MetricsHandler{
		http:  http,
		tools: tools,
	}
}

// ServeMetrics exposes metrics in Prometheus text format
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		for _, key := range snap.Keys() {
			b.WriteString("http_requests_total{route_status=" + escapeLabel(key) + "} " + strconv.FormatInt(snap.RequestsTotal[key], 10) + "\n")
		}

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		b.WriteString("http_request_duration_seconds_avg " + strconv.FormatFloat(snap.AvgDuration, 'f', 6, 64) + "\n")

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		b.WriteString("http_active_requests " + strconv.FormatInt(snap.ActiveRequests, 10) + "\n\n")
	}

	b.WriteString("# HELP tool_calls_total Total tool calls by outcome\n")
	b.WriteString("# TYPE tool_calls_total counter\n")

	h.tools.mutex.RLock()
	names := make([]string, 0, len(h.tools.calls))
	for name := range h.tools.calls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		outcomes := make([]string, 0, len(h.tools.calls[name]))
		for outcome := range h.tools.calls[name] {
			outcomes = append(outcomes, outcome)
		}
		sort.Strings(outcomes)
		for _, outcome := range outcomes {
			b.WriteString("tool_calls_total{tool=" + escapeLabel(name) + ",outcome=" + escapeLabel(outcome) + "} " +
				strconv.FormatInt(h.tools.calls[name][outcome], 10) + "\n")
		}
	}
	h.tools.mutex.RUnlock()

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(200, b.String())
}
